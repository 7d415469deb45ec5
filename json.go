package editrans

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// parseJSON accepts either a top-level array of flat objects, or an object
// carrying the array under a "rows" or "data" property. Anything else is a
// FormatError. Scalar values are stringified (numbers keep their literal
// form, null becomes the empty string); nested arrays or objects inside a
// row are rejected with the row index.
//
// Decoding walks the token stream rather than unmarshaling into maps so
// that object key order survives into the Row, keeping downstream
// generation deterministic.
func parseJSON(data []byte, _ *DocumentOptions) ([]Row, error) {
	decoded, err := decodeText(data)
	if err != nil {
		return nil, newFormatError(FormatJSON, 0, err)
	}
	d := json.NewDecoder(bytes.NewReader(decoded))
	d.UseNumber()

	tok, err := d.Token()
	if err != nil {
		return nil, newFormatError(FormatJSON, 0, err)
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return nil, newFormatError(
			FormatJSON, 0,
			fmt.Errorf("expected array or object, got %v", tok),
		)
	}

	switch delim {
	case '[':
		return parseJSONArray(d)
	case '{':
		return parseJSONWrapper(d)
	default:
		return nil, newFormatError(
			FormatJSON, 0,
			fmt.Errorf("expected array or object, got %q", delim.String()),
		)
	}
}

// parseJSONWrapper scans object properties for a "rows" or "data" array,
// skipping everything else.
func parseJSONWrapper(d *json.Decoder) ([]Row, error) {
	var rows []Row
	found := false
	for d.More() {
		keyTok, err := d.Token()
		if err != nil {
			return nil, newFormatError(FormatJSON, 0, err)
		}
		key, _ := keyTok.(string)
		if !found && (key == "rows" || key == "data") {
			open, err := d.Token()
			if err != nil {
				return nil, newFormatError(FormatJSON, 0, err)
			}
			if delim, ok := open.(json.Delim); !ok || delim != '[' {
				return nil, newFormatError(
					FormatJSON, 0,
					fmt.Errorf("property %q must be an array", key),
				)
			}
			rows, err = parseJSONArray(d)
			if err != nil {
				return nil, err
			}
			found = true
			continue
		}
		if err := skipJSONValue(d); err != nil {
			return nil, newFormatError(FormatJSON, 0, err)
		}
	}
	// Consume the closing brace.
	if _, err := d.Token(); err != nil && !errors.Is(err, io.EOF) {
		return nil, newFormatError(FormatJSON, 0, err)
	}
	if !found {
		return nil, newFormatError(
			FormatJSON, 0,
			errors.New(`object form requires a "rows" or "data" array property`),
		)
	}
	return rows, nil
}

// parseJSONArray reads objects until the closing bracket. The decoder must
// be positioned just inside the array.
func parseJSONArray(d *json.Decoder) ([]Row, error) {
	rows := []Row{}
	for d.More() {
		index := len(rows) + 1
		open, err := d.Token()
		if err != nil {
			return nil, newFormatError(FormatJSON, index, err)
		}
		if delim, ok := open.(json.Delim); !ok || delim != '{' {
			return nil, newFormatError(
				FormatJSON, index,
				fmt.Errorf("expected object, got %v", open),
			)
		}
		row := NewRow()
		for d.More() {
			keyTok, err := d.Token()
			if err != nil {
				return nil, newFormatError(FormatJSON, index, err)
			}
			key, _ := keyTok.(string)
			valTok, err := d.Token()
			if err != nil {
				return nil, newFormatError(FormatJSON, index, err)
			}
			value, err := jsonScalarString(valTok)
			if err != nil {
				return nil, newFormatError(
					FormatJSON, index,
					fmt.Errorf("field %q: %w", key, err),
				)
			}
			row.Set(key, value)
		}
		if _, err := d.Token(); err != nil { // closing brace
			return nil, newFormatError(FormatJSON, index, err)
		}
		rows = append(rows, row)
	}
	if _, err := d.Token(); err != nil { // closing bracket
		return nil, newFormatError(FormatJSON, 0, err)
	}
	return rows, nil
}

func jsonScalarString(tok json.Token) (string, error) {
	switch v := tok.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		if v {
			return "true", nil
		}
		return "false", nil
	case nil:
		return "", nil
	case json.Delim:
		return "", fmt.Errorf("nested %q values are not supported", v.String())
	default:
		return "", fmt.Errorf("unsupported value %v", v)
	}
}

// skipJSONValue consumes exactly one value, descending through any nesting.
func skipJSONValue(d *json.Decoder) error {
	tok, err := d.Token()
	if err != nil {
		return err
	}
	delim, ok := tok.(json.Delim)
	if !ok || (delim != '[' && delim != '{') {
		return nil
	}
	depth := 1
	for depth > 0 {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '[', '{':
				depth++
			case ']', '}':
				depth--
			}
		}
	}
	return nil
}

// generateJSON wraps rows in {"data":[...]} with object keys in row order.
// encoding/json would sort map keys, so objects are written by hand with
// json.Marshal handling string escaping.
func generateJSON(rows []Row, _ *DocumentOptions) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"data":[`)
	for i, row := range rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for j, field := range row.Fields() {
			if j > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONString(&buf, field); err != nil {
				return nil, err
			}
			buf.WriteByte(':')
			if err := writeJSONString(&buf, row.Get(field)); err != nil {
				return nil, err
			}
		}
		buf.WriteByte('}')
	}
	buf.WriteString("]}")
	return buf.Bytes(), nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}
