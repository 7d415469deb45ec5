package editrans

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

const (
	defaultRootTag = "rows"
	defaultRowTag  = "row"
)

// parseXML turns every element matching the configured row tag into one
// Row, with the names of its immediate child elements as fields. Attributes
// are ignored. Malformed XML surfaces as a FormatError wrapping the
// decoder's syntax error.
func parseXML(data []byte, opts *DocumentOptions) ([]Row, error) {
	decoded, err := decodeText(data)
	if err != nil {
		return nil, newFormatError(FormatXML, 0, err)
	}
	rowTag := opts.xmlRowTag()

	d := xml.NewDecoder(bytes.NewReader(decoded))
	rows := []Row{}
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, newFormatError(FormatXML, len(rows)+1, err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != rowTag {
			continue
		}
		row, err := parseXMLRow(d, start)
		if err != nil {
			return nil, newFormatError(FormatXML, len(rows)+1, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// parseXMLRow consumes tokens up to the row's end element, collecting each
// immediate child element's text content as one field.
func parseXMLRow(d *xml.Decoder, start xml.StartElement) (Row, error) {
	row := NewRow()
	for {
		tok, err := d.Token()
		if err != nil {
			return row, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			value, err := collectXMLText(d, t)
			if err != nil {
				return row, err
			}
			row.Set(t.Name.Local, value)
		case xml.EndElement:
			if t.Name.Local == start.Name.Local {
				return row, nil
			}
		}
	}
}

// collectXMLText gathers character data until the matching end element,
// flattening any nested markup to its text content.
func collectXMLText(d *xml.Decoder, start xml.StartElement) (string, error) {
	var b strings.Builder
	depth := 1
	for depth > 0 {
		tok, err := d.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			if depth == 1 {
				b.Write(t)
			}
		}
	}
	return b.String(), nil
}

// generateXML wraps rows in the configured root/row tag pair, one child
// element per field in row order, values XML-escaped.
func generateXML(rows []Row, opts *DocumentOptions) ([]byte, error) {
	rootTag := sanitizeXMLName(opts.xmlRootTag())
	rowTag := sanitizeXMLName(opts.xmlRowTag())

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	fmt.Fprintf(&buf, "<%s>\n", rootTag)
	for _, row := range rows {
		fmt.Fprintf(&buf, "  <%s>\n", rowTag)
		for _, field := range row.Fields() {
			name := sanitizeXMLName(field)
			buf.WriteString("    <")
			buf.WriteString(name)
			buf.WriteString(">")
			if err := xml.EscapeText(&buf, []byte(row.Get(field))); err != nil {
				return nil, err
			}
			buf.WriteString("</")
			buf.WriteString(name)
			buf.WriteString(">\n")
		}
		fmt.Fprintf(&buf, "  </%s>\n", rowTag)
	}
	fmt.Fprintf(&buf, "</%s>\n", rootTag)
	return buf.Bytes(), nil
}

// sanitizeXMLName makes a field name usable as an element name: invalid
// characters become underscores and a leading digit is prefixed.
func sanitizeXMLName(name string) string {
	if name == "" {
		return "field"
	}
	var b strings.Builder
	for i, r := range name {
		valid := r == '_' || r == '-' || r == '.' || unicode.IsLetter(r) ||
			(i > 0 && unicode.IsDigit(r))
		switch {
		case valid:
			b.WriteRune(r)
		case i == 0 && unicode.IsDigit(r):
			b.WriteRune('_')
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
