package editrans

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// decodeText normalizes raw partner bytes to UTF-8: BOMs are honored and
// stripped, and input that is not valid UTF-8 falls back to Latin-1, which
// maps every byte to a code point and so cannot fail. Partner exports from
// legacy systems routinely arrive in all three encodings.
func decodeText(data []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return data[len(bomUTF8):], nil
	case bytes.HasPrefix(data, bomUTF16LE):
		dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
		out, err := dec.Bytes(data[len(bomUTF16LE):])
		if err != nil {
			return nil, fmt.Errorf("decoding UTF-16LE input: %w", err)
		}
		return out, nil
	case bytes.HasPrefix(data, bomUTF16BE):
		dec := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
		out, err := dec.Bytes(data[len(bomUTF16BE):])
		if err != nil {
			return nil, fmt.Errorf("decoding UTF-16BE input: %w", err)
		}
		return out, nil
	case utf8.Valid(data):
		return data, nil
	default:
		out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("decoding Latin-1 input: %w", err)
		}
		return out, nil
	}
}

// parseCSV treats the first record as the header defining field names for
// every subsequent record. A data record whose field count differs from the
// header fails with the 1-based data row index attached.
func parseCSV(data []byte, opts *DocumentOptions) ([]Row, error) {
	decoded, err := decodeText(data)
	if err != nil {
		return nil, newFormatError(FormatCSV, 0, err)
	}

	r := csv.NewReader(bytes.NewReader(decoded))
	if d := opts.csvDelimiter(); d != 0 {
		r.Comma = d
	}
	// Field counts are checked below so the error can cite the row index.
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return []Row{}, nil
	}
	if err != nil {
		return nil, newFormatError(FormatCSV, 0, err)
	}
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
			header[i] = h
		}
		if seen[h] {
			return nil, newFormatError(
				FormatCSV, 0,
				fmt.Errorf("duplicate header field %q", h),
			)
		}
		seen[h] = true
	}

	var rows []Row
	for index := 1; ; index++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, newFormatError(FormatCSV, index, err)
		}
		if len(record) != len(header) {
			return nil, newFormatError(
				FormatCSV, index,
				fmt.Errorf(
					"expected %d fields per header, got %d",
					len(header), len(record),
				),
			)
		}
		row := NewRow()
		for i, h := range header {
			row.Set(h, record[i])
		}
		rows = append(rows, row)
	}
	if rows == nil {
		rows = []Row{}
	}
	return rows, nil
}

// generateCSV writes a header from the union of field names across all rows
// in first-seen order, filling absent fields with the empty string. Zero
// rows produce empty output, a valid if degenerate document.
func generateCSV(rows []Row, opts *DocumentOptions) ([]byte, error) {
	header := fieldUnion(rows)
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if d := opts.csvDelimiter(); d != 0 {
		w.Comma = d
	}
	if len(header) > 0 {
		if err := w.Write(header); err != nil {
			return nil, err
		}
	}
	record := make([]string, len(header))
	for _, row := range rows {
		for i, f := range header {
			record[i] = row.Get(f)
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
