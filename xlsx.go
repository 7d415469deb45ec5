package editrans

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// parseXLSX reads the first sheet of a workbook: first row is the header,
// every following row is one record. Spreadsheet libraries drop trailing
// empty cells, so short rows are padded rather than rejected; extra cells
// beyond the header get positional column names so no data is lost.
func parseXLSX(data []byte, _ *DocumentOptions) ([]Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, newFormatError(FormatXLSX, 0, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, newFormatError(FormatXLSX, 0, errors.New("workbook has no sheets"))
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, newFormatError(FormatXLSX, 0, err)
	}
	if len(records) == 0 {
		return []Row{}, nil
	}

	header := records[0]
	for i, h := range header {
		if h == "" {
			header[i] = fmt.Sprintf("column_%d", i+1)
		}
	}
	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row := NewRow()
		for i, value := range record {
			name := fmt.Sprintf("column_%d", i+1)
			if i < len(header) {
				name = header[i]
			}
			row.Set(name, value)
		}
		for i := len(record); i < len(header); i++ {
			row.Set(header[i], "")
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// generateXLSX writes a single-sheet workbook with the same header rule as
// CSV generation. Cell content is deterministic; the zip container is not
// byte-stable across calls, so the byte-identity law applies to the text
// formats only.
func generateXLSX(rows []Row, _ *DocumentOptions) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	header := fieldUnion(rows)
	if len(header) > 0 {
		cells := make([]interface{}, len(header))
		for i, h := range header {
			cells[i] = h
		}
		if err := f.SetSheetRow(sheet, "A1", &cells); err != nil {
			return nil, err
		}
	}
	for rowIdx, row := range rows {
		cells := make([]interface{}, len(header))
		for i, field := range header {
			cells[i] = row.Get(field)
		}
		cell, err := excelize.CoordinatesToCellName(1, rowIdx+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return nil, err
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
