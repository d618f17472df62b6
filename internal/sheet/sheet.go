// Package sheet adapts xlsx workbooks to the rectangular string grids
// the import pipeline consumes, and writes the audit report back out.
package sheet

import (
	"bytes"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// MaxRows caps how many data rows a single import may carry.
var MaxRows = 50000

// ReadGrid reads the first worksheet into a header row and data rows.
// Rows are returned as raw string cells; empty trailing rows are
// dropped. The first row is treated as the header.
func ReadGrid(r io.Reader) (headers []string, rows [][]string, err error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("workbook has no sheets")
	}

	all, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}

	headers = all[0]
	rows = trimEmptyTail(all[1:])
	if len(rows) > MaxRows {
		return nil, nil, fmt.Errorf("sheet has %d data rows, limit is %d", len(rows), MaxRows)
	}
	return headers, rows, nil
}

// WriteGrid builds an xlsx workbook with one sheet holding the header
// row followed by the data rows, returned as an in-memory buffer ready
// to stream.
func WriteGrid(sheetName string, headers []string, rows [][]string) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	const defaultSheet = "Sheet1"
	if sheetName != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
			return nil, fmt.Errorf("rename sheet: %w", err)
		}
	}

	if err := writeRow(f, sheetName, 1, headers); err != nil {
		return nil, err
	}
	for i, row := range rows {
		if err := writeRow(f, sheetName, i+2, row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf, nil
}

func writeRow(f *excelize.File, sheetName string, rowNum int, cells []string) error {
	addr, err := excelize.JoinCellName("A", rowNum)
	if err != nil {
		return err
	}
	values := make([]interface{}, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	if err := f.SetSheetRow(sheetName, addr, &values); err != nil {
		return fmt.Errorf("write row %d: %w", rowNum, err)
	}
	return nil
}

func trimEmptyTail(rows [][]string) [][]string {
	end := len(rows)
	for end > 0 && isEmptyRow(rows[end-1]) {
		end--
	}
	return rows[:end]
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}
