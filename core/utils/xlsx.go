package utils

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadXLSX reads the first sheet of a workbook into records keyed by column name.
// headerRow is the zero-based index of the header row; rows above it are ignored.
func ReadXLSX(data []byte, headerRow int) ([]map[string]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) <= headerRow {
		return nil, fmt.Errorf("sheet %q has no header at row %d", sheet, headerRow+1)
	}

	header := rows[headerRow]
	records := make([]map[string]string, 0, len(rows)-headerRow-1)
	for _, cells := range rows[headerRow+1:] {
		rec := make(map[string]string, len(header))
		empty := true
		for i, col := range header {
			col = strings.TrimSpace(col)
			if col == "" {
				continue
			}
			v := ""
			if i < len(cells) {
				v = strings.TrimSpace(cells[i])
			}
			if v != "" {
				empty = false
			}
			rec[col] = v
		}
		if !empty {
			records = append(records, rec)
		}
	}
	return records, nil
}
