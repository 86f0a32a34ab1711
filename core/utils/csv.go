package utils

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV parses data into records keyed by column name.
// The first skip lines are discarded. When header is nil the next record is used as the header.
// Cells are trimmed and short records are padded with empty cells.
func ReadCSV(data []byte, skip int, header []string) ([]map[string]string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	for i := 0; i < skip && len(data) > 0; i++ {
		nl := bytes.IndexByte(data, '\n')
		if nl < 0 {
			data = nil
			break
		}
		data = data[nl+1:]
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	if header == nil {
		first, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv header: %w", err)
		}
		header = make([]string, len(first))
		for i, h := range first {
			header[i] = strings.TrimSpace(h)
		}
	}

	var rows []map[string]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv record: %w", err)
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}

		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = strings.TrimSpace(rec[i])
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ParsePrice converts a price cell to float64. An empty cell yields NaN.
func ParsePrice(val string) (float64, error) {
	if strings.TrimSpace(val) == "" {
		return math.NaN(), nil
	}
	return ToFloat(val)
}
