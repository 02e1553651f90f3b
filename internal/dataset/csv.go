package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var missingMarkers = map[string]bool{
	"":     true,
	"nan":  true,
	"na":   true,
	"n/a":  true,
	"null": true,
	"none": true,
}

// ParseCSV reads a header row followed by records. Cells are typed by
// ParseCell; a record with the wrong field count fails the whole parse.
func ParseCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("csv has no header row")
		}
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}

	columns := make([]string, len(headers))
	for i, h := range headers {
		columns[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		row := make(Row, len(columns))
		for i, val := range record {
			row[i] = ParseCell(val)
		}
		rows = append(rows, row)
	}

	return NewTable(columns, rows), nil
}

// ParseCell types a raw text cell: missing markers become nil, numbers
// float64, true/false bool, anything else the trimmed string.
func ParseCell(raw string) interface{} {
	val := strings.TrimSpace(raw)
	if missingMarkers[strings.ToLower(val)] {
		return nil
	}
	if f, err := strconv.ParseFloat(val, 64); err == nil {
		return f
	}
	switch strings.ToLower(val) {
	case "true":
		return true
	case "false":
		return false
	}
	return val
}
