package dataset

import (
	"math"
	"strings"
)

// Filter keeps rows whose Column contains Value, ignoring case.
type Filter struct {
	Column string
	Value  string
}

func (f Filter) match(t *Table, row Row) bool {
	c, ok := t.ColumnIndex(f.Column)
	if !ok {
		return false
	}
	cell := row[c]
	if cell == nil {
		return false
	}
	return strings.Contains(strings.ToLower(CellString(cell)), strings.ToLower(f.Value))
}

// Query returns the rows of t matching every filter. Filters with an empty
// Value are ignored. The input table is not modified.
func Query(t *Table, filters ...Filter) *Table {
	active := make([]Filter, 0, len(filters))
	for _, f := range filters {
		if f.Value != "" {
			active = append(active, f)
		}
	}
	if len(active) == 0 {
		return t
	}

	rows := make([]Row, 0, len(t.Rows))
	for _, row := range t.Rows {
		keep := true
		for _, f := range active {
			if !f.match(t, row) {
				keep = false
				break
			}
		}
		if keep {
			rows = append(rows, row)
		}
	}
	return t.withRows(rows)
}

// FillMissing returns a copy of t with every missing cell replaced by v.
func FillMissing(t *Table, v interface{}) *Table {
	rows := make([]Row, len(t.Rows))
	for i, row := range t.Rows {
		filled := make(Row, len(row))
		for j, cell := range row {
			if f, ok := cell.(float64); cell == nil || (ok && math.IsNaN(f)) {
				filled[j] = v
				continue
			}
			filled[j] = cell
		}
		rows[i] = filled
	}
	return t.withRows(rows)
}
