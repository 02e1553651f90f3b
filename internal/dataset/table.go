package dataset

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Row holds one record's cells aligned with Table.Columns. A cell is a
// string, float64, bool or nil for a missing value.
type Row []interface{}

// Table is an immutable, ordered collection of rows sharing one schema.
type Table struct {
	Columns []string
	Rows    []Row
	index   map[string]int
}

// NewTable builds a table. Rows shorter than the column list are padded with
// missing values.
func NewTable(columns []string, rows []Row) *Table {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := index[c]; !dup {
			index[c] = i
		}
	}
	for i, r := range rows {
		if len(r) < len(columns) {
			padded := make(Row, len(columns))
			copy(padded, r)
			rows[i] = padded
		}
	}
	return &Table{Columns: columns, Rows: rows, index: index}
}

func (t *Table) Len() int { return len(t.Rows) }

// ColumnIndex returns the position of column, or false if the table lacks it.
func (t *Table) ColumnIndex(column string) (int, bool) {
	i, ok := t.index[column]
	return i, ok
}

// HasColumn reports whether the table has column.
func (t *Table) HasColumn(column string) bool {
	_, ok := t.index[column]
	return ok
}

// Value returns the cell at row i for column, nil when either is absent.
func (t *Table) Value(i int, column string) interface{} {
	c, ok := t.index[column]
	if !ok || i < 0 || i >= len(t.Rows) {
		return nil
	}
	return t.Rows[i][c]
}

// Head returns a table with the first n rows.
func (t *Table) Head(n int) *Table {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	if n < 0 {
		n = 0
	}
	return NewTable(t.Columns, t.Rows[:n])
}

// withRows returns a table sharing t's schema with a different row set.
func (t *Table) withRows(rows []Row) *Table {
	return &Table{Columns: t.Columns, Rows: rows, index: t.index}
}

// MarshalJSON encodes the table as an array of objects whose keys keep
// column order. Missing and non-finite numbers encode as null.
func (t *Table) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, row := range t.Rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for j, col := range t.Columns {
			if j > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(col)
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			val, err := marshalCell(row[j])
			if err != nil {
				return nil, err
			}
			buf.Write(val)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func marshalCell(v interface{}) ([]byte, error) {
	if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

// CellString renders a cell the way it is matched by filters and shown in
// the chat context. Missing cells render as "".
func CellString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "True"
		}
		return "False"
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// CellFloat returns the numeric value of a cell. Only finite numbers count.
func CellFloat(v interface{}) (float64, bool) {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
