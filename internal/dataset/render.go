package dataset

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// WriteText renders t as aligned plain-text columns with a header line.
// Missing cells render as "NaN".
func WriteText(w io.Writer, t *Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, strings.Join(t.Columns, "\t")); err != nil {
		return err
	}
	cells := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, cell := range row {
			if cell == nil {
				cells[i] = "NaN"
				continue
			}
			cells[i] = CellString(cell)
		}
		if _, err := fmt.Fprintln(tw, strings.Join(cells, "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// Text returns WriteText output as a string.
func Text(t *Table) string {
	var sb strings.Builder
	_ = WriteText(&sb, t)
	return sb.String()
}
