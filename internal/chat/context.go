package chat

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"samarkand-dashboard/internal/dataset"
)

// HeadRows is the number of sample rows included per dataset.
const HeadRows = 3

// Loader is the part of dataset.Store the context builder needs.
type Loader interface {
	LoadKind(ctx context.Context, kind dataset.Kind) (*dataset.Table, error)
}

// Builder renders the text summary of all datasets sent to the model.
type Builder struct {
	loader Loader
}

func NewBuilder(loader Loader) *Builder {
	return &Builder{loader: loader}
}

// Build loads every dataset concurrently. Any failure aborts the build.
func (b *Builder) Build(ctx context.Context) (string, error) {
	kinds := dataset.Kinds()
	blocks := make([]string, len(kinds))

	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		g.Go(func() error {
			table, err := b.loader.LoadKind(gctx, kind)
			if err != nil {
				return fmt.Errorf("load %s: %w", kind, err)
			}
			blocks[i] = RenderBlock(kind, table)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	return strings.Join(blocks, "\n"), nil
}

// RenderBlock describes one dataset: record count, columns, the first rows
// and mean/min/max of each numeric column.
func RenderBlock(kind dataset.Kind, table *dataset.Table) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "=== %s DATA ===\n", strings.ToUpper(kind.DisplayName()))
	fmt.Fprintf(&sb, "Total records: %d\n", table.Len())
	fmt.Fprintf(&sb, "Columns: %s\n", strings.Join(table.Columns, ", "))

	sb.WriteString("Sample rows:\n")
	sb.WriteString(dataset.Text(table.Head(HeadRows)))

	stats := dataset.NumericStats(table)
	if len(stats) > 0 {
		sb.WriteString("Numeric columns (mean / min / max):\n")
		for _, s := range stats {
			fmt.Fprintf(&sb, "- %s: %s / %s / %s\n", s.Column, formatStat(s.Mean), formatStat(s.Min), formatStat(s.Max))
		}
	}

	return sb.String()
}

func formatStat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
