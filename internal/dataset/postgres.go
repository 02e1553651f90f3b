package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// PostgresSource reads each dataset from a fixed table.
type PostgresSource struct {
	db     *sql.DB
	tables map[Kind]string
}

func NewPostgresSource(db *sql.DB, tables map[string]string) *PostgresSource {
	byKind := make(map[Kind]string, len(tables))
	for key, table := range tables {
		if k, err := ParseKind(key); err == nil {
			byKind[k] = table
		}
	}
	return &PostgresSource{db: db, tables: byKind}
}

func (s *PostgresSource) Name() string { return "postgres" }

func (s *PostgresSource) Load(ctx context.Context, kind Kind) (*Table, error) {
	table, ok := s.tables[kind]
	if !ok {
		return nil, fmt.Errorf("no table configured for dataset %s", kind)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+pq.QuoteIdentifier(table))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns %s: %w", table, err)
	}

	var out []Row
	for rows.Next() {
		raw := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}

		row := make(Row, len(columns))
		for i, v := range raw {
			row[i] = sqlCell(v)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}

	return NewTable(columns, out), nil
}

// sqlCell converts a driver value to a table cell. lib/pq returns NUMERIC
// columns as []byte, so byte slices go through ParseCell.
func sqlCell(v interface{}) interface{} {
	switch x := v.(type) {
	case nil:
		return nil
	case []byte:
		return ParseCell(string(x))
	case string:
		return x
	case int64:
		return float64(x)
	case int32:
		return float64(x)
	case float64:
		return x
	case float32:
		return float64(x)
	case bool:
		return x
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}
