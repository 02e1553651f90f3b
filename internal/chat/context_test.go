package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"samarkand-dashboard/internal/dataset"
)

type stubLoader struct {
	tables map[dataset.Kind]*dataset.Table
	err    map[dataset.Kind]error
}

func (s *stubLoader) LoadKind(ctx context.Context, kind dataset.Kind) (*dataset.Table, error) {
	if err := s.err[kind]; err != nil {
		return nil, err
	}
	return s.tables[kind], nil
}

func testTables() map[dataset.Kind]*dataset.Table {
	return map[dataset.Kind]*dataset.Table{
		dataset.Hospital: dataset.NewTable(
			[]string{"region", "hospital_name", "satisfaction", "has_cctv"},
			[]dataset.Row{
				{"Samarkand", "Urgut Central", 4.0, true},
				{"Samarkand", "Kattakurgan City", 2.5, false},
				{"Bukhara", "Gijduvon", 3.0, true},
				{"Navoi", "Karmana", 5.0, nil},
			},
		),
		dataset.School: dataset.NewTable(
			[]string{"region", "school_name", "students"},
			[]dataset.Row{{"Samarkand", "School 1", 320.0}},
		),
		dataset.Preschool: dataset.NewTable(
			[]string{"region", "kindergarten_name"},
			nil,
		),
	}
}

func TestBuilder_Build(t *testing.T) {
	builder := NewBuilder(&stubLoader{tables: testTables()})

	text, err := builder.Build(context.Background())
	require.NoError(t, err)

	hospital := strings.Index(text, "=== HOSPITAL DATA ===")
	school := strings.Index(text, "=== SCHOOL DATA ===")
	preschool := strings.Index(text, "=== PRESCHOOL DATA ===")
	require.True(t, hospital >= 0 && school > hospital && preschool > school, "blocks keep dataset order")

	assert.Contains(t, text, "Total records: 4")
	assert.Contains(t, text, "Columns: region, hospital_name, satisfaction, has_cctv")
	assert.Contains(t, text, "Urgut Central")
	assert.Contains(t, text, "Gijduvon")
	assert.NotContains(t, text, "Karmana", "only the first rows are sampled")
	assert.Contains(t, text, "- satisfaction: 3.63 / 2.5 / 5")
	assert.NotContains(t, text, "- has_cctv")
	assert.Contains(t, text, "- students: 320 / 320 / 320")
	assert.Contains(t, text, "Total records: 0")
}

func TestBuilder_BuildIsDeterministic(t *testing.T) {
	builder := NewBuilder(&stubLoader{tables: testTables()})

	first, err := builder.Build(context.Background())
	require.NoError(t, err)
	second, err := builder.Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBuilder_AnyFailureAborts(t *testing.T) {
	loader := &stubLoader{
		tables: testTables(),
		err:    map[dataset.Kind]error{dataset.School: dataset.ErrDatasetNotFound},
	}

	_, err := NewBuilder(loader).Build(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, dataset.ErrDatasetNotFound))
}
