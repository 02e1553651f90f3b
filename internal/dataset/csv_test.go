package dataset

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV(t *testing.T) {
	input := "\ufeffregion,district,hospital_name,satisfaction,has_cctv\n" +
		"Samarkand,Urgut,Central Clinic,4.5,True\n" +
		"Bukhara, Gijduvon ,City Hospital,,false\n"

	table, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"region", "district", "hospital_name", "satisfaction", "has_cctv"}, table.Columns)
	require.Equal(t, 2, table.Len())

	assert.Equal(t, "Samarkand", table.Value(0, "region"))
	assert.Equal(t, 4.5, table.Value(0, "satisfaction"))
	assert.Equal(t, true, table.Value(0, "has_cctv"))

	assert.Equal(t, "Gijduvon", table.Value(1, "district"))
	assert.Nil(t, table.Value(1, "satisfaction"))
	assert.Equal(t, false, table.Value(1, "has_cctv"))
}

func TestParseCSV_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"ragged record", "a,b\n1,2,3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestParseCell(t *testing.T) {
	tests := []struct {
		raw  string
		want interface{}
	}{
		{"", nil},
		{"  ", nil},
		{"NaN", nil},
		{"N/A", nil},
		{"None", nil},
		{"12", 12.0},
		{"-3.25", -3.25},
		{"TRUE", true},
		{"False", false},
		{" Samarkand ", "Samarkand"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCell(tt.raw))
		})
	}
}

func TestTable_MarshalJSON(t *testing.T) {
	table := NewTable(
		[]string{"z_name", "a_score", "flag"},
		[]Row{
			{"Clinic", 1.5, true},
			{"Other", math.NaN()},
		},
	)

	b, err := json.Marshal(table)
	require.NoError(t, err)
	assert.Equal(t,
		`[{"z_name":"Clinic","a_score":1.5,"flag":true},{"z_name":"Other","a_score":null,"flag":null}]`,
		string(b),
	)
}

func TestTable_EmptyMarshalsAsArray(t *testing.T) {
	b, err := json.Marshal(NewTable([]string{"region"}, nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))
}

func TestTable_Head(t *testing.T) {
	table := NewTable([]string{"n"}, []Row{{1.0}, {2.0}, {3.0}, {4.0}})

	assert.Equal(t, 3, table.Head(3).Len())
	assert.Equal(t, 4, table.Head(10).Len())
	assert.Equal(t, 0, table.Head(-1).Len())
}

func TestCellString(t *testing.T) {
	assert.Equal(t, "", CellString(nil))
	assert.Equal(t, "4.5", CellString(4.5))
	assert.Equal(t, "12", CellString(12.0))
	assert.Equal(t, "True", CellString(true))
	assert.Equal(t, "Urgut", CellString("Urgut"))
}
