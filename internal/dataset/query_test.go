package dataset

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleHospitals() *Table {
	return NewTable(
		[]string{"region", "district", "hospital_name", "satisfaction", "infrastructure_score", "resources_score"},
		[]Row{
			{"Samarkand", "Urgut", "Urgut Central", 4.0, 70.0, 60.0},
			{"samarkand", "Kattakurgan", "Kattakurgan City", 3.0, 50.0, nil},
			{"Bukhara", "Gijduvon", "Gijduvon District", 5.0, 90.0, 80.0},
			{nil, "Payariq", "Payariq Rural", nil, 30.0, 20.0},
		},
	)
}

func TestQuery(t *testing.T) {
	tests := []struct {
		name    string
		filters []Filter
		want    []string
	}{
		{
			name: "no filters returns all rows",
			want: []string{"Urgut Central", "Kattakurgan City", "Gijduvon District", "Payariq Rural"},
		},
		{
			name:    "case-insensitive match",
			filters: []Filter{{Column: "region", Value: "SAMARKAND"}},
			want:    []string{"Urgut Central", "Kattakurgan City"},
		},
		{
			name:    "substring match",
			filters: []Filter{{Column: "hospital_name", Value: "city"}},
			want:    []string{"Kattakurgan City"},
		},
		{
			name: "filters compose with AND",
			filters: []Filter{
				{Column: "region", Value: "samarkand"},
				{Column: "district", Value: "urgut"},
			},
			want: []string{"Urgut Central"},
		},
		{
			name:    "missing cell never matches",
			filters: []Filter{{Column: "region", Value: "a"}},
			want:    []string{"Urgut Central", "Kattakurgan City", "Gijduvon District"},
		},
		{
			name:    "absent column matches nothing",
			filters: []Filter{{Column: "school_name", Value: "x"}},
			want:    []string{},
		},
		{
			name:    "empty value is ignored",
			filters: []Filter{{Column: "region", Value: ""}},
			want:    []string{"Urgut Central", "Kattakurgan City", "Gijduvon District", "Payariq Rural"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Query(sampleHospitals(), tt.filters...)
			names := []string{}
			for i := range got.Rows {
				names = append(names, CellString(got.Value(i, "hospital_name")))
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestQuery_Idempotent(t *testing.T) {
	table := sampleHospitals()
	filters := []Filter{{Column: "region", Value: "samar"}, {Column: "district", Value: "t"}}

	once := Query(table, filters...)
	twice := Query(once, filters...)

	assert.Equal(t, once.Rows, twice.Rows)
	assert.Equal(t, Query(table, append(filters, filters...)...).Rows, once.Rows)
}

func TestQuery_DoesNotModifyInput(t *testing.T) {
	table := sampleHospitals()
	Query(table, Filter{Column: "region", Value: "bukhara"})
	assert.Equal(t, 4, table.Len())
}

func TestQuery_MatchesNumbersByStringForm(t *testing.T) {
	table := NewTable([]string{"code"}, []Row{{101.0}, {202.0}})
	got := Query(table, Filter{Column: "code", Value: "10"})
	require.Equal(t, 1, got.Len())
	assert.Equal(t, 101.0, got.Value(0, "code"))
}

func TestFillMissing(t *testing.T) {
	table := sampleHospitals()
	filled := FillMissing(table, 0.0)

	assert.Equal(t, 0.0, filled.Value(1, "resources_score"))
	assert.Equal(t, 0.0, filled.Value(3, "region"))
	assert.Nil(t, table.Value(1, "resources_score"), "input must stay untouched")
}

func ExampleQuery() {
	table := NewTable([]string{"region"}, []Row{{"Samarkand"}, {"Bukhara"}, {"SAMARKAND"}})
	fmt.Println(Query(table, Filter{Column: "region", Value: "samarkand"}).Len())
	// Output: 2
}
