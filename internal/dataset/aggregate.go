package dataset

import (
	"math"
	"sort"
)

// Mean averages the numeric cells of column. It returns nil when the column
// is absent or holds no numbers.
func Mean(t *Table, column string) *float64 {
	c, ok := t.ColumnIndex(column)
	if !ok {
		return nil
	}
	var sum float64
	var n int
	for _, row := range t.Rows {
		if f, ok := CellFloat(row[c]); ok {
			sum += f
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return round2(sum / float64(n))
}

func round2(f float64) *float64 {
	r := math.Round(f*100) / 100
	return &r
}

// Summary is the headline block of a dashboard response.
type Summary struct {
	TotalCount          int      `json:"total_count" yaml:"total_count"`
	AvgSatisfaction     *float64 `json:"avg_satisfaction" yaml:"avg_satisfaction"`
	InfrastructureScore *float64 `json:"infrastructure_score" yaml:"infrastructure_score"`
	ResourcesScore      *float64 `json:"resources_score" yaml:"resources_score"`
}

// Summarize never fails: an empty table yields a zero count and null means.
func Summarize(t *Table) Summary {
	return Summary{
		TotalCount:          t.Len(),
		AvgSatisfaction:     Mean(t, ColumnSatisfaction),
		InfrastructureScore: Mean(t, ColumnInfrastructureScore),
		ResourcesScore:      Mean(t, ColumnResourcesScore),
	}
}

type RegionAverage struct {
	Region              string   `json:"region" yaml:"region"`
	InfrastructureScore *float64 `json:"infrastructure_score" yaml:"infrastructure_score"`
	ResourcesScore      *float64 `json:"resources_score" yaml:"resources_score"`
}

// GroupByRegion averages the infrastructure and resources scores per region,
// sorted by region. Rows without a region are dropped.
func GroupByRegion(t *Table) []RegionAverage {
	rc, ok := t.ColumnIndex(ColumnRegion)
	if !ok {
		return []RegionAverage{}
	}

	groups := make(map[string][]Row)
	var order []string
	for _, row := range t.Rows {
		if row[rc] == nil {
			continue
		}
		key := CellString(row[rc])
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], row)
	}
	sort.Strings(order)

	out := make([]RegionAverage, 0, len(order))
	for _, region := range order {
		group := t.withRows(groups[region])
		out = append(out, RegionAverage{
			Region:              region,
			InfrastructureScore: Mean(group, ColumnInfrastructureScore),
			ResourcesScore:      Mean(group, ColumnResourcesScore),
		})
	}
	return out
}

// ColumnStats describes one numeric column.
type ColumnStats struct {
	Column string
	Mean   float64
	Min    float64
	Max    float64
}

// NumericStats returns mean, min and max for every column whose non-missing
// cells are all numbers, in column order. Values are rounded to 2 decimals.
func NumericStats(t *Table) []ColumnStats {
	var out []ColumnStats
	for c, column := range t.Columns {
		var sum float64
		var n int
		lo, hi := math.Inf(1), math.Inf(-1)
		numeric := true
		for _, row := range t.Rows {
			cell := row[c]
			if cell == nil {
				continue
			}
			f, ok := CellFloat(cell)
			if !ok {
				numeric = false
				break
			}
			sum += f
			n++
			lo = math.Min(lo, f)
			hi = math.Max(hi, f)
		}
		if !numeric || n == 0 {
			continue
		}
		out = append(out, ColumnStats{
			Column: column,
			Mean:   *round2(sum / float64(n)),
			Min:    *round2(lo),
			Max:    *round2(hi),
		})
	}
	return out
}

// Options lists the distinct values available for the dashboard drop-downs.
type Options struct {
	Regions   []string `json:"regions" yaml:"regions"`
	Districts []string `json:"districts" yaml:"districts"`
}

func FilterOptions(t *Table) Options {
	return Options{
		Regions:   Distinct(t, ColumnRegion),
		Districts: Distinct(t, ColumnDistrict),
	}
}

// Distinct returns the sorted distinct non-missing values of column.
func Distinct(t *Table, column string) []string {
	out := []string{}
	c, ok := t.ColumnIndex(column)
	if !ok {
		return out
	}
	seen := make(map[string]bool)
	for _, row := range t.Rows {
		if row[c] == nil {
			continue
		}
		v := CellString(row[c])
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// InfraColumns are the hospital facility flags counted by HospitalInsights.
var InfraColumns = []string{
	"has_generator",
	"has_solar_panels",
	"has_water_pipeline",
	"has_fence",
	"has_cctv",
	"has_transport_nearby",
	"fire_safety",
}

type InsightsSummary struct {
	TotalHospitals  int      `json:"totalHospitals"`
	AvgSatisfaction *float64 `json:"avgSatisfaction"`
	AvgBedCapacity  *float64 `json:"avgBedCapacity"`
	AvgMedicalStaff *float64 `json:"avgMedicalStaff"`
	InfraScore      *float64 `json:"infraScore"`
	ResourcesScore  *float64 `json:"resourcesScore"`
}

type Insights struct {
	Summary InsightsSummary `json:"summary"`
	Infra   map[string]int  `json:"infra"`
}

// HospitalInsights summarizes the hospital table and counts facilities per
// infrastructure flag. A flag counts when it is true or a non-zero number.
func HospitalInsights(t *Table) Insights {
	infra := make(map[string]int, len(InfraColumns))
	for _, column := range InfraColumns {
		c, ok := t.ColumnIndex(column)
		if !ok {
			infra[column] = 0
			continue
		}
		var sum float64
		for _, row := range t.Rows {
			switch v := row[c].(type) {
			case bool:
				if v {
					sum++
				}
			case float64:
				if f, ok := CellFloat(v); ok {
					sum += f
				}
			}
		}
		infra[column] = int(sum)
	}

	return Insights{
		Summary: InsightsSummary{
			TotalHospitals:  t.Len(),
			AvgSatisfaction: Mean(t, ColumnSatisfaction),
			AvgBedCapacity:  Mean(t, "bed_capacity"),
			AvgMedicalStaff: Mean(t, "medical_staff"),
			InfraScore:      Mean(t, ColumnInfrastructureScore),
			ResourcesScore:  Mean(t, ColumnResourcesScore),
		},
		Infra: infra,
	}
}
