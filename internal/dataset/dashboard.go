package dataset

// Dashboard is the payload returned for a filtered dataset request.
type Dashboard struct {
	Summary Summary `json:"summary"`
	Charts  Charts  `json:"charts"`
}

type Charts struct {
	InfraVsResources         []InfraPoint       `json:"infra_vs_resources"`
	SatisfactionDistribution []*float64         `json:"satisfaction_distribution"`
	RegionalComparison       []RegionAverage    `json:"regional_comparison"`
	PerformanceMetrics       PerformanceMetrics `json:"performance_metrics"`
}

// InfraPoint is one facility on the infrastructure/resources scatter plot.
type InfraPoint struct {
	Name                string   `json:"name"`
	Region              string   `json:"region"`
	District            string   `json:"district"`
	InfrastructureScore *float64 `json:"infrastructure_score"`
	ResourcesScore      *float64 `json:"resources_score"`
}

type PerformanceMetrics struct {
	Labels []string   `json:"labels"`
	Values []*float64 `json:"values"`
}

var performanceColumns = []struct {
	label  string
	column string
}{
	{"Satisfaction", ColumnSatisfaction},
	{"Infrastructure", ColumnInfrastructureScore},
	{"Resources", ColumnResourcesScore},
	{"Population", ColumnPopulationScore},
	{"Age", ColumnAgeScore},
}

// BuildDashboard computes the summary and chart series of a (filtered) table.
func BuildDashboard(kind Kind, t *Table) Dashboard {
	entity := kind.EntityColumn()

	points := make([]InfraPoint, 0, t.Len())
	satisfaction := make([]*float64, 0, t.Len())
	for i := range t.Rows {
		points = append(points, InfraPoint{
			Name:                CellString(t.Value(i, entity)),
			Region:              CellString(t.Value(i, ColumnRegion)),
			District:            CellString(t.Value(i, ColumnDistrict)),
			InfrastructureScore: floatPtr(t.Value(i, ColumnInfrastructureScore)),
			ResourcesScore:      floatPtr(t.Value(i, ColumnResourcesScore)),
		})
		if t.HasColumn(ColumnSatisfaction) {
			satisfaction = append(satisfaction, floatPtr(t.Value(i, ColumnSatisfaction)))
		}
	}

	metrics := PerformanceMetrics{
		Labels: make([]string, 0, len(performanceColumns)),
		Values: make([]*float64, 0, len(performanceColumns)),
	}
	for _, pc := range performanceColumns {
		metrics.Labels = append(metrics.Labels, pc.label)
		metrics.Values = append(metrics.Values, Mean(t, pc.column))
	}

	return Dashboard{
		Summary: Summarize(t),
		Charts: Charts{
			InfraVsResources:         points,
			SatisfactionDistribution: satisfaction,
			RegionalComparison:       GroupByRegion(t),
			PerformanceMetrics:       metrics,
		},
	}
}

func floatPtr(v interface{}) *float64 {
	f, ok := CellFloat(v)
	if !ok {
		return nil
	}
	return &f
}
