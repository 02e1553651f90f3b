package chat

import "strings"

// Canned answers served when the model cannot be reached.
const (
	SatisfactionReply = "Average satisfaction scores are shown in the summary cards at the top of each " +
		"dataset view. Use the region and district filters to compare how satisfaction changes " +
		"between areas, and the satisfaction distribution chart to see how scores are spread."

	RegionReply = "The regional comparison chart groups facilities by region and shows the average " +
		"infrastructure and resources scores for each one. Pick a region or district in the filters " +
		"to narrow every chart and summary to that area."

	InfrastructureReply = "Infrastructure scores reflect the physical condition of each facility. " +
		"The infrastructure vs resources chart plots every facility so you can spot places where " +
		"buildings lag behind available resources, and the summary card shows the average score."

	ResourcesReply = "Resources scores cover staffing, equipment and capacity. Compare them with " +
		"infrastructure on the scatter chart, or filter by district to see which areas have the " +
		"least staff and capacity relative to their needs."

	GenericReply = "I can help you explore hospital, school and preschool data for the Samarkand " +
		"region. Ask about satisfaction, regional differences, infrastructure or resources, or use " +
		"the filters to focus on a specific region, district or facility."
)

type keywordGroup struct {
	keywords []string
	reply    string
}

// Checked in order; the first group with a matching keyword wins.
var fallbackGroups = []keywordGroup{
	{keywords: []string{"satisfaction", "average"}, reply: SatisfactionReply},
	{keywords: []string{"region", "district"}, reply: RegionReply},
	{keywords: []string{"infrastructure"}, reply: InfrastructureReply},
	{keywords: []string{"resources", "staff", "capacity"}, reply: ResourcesReply},
}

// Fallback picks a canned answer by keyword. It is deterministic and offline.
func Fallback(message string) string {
	lower := strings.ToLower(message)
	for _, g := range fallbackGroups {
		for _, kw := range g.keywords {
			if strings.Contains(lower, kw) {
				return g.reply
			}
		}
	}
	return GenericReply
}
