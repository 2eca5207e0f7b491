// Package recommend maps a status to an actionable recommendation.
package recommend

import "github.com/wonny/dropscout/internal/contracts"

// Actions
const (
	ActionBuild      = "BUILD"
	ActionResearch   = "RESEARCH MORE"
	ActionDoNotBuild = "DO NOT BUILD"
	ConfidenceHigh   = "High"
	ConfidenceMedium = "Medium"
	ConfidenceLow    = "Low"
)

var table = map[contracts.Status]contracts.Recommendation{
	contracts.StatusGreen: {
		Action:          ActionBuild,
		Message:         "All indicators are positive. This product has strong potential for success.",
		ConfidenceLevel: ConfidenceHigh,
		NextSteps: []string{
			"Proceed to store setup",
			"Contact suppliers",
			"Set competitive pricing",
			"Launch marketing campaigns",
		},
	},
	contracts.StatusAmber: {
		Action:          ActionResearch,
		Message:         "Mixed signals detected. Additional validation recommended before building.",
		ConfidenceLevel: ConfidenceMedium,
		NextSteps: []string{
			"Analyze competitor stores",
			"Check seasonal trends",
			"Test with a small ad budget",
			"Validate supplier reliability",
		},
	},
	contracts.StatusRed: {
		Action:          ActionDoNotBuild,
		Message:         "Multiple red flags detected. High risk of failure; find a better product.",
		ConfidenceLevel: ConfidenceLow,
		NextSteps: []string{
			"Search for alternative products",
			"Try a different niche",
			"Rely on automated product suggestions",
			"Focus on validated products",
		},
	},
}

// Build returns the recommendation for status.
// Unknown statuses fall back to RED. NextSteps is a fresh slice on every call.
func Build(status contracts.Status) contracts.Recommendation {
	rec, ok := table[status]
	if !ok {
		rec = table[contracts.StatusRed]
	}
	rec.NextSteps = append([]string(nil), rec.NextSteps...)
	return rec
}
