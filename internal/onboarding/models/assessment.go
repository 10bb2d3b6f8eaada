package models

// RiskAssessment is the scored view of a producer's data. Always
// derived fresh from the collected values and issue history; never
// mutated incrementally.
type RiskAssessment struct {
	RiskScore              float64           `json:"risk_score"`
	CompletenessPercentage float64           `json:"completeness_percentage"`
	IsComplete             bool              `json:"is_complete"`
	Issues                 []ValidationIssue `json:"issues"`
	MissingFields          []string          `json:"missing_fields"`
	Explanation            string            `json:"explanation"`
}
