package models

// IssueType classifies a validation issue for risk weighting.
type IssueType string

const (
	IssueMissingData        IssueType = "missing_data"
	IssueInvalidFormat      IssueType = "invalid_format"
	IssueSuspiciousPattern  IssueType = "suspicious_pattern"
	IssueCrossFieldMismatch IssueType = "cross_field_mismatch"
)

// Weight returns the risk multiplier applied to an issue's severity.
// Suspicious patterns (sequential or repeated digits in account-like
// fields) weigh heaviest; cross-field mismatches are soft.
func (t IssueType) Weight() float64 {
	switch t {
	case IssueMissingData:
		return 1.0
	case IssueInvalidFormat:
		return 0.8
	case IssueCrossFieldMismatch:
		return 0.6
	case IssueSuspiciousPattern:
		return 1.2
	default:
		return 1.0
	}
}

// ValidationIssue records one problem found during a validation pass.
// Immutable once created; held on the session turn and on the final
// risk assessment.
type ValidationIssue struct {
	Field       string    `json:"field"`
	IssueType   IssueType `json:"issue_type"`
	Description string    `json:"description"`
	// Severity is in [0,1].
	Severity float64 `json:"severity"`
}

// Contribution is the issue's share of the risk score.
func (i ValidationIssue) Contribution() float64 {
	return i.Severity * i.IssueType.Weight()
}
