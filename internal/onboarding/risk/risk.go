// Package risk turns a session's collected data and recorded issues
// into a deterministic risk score. Same inputs, same score: the scorer
// holds no state and consults no clock.
package risk

import (
	"fmt"
	"math"
	"strings"

	"onboard/internal/onboarding/models"
	"onboard/internal/onboarding/registry"
)

// Scorer computes risk assessments against a field catalog.
type Scorer struct {
	registry *registry.Registry
}

func NewScorer(reg *registry.Registry) *Scorer {
	return &Scorer{registry: reg}
}

// Assess scores the collected data. The base is the incompleteness
// percentage; every issue adds severity times its type weight; the
// result clamps to [0,100].
func (s *Scorer) Assess(collected map[string]string, issues []models.ValidationIssue) models.RiskAssessment {
	completeness := s.registry.Completeness(collected)
	missing := s.registry.MissingFields(collected)

	score := 100 - completeness
	for _, issue := range issues {
		score += issue.Contribution()
	}
	score = math.Min(100, math.Max(0, score))

	return models.RiskAssessment{
		RiskScore:              score,
		CompletenessPercentage: completeness,
		IsComplete:             len(missing) == 0,
		Issues:                 issues,
		MissingFields:          missing,
		Explanation:            explain(score, completeness, missing, issues),
	}
}

// explain produces a one-line human summary: the dominant contributor
// first, then a completeness note if data is still missing.
func explain(score, completeness float64, missing []string, issues []models.ValidationIssue) string {
	if score == 0 {
		return "All required data collected and fully compliant."
	}

	var parts []string
	if dominant := dominantIssue(issues); dominant != nil {
		parts = append(parts, fmt.Sprintf("%s on %s: %s",
			describeIssueType(dominant.IssueType), dominant.Field, dominant.Description))
	}
	if len(missing) > 0 {
		parts = append(parts, fmt.Sprintf("%.0f%% of required data collected; still missing: %s",
			completeness, strings.Join(missing, ", ")))
	}
	if len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("risk score %.1f from recorded validation history", score))
	}
	return strings.Join(parts, ". ") + "."
}

// dominantIssue returns the issue with the largest score contribution,
// earliest recorded on ties.
func dominantIssue(issues []models.ValidationIssue) *models.ValidationIssue {
	var best *models.ValidationIssue
	for i := range issues {
		if best == nil || issues[i].Contribution() > best.Contribution() {
			best = &issues[i]
		}
	}
	return best
}

func describeIssueType(t models.IssueType) string {
	switch t {
	case models.IssueMissingData:
		return "Missing data"
	case models.IssueInvalidFormat:
		return "Invalid format"
	case models.IssueCrossFieldMismatch:
		return "Cross-field mismatch"
	case models.IssueSuspiciousPattern:
		return "Suspicious pattern"
	default:
		return "Issue"
	}
}
