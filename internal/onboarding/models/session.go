package models

import (
	"time"

	id "onboard/pkg/domain"
	dErrors "onboard/pkg/domain-errors"
)

// Session is the aggregate root for one producer's onboarding
// conversation.
//
// Invariants:
//   - Collected never contains a value its field validator rejected.
//   - CurrentField is empty exactly when the session is terminal or
//     pending verification; otherwise it names a field not yet collected
//     whose requirement predicate holds.
//   - Collection order is preserved: FieldOrder lists field names in the
//     order they were accepted.
//   - CreatedAt is immutable after construction.
type Session struct {
	ID         id.SessionID  `json:"id"`
	ProducerID id.ProducerID `json:"producer_id"`
	Status     Status        `json:"status"`

	// FieldOrder and Values together form the ordered collected map.
	FieldOrder []string          `json:"field_order"`
	Values     map[string]string `json:"values"`

	CurrentField string `json:"current_field,omitempty"`
	// Attempts counts failed answers for CurrentField; reset when the
	// field is accepted.
	Attempts int `json:"attempts"`
	// TurnCount counts continue calls across the whole conversation.
	TurnCount int `json:"turn_count"`

	// Issues holds soft issues (cross-field warnings, suspicious
	// patterns) recorded against accepted values. Hard failures are
	// surfaced to the caller, never stored.
	Issues []ValidationIssue `json:"issues,omitempty"`

	RiskScore *float64 `json:"risk_score,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewSession constructs a session in the started state.
func NewSession(sessionID id.SessionID, producerID id.ProducerID, now time.Time) *Session {
	return &Session{
		ID:         sessionID,
		ProducerID: producerID,
		Status:     StatusStarted,
		Values:     map[string]string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Has reports whether the field has been collected.
func (s *Session) Has(field string) bool {
	_, ok := s.Values[field]
	return ok
}

// Get returns the collected value for a field.
func (s *Session) Get(field string) (string, bool) {
	v, ok := s.Values[field]
	return v, ok
}

// CollectedFields returns field names in collection order.
func (s *Session) CollectedFields() []string {
	out := make([]string, len(s.FieldOrder))
	copy(out, s.FieldOrder)
	return out
}

// Collected returns a copy of the collected values keyed by field name.
func (s *Session) Collected() map[string]string {
	out := make(map[string]string, len(s.Values))
	for k, v := range s.Values {
		out[k] = v
	}
	return out
}

// CanAnswer checks that the session still accepts answers.
func (s *Session) CanAnswer() error {
	if s.Status.IsTerminal() || s.Status == StatusPendingVerification {
		return dErrors.Newf(dErrors.CodeInvalidState, "session is %s and accepts no further answers", s.Status)
	}
	return nil
}

// ApplyCollected merges an accepted, normalized value and resets the
// attempt counter. The first accepted answer moves the session to
// in_progress.
func (s *Session) ApplyCollected(field, value string, now time.Time) {
	if !s.Has(field) {
		s.FieldOrder = append(s.FieldOrder, field)
	}
	s.Values[field] = value
	s.Attempts = 0
	if s.Status == StatusStarted {
		s.Status = StatusInProgress
	}
	s.UpdatedAt = now
}

// ApplyFailedAttempt increments the attempt counter for the current
// field and reports whether the ceiling was reached.
func (s *Session) ApplyFailedAttempt(ceiling int, now time.Time) (exceeded bool) {
	s.Attempts++
	s.UpdatedAt = now
	return s.Attempts >= ceiling
}

// RecordIssue attaches a soft issue to the session.
func (s *Session) RecordIssue(issue ValidationIssue) {
	s.Issues = append(s.Issues, issue)
}

// ApplyCompleted finishes the session below the review threshold.
func (s *Session) ApplyCompleted(score float64, now time.Time) {
	s.Status = StatusCompleted
	s.RiskScore = &score
	s.CurrentField = ""
	s.UpdatedAt = now
	s.CompletedAt = &now
}

// ApplyPendingVerification parks the session for manual review.
func (s *Session) ApplyPendingVerification(score float64, now time.Time) {
	s.Status = StatusPendingVerification
	s.RiskScore = &score
	s.CurrentField = ""
	s.UpdatedAt = now
}

// ApplyFailed marks the session failed after the attempt ceiling.
func (s *Session) ApplyFailed(now time.Time) {
	s.Status = StatusFailed
	s.CurrentField = ""
	s.UpdatedAt = now
}

// CanEnd checks the caller-driven close transition. A session pending
// verification belongs to the verifier and cannot be ended.
func (s *Session) CanEnd() error {
	if !s.Status.CanTransitionTo(StatusEnded) {
		return dErrors.Newf(dErrors.CodeInvalidState, "cannot end a %s session", s.Status)
	}
	return nil
}

// ApplyEnded closes the session at the caller's request. The collected
// data stays; the record is closed, not deleted.
func (s *Session) ApplyEnded(now time.Time) {
	s.Status = StatusEnded
	s.CurrentField = ""
	s.UpdatedAt = now
	s.CompletedAt = &now
}

// CanReject checks the externally driven rejection transition.
func (s *Session) CanReject() error {
	if !s.Status.CanTransitionTo(StatusRejected) {
		return dErrors.Newf(dErrors.CodeInvalidState, "cannot reject a %s session", s.Status)
	}
	return nil
}

// ApplyRejected records the manual verifier's rejection.
func (s *Session) ApplyRejected(now time.Time) {
	s.Status = StatusRejected
	s.CurrentField = ""
	s.UpdatedAt = now
	s.CompletedAt = &now
}

// Clone returns a deep copy. Stores hand out clones so callers can't
// mutate shared state outside the per-session lock.
func (s *Session) Clone() *Session {
	clone := *s
	clone.FieldOrder = append([]string(nil), s.FieldOrder...)
	clone.Values = make(map[string]string, len(s.Values))
	for k, v := range s.Values {
		clone.Values[k] = v
	}
	clone.Issues = append([]ValidationIssue(nil), s.Issues...)
	if s.RiskScore != nil {
		score := *s.RiskScore
		clone.RiskScore = &score
	}
	if s.CompletedAt != nil {
		at := *s.CompletedAt
		clone.CompletedAt = &at
	}
	return &clone
}
