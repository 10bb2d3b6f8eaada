package models

// Status is the onboarding session state.
//
// Transitions:
//
//	started → in_progress           first accepted answer
//	started|in_progress → completed      all fields collected, risk below threshold
//	started|in_progress → pending_verification  all fields collected, risk at/above threshold
//	started|in_progress → failed         attempt ceiling exceeded
//	started|in_progress → ended          caller closed the session
//	any non-terminal|pending_verification → rejected   manual verifier outcome
//
// completed, failed, rejected, and ended are terminal. rejected and
// ended are externally driven; the engine never produces them on its
// own.
type Status string

const (
	StatusStarted             Status = "started"
	StatusInProgress          Status = "in_progress"
	StatusCompleted           Status = "completed"
	StatusPendingVerification Status = "pending_verification"
	StatusFailed              Status = "failed"
	StatusRejected            Status = "rejected"
	StatusEnded               Status = "ended"
)

// IsTerminal reports whether the session accepts further answers.
// pending_verification is terminal for answer collection but still
// accepts the external rejected/completed verifier outcome.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusRejected || s == StatusEnded
}

// CanTransitionTo reports whether the transition is allowed.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusStarted:
		return next == StatusInProgress || next == StatusCompleted ||
			next == StatusPendingVerification || next == StatusFailed ||
			next == StatusRejected || next == StatusEnded
	case StatusInProgress:
		return next == StatusCompleted || next == StatusPendingVerification ||
			next == StatusFailed || next == StatusRejected || next == StatusEnded
	case StatusPendingVerification:
		// Verifier outcome: approve or reject.
		return next == StatusCompleted || next == StatusRejected
	default:
		return false
	}
}
