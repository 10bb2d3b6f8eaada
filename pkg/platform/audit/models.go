// Package audit defines the audit event model for the onboarding
// engine. Events are emitted from domain logic and fanned out to
// whichever sinks are configured (in-memory for tests, Kafka in
// deployment). Keep the model transport-agnostic.
package audit

import (
	"context"
	"time"

	id "onboard/pkg/domain"
)

// Event captures one significant onboarding action.
type Event struct {
	Timestamp  time.Time
	SessionID  id.SessionID
	ProducerID id.ProducerID
	Action     AuditEvent
	// Field names the field involved, for field-level events.
	Field string
	// Detail carries a short human-readable note (dominant risk issue,
	// rejection reason, verification priority).
	Detail string
	// RiskScore is populated on completion and scheduling events.
	RiskScore float64
	// RequestID correlates the event with the HTTP request that caused it.
	RequestID string
	// ClientIP and UserAgent enrich the trail for fraud review.
	ClientIP  string
	UserAgent string
}

// AuditEvent enumerates the actions this engine emits.
type AuditEvent string

const (
	EventSessionStarted        AuditEvent = "session_started"
	EventFieldCollected        AuditEvent = "field_collected"
	EventFieldRejected         AuditEvent = "field_rejected"
	EventSessionCompleted      AuditEvent = "session_completed"
	EventSessionFailed         AuditEvent = "session_failed"
	EventSessionRejected       AuditEvent = "session_rejected"
	EventSessionEnded          AuditEvent = "session_ended"
	EventVerificationScheduled AuditEvent = "verification_scheduled"
	EventVerificationDequeued  AuditEvent = "verification_dequeued"
)

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySession(ctx context.Context, sessionID id.SessionID) ([]Event, error)
}
