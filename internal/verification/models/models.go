// Package models defines the verification queue's domain types.
package models

import (
	"time"

	id "onboard/pkg/domain"
)

// Priority is a verification queue tier. Smaller Rank dequeues first.
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

// Rank orders priorities for the queue; urgent is 1.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 1
	case PriorityHigh:
		return 2
	case PriorityNormal:
		return 3
	case PriorityLow:
		return 4
	default:
		return 4
	}
}

// Valid reports whether p is a known tier. Used to vet overrides.
func (p Priority) Valid() bool {
	switch p {
	case PriorityUrgent, PriorityHigh, PriorityNormal, PriorityLow:
		return true
	}
	return false
}

// ResponseTarget is the tier's committed response window.
func (p Priority) ResponseTarget() time.Duration {
	switch p {
	case PriorityUrgent:
		return 2 * time.Hour
	case PriorityHigh:
		return 4 * time.Hour
	case PriorityNormal:
		return 8 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// AverageServiceTime is how long one review in this tier takes on
// average; queue-depth adjustments to scheduled times use it.
func (p Priority) AverageServiceTime() time.Duration {
	switch p {
	case PriorityUrgent:
		return 30 * time.Minute
	case PriorityHigh:
		return 45 * time.Minute
	case PriorityNormal:
		return time.Hour
	default:
		return 90 * time.Minute
	}
}

// VerificationType is how the review is performed.
type VerificationType string

const (
	TypeManual    VerificationType = "manual"
	TypeHybrid    VerificationType = "hybrid"
	TypeAutomated VerificationType = "automated"
)

// PriorityForScore maps a risk score to its tier. Pure function; the
// band edges are inclusive on the lower bound.
func PriorityForScore(score float64) Priority {
	switch {
	case score >= 70:
		return PriorityUrgent
	case score >= 50:
		return PriorityHigh
	case score >= 30:
		return PriorityNormal
	default:
		return PriorityLow
	}
}

// TypeForPriority maps a tier to its review mode.
func TypeForPriority(p Priority) VerificationType {
	switch p {
	case PriorityUrgent, PriorityHigh:
		return TypeManual
	case PriorityNormal:
		return TypeHybrid
	default:
		return TypeAutomated
	}
}

// VerificationRequest is one entry in the review queue. Immutable after
// creation except QueuePosition, which reflects current queue order.
type VerificationRequest struct {
	ID         id.VerificationID `json:"verification_id"`
	ProducerID id.ProducerID     `json:"producer_id"`
	SessionID  id.SessionID      `json:"session_id"`
	RiskScore  float64           `json:"risk_score"`
	Priority   Priority          `json:"priority"`
	Type       VerificationType  `json:"verification_type"`

	// DataSnapshot freezes the collected values at scheduling time so
	// the reviewer sees what was scored, not what came later.
	DataSnapshot map[string]string `json:"data_snapshot,omitempty"`

	EnqueuedAt    time.Time `json:"enqueued_at"`
	ScheduledTime time.Time `json:"scheduled_time"`
	QueuePosition int       `json:"queue_position"`
}

// EstimatedWait is the expected delay before review begins: the tier's
// response target plus the backlog ahead at enqueue time.
func (r *VerificationRequest) EstimatedWait() time.Duration {
	return r.ScheduledTime.Sub(r.EnqueuedAt)
}
