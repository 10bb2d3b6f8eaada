// Package queue implements the verification priority queue. Dequeue
// order is strict priority descending, then enqueue time ascending:
// FIFO within a tier, regardless of interleaving with other tiers.
package queue

import (
	"context"
	"time"

	"onboard/internal/verification/models"
	id "onboard/pkg/domain"
)

// Placement describes where a freshly pushed request landed: its
// one-based position among unserviced requests of the same or higher
// priority, and the summed average service time of everything ahead.
type Placement struct {
	Position int
	Backlog  time.Duration
}

// Queue is the verification queue port. Push computes the placement
// atomically with the insert so concurrent pushes of equal priority
// keep their true arrival order. Pop returns sentinel.ErrNotFound on an
// empty queue. Remove withdraws a still-waiting request; requests
// already popped (or never pushed) report sentinel.ErrNotFound.
type Queue interface {
	Push(ctx context.Context, req *models.VerificationRequest) (Placement, error)
	Pop(ctx context.Context) (*models.VerificationRequest, error)
	Remove(ctx context.Context, verificationID id.VerificationID) error
	List(ctx context.Context) ([]*models.VerificationRequest, error)
	DepthByPriority(ctx context.Context) (map[models.Priority]int, error)
}
