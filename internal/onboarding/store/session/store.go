// Package session persists onboarding sessions. Two implementations:
// an in-memory store for tests and single-node runs, and a Redis store
// for distributed deployments where the conversation may resume on any
// instance.
package session

import (
	"context"

	"onboard/internal/onboarding/models"
	id "onboard/pkg/domain"
)

// Store is the session persistence port. Implementations return
// sentinel.ErrNotFound for unknown IDs and sentinel.ErrConflict when a
// Create collides with an existing session.
type Store interface {
	Create(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, sessionID id.SessionID) (*models.Session, error)
	Update(ctx context.Context, session *models.Session) error
}
