package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Session and queue stores
// return these (optionally wrapped) so services can translate them into
// domain errors without knowing which backend produced them.
//
// These represent factual states about resources, not validation
// failures:
// - ErrNotFound: entity does not exist in store
// - ErrConflict: uniqueness or concurrent-modification clash
// - ErrInvalidState: entity in wrong state for requested operation
// - ErrUnavailable: backend temporarily unreachable
//
// For validation errors (bad input, missing fields), use
// pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
