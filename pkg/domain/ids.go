// Package domain holds typed identifiers and small domain values shared
// across the onboarding engine. Typed IDs prevent accidental mixing of
// session, producer, and verification identifiers at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "onboard/pkg/domain-errors"
)

// SessionID identifies one onboarding conversation.
type SessionID uuid.UUID

// ProducerID identifies the producer/business being onboarded.
type ProducerID uuid.UUID

// VerificationID identifies a queued verification request.
type VerificationID uuid.UUID

func NewSessionID() SessionID           { return SessionID(uuid.New()) }
func NewProducerID() ProducerID         { return ProducerID(uuid.New()) }
func NewVerificationID() VerificationID { return VerificationID(uuid.New()) }

func (id SessionID) String() string      { return uuid.UUID(id).String() }
func (id ProducerID) String() string     { return uuid.UUID(id).String() }
func (id VerificationID) String() string { return uuid.UUID(id).String() }

func (id SessionID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id ProducerID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id VerificationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// The ID types marshal as their canonical UUID string, not as raw
// bytes, so sessions serialize legibly.

func (id SessionID) MarshalText() ([]byte, error)      { return []byte(id.String()), nil }
func (id ProducerID) MarshalText() ([]byte, error)     { return []byte(id.String()), nil }
func (id VerificationID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *SessionID) UnmarshalText(text []byte) error {
	u, err := uuid.ParseBytes(text)
	if err != nil {
		return err
	}
	*id = SessionID(u)
	return nil
}

func (id *ProducerID) UnmarshalText(text []byte) error {
	u, err := uuid.ParseBytes(text)
	if err != nil {
		return err
	}
	*id = ProducerID(u)
	return nil
}

func (id *VerificationID) UnmarshalText(text []byte) error {
	u, err := uuid.ParseBytes(text)
	if err != nil {
		return err
	}
	*id = VerificationID(u)
	return nil
}

// ParseSessionID constructs a SessionID from external input.
// Call from handlers when parsing path parameters; direct casting
// bypasses validation.
func ParseSessionID(s string) (SessionID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return SessionID{}, dErrors.New(dErrors.CodeBadRequest, "invalid session id")
	}
	return SessionID(u), nil
}

// ParseProducerID constructs a ProducerID from external input.
func ParseProducerID(s string) (ProducerID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ProducerID{}, dErrors.New(dErrors.CodeBadRequest, "invalid producer id")
	}
	return ProducerID(u), nil
}

// ParseVerificationID constructs a VerificationID from external input.
func ParseVerificationID(s string) (VerificationID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return VerificationID{}, dErrors.New(dErrors.CodeBadRequest, "invalid verification id")
	}
	return VerificationID(u), nil
}
