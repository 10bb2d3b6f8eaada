package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "onboard/pkg/domain"
	dErrors "onboard/pkg/domain-errors"
)

func newTestSession(t *testing.T) (*Session, time.Time) {
	t.Helper()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return NewSession(id.NewSessionID(), id.NewProducerID(), now), now
}

func TestApplyCollected_MovesToInProgress(t *testing.T) {
	sess, now := newTestSession(t)
	require.Equal(t, StatusStarted, sess.Status)

	sess.ApplyCollected("business_name", "ABC Foods", now.Add(time.Minute))

	assert.Equal(t, StatusInProgress, sess.Status)
	assert.Equal(t, []string{"business_name"}, sess.CollectedFields())
	assert.True(t, sess.Has("business_name"))
	assert.Equal(t, now, sess.CreatedAt)
	assert.Equal(t, now.Add(time.Minute), sess.UpdatedAt)
}

func TestApplyCollected_ReacceptKeepsOrder(t *testing.T) {
	sess, now := newTestSession(t)

	sess.ApplyCollected("business_name", "ABC Foods", now)
	sess.ApplyCollected("email", "a@b.in", now)
	sess.ApplyCollected("business_name", "ABC Foods Pvt Ltd", now)

	assert.Equal(t, []string{"business_name", "email"}, sess.CollectedFields())
	value, ok := sess.Get("business_name")
	require.True(t, ok)
	assert.Equal(t, "ABC Foods Pvt Ltd", value)
}

func TestApplyFailedAttempt_Ceiling(t *testing.T) {
	sess, now := newTestSession(t)

	assert.False(t, sess.ApplyFailedAttempt(3, now))
	assert.False(t, sess.ApplyFailedAttempt(3, now))
	assert.True(t, sess.ApplyFailedAttempt(3, now))
	assert.Equal(t, 3, sess.Attempts)
}

func TestApplyCollected_ResetsAttempts(t *testing.T) {
	sess, now := newTestSession(t)
	sess.ApplyFailedAttempt(3, now)
	sess.ApplyFailedAttempt(3, now)

	sess.ApplyCollected("email", "a@b.in", now)

	assert.Zero(t, sess.Attempts)
}

func TestCanAnswer(t *testing.T) {
	sess, now := newTestSession(t)
	require.NoError(t, sess.CanAnswer())

	sess.ApplyPendingVerification(62, now)
	err := sess.CanAnswer()
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))

	sess.Status = StatusCompleted
	assert.Error(t, sess.CanAnswer())
}

func TestRejectTransitions(t *testing.T) {
	sess, now := newTestSession(t)
	require.NoError(t, sess.CanReject())

	sess.ApplyPendingVerification(80, now)
	require.NoError(t, sess.CanReject())

	sess.ApplyRejected(now)
	assert.Equal(t, StatusRejected, sess.Status)
	require.NotNil(t, sess.CompletedAt)

	err := sess.CanReject()
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
}

func TestEndTransitions(t *testing.T) {
	sess, now := newTestSession(t)
	require.NoError(t, sess.CanEnd())

	sess.ApplyCollected("business_name", "ABC Foods", now)
	require.NoError(t, sess.CanEnd())

	sess.ApplyEnded(now)
	assert.Equal(t, StatusEnded, sess.Status)
	assert.Empty(t, sess.CurrentField)
	require.NotNil(t, sess.CompletedAt)
	assert.True(t, sess.Has("business_name"), "collected data survives the close")

	err := sess.CanEnd()
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
}

func TestEndRefusedWhilePendingVerification(t *testing.T) {
	sess, now := newTestSession(t)
	sess.ApplyPendingVerification(75, now)

	err := sess.CanEnd()
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
}

func TestApplyCompleted(t *testing.T) {
	sess, now := newTestSession(t)
	sess.CurrentField = "gst_number"

	sess.ApplyCompleted(12.5, now)

	assert.Equal(t, StatusCompleted, sess.Status)
	assert.Empty(t, sess.CurrentField)
	require.NotNil(t, sess.RiskScore)
	assert.Equal(t, 12.5, *sess.RiskScore)
	require.NotNil(t, sess.CompletedAt)
}

func TestClone_IsIsolated(t *testing.T) {
	sess, now := newTestSession(t)
	sess.ApplyCollected("business_name", "ABC Foods", now)
	sess.RecordIssue(ValidationIssue{
		Field:     "phone",
		IssueType: IssueSuspiciousPattern,
		Severity:  1,
	})
	sess.ApplyCompleted(7, now)

	clone := sess.Clone()
	clone.Values["business_name"] = "mutated"
	clone.FieldOrder[0] = "mutated"
	clone.Issues[0].Field = "mutated"
	*clone.RiskScore = 99

	original, _ := sess.Get("business_name")
	assert.Equal(t, "ABC Foods", original)
	assert.Equal(t, []string{"business_name"}, sess.FieldOrder)
	assert.Equal(t, "phone", sess.Issues[0].Field)
	assert.Equal(t, 7.0, *sess.RiskScore)
}

func TestIssueContribution(t *testing.T) {
	issue := ValidationIssue{IssueType: IssueCrossFieldMismatch, Severity: 0.6}
	assert.InDelta(t, 0.36, issue.Contribution(), 1e-9)

	issue = ValidationIssue{IssueType: IssueSuspiciousPattern, Severity: 1}
	assert.InDelta(t, 1.2, issue.Contribution(), 1e-9)
}
