//go:build integration

package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"onboard/internal/onboarding/models"
	"onboard/internal/onboarding/store/session"
	id "onboard/pkg/domain"
	"onboard/pkg/platform/sentinel"
	"onboard/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *session.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = session.NewRedis(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func newSession() *models.Session {
	return models.NewSession(
		id.SessionID(uuid.New()),
		id.ProducerID(uuid.New()),
		time.Now().UTC().Truncate(time.Millisecond),
	)
}

func (s *RedisStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	sess := newSession()
	sess.ApplyCollected("business_name", "ABC Foods", sess.CreatedAt)
	sess.ApplyCollected("email", "ramesh@abcfoods.in", sess.CreatedAt)
	sess.CurrentField = "phone"
	sess.RecordIssue(models.ValidationIssue{
		Field: "phone", IssueType: models.IssueSuspiciousPattern,
		Description: "sequential digits", Severity: 1,
	})

	s.Require().NoError(s.store.Create(ctx, sess))

	found, err := s.store.FindByID(ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal(sess.ID, found.ID)
	s.Equal(models.StatusInProgress, found.Status)
	s.Equal([]string{"business_name", "email"}, found.CollectedFields())
	s.Equal("phone", found.CurrentField)
	s.Len(found.Issues, 1)
}

func (s *RedisStoreSuite) TestCreateDuplicateConflicts() {
	ctx := context.Background()
	sess := newSession()

	s.Require().NoError(s.store.Create(ctx, sess))
	s.Require().ErrorIs(s.store.Create(ctx, sess), sentinel.ErrConflict)
}

func (s *RedisStoreSuite) TestFindUnknownReturnsNotFound() {
	_, err := s.store.FindByID(context.Background(), id.SessionID(uuid.New()))
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestUpdateMissingReturnsNotFound() {
	err := s.store.Update(context.Background(), newSession())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestSessionsExpire() {
	ctx := context.Background()
	store := session.NewRedis(s.redis.Client, session.WithTTL(time.Second))
	sess := newSession()

	s.Require().NoError(store.Create(ctx, sess))

	s.Require().Eventually(func() bool {
		_, err := store.FindByID(ctx, sess.ID)
		return err != nil
	}, 5*time.Second, 200*time.Millisecond, "session should expire")
}
