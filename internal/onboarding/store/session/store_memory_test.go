package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"onboard/internal/onboarding/models"
	id "onboard/pkg/domain"
	"onboard/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = New()
}

func (s *MemoryStoreSuite) newSession() *models.Session {
	return models.NewSession(
		id.SessionID(uuid.New()),
		id.ProducerID(uuid.New()),
		time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	)
}

func (s *MemoryStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	sess := s.newSession()

	s.Require().NoError(s.store.Create(ctx, sess))

	found, err := s.store.FindByID(ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal(sess.ID, found.ID)
	s.Equal(models.StatusStarted, found.Status)
}

func (s *MemoryStoreSuite) TestCreateDuplicateConflicts() {
	ctx := context.Background()
	sess := s.newSession()

	s.Require().NoError(s.store.Create(ctx, sess))
	s.Require().ErrorIs(s.store.Create(ctx, sess), sentinel.ErrConflict)
}

func (s *MemoryStoreSuite) TestFindUnknownReturnsNotFound() {
	_, err := s.store.FindByID(context.Background(), id.SessionID(uuid.New()))
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestUpdatePersistsChanges() {
	ctx := context.Background()
	sess := s.newSession()
	s.Require().NoError(s.store.Create(ctx, sess))

	sess.ApplyCollected("business_name", "ABC Foods", time.Now())
	s.Require().NoError(s.store.Update(ctx, sess))

	found, err := s.store.FindByID(ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusInProgress, found.Status)
	value, ok := found.Get("business_name")
	s.True(ok)
	s.Equal("ABC Foods", value)
}

func (s *MemoryStoreSuite) TestUpdateUnknownReturnsNotFound() {
	err := s.store.Update(context.Background(), s.newSession())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestHandsOutClones() {
	ctx := context.Background()
	sess := s.newSession()
	s.Require().NoError(s.store.Create(ctx, sess))

	first, err := s.store.FindByID(ctx, sess.ID)
	s.Require().NoError(err)
	first.Values["business_name"] = "mutated"
	first.Status = models.StatusFailed

	second, err := s.store.FindByID(ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusStarted, second.Status)
	s.False(second.Has("business_name"))
}
