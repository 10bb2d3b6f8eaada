package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"onboard/internal/platform/metrics"
	"onboard/internal/verification/models"
	"onboard/internal/verification/queue"
	id "onboard/pkg/domain"
	dErrors "onboard/pkg/domain-errors"
	"onboard/pkg/platform/audit"
	auditmemory "onboard/pkg/platform/audit/store/memory"
	"onboard/pkg/platform/audit/publisher"
	"onboard/pkg/requestcontext"
)

type SchedulerSuite struct {
	suite.Suite
	svc   *Service
	audit *auditmemory.InMemoryStore
	now   time.Time
	ctx   context.Context
}

func TestSchedulerSuite(t *testing.T) {
	suite.Run(t, new(SchedulerSuite))
}

func (s *SchedulerSuite) SetupTest() {
	s.audit = auditmemory.NewInMemoryStore()
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.svc = New(
		queue.NewMemory(),
		publisher.NewPublisher(s.audit),
		metrics.New(prometheus.NewRegistry()),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func (s *SchedulerSuite) schedule(score float64) *models.VerificationRequest {
	req, err := s.svc.Schedule(s.ctx, ScheduleParams{
		ProducerID: id.NewProducerID(),
		SessionID:  id.NewSessionID(),
		RiskScore:  score,
	})
	s.Require().NoError(err)
	return req
}

func (s *SchedulerSuite) TestPriorityBands() {
	cases := []struct {
		score    float64
		priority models.Priority
		vtype    models.VerificationType
		target   time.Duration
	}{
		{95, models.PriorityUrgent, models.TypeManual, 2 * time.Hour},
		{70, models.PriorityUrgent, models.TypeManual, 2 * time.Hour},
		{55, models.PriorityHigh, models.TypeManual, 4 * time.Hour},
		{35, models.PriorityNormal, models.TypeHybrid, 8 * time.Hour},
		{10, models.PriorityLow, models.TypeAutomated, 24 * time.Hour},
	}
	for _, tc := range cases {
		s.SetupTest() // empty queue per case
		req := s.schedule(tc.score)
		s.Equal(tc.priority, req.Priority, "score %.0f", tc.score)
		s.Equal(tc.vtype, req.Type, "score %.0f", tc.score)
		s.Equal(s.now.Add(tc.target), req.ScheduledTime, "score %.0f", tc.score)
		s.Equal(1, req.QueuePosition)
	}
}

func (s *SchedulerSuite) TestBacklogPushesScheduledTime() {
	s.schedule(90) // urgent ahead

	req := s.schedule(60) // high: counts the urgent
	s.Equal(2, req.QueuePosition)
	want := s.now.Add(4 * time.Hour).Add(models.PriorityUrgent.AverageServiceTime())
	s.Equal(want, req.ScheduledTime)
}

func (s *SchedulerSuite) TestLowerPriorityAheadIsIgnored() {
	s.schedule(5) // low

	req := s.schedule(90)
	s.Equal(1, req.QueuePosition)
	s.Equal(s.now.Add(2*time.Hour), req.ScheduledTime)
}

func (s *SchedulerSuite) TestPriorityOverride() {
	req, err := s.svc.Schedule(s.ctx, ScheduleParams{
		ProducerID:       id.NewProducerID(),
		SessionID:        id.NewSessionID(),
		RiskScore:        10,
		PriorityOverride: models.PriorityUrgent,
	})
	s.Require().NoError(err)
	s.Equal(models.PriorityUrgent, req.Priority)
	s.Equal(models.TypeManual, req.Type)

	_, err = s.svc.Schedule(s.ctx, ScheduleParams{
		ProducerID:       id.NewProducerID(),
		RiskScore:        10,
		PriorityOverride: models.Priority("bogus"),
	})
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *SchedulerSuite) TestRejectsOutOfRangeScore() {
	for _, score := range []float64{-1, 101} {
		_, err := s.svc.Schedule(s.ctx, ScheduleParams{
			ProducerID: id.NewProducerID(),
			RiskScore:  score,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest), "score %.0f", score)
	}
}

func (s *SchedulerSuite) TestDequeueFollowsPriorityThenArrival() {
	first := s.schedule(40)
	urgent := s.schedule(85)
	second := s.schedule(40)

	for _, want := range []id.VerificationID{urgent.ID, first.ID, second.ID} {
		got, err := s.svc.Dequeue(s.ctx)
		s.Require().NoError(err)
		s.Equal(want, got.ID)
	}

	_, err := s.svc.Dequeue(s.ctx)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *SchedulerSuite) TestAuditTrail() {
	req := s.schedule(75)
	_, err := s.svc.Dequeue(s.ctx)
	s.Require().NoError(err)

	events, err := s.audit.ListBySession(s.ctx, req.SessionID)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(audit.EventVerificationScheduled, events[0].Action)
	s.Equal(audit.EventVerificationDequeued, events[1].Action)
	s.Equal(75.0, events[0].RiskScore)
}

func (s *SchedulerSuite) TestCancelWithdrawsScheduledRequest() {
	req := s.schedule(75)

	s.Require().NoError(s.svc.Cancel(s.ctx, req.ID))

	pending, err := s.svc.PendingQueue(s.ctx)
	s.Require().NoError(err)
	s.Empty(pending)

	err = s.svc.Cancel(s.ctx, req.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *SchedulerSuite) TestRequestEstimatedWait() {
	s.schedule(90)
	req := s.schedule(60)

	s.Equal(4*time.Hour+models.PriorityUrgent.AverageServiceTime(), req.EstimatedWait())
}

type fixedCalendar struct {
	slot time.Time
	err  error
}

func (c fixedCalendar) Reserve(ctx context.Context, req *models.VerificationRequest) (time.Time, error) {
	return c.slot, c.err
}

func (s *SchedulerSuite) TestCalendarOverridesScheduledTime() {
	slot := s.now.Add(90 * time.Minute)
	svc := New(
		queue.NewMemory(),
		publisher.NewPublisher(s.audit),
		metrics.New(prometheus.NewRegistry()),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithCalendar(fixedCalendar{slot: slot}),
	)

	req, err := svc.Schedule(s.ctx, ScheduleParams{
		ProducerID: id.NewProducerID(),
		SessionID:  id.NewSessionID(),
		RiskScore:  80,
	})
	s.Require().NoError(err)
	s.Equal(slot, req.ScheduledTime)
}

func (s *SchedulerSuite) TestCalendarFailureKeepsComputedTime() {
	svc := New(
		queue.NewMemory(),
		publisher.NewPublisher(s.audit),
		metrics.New(prometheus.NewRegistry()),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithCalendar(fixedCalendar{err: context.DeadlineExceeded}),
	)

	req, err := svc.Schedule(s.ctx, ScheduleParams{
		ProducerID: id.NewProducerID(),
		SessionID:  id.NewSessionID(),
		RiskScore:  80,
	})
	s.Require().NoError(err)
	s.Equal(s.now.Add(2*time.Hour), req.ScheduledTime)
}

func (s *SchedulerSuite) TestEstimatedWait() {
	wait, err := s.svc.EstimatedWait(s.ctx, 60)
	s.Require().NoError(err)
	s.Equal(4*time.Hour, wait)

	s.schedule(90)
	wait, err = s.svc.EstimatedWait(s.ctx, 60)
	s.Require().NoError(err)
	s.Equal(4*time.Hour+models.PriorityUrgent.AverageServiceTime(), wait)
}
