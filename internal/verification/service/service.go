// Package service orchestrates verification scheduling: it maps risk
// scores to queue tiers, computes scheduled times from the current
// backlog, and hands reviewers work in priority order.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"onboard/internal/platform/metrics"
	"onboard/internal/verification/models"
	"onboard/internal/verification/queue"
	id "onboard/pkg/domain"
	dErrors "onboard/pkg/domain-errors"
	"onboard/pkg/platform/audit"
	"onboard/pkg/platform/sentinel"
	"onboard/pkg/requestcontext"
)

var tracer = otel.Tracer("onboard/verification")

// AuditPublisher records queue activity in the audit trail.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Calendar books review slots with the verification team's calendar.
// Reserve returns the confirmed slot for the request. The service only
// consumes the interface; without one the computed scheduled time
// stands.
type Calendar interface {
	Reserve(ctx context.Context, req *models.VerificationRequest) (time.Time, error)
}

// Service owns the verification queue.
type Service struct {
	queue    queue.Queue
	audit    AuditPublisher
	metrics  *metrics.Metrics
	logger   *slog.Logger
	calendar Calendar
}

// Option configures optional collaborators.
type Option func(*Service)

// WithCalendar routes scheduled times through an external calendar.
func WithCalendar(c Calendar) Option {
	return func(s *Service) { s.calendar = c }
}

func New(q queue.Queue, auditPub AuditPublisher, m *metrics.Metrics, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{queue: q, audit: auditPub, metrics: m, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScheduleParams describes one scheduling request. PriorityOverride,
// when set, replaces the score-derived tier; the verification type
// still follows the effective tier.
type ScheduleParams struct {
	ProducerID       id.ProducerID
	SessionID        id.SessionID
	RiskScore        float64
	DataSnapshot     map[string]string
	PriorityOverride models.Priority
}

// Schedule enqueues a verification request. The scheduled time is the
// tier's response target pushed back by the average service time of
// every same-or-higher-priority request already waiting.
func (s *Service) Schedule(ctx context.Context, params ScheduleParams) (*models.VerificationRequest, error) {
	ctx, span := tracer.Start(ctx, "verification.Schedule",
		trace.WithAttributes(attribute.Float64("risk_score", params.RiskScore)))
	defer span.End()

	if params.ProducerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "producer id is required")
	}
	if params.RiskScore < 0 || params.RiskScore > 100 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "risk score must be in [0,100]")
	}

	priority := models.PriorityForScore(params.RiskScore)
	if params.PriorityOverride != "" {
		if !params.PriorityOverride.Valid() {
			return nil, dErrors.Newf(dErrors.CodeBadRequest, "unknown priority %q", params.PriorityOverride)
		}
		priority = params.PriorityOverride
	}

	now := requestcontext.Now(ctx)
	req := &models.VerificationRequest{
		ID:           id.NewVerificationID(),
		ProducerID:   params.ProducerID,
		SessionID:    params.SessionID,
		RiskScore:    params.RiskScore,
		Priority:     priority,
		Type:         models.TypeForPriority(priority),
		DataSnapshot: params.DataSnapshot,
		EnqueuedAt:   now,
	}
	req.ScheduledTime = now.Add(priority.ResponseTarget())

	placement, err := s.queue.Push(ctx, req)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "verification queue unavailable")
	}
	req.QueuePosition = placement.Position
	req.ScheduledTime = req.ScheduledTime.Add(placement.Backlog)

	if s.calendar != nil {
		slot, err := s.calendar.Reserve(ctx, req)
		if err != nil {
			// The queue entry stands; the computed time is the fallback.
			s.logger.WarnContext(ctx, "calendar reservation failed", "error", err)
		} else {
			req.ScheduledTime = slot
		}
	}

	s.metrics.VerificationsScheduled.Inc()
	s.observeDepth(ctx)

	_ = s.audit.Emit(ctx, audit.Event{
		SessionID:  req.SessionID,
		ProducerID: req.ProducerID,
		Action:     audit.EventVerificationScheduled,
		Detail:     string(priority),
		RiskScore:  params.RiskScore,
		RequestID:  requestcontext.RequestID(ctx),
		ClientIP:   requestcontext.ClientIP(ctx),
		UserAgent:  requestcontext.UserAgent(ctx),
	})

	s.logger.InfoContext(ctx, "verification scheduled",
		"verification_id", req.ID.String(),
		"producer_id", req.ProducerID.String(),
		"priority", priority,
		"queue_position", req.QueuePosition,
		"scheduled_time", req.ScheduledTime,
	)
	return req, nil
}

// Dequeue hands the caller the highest-priority pending request.
func (s *Service) Dequeue(ctx context.Context) (*models.VerificationRequest, error) {
	ctx, span := tracer.Start(ctx, "verification.Dequeue")
	defer span.End()

	req, err := s.queue.Pop(ctx)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "verification queue is empty")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "verification queue unavailable")
	}

	s.observeDepth(ctx)
	_ = s.audit.Emit(ctx, audit.Event{
		SessionID:  req.SessionID,
		ProducerID: req.ProducerID,
		Action:     audit.EventVerificationDequeued,
		Detail:     string(req.Priority),
		RiskScore:  req.RiskScore,
		RequestID:  requestcontext.RequestID(ctx),
		ClientIP:   requestcontext.ClientIP(ctx),
		UserAgent:  requestcontext.UserAgent(ctx),
	})
	return req, nil
}

// Cancel withdraws a scheduled request that has not been dequeued.
// The onboarding engine uses it to compensate when the session update
// that parked a session for verification fails to persist.
func (s *Service) Cancel(ctx context.Context, verificationID id.VerificationID) error {
	ctx, span := tracer.Start(ctx, "verification.Cancel")
	defer span.End()

	err := s.queue.Remove(ctx, verificationID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "verification request not found")
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "verification queue unavailable")
	}

	s.observeDepth(ctx)
	s.logger.InfoContext(ctx, "verification canceled",
		"verification_id", verificationID.String())
	return nil
}

// PendingQueue lists undispatched requests in dequeue order.
func (s *Service) PendingQueue(ctx context.Context) ([]*models.VerificationRequest, error) {
	reqs, err := s.queue.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "verification queue unavailable")
	}
	return reqs, nil
}

// EstimatedWait reports how long a request of the given score would
// wait if enqueued now, without enqueueing it.
func (s *Service) EstimatedWait(ctx context.Context, score float64) (time.Duration, error) {
	priority := models.PriorityForScore(score)
	depth, err := s.queue.DepthByPriority(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeUnavailable, "verification queue unavailable")
	}
	wait := priority.ResponseTarget()
	for tier, count := range depth {
		if tier.Rank() <= priority.Rank() {
			wait += tier.AverageServiceTime() * time.Duration(count)
		}
	}
	return wait, nil
}

func (s *Service) observeDepth(ctx context.Context) {
	depth, err := s.queue.DepthByPriority(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "queue depth unavailable", "error", err)
		return
	}
	for _, tier := range []models.Priority{
		models.PriorityUrgent, models.PriorityHigh, models.PriorityNormal, models.PriorityLow,
	} {
		s.metrics.QueueDepth.WithLabelValues(string(tier)).Set(float64(depth[tier]))
	}
}
