// Package service drives the onboarding conversation: one turn
// validates an answer, advances the session state machine, and on full
// collection scores the producer and routes high-risk profiles to
// manual verification.
//
// Concurrency: any number of sessions advance independently, but each
// session permits one in-flight turn at a time. A turn either fully
// commits its field update or leaves the session untouched; collaborator
// failures (prompter, scheduler, store) surface as retryable errors
// before anything is persisted.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"onboard/internal/onboarding/models"
	"onboard/internal/onboarding/registry"
	"onboard/internal/onboarding/risk"
	"onboard/internal/onboarding/store/session"
	"onboard/internal/onboarding/validate"
	"onboard/internal/platform/metrics"
	"onboard/internal/prompt"
	verification "onboard/internal/verification/models"
	verificationservice "onboard/internal/verification/service"
	id "onboard/pkg/domain"
	dErrors "onboard/pkg/domain-errors"
	"onboard/pkg/platform/audit"
	"onboard/pkg/platform/sentinel"
	"onboard/pkg/requestcontext"
)

var tracer = otel.Tracer("onboard/onboarding")

// Scheduler routes completed high-risk sessions into the verification
// queue. Cancel withdraws a request whose session update did not
// persist, so a retried turn cannot leave a duplicate behind.
type Scheduler interface {
	Schedule(ctx context.Context, params verificationservice.ScheduleParams) (*verification.VerificationRequest, error)
	Cancel(ctx context.Context, verificationID id.VerificationID) error
}

// AuditPublisher records the onboarding trail.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Config tunes the engine's two policy knobs.
type Config struct {
	// ReviewThreshold is the risk score at or above which a fully
	// collected session goes to manual verification instead of
	// completing.
	ReviewThreshold float64
	// MaxAttempts is the per-field invalid-answer ceiling; reaching it
	// fails the session.
	MaxAttempts int
}

// Service is the onboarding engine.
type Service struct {
	store     session.Store
	registry  *registry.Registry
	scorer    *risk.Scorer
	prompter  prompt.Prompter
	scheduler Scheduler
	audit     AuditPublisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	cfg       Config

	locks *sessionLocks
}

func New(
	store session.Store,
	reg *registry.Registry,
	scorer *risk.Scorer,
	prompter prompt.Prompter,
	scheduler Scheduler,
	auditPub AuditPublisher,
	m *metrics.Metrics,
	logger *slog.Logger,
	cfg Config,
) *Service {
	if cfg.ReviewThreshold <= 0 {
		cfg.ReviewThreshold = 50
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	return &Service{
		store:     store,
		registry:  reg,
		scorer:    scorer,
		prompter:  prompter,
		scheduler: scheduler,
		audit:     auditPub,
		metrics:   m,
		logger:    logger,
		cfg:       cfg,
		locks:     newSessionLocks(),
	}
}

// TurnResult is the outcome of one start or continue call.
type TurnResult struct {
	SessionID       id.SessionID             `json:"session_id"`
	ProducerID      id.ProducerID            `json:"producer_id"`
	Status          models.Status            `json:"status"`
	CurrentField    string                   `json:"current_field,omitempty"`
	Prompt          *prompt.Prompt           `json:"next_prompt,omitempty"`
	CollectedFields []string                 `json:"collected_fields"`
	// Accepted reports whether the submitted answer was collected.
	// Always true for start calls.
	Accepted bool `json:"accepted"`
	// Issue is set when the answer was rejected.
	Issue             *models.ValidationIssue `json:"issue,omitempty"`
	AttemptsRemaining int                     `json:"attempts_remaining"`
	// Assessment and Verification are set when the turn finished
	// collection.
	Assessment   *models.RiskAssessment            `json:"assessment,omitempty"`
	Verification *verification.VerificationRequest `json:"verification,omitempty"`
}

// Start opens a session, folding any initial data through the field
// validators. Invalid initial values are skipped and reported as
// issues; they never enter the collected map.
func (s *Service) Start(ctx context.Context, producerID id.ProducerID, initialData map[string]string) (*TurnResult, error) {
	ctx, span := tracer.Start(ctx, "onboarding.Start")
	defer span.End()

	now := requestcontext.Now(ctx)
	if producerID.IsNil() {
		producerID = id.NewProducerID()
	}
	sess := models.NewSession(id.NewSessionID(), producerID, now)

	// Fold initial data in priority order so FieldOrder stays
	// deterministic regardless of map iteration.
	var rejected []models.ValidationIssue
	for _, spec := range s.registry.Specs() {
		raw, ok := initialData[spec.Name]
		if !ok {
			continue
		}
		res, issue := validate.Field(spec.Kind, spec.Name, raw)
		if issue != nil {
			rejected = append(rejected, *issue)
			continue
		}
		sess.ApplyCollected(spec.Name, res.Value, now)
		for _, warning := range res.Warnings {
			sess.RecordIssue(warning)
		}
	}
	s.crossCheck(sess)

	result, err := s.advance(ctx, sess, now)
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, sess); err != nil {
		s.withdrawVerification(ctx, result)
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "session store unavailable")
	}

	s.metrics.SessionsStarted.Inc()
	_ = s.audit.Emit(ctx, audit.Event{
		SessionID:  sess.ID,
		ProducerID: sess.ProducerID,
		Action:     audit.EventSessionStarted,
		RequestID:  requestcontext.RequestID(ctx),
		ClientIP:   requestcontext.ClientIP(ctx),
		UserAgent:  requestcontext.UserAgent(ctx),
	})
	s.logger.InfoContext(ctx, "session started",
		"session_id", sess.ID.String(),
		"producer_id", sess.ProducerID.String(),
		"initial_fields", len(sess.FieldOrder),
	)

	result.Accepted = true
	if len(rejected) > 0 {
		result.Issue = &rejected[0]
	}
	return result, nil
}

// Continue submits one answer for the session's current field.
func (s *Service) Continue(ctx context.Context, sessionID id.SessionID, answer string) (*TurnResult, error) {
	ctx, span := tracer.Start(ctx, "onboarding.Continue",
		trace.WithAttributes(attribute.String("session_id", sessionID.String())))
	defer span.End()

	release := s.locks.acquire(sessionID)
	defer release()

	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.CanAnswer(); err != nil {
		return nil, err
	}
	if sess.CurrentField == "" {
		return nil, dErrors.New(dErrors.CodeInvalidState, "session is not waiting on a field")
	}
	spec, ok := s.registry.Lookup(sess.CurrentField)
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeInternal, "unknown field %q", sess.CurrentField)
	}

	now := requestcontext.Now(ctx)
	sess.TurnCount++

	res, issue := validate.Field(spec.Kind, spec.Name, answer)
	if issue != nil {
		return s.rejectAnswer(ctx, sess, spec, issue, now)
	}

	sess.ApplyCollected(spec.Name, res.Value, now)
	for _, warning := range res.Warnings {
		sess.RecordIssue(warning)
	}
	if spec.Name == registry.FieldGST || spec.Name == registry.FieldState {
		s.crossCheck(sess)
	}

	result, err := s.advance(ctx, sess, now)
	if err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, sess); err != nil {
		s.withdrawVerification(ctx, result)
		return nil, s.storeErr(err)
	}

	_ = s.audit.Emit(ctx, audit.Event{
		SessionID:  sess.ID,
		ProducerID: sess.ProducerID,
		Action:     audit.EventFieldCollected,
		Field:      spec.Name,
		RequestID:  requestcontext.RequestID(ctx),
		ClientIP:   requestcontext.ClientIP(ctx),
		UserAgent:  requestcontext.UserAgent(ctx),
	})
	s.finishTurnBookkeeping(ctx, sess, result)

	result.Accepted = true
	return result, nil
}

// Get returns a read-only snapshot of the session.
func (s *Service) Get(ctx context.Context, sessionID id.SessionID) (*models.Session, error) {
	return s.load(ctx, sessionID)
}

// ValidateData runs the full validator battery over a detached data
// map and scores it, without touching any session. Serves bulk
// pre-checks and the admin what-if endpoint.
func (s *Service) ValidateData(ctx context.Context, data map[string]string) models.RiskAssessment {
	_, span := tracer.Start(ctx, "onboarding.ValidateData")
	defer span.End()

	collected := make(map[string]string, len(data))
	var issues []models.ValidationIssue
	for _, spec := range s.registry.Specs() {
		raw, ok := data[spec.Name]
		if !ok {
			continue
		}
		res, issue := validate.Field(spec.Kind, spec.Name, raw)
		if issue != nil {
			issues = append(issues, *issue)
			continue
		}
		collected[spec.Name] = res.Value
		issues = append(issues, res.Warnings...)
	}
	if issue := validate.CrossCheckGSTState(collected[registry.FieldGST], collected[registry.FieldState]); issue != nil {
		issues = append(issues, *issue)
	}
	return s.scorer.Assess(collected, issues)
}

// Reject records a manual verifier's rejection of a session.
func (s *Service) Reject(ctx context.Context, sessionID id.SessionID, reason string) (*models.Session, error) {
	ctx, span := tracer.Start(ctx, "onboarding.Reject")
	defer span.End()

	release := s.locks.acquire(sessionID)
	defer release()

	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.CanReject(); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	sess.ApplyRejected(now)
	if err := s.store.Update(ctx, sess); err != nil {
		return nil, s.storeErr(err)
	}

	s.metrics.SessionsRejected.Inc()
	_ = s.audit.Emit(ctx, audit.Event{
		SessionID:  sess.ID,
		ProducerID: sess.ProducerID,
		Action:     audit.EventSessionRejected,
		Detail:     reason,
		RequestID:  requestcontext.RequestID(ctx),
		ClientIP:   requestcontext.ClientIP(ctx),
		UserAgent:  requestcontext.UserAgent(ctx),
	})
	s.logger.InfoContext(ctx, "session rejected",
		"session_id", sess.ID.String(),
		"caller", requestcontext.Caller(ctx),
		"reason", reason,
	)
	return sess, nil
}

// End closes the session at the caller's request. The record and its
// collected data stay readable; the session just accepts nothing more.
// Sessions pending verification belong to the verifier and cannot be
// ended.
func (s *Service) End(ctx context.Context, sessionID id.SessionID) (*models.Session, error) {
	ctx, span := tracer.Start(ctx, "onboarding.End")
	defer span.End()

	release := s.locks.acquire(sessionID)
	defer release()

	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.CanEnd(); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	sess.ApplyEnded(now)
	if err := s.store.Update(ctx, sess); err != nil {
		return nil, s.storeErr(err)
	}

	s.metrics.SessionsEnded.Inc()
	_ = s.audit.Emit(ctx, audit.Event{
		SessionID:  sess.ID,
		ProducerID: sess.ProducerID,
		Action:     audit.EventSessionEnded,
		RequestID:  requestcontext.RequestID(ctx),
		ClientIP:   requestcontext.ClientIP(ctx),
		UserAgent:  requestcontext.UserAgent(ctx),
	})
	s.logger.InfoContext(ctx, "session ended",
		"session_id", sess.ID.String(),
		"collected_fields", len(sess.FieldOrder),
	)
	return sess, nil
}

// rejectAnswer handles an invalid answer: bump the attempt counter,
// fail the session at the ceiling, otherwise re-prompt with a hint.
func (s *Service) rejectAnswer(ctx context.Context, sess *models.Session, spec registry.FieldSpec, issue *models.ValidationIssue, now time.Time) (*TurnResult, error) {
	exceeded := sess.ApplyFailedAttempt(s.cfg.MaxAttempts, now)

	result := &TurnResult{
		SessionID:       sess.ID,
		ProducerID:      sess.ProducerID,
		CollectedFields: sess.CollectedFields(),
		Issue:           issue,
	}

	if exceeded {
		sess.ApplyFailed(now)
		if err := s.store.Update(ctx, sess); err != nil {
			return nil, s.storeErr(err)
		}
		s.metrics.SessionsFailed.Inc()
		_ = s.audit.Emit(ctx, audit.Event{
			SessionID:  sess.ID,
			ProducerID: sess.ProducerID,
			Action:     audit.EventSessionFailed,
			Field:      spec.Name,
			Detail:     issue.Description,
			RequestID:  requestcontext.RequestID(ctx),
			ClientIP:   requestcontext.ClientIP(ctx),
			UserAgent:  requestcontext.UserAgent(ctx),
		})
		s.logger.WarnContext(ctx, "session failed on attempt ceiling",
			"session_id", sess.ID.String(), "field", spec.Name)
		return nil, dErrors.Newf(dErrors.CodeAttemptLimit, "too many invalid answers for %s; session failed", spec.Name).
			WithMeta("field", spec.Name, "attempts", strconv.Itoa(sess.Attempts))
	}

	nextPrompt, err := s.prompter.PromptFor(ctx, spec, sess.Collected(), sess.Attempts)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "prompt generation unavailable")
	}
	if err := s.store.Update(ctx, sess); err != nil {
		return nil, s.storeErr(err)
	}

	result.Status = sess.Status
	result.CurrentField = sess.CurrentField
	result.Prompt = &nextPrompt
	result.AttemptsRemaining = s.cfg.MaxAttempts - sess.Attempts
	_ = s.audit.Emit(ctx, audit.Event{
		SessionID:  sess.ID,
		ProducerID: sess.ProducerID,
		Action:     audit.EventFieldRejected,
		Field:      spec.Name,
		Detail:     issue.Description,
		RequestID:  requestcontext.RequestID(ctx),
		ClientIP:   requestcontext.ClientIP(ctx),
		UserAgent:  requestcontext.UserAgent(ctx),
	})
	return result, nil
}

// advance moves the session to its next waiting field, or finishes it
// when collection is complete. Mutates sess in memory only; callers
// persist afterwards. Collaborator failures return before any store
// write, leaving the turn uncommitted.
func (s *Service) advance(ctx context.Context, sess *models.Session, now time.Time) (*TurnResult, error) {
	result := &TurnResult{
		SessionID:         sess.ID,
		ProducerID:        sess.ProducerID,
		CollectedFields:   sess.CollectedFields(),
		AttemptsRemaining: s.cfg.MaxAttempts,
	}

	next := s.registry.NextRequiredField(sess.Collected())
	if next != nil {
		nextPrompt, err := s.prompter.PromptFor(ctx, *next, sess.Collected(), 0)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "prompt generation unavailable")
		}
		sess.CurrentField = next.Name
		result.Status = sess.Status
		result.CurrentField = next.Name
		result.Prompt = &nextPrompt
		return result, nil
	}

	assessment := s.scorer.Assess(sess.Collected(), sess.Issues)
	result.Assessment = &assessment

	if assessment.RiskScore >= s.cfg.ReviewThreshold {
		req, err := s.scheduler.Schedule(ctx, verificationservice.ScheduleParams{
			ProducerID:   sess.ProducerID,
			SessionID:    sess.ID,
			RiskScore:    assessment.RiskScore,
			DataSnapshot: sess.Collected(),
		})
		if err != nil {
			return nil, err
		}
		sess.ApplyPendingVerification(assessment.RiskScore, now)
		result.Verification = req
	} else {
		sess.ApplyCompleted(assessment.RiskScore, now)
	}
	result.Status = sess.Status
	return result, nil
}

// withdrawVerification compensates a failed persist: the turn scheduled
// a verification, but the pending_verification state never committed,
// so the retried turn would enqueue a second request. Best effort; a
// failed cancel leaves an entry the verifier dequeues against a session
// that never reached pending_verification.
func (s *Service) withdrawVerification(ctx context.Context, result *TurnResult) {
	if result == nil || result.Verification == nil {
		return
	}
	if err := s.scheduler.Cancel(ctx, result.Verification.ID); err != nil {
		s.logger.WarnContext(ctx, "failed to withdraw verification after store failure",
			"verification_id", result.Verification.ID.String(), "error", err)
	}
}

// finishTurnBookkeeping emits the completion-side metrics and audit
// events once the turn has been persisted.
func (s *Service) finishTurnBookkeeping(ctx context.Context, sess *models.Session, result *TurnResult) {
	if result.Assessment == nil {
		return
	}
	s.metrics.RiskScores.Observe(result.Assessment.RiskScore)

	if sess.Status == models.StatusCompleted {
		s.metrics.SessionsCompleted.Inc()
		_ = s.audit.Emit(ctx, audit.Event{
			SessionID:  sess.ID,
			ProducerID: sess.ProducerID,
			Action:     audit.EventSessionCompleted,
			Detail:     result.Assessment.Explanation,
			RiskScore:  result.Assessment.RiskScore,
			RequestID:  requestcontext.RequestID(ctx),
			ClientIP:   requestcontext.ClientIP(ctx),
			UserAgent:  requestcontext.UserAgent(ctx),
		})
	}
	s.logger.InfoContext(ctx, "collection finished",
		"session_id", sess.ID.String(),
		"status", sess.Status,
		"risk_score", result.Assessment.RiskScore,
	)
}

// crossCheck records the GST/state consistency issue at most once.
func (s *Service) crossCheck(sess *models.Session) {
	gst, _ := sess.Get(registry.FieldGST)
	state, _ := sess.Get(registry.FieldState)
	issue := validate.CrossCheckGSTState(gst, state)
	if issue == nil {
		return
	}
	for _, existing := range sess.Issues {
		if existing.IssueType == models.IssueCrossFieldMismatch && existing.Field == issue.Field {
			return
		}
	}
	sess.RecordIssue(*issue)
}

func (s *Service) load(ctx context.Context, sessionID id.SessionID) (*models.Session, error) {
	sess, err := s.store.FindByID(ctx, sessionID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "session not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "session store unavailable")
	}
	return sess, nil
}

func (s *Service) storeErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "session not found")
	}
	return dErrors.Wrap(err, dErrors.CodeUnavailable, "session store unavailable")
}
