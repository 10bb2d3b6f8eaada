// Package handler exposes the onboarding engine over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"onboard/internal/onboarding/models"
	"onboard/internal/onboarding/service"
	id "onboard/pkg/domain"
	dErrors "onboard/pkg/domain-errors"
	"onboard/pkg/platform/httputil"
	"onboard/pkg/requestcontext"
)

// Service is the onboarding engine surface the handler needs.
type Service interface {
	Start(ctx context.Context, producerID id.ProducerID, initialData map[string]string) (*service.TurnResult, error)
	Continue(ctx context.Context, sessionID id.SessionID, answer string) (*service.TurnResult, error)
	Get(ctx context.Context, sessionID id.SessionID) (*models.Session, error)
	ValidateData(ctx context.Context, data map[string]string) models.RiskAssessment
	End(ctx context.Context, sessionID id.SessionID) (*models.Session, error)
	Reject(ctx context.Context, sessionID id.SessionID, reason string) (*models.Session, error)
}

// Handler serves the producer-facing onboarding endpoints plus the
// admin rejection endpoint.
type Handler struct {
	svc    Service
	logger *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the producer-facing routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/onboarding/start", h.handleStart)
	r.Post("/api/onboarding/continue/{session_id}", h.handleContinue)
	r.Get("/api/onboarding/session/{session_id}", h.handleGetSession)
	r.Get("/api/onboarding/session/{session_id}/export", h.handleExportSession)
	r.Delete("/api/onboarding/session/{session_id}", h.handleEndSession)
	r.Post("/api/onboarding/validate-data", h.handleValidateData)
}

// RegisterAdmin mounts the verifier-facing routes.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/admin/onboarding/sessions/{session_id}/reject", h.handleReject)
}

type startRequest struct {
	ProducerID  string            `json:"producer_id,omitempty"`
	InitialData map[string]string `json:"initial_data,omitempty"`
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req startRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
			return
		}
	}

	var producerID id.ProducerID
	if req.ProducerID != "" {
		var err error
		producerID, err = id.ParseProducerID(req.ProducerID)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
	}

	result, err := h.svc.Start(ctx, producerID, req.InitialData)
	if err != nil {
		h.logger.WarnContext(ctx, "start failed",
			"request_id", requestcontext.RequestID(ctx), "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, result)
}

type continueRequest struct {
	Answer string `json:"answer"`
}

func (h *Handler) handleContinue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID, err := id.ParseSessionID(chi.URLParam(r, "session_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req continueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if req.Answer == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "answer is required"))
		return
	}

	result, err := h.svc.Continue(ctx, sessionID, req.Answer)
	if err != nil {
		h.logger.WarnContext(ctx, "continue failed",
			"request_id", requestcontext.RequestID(ctx),
			"session_id", sessionID.String(),
			"error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := id.ParseSessionID(chi.URLParam(r, "session_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	sess, err := h.svc.Get(r.Context(), sessionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sess)
}

// exportResponse is the downstream-facing dump of one session: what was
// collected, how it scored, and when the export was taken.
type exportResponse struct {
	SessionID       id.SessionID             `json:"session_id"`
	ProducerID      id.ProducerID            `json:"producer_id"`
	Status          models.Status            `json:"status"`
	CollectedData   map[string]string        `json:"collected_data"`
	Issues          []models.ValidationIssue `json:"issues,omitempty"`
	RiskScore       *float64                 `json:"risk_score,omitempty"`
	ExportTimestamp string                   `json:"export_timestamp"`
}

func (h *Handler) handleExportSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID, err := id.ParseSessionID(chi.URLParam(r, "session_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	sess, err := h.svc.Get(ctx, sessionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, exportResponse{
		SessionID:       sess.ID,
		ProducerID:      sess.ProducerID,
		Status:          sess.Status,
		CollectedData:   sess.Collected(),
		Issues:          sess.Issues,
		RiskScore:       sess.RiskScore,
		ExportTimestamp: requestcontext.Now(ctx).UTC().Format(time.RFC3339),
	})
}

type endSessionResponse struct {
	Message     string        `json:"message"`
	SessionID   id.SessionID  `json:"session_id"`
	FinalStatus models.Status `json:"final_status"`
}

func (h *Handler) handleEndSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID, err := id.ParseSessionID(chi.URLParam(r, "session_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	sess, err := h.svc.End(ctx, sessionID)
	if err != nil {
		h.logger.WarnContext(ctx, "end session failed",
			"request_id", requestcontext.RequestID(ctx),
			"session_id", sessionID.String(),
			"error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, endSessionResponse{
		Message:     "session ended",
		SessionID:   sess.ID,
		FinalStatus: sess.Status,
	})
}

type validateDataRequest struct {
	Data map[string]string `json:"data"`
}

func (h *Handler) handleValidateData(w http.ResponseWriter, r *http.Request) {
	var req validateDataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if len(req.Data) == 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "data must not be empty"))
		return
	}

	assessment := h.svc.ValidateData(r.Context(), req.Data)
	httputil.WriteJSON(w, http.StatusOK, assessment)
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID, err := id.ParseSessionID(chi.URLParam(r, "session_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req rejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if req.Reason == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "reason is required"))
		return
	}

	sess, err := h.svc.Reject(ctx, sessionID, req.Reason)
	if err != nil {
		h.logger.WarnContext(ctx, "reject failed",
			"request_id", requestcontext.RequestID(ctx),
			"session_id", sessionID.String(),
			"error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sess)
}
