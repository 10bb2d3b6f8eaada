// Package handler exposes verification scheduling over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"onboard/internal/verification/models"
	"onboard/internal/verification/service"
	id "onboard/pkg/domain"
	dErrors "onboard/pkg/domain-errors"
	"onboard/pkg/platform/httputil"
	"onboard/pkg/requestcontext"
)

// Service is the scheduling surface the handler needs.
type Service interface {
	Schedule(ctx context.Context, params service.ScheduleParams) (*models.VerificationRequest, error)
	Dequeue(ctx context.Context) (*models.VerificationRequest, error)
	PendingQueue(ctx context.Context) ([]*models.VerificationRequest, error)
}

type Handler struct {
	svc    Service
	logger *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the producer-facing scheduling route.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/onboarding/schedule-verification", h.handleSchedule)
}

// RegisterAdmin mounts the verifier-facing queue routes.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/verification/queue", h.handleQueue)
	r.Post("/admin/verification/dequeue", h.handleDequeue)
}

type scheduleRequest struct {
	ProducerID       string            `json:"producer_id"`
	SessionID        string            `json:"session_id,omitempty"`
	RiskScore        float64           `json:"risk_score"`
	ProducerData     map[string]string `json:"producer_data,omitempty"`
	PriorityOverride string            `json:"priority_override,omitempty"`
}

func (h *Handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	producerID, err := id.ParseProducerID(req.ProducerID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var sessionID id.SessionID
	if req.SessionID != "" {
		if sessionID, err = id.ParseSessionID(req.SessionID); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}

	verification, err := h.svc.Schedule(ctx, service.ScheduleParams{
		ProducerID:       producerID,
		SessionID:        sessionID,
		RiskScore:        req.RiskScore,
		DataSnapshot:     req.ProducerData,
		PriorityOverride: models.Priority(req.PriorityOverride),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "schedule failed",
			"request_id", requestcontext.RequestID(ctx), "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, verification)
}

func (h *Handler) handleQueue(w http.ResponseWriter, r *http.Request) {
	pending, err := h.svc.PendingQueue(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"queue": pending,
		"depth": len(pending),
	})
}

func (h *Handler) handleDequeue(w http.ResponseWriter, r *http.Request) {
	req, err := h.svc.Dequeue(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, req)
}
