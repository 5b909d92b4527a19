// Package handler exposes the assessment engine over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"migratio/internal/assessment/models"
	"migratio/internal/assessment/service"
	id "migratio/pkg/domain"
	dErrors "migratio/pkg/domain-errors"
	"migratio/pkg/platform/httputil"
	"migratio/pkg/requestcontext"
)

// Service is the engine surface the handler needs.
type Service interface {
	StartSession(ctx context.Context, userID id.UserID) (*models.StartResult, error)
	SubmitAnswer(ctx context.Context, req service.SubmitAnswerRequest) (*models.SubmitResult, error)
}

// Handler wires assessment endpoints to the engine.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts assessment endpoints on the router. Callers are expected to
// run them behind the auth middleware.
func (h *Handler) Register(r chi.Router) {
	r.Post("/assessment/sessions", h.HandleStartSession)
	r.Post("/assessment/sessions/{sessionID}/answers", h.HandleSubmitAnswer)
}

// HandleStartSession handles POST /assessment/sessions.
func (h *Handler) HandleStartSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	result, err := h.service.StartSession(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to start assessment session",
			"request_id", requestID,
			"user_id", userID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "assessment session started",
		"request_id", requestID,
		"user_id", userID.String(),
		"session_id", result.Session.ID.String(),
		"resumed", result.Resumed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	status := http.StatusCreated
	if result.Resumed || result.IsComplete {
		status = http.StatusOK
	}
	httputil.WriteJSON(w, status, FromStartResult(result))
}

// HandleSubmitAnswer handles POST /assessment/sessions/{sessionID}/answers.
func (h *Handler) HandleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	sessionID, err := id.ParseSessionID(chi.URLParam(r, "sessionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[SubmitAnswerRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}

	result, err := h.service.SubmitAnswer(ctx, service.SubmitAnswerRequest{
		UserID:     userID,
		SessionID:  sessionID,
		QuestionID: req.parsedQuestionID,
		Answer:     req.Answer,
	})
	if err != nil {
		level := slog.LevelError
		if code := dErrors.CodeOf(err); code != dErrors.CodeInternal && code != dErrors.CodeTimeout {
			level = slog.LevelWarn
		}
		h.logger.Log(ctx, level, "failed to submit answer",
			"request_id", requestID,
			"user_id", userID.String(),
			"session_id", sessionID.String(),
			"question_id", req.QuestionID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "answer submitted",
		"request_id", requestID,
		"user_id", userID.String(),
		"session_id", sessionID.String(),
		"question_id", req.QuestionID,
		"complete", result.IsComplete,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromSubmitResult(result))
}
