// Package enrichment runs the best-effort profile enrichment that follows an
// answer submission. Events are produced after the session is saved and are
// processed either in process (Dispatcher) or by a worker reading them from
// Kafka (Consumer). Failures never reach the caller of the engine.
package enrichment

import (
	"context"
	"fmt"
	"time"

	"migratio/internal/assessment/models"
	"migratio/internal/assessment/ports"
)

const defaultTaskTimeout = 10 * time.Second

// Processor executes one event.
type Processor interface {
	Handle(ctx context.Context, event models.Event) error
}

// Handler applies events to the profile and NLP collaborators. Each event is
// bounded by the task timeout.
type Handler struct {
	profiles ports.ProfileService
	nlp      ports.NlpService
	timeout  time.Duration
}

func NewHandler(profiles ports.ProfileService, nlp ports.NlpService, timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = defaultTaskTimeout
	}
	return &Handler{profiles: profiles, nlp: nlp, timeout: timeout}
}

func (h *Handler) Handle(ctx context.Context, event models.Event) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	switch event.Kind {
	case models.EventAnswerRecorded:
		if err := h.profiles.UpdateProfile(ctx, event.UserID, event.QuestionID, event.Answer); err != nil {
			return fmt.Errorf("update profile: %w", err)
		}
	case models.EventNlpAnalysisRequested:
		result, err := h.nlp.AnalyzeText(ctx, event.Text, event.QuestionID)
		if err != nil {
			return fmt.Errorf("analyze text: %w", err)
		}
		if err := h.profiles.UpdateFromNlp(ctx, event.UserID, event.QuestionID, result); err != nil {
			return fmt.Errorf("update profile from nlp: %w", err)
		}
	case models.EventPreliminaryScoresComputed:
		if err := h.profiles.UpdatePreliminaryScores(ctx, event.UserID, event.Scores); err != nil {
			return fmt.Errorf("update preliminary scores: %w", err)
		}
	default:
		return fmt.Errorf("unknown event kind %q", event.Kind)
	}
	return nil
}
