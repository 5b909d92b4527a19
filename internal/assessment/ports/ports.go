// Package ports declares the collaborators the assessment engine depends on.
// The engine never reaches a database, broker or remote service except
// through these interfaces.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"migratio/internal/assessment/models"
	id "migratio/pkg/domain"
)

// Catalog is the read view of active questions.
type Catalog interface {
	// GetQuestion returns an active question or sentinel.ErrNotFound.
	GetQuestion(ctx context.Context, qid id.QuestionID) (*models.Question, error)
	// InitialQuestionIDs returns up to limit active ids in catalog order.
	InitialQuestionIDs(ctx context.Context, limit int) ([]id.QuestionID, error)
	// TotalActiveCount may be served from a bounded-staleness cache.
	TotalActiveCount(ctx context.Context) (int, error)
}

// SessionRepository persists sessions with optimistic concurrency.
type SessionRepository interface {
	// Create returns sentinel.ErrConflict if the user has an in-progress session.
	Create(ctx context.Context, session *models.Session) error
	FindActiveByUser(ctx context.Context, userID id.UserID) (*models.Session, error)
	// FindByIDForUser only returns in-progress sessions owned by userID.
	FindByIDForUser(ctx context.Context, sessionID id.SessionID, userID id.UserID) (*models.Session, error)
	// Save returns sentinel.ErrConflict when session.Version is stale and
	// increments it on success.
	Save(ctx context.Context, session *models.Session) error
}

type ProfileService interface {
	GetProfile(ctx context.Context, userID id.UserID) (*models.Profile, error)
	UpdateProfile(ctx context.Context, userID id.UserID, qid id.QuestionID, answer any) error
	UpdateFromNlp(ctx context.Context, userID id.UserID, qid id.QuestionID, result models.NlpResult) error
	UpdatePreliminaryScores(ctx context.Context, userID id.UserID, scores models.PreliminaryScores) error
}

type RecommendationService interface {
	PreliminaryScores(ctx context.Context, profile *models.Profile) (models.PreliminaryScores, error)
}

type NlpService interface {
	AnalyzeText(ctx context.Context, text string, contextID id.QuestionID) (models.NlpResult, error)
}

// CompletionHook produces recommendations when a session completes.
type CompletionHook interface {
	Recommendations(ctx context.Context, session *models.Session, profile *models.Profile) ([]models.Recommendation, error)
}

// EventEmitter hands enrichment events to background processing. Emit must
// not block on the work itself.
type EventEmitter interface {
	Emit(ctx context.Context, event models.Event) error
}
