package models

import (
	"time"

	id "migratio/pkg/domain"
)

// SessionSummary is the caller-facing view of a session.
type SessionSummary struct {
	ID                   id.SessionID  `json:"id"`
	Status               SessionStatus `json:"status"`
	CompletionPercentage int           `json:"completion_percentage"`
	QuizVersion          string        `json:"quiz_version"`
	StartedAt            time.Time     `json:"started_at"`
}

func (s *Session) Summary() SessionSummary {
	return SessionSummary{
		ID:                   s.ID,
		Status:               s.Status,
		CompletionPercentage: s.CompletionPercentage,
		QuizVersion:          s.QuizVersion,
		StartedAt:            s.StartedAt,
	}
}

// StartResult is returned by StartSession.
type StartResult struct {
	Session         SessionSummary
	CurrentQuestion *Question
	IsComplete      bool
	Resumed         bool
}

// SubmitResult is returned by SubmitAnswer.
type SubmitResult struct {
	NextQuestion    *Question
	Progress        int
	IsComplete      bool
	Recommendations []Recommendation
}
