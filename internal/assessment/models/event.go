package models

import (
	"time"

	"github.com/google/uuid"

	id "migratio/pkg/domain"
)

// EventKind names a background enrichment task.
type EventKind string

const (
	// EventAnswerRecorded asks the profile service to store an answer.
	EventAnswerRecorded EventKind = "answer_recorded"
	// EventNlpAnalysisRequested asks for free-text analysis of an answer.
	EventNlpAnalysisRequested EventKind = "nlp_analysis_requested"
	// EventPreliminaryScoresComputed carries scores to store on the profile.
	EventPreliminaryScoresComputed EventKind = "preliminary_scores_computed"
)

func (k EventKind) IsValid() bool {
	switch k {
	case EventAnswerRecorded, EventNlpAnalysisRequested, EventPreliminaryScoresComputed:
		return true
	}
	return false
}

// Event is a fire-and-forget enrichment request raised after a successful
// answer submission. Only the fields relevant to Kind are set.
type Event struct {
	ID         string            `json:"id"`
	Kind       EventKind         `json:"kind"`
	UserID     id.UserID         `json:"user_id"`
	SessionID  id.SessionID      `json:"session_id"`
	QuestionID id.QuestionID     `json:"question_id,omitempty"`
	Answer     any               `json:"answer,omitempty"`
	Text       string            `json:"text,omitempty"`
	Scores     PreliminaryScores `json:"scores,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// NewEvent stamps a fresh event id.
func NewEvent(kind EventKind, userID id.UserID, sessionID id.SessionID, now time.Time) Event {
	return Event{
		ID:         uuid.NewString(),
		Kind:       kind,
		UserID:     userID,
		SessionID:  sessionID,
		OccurredAt: now,
	}
}
