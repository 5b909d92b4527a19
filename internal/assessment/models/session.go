package models

import (
	"math"
	"slices"
	"time"

	id "migratio/pkg/domain"
	dErrors "migratio/pkg/domain-errors"
)

// SessionStatus tracks where a session is in its lifecycle.
type SessionStatus string

const (
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusCompleted  SessionStatus = "completed"
	// SessionStatusAbandoned is set by external cleanup only.
	SessionStatusAbandoned SessionStatus = "abandoned"
)

func (s SessionStatus) IsValid() bool {
	switch s {
	case SessionStatusInProgress, SessionStatusCompleted, SessionStatusAbandoned:
		return true
	}
	return false
}

// Response is one recorded answer.
type Response struct {
	QuestionID id.QuestionID `json:"question_id"`
	Value      any           `json:"value"`
	AnsweredAt time.Time     `json:"answered_at"`
}

// Session is one user's run through the adaptive question set.
//
// A question id appears in at most one of Responses, RemainingQuestionIDs,
// SkippedQuestionIDs. CurrentQuestionID is the question last handed to the
// caller and not yet answered; it is in none of the three.
type Session struct {
	ID                   id.SessionID    `json:"id"`
	UserID               id.UserID       `json:"user_id"`
	Status               SessionStatus   `json:"status"`
	Responses            []Response      `json:"responses"`
	RemainingQuestionIDs []id.QuestionID `json:"remaining_question_ids"`
	SkippedQuestionIDs   []id.QuestionID `json:"skipped_question_ids"`
	LastQuestionID       id.QuestionID   `json:"last_question_id,omitempty"`
	CurrentQuestionID    id.QuestionID   `json:"current_question_id,omitempty"`
	CompletionPercentage int             `json:"completion_percentage"`
	QuizVersion          string          `json:"quiz_version"`
	Version              int64           `json:"version"`
	StartedAt            time.Time       `json:"started_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
	CompletedAt          *time.Time      `json:"completed_at,omitempty"`
}

// NewSession creates an in-progress session with an empty history.
func NewSession(userID id.UserID, quizVersion string, remaining []id.QuestionID, now time.Time) *Session {
	return &Session{
		ID:                   id.NewSessionID(),
		UserID:               userID,
		Status:               SessionStatusInProgress,
		Responses:            []Response{},
		RemainingQuestionIDs: slices.Clone(remaining),
		SkippedQuestionIDs:   []id.QuestionID{},
		QuizVersion:          quizVersion,
		StartedAt:            now,
		UpdatedAt:            now,
	}
}

func (s *Session) IsInProgress() bool { return s.Status == SessionStatusInProgress }

func (s *Session) HasAnswered(qid id.QuestionID) bool {
	return slices.ContainsFunc(s.Responses, func(r Response) bool { return r.QuestionID == qid })
}

func (s *Session) IsSkipped(qid id.QuestionID) bool {
	return slices.Contains(s.SkippedQuestionIDs, qid)
}

func (s *Session) IsRemaining(qid id.QuestionID) bool {
	return slices.Contains(s.RemainingQuestionIDs, qid)
}

// RecordResponse upserts the answer for qid and stamps LastQuestionID. A
// skipped question that gets answered leaves the skipped set.
func (s *Session) RecordResponse(qid id.QuestionID, value any, now time.Time) {
	idx := slices.IndexFunc(s.Responses, func(r Response) bool { return r.QuestionID == qid })
	if idx >= 0 {
		s.Responses[idx].Value = value
		s.Responses[idx].AnsweredAt = now
	} else {
		s.Responses = append(s.Responses, Response{QuestionID: qid, Value: value, AnsweredAt: now})
	}
	s.SkippedQuestionIDs = slices.DeleteFunc(s.SkippedQuestionIDs, func(q id.QuestionID) bool { return q == qid })
	s.LastQuestionID = qid
	if s.CurrentQuestionID == qid {
		s.CurrentQuestionID = ""
	}
	s.UpdatedAt = now
}

// RequeueCurrent puts a served but unanswered question back at the head of
// the remaining list. Returns false when there is nothing to requeue.
func (s *Session) RequeueCurrent() bool {
	qid := s.CurrentQuestionID
	if qid == "" {
		return false
	}
	s.CurrentQuestionID = ""
	if s.HasAnswered(qid) || s.IsSkipped(qid) || s.IsRemaining(qid) {
		return false
	}
	s.RemainingQuestionIDs = append([]id.QuestionID{qid}, s.RemainingQuestionIDs...)
	return true
}

// RemoveRemaining drops qid from the remaining list.
func (s *Session) RemoveRemaining(qid id.QuestionID) bool {
	before := len(s.RemainingQuestionIDs)
	s.RemainingQuestionIDs = slices.DeleteFunc(s.RemainingQuestionIDs, func(q id.QuestionID) bool { return q == qid })
	return len(s.RemainingQuestionIDs) != before
}

// PopNext consumes the head of the remaining list and marks it as current.
func (s *Session) PopNext() (id.QuestionID, bool) {
	if len(s.RemainingQuestionIDs) == 0 {
		return "", false
	}
	next := s.RemainingQuestionIDs[0]
	s.RemainingQuestionIDs = slices.Delete(s.RemainingQuestionIDs, 0, 1)
	s.CurrentQuestionID = next
	return next, true
}

// Answers indexes the recorded responses by question id.
func (s *Session) Answers() map[id.QuestionID]any {
	answers := make(map[id.QuestionID]any, len(s.Responses))
	for _, r := range s.Responses {
		answers[r.QuestionID] = r.Value
	}
	return answers
}

// UpdateProgress recomputes CompletionPercentage against totalActive.
func (s *Session) UpdateProgress(totalActive int) {
	s.CompletionPercentage = CompletionPercentage(len(s.Responses), totalActive)
}

// Complete transitions an in-progress session to completed.
func (s *Session) Complete(now time.Time) error {
	if s.Status != SessionStatusInProgress {
		return dErrors.New(dErrors.CodeInvariantViolation, "only in-progress sessions can be completed")
	}
	s.Status = SessionStatusCompleted
	s.CurrentQuestionID = ""
	s.CompletedAt = &now
	s.UpdatedAt = now
	return nil
}

// Clone returns a deep copy safe to mutate independently.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Responses = slices.Clone(s.Responses)
	c.RemainingQuestionIDs = slices.Clone(s.RemainingQuestionIDs)
	c.SkippedQuestionIDs = slices.Clone(s.SkippedQuestionIDs)
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

// CompletionPercentage is round(100*answered/total) capped at 100. An empty
// catalog counts as complete.
func CompletionPercentage(answered, total int) int {
	if total <= 0 {
		return 100
	}
	pct := int(math.Round(float64(answered) / float64(total) * 100))
	return min(pct, 100)
}
