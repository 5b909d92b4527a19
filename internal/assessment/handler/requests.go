package handler

import (
	"time"

	"migratio/internal/assessment/models"
	id "migratio/pkg/domain"
	dErrors "migratio/pkg/domain-errors"
)

// SubmitAnswerRequest is the body of POST /assessment/sessions/{sessionID}/answers.
type SubmitAnswerRequest struct {
	QuestionID string `json:"question_id"`
	Answer     any    `json:"answer"`

	parsedQuestionID id.QuestionID
}

// Validate parses the question id and requires an answer.
func (r *SubmitAnswerRequest) Validate() error {
	qid, err := id.ParseQuestionID(r.QuestionID)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "question_id is invalid")
	}
	if r.Answer == nil {
		return dErrors.New(dErrors.CodeValidation, "answer is required")
	}
	r.parsedQuestionID = qid
	return nil
}

type SessionResponse struct {
	ID                   string    `json:"id"`
	Status               string    `json:"status"`
	CompletionPercentage int       `json:"completion_percentage"`
	QuizVersion          string    `json:"quiz_version"`
	StartedAt            time.Time `json:"started_at"`
}

// QuestionResponse is the caller-facing view of a question. Rules and
// relevance factors stay server side.
type QuestionResponse struct {
	ID          string            `json:"id"`
	Text        string            `json:"text"`
	Label       string            `json:"label,omitempty"`
	HelpText    string            `json:"help_text,omitempty"`
	Type        string            `json:"type"`
	Section     string            `json:"section"`
	Options     []models.Option   `json:"options,omitempty"`
	Validation  models.Validation `json:"validation"`
	RequiresNlp bool              `json:"requires_nlp"`
}

type StartSessionResponse struct {
	Session         SessionResponse   `json:"session"`
	CurrentQuestion *QuestionResponse `json:"current_question"`
	IsComplete      bool              `json:"is_complete"`
	Resumed         bool              `json:"resumed"`
}

type SubmitAnswerResponse struct {
	NextQuestion    *QuestionResponse       `json:"next_question"`
	Progress        int                     `json:"progress"`
	IsComplete      bool                    `json:"is_complete"`
	Recommendations []models.Recommendation `json:"recommendations"`
}

func toQuestionResponse(q *models.Question) *QuestionResponse {
	if q == nil {
		return nil
	}
	return &QuestionResponse{
		ID:          q.ID.String(),
		Text:        q.Text,
		Label:       q.Label,
		HelpText:    q.HelpText,
		Type:        string(q.Type),
		Section:     q.Section,
		Options:     q.Options,
		Validation:  q.Validation,
		RequiresNlp: q.RequiresNlp,
	}
}

func FromStartResult(result *models.StartResult) StartSessionResponse {
	return StartSessionResponse{
		Session: SessionResponse{
			ID:                   result.Session.ID.String(),
			Status:               string(result.Session.Status),
			CompletionPercentage: result.Session.CompletionPercentage,
			QuizVersion:          result.Session.QuizVersion,
			StartedAt:            result.Session.StartedAt,
		},
		CurrentQuestion: toQuestionResponse(result.CurrentQuestion),
		IsComplete:      result.IsComplete,
		Resumed:         result.Resumed,
	}
}

func FromSubmitResult(result *models.SubmitResult) SubmitAnswerResponse {
	return SubmitAnswerResponse{
		NextQuestion:    toQuestionResponse(result.NextQuestion),
		Progress:        result.Progress,
		IsComplete:      result.IsComplete,
		Recommendations: result.Recommendations,
	}
}
