package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"migratio/internal/assessment/models"
	"migratio/internal/assessment/rules"
	id "migratio/pkg/domain"
	dErrors "migratio/pkg/domain-errors"
	"migratio/pkg/platform/sentinel"
)

// Answer submission outcomes counted by metrics.AnswersSubmitted.
const (
	outcomeOK       = "ok"
	outcomeConflict = "conflict"
	outcomeNotFound = "not_found"
	outcomeInvalid  = "invalid"
	outcomeError    = "error"
)

// SubmitAnswerRequest carries one answer for an in-progress session.
type SubmitAnswerRequest struct {
	UserID     id.UserID
	SessionID  id.SessionID
	QuestionID id.QuestionID
	Answer     any
}

func (r SubmitAnswerRequest) Validate() error {
	switch {
	case r.UserID.IsNil():
		return dErrors.New(dErrors.CodeBadRequest, "user id is required")
	case r.SessionID.IsNil():
		return dErrors.New(dErrors.CodeBadRequest, "session id is required")
	case r.QuestionID == "":
		return dErrors.New(dErrors.CodeBadRequest, "question id is required")
	}
	return nil
}

// submission is what a committed transaction hands to post-commit work.
type submission struct {
	session  *models.Session
	question *models.Question
	profile  *models.Profile
	scores   models.PreliminaryScores
	result   *models.SubmitResult
}

// SubmitAnswer records an answer, applies the answered question's rules,
// and pops the next question. Enrichment events are emitted only after the
// session has been saved; their failures never change the result.
func (s *Service) SubmitAnswer(ctx context.Context, req SubmitAnswerRequest) (*models.SubmitResult, error) {
	if err := req.Validate(); err != nil {
		s.metrics.IncrementAnswer(outcomeInvalid)
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "assessment.SubmitAnswer")
	defer span.End()
	span.SetAttributes(
		attribute.String("user_id", req.UserID.String()),
		attribute.String("session_id", req.SessionID.String()),
		attribute.String("question_id", req.QuestionID.String()),
	)
	start := time.Now()
	defer func() { s.metrics.ObserveOperation("submit_answer", time.Since(start)) }()

	var sub *submission
	err := s.locker.RunForUser(ctx, req.UserID, func(ctx context.Context) error {
		var err error
		sub, err = s.submit(ctx, req)
		return err
	})
	if err != nil {
		s.metrics.IncrementAnswer(submitOutcome(err))
		recordSpanError(span, err)
		return nil, err
	}
	s.metrics.IncrementAnswer(outcomeOK)
	span.SetAttributes(attribute.Bool("complete", sub.result.IsComplete))

	s.emitEnrichment(ctx, req, sub)
	if sub.result.IsComplete {
		s.metrics.IncrementSessionCompleted()
		sub.result.Recommendations = s.recommendations(ctx, sub)
	}
	return sub.result, nil
}

func (s *Service) submit(ctx context.Context, req SubmitAnswerRequest) (*submission, error) {
	now := s.now()
	session, err := s.sessions.FindByIDForUser(ctx, req.SessionID, req.UserID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "active session not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
	}
	question, err := s.catalog.GetQuestion(ctx, req.QuestionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeValidation, fmt.Sprintf("question %s is not an active question", req.QuestionID))
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load question")
	}

	session.RecordResponse(req.QuestionID, req.Answer, now)
	session.RemoveRemaining(req.QuestionID)
	// A question served but left unanswered in favour of another one is
	// offered again next.
	session.RequeueCurrent()

	answers := session.Answers()
	profile, scores := s.preliminaryScores(ctx, session)
	outcome, err := s.evaluator.Apply(ctx, session, question.Rules, rules.Env{
		Answer:  req.Answer,
		Answers: answers,
		Scores:  scores,
	}, s.catalog)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to apply question rules")
	}
	if outcome.Changed() {
		if err := s.reprioritize(ctx, session, answers, scores); err != nil {
			return nil, err
		}
	}

	next, err := s.popNextQuestion(ctx, session)
	if err != nil {
		return nil, err
	}
	s.updateProgress(ctx, session)
	isComplete := next == nil && len(session.RemainingQuestionIDs) == 0
	if isComplete {
		if err := session.Complete(now); err != nil {
			return nil, err
		}
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, saveError(err)
	}

	s.logger.InfoContext(ctx, "answer recorded",
		"user_id", req.UserID.String(),
		"session_id", session.ID.String(),
		"question_id", req.QuestionID.String(),
		"added", len(outcome.Added),
		"skipped", len(outcome.Skipped),
		"progress", session.CompletionPercentage,
		"complete", isComplete,
	)
	return &submission{
		session:  session,
		question: question,
		profile:  profile,
		scores:   scores,
		result: &models.SubmitResult{
			NextQuestion: next,
			Progress:     session.CompletionPercentage,
			IsComplete:   isComplete,
		},
	}, nil
}

// emitEnrichment hands the background work for a committed answer to the
// emitter. Rejected events are logged and dropped.
func (s *Service) emitEnrichment(ctx context.Context, req SubmitAnswerRequest, sub *submission) {
	if s.events == nil {
		return
	}
	now := s.now()

	recorded := models.NewEvent(models.EventAnswerRecorded, req.UserID, req.SessionID, now)
	recorded.QuestionID = req.QuestionID
	recorded.Answer = req.Answer
	events := []models.Event{recorded}

	if sub.question.RequiresNlp {
		nlp := models.NewEvent(models.EventNlpAnalysisRequested, req.UserID, req.SessionID, now)
		nlp.QuestionID = req.QuestionID
		nlp.Text = answerText(req.Answer)
		events = append(events, nlp)
	}
	if sub.scores != nil {
		scored := models.NewEvent(models.EventPreliminaryScoresComputed, req.UserID, req.SessionID, now)
		scored.Scores = sub.scores
		events = append(events, scored)
	}

	for _, event := range events {
		if err := s.events.Emit(ctx, event); err != nil {
			s.logger.WarnContext(ctx, "failed to emit enrichment event",
				"task", string(event.Kind),
				"event_id", event.ID,
				"user_id", req.UserID.String(),
				"session_id", req.SessionID.String(),
				"error", err,
			)
		}
	}
}

// recommendations runs the completion hook. Failures leave the result
// without recommendations.
func (s *Service) recommendations(ctx context.Context, sub *submission) []models.Recommendation {
	if s.completion == nil {
		return nil
	}
	recs, err := s.completion.Recommendations(ctx, sub.session, sub.profile)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to generate recommendations",
			"user_id", sub.session.UserID.String(),
			"session_id", sub.session.ID.String(),
			"error", err,
		)
		return nil
	}
	return recs
}

func answerText(answer any) string {
	switch v := answer.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func submitOutcome(err error) string {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeConflict:
		return outcomeConflict
	case dErrors.CodeNotFound:
		return outcomeNotFound
	case dErrors.CodeValidation, dErrors.CodeBadRequest:
		return outcomeInvalid
	default:
		return outcomeError
	}
}
