package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"migratio/internal/assessment/models"
	id "migratio/pkg/domain"
	dErrors "migratio/pkg/domain-errors"
	"migratio/pkg/platform/sentinel"
)

// StartSession resumes the user's in-progress session or creates a new one,
// and returns the question to ask.
//
// On resume the question served last (if unanswered) goes back to the head
// of the remaining list, the list is reprioritized against the latest profile
// and scores, and the new order is persisted. When no usable question is
// left the result reports IsComplete with no question; the session stays
// in progress, since only SubmitAnswer completes a session. A user facing an
// empty catalog gets no session stored at all.
func (s *Service) StartSession(ctx context.Context, userID id.UserID) (*models.StartResult, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "user id is required")
	}

	ctx, span := s.tracer.Start(ctx, "assessment.StartSession")
	defer span.End()
	span.SetAttributes(attribute.String("user_id", userID.String()))
	start := time.Now()
	defer func() { s.metrics.ObserveOperation("start_session", time.Since(start)) }()

	var result *models.StartResult
	err := s.locker.RunForUser(ctx, userID, func(ctx context.Context) error {
		existing, err := s.sessions.FindActiveByUser(ctx, userID)
		switch {
		case err == nil:
			result, err = s.resume(ctx, existing)
		case errors.Is(err, sentinel.ErrNotFound):
			result, err = s.create(ctx, userID)
		default:
			err = dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
		}
		return err
	})
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("session_id", result.Session.ID.String()),
		attribute.Bool("resumed", result.Resumed),
		attribute.Bool("complete", result.IsComplete),
	)
	if result.Resumed || !result.IsComplete {
		s.metrics.IncrementSessionStarted(result.Resumed)
	}
	return result, nil
}

func (s *Service) create(ctx context.Context, userID id.UserID) (*models.StartResult, error) {
	now := s.now()
	initial, err := s.catalog.InitialQuestionIDs(ctx, s.initialQuestions)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load initial questions")
	}

	session := models.NewSession(userID, s.quizVersion, initial, now)
	_, scores := s.preliminaryScores(ctx, session)
	if err := s.reprioritize(ctx, session, map[id.QuestionID]any{}, scores); err != nil {
		return nil, err
	}
	current, err := s.popNextQuestion(ctx, session)
	if err != nil {
		return nil, err
	}
	s.updateProgress(ctx, session)
	if current == nil {
		s.logger.InfoContext(ctx, "no active questions, assessment not started",
			"user_id", userID.String(),
		)
		return &models.StartResult{Session: session.Summary(), IsComplete: true}, nil
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Wrap(err, dErrors.CodeConflict, "an assessment is already in progress, retry")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create session")
	}

	s.logger.InfoContext(ctx, "assessment session created",
		"user_id", userID.String(),
		"session_id", session.ID.String(),
		"question_id", session.CurrentQuestionID.String(),
	)
	return &models.StartResult{
		Session:         session.Summary(),
		CurrentQuestion: current,
	}, nil
}

func (s *Service) resume(ctx context.Context, session *models.Session) (*models.StartResult, error) {
	now := s.now()
	session.RequeueCurrent()

	_, scores := s.preliminaryScores(ctx, session)
	if err := s.reprioritize(ctx, session, session.Answers(), scores); err != nil {
		return nil, err
	}
	current, err := s.popNextQuestion(ctx, session)
	if err != nil {
		return nil, err
	}
	s.updateProgress(ctx, session)
	session.UpdatedAt = now

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, saveError(err)
	}

	s.logger.InfoContext(ctx, "assessment session resumed",
		"user_id", session.UserID.String(),
		"session_id", session.ID.String(),
		"question_id", session.CurrentQuestionID.String(),
	)
	return &models.StartResult{
		Session:         session.Summary(),
		CurrentQuestion: current,
		IsComplete:      current == nil,
		Resumed:         true,
	}, nil
}
