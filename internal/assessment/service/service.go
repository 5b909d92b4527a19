// Package service implements the session orchestrator: it starts or resumes
// a user's assessment and processes submitted answers, deciding which
// question comes next.
package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"maps"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"migratio/internal/assessment/metrics"
	"migratio/internal/assessment/models"
	"migratio/internal/assessment/ports"
	"migratio/internal/assessment/relevance"
	"migratio/internal/assessment/rules"
	id "migratio/pkg/domain"
	dErrors "migratio/pkg/domain-errors"
	"migratio/pkg/platform/sentinel"
)

const (
	defaultInitialQuestions = 2
	defaultQuizVersion      = "v2.0"
	tracerName              = "migratio/internal/assessment/service"
)

// Service orchestrates assessment sessions.
type Service struct {
	catalog     ports.Catalog
	sessions    ports.SessionRepository
	profiles    ports.ProfileService
	recommender ports.RecommendationService
	events      ports.EventEmitter
	completion  ports.CompletionHook

	evaluator *rules.Evaluator
	scorer    *relevance.Scorer
	locker    *userLocker

	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
	now     func() time.Time

	initialQuestions   int
	quizVersion        string
	scoringConcurrency int
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithCompletionHook sets the collaborator that fills recommendations when a
// session completes. Without one, completed results carry none.
func WithCompletionHook(hook ports.CompletionHook) Option {
	return func(s *Service) {
		s.completion = hook
	}
}

// WithInitialQuestions sets how many catalog questions seed a new session.
func WithInitialQuestions(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.initialQuestions = n
		}
	}
}

func WithQuizVersion(version string) Option {
	return func(s *Service) {
		if version != "" {
			s.quizVersion = version
		}
	}
}

// WithTxTimeout bounds each per-user transaction when the caller's context
// has no deadline.
func WithTxTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.locker.timeout = d
		}
	}
}

func WithScoringConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.scoringConcurrency = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Service.
func New(
	catalog ports.Catalog,
	sessions ports.SessionRepository,
	profiles ports.ProfileService,
	recommender ports.RecommendationService,
	events ports.EventEmitter,
	opts ...Option,
) *Service {
	s := &Service{
		catalog:          catalog,
		sessions:         sessions,
		profiles:         profiles,
		recommender:      recommender,
		events:           events,
		locker:           &userLocker{},
		logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer:           otel.Tracer(tracerName),
		now:              time.Now,
		initialQuestions: defaultInitialQuestions,
		quizVersion:      defaultQuizVersion,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.evaluator = rules.NewEvaluator(rules.WithLogger(s.logger), rules.WithMetrics(s.metrics))
	scorerOpts := []relevance.Option{relevance.WithLogger(s.logger), relevance.WithMetrics(s.metrics)}
	if s.scoringConcurrency > 0 {
		scorerOpts = append(scorerOpts, relevance.WithConcurrency(s.scoringConcurrency))
	}
	s.scorer = relevance.NewScorer(catalog, scorerOpts...)
	return s
}

// preliminaryScores asks the recommender for fresh scores, computed from the
// stored profile with the session's answers layered on top, and returns that
// profile too. Only the recommender and the completion hook see profile
// answers; rules and relevance use the session's. Both lookups are best
// effort and a failure yields nil scores.
func (s *Service) preliminaryScores(ctx context.Context, session *models.Session) (*models.Profile, models.PreliminaryScores) {
	profile := &models.Profile{UserID: session.UserID}
	if stored, err := s.profiles.GetProfile(ctx, session.UserID); err != nil {
		s.metrics.IncrementCollaboratorFailure("profile")
		s.logger.WarnContext(ctx, "failed to load profile, continuing without it",
			"user_id", session.UserID.String(),
			"session_id", session.ID.String(),
			"error", err,
		)
	} else if stored != nil {
		profile.PreliminaryScores = stored.PreliminaryScores
		profile.NlpInsights = stored.NlpInsights
		profile.UpdatedAt = stored.UpdatedAt
		profile.Answers = maps.Clone(stored.Answers)
	}
	if profile.Answers == nil {
		profile.Answers = make(map[id.QuestionID]any, len(session.Responses))
	}
	maps.Copy(profile.Answers, session.Answers())

	scores, err := s.recommender.PreliminaryScores(ctx, profile)
	if err != nil {
		s.metrics.IncrementCollaboratorFailure("recommendation")
		s.logger.WarnContext(ctx, "failed to compute preliminary scores, continuing without them",
			"user_id", session.UserID.String(),
			"session_id", session.ID.String(),
			"error", err,
		)
		return profile, nil
	}
	return profile, scores
}

// popNextQuestion consumes the head of the remaining list, dropping ids that
// are no longer active in the catalog.
func (s *Service) popNextQuestion(ctx context.Context, session *models.Session) (*models.Question, error) {
	for {
		qid, ok := session.PopNext()
		if !ok {
			return nil, nil
		}
		q, err := s.catalog.GetQuestion(ctx, qid)
		if err == nil {
			return q, nil
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load next question")
		}
		session.CurrentQuestionID = ""
		s.metrics.IncrementRuleWarning(metrics.WarningMissingQuestion)
		s.logger.WarnContext(ctx, "queued question missing or inactive, dropping",
			"warning", "catalog_reference",
			"question_id", qid.String(),
			"session_id", session.ID.String(),
		)
	}
}

// updateProgress recomputes the completion percentage. A failed count keeps
// the previous value.
func (s *Service) updateProgress(ctx context.Context, session *models.Session) {
	total, err := s.catalog.TotalActiveCount(ctx)
	if err != nil {
		s.metrics.IncrementCollaboratorFailure("catalog_count")
		s.logger.WarnContext(ctx, "failed to count active questions, keeping previous progress",
			"session_id", session.ID.String(),
			"error", err,
		)
		return
	}
	session.UpdateProgress(total)
}

func (s *Service) reprioritize(ctx context.Context, session *models.Session, answers map[id.QuestionID]any, scores models.PreliminaryScores) error {
	ctx, span := s.tracer.Start(ctx, "assessment.reprioritize")
	defer span.End()

	ordered, err := s.scorer.Reprioritize(ctx, session.RemainingQuestionIDs, answers, scores)
	if err != nil {
		recordSpanError(span, err)
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to reprioritize questions")
	}
	session.RemainingQuestionIDs = ordered
	return nil
}

// saveError translates store failures on Save.
func saveError(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, "session was modified concurrently, retry")
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "session not found")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save session")
	}
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
