package relevance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"migratio/internal/assessment/metrics"
	"migratio/internal/assessment/models"
	id "migratio/pkg/domain"
	"migratio/pkg/platform/sentinel"
)

const defaultConcurrency = 8

// QuestionLookup resolves active catalog entries, returning
// sentinel.ErrNotFound for missing or inactive ids.
type QuestionLookup interface {
	GetQuestion(ctx context.Context, qid id.QuestionID) (*models.Question, error)
}

// Scorer orders remaining lists by relevance.
type Scorer struct {
	catalog     QuestionLookup
	logger      *slog.Logger
	metrics     *metrics.Metrics
	concurrency int
}

// Option configures a Scorer.
type Option func(*Scorer)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Scorer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scorer) {
		s.metrics = m
	}
}

// WithConcurrency bounds the number of questions scored at once.
func WithConcurrency(n int) Option {
	return func(s *Scorer) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func NewScorer(catalog QuestionLookup, opts ...Option) *Scorer {
	s := &Scorer{
		catalog:     catalog,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reprioritize scores every id in parallel, then stable-sorts descending by
// score so ties keep their input order. Ids missing from the catalog score 0
// and stay in the list; callers drop them when they surface.
func (s *Scorer) Reprioritize(ctx context.Context, ids []id.QuestionID, answers map[id.QuestionID]any, scores models.PreliminaryScores) ([]id.QuestionID, error) {
	if len(ids) == 0 {
		return []id.QuestionID{}, nil
	}
	start := time.Now()
	defer func() { s.metrics.ObserveReprioritize(time.Since(start)) }()

	scored := make([]float64, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, qid := range ids {
		g.Go(func() error {
			q, err := s.catalog.GetQuestion(gctx, qid)
			if err != nil {
				if errors.Is(err, sentinel.ErrNotFound) {
					scored[i] = 0
					return nil
				}
				return fmt.Errorf("score question %s: %w", qid, err)
			}
			s.warnUnknownFactors(gctx, q)
			scored[i] = Score(q, answers, scores)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	order := make([]int, len(ids))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case scored[a] > scored[b]:
			return -1
		case scored[a] < scored[b]:
			return 1
		}
		return 0
	})

	out := make([]id.QuestionID, len(ids))
	for i, idx := range order {
		out[i] = ids[idx]
	}
	return out, nil
}

func (s *Scorer) warnUnknownFactors(ctx context.Context, q *models.Question) {
	for _, f := range q.RelevanceFactors {
		if !f.Condition.IsValid() {
			s.logger.WarnContext(ctx, "unsupported relevance factor condition, treating as not matched",
				"warning", "rule_evaluation",
				"question_id", q.ID.String(),
				"condition", string(f.Condition),
			)
		}
	}
}
