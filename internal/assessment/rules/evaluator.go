package rules

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"migratio/internal/assessment/metrics"
	"migratio/internal/assessment/models"
	id "migratio/pkg/domain"
	"migratio/pkg/platform/sentinel"
)

// QuestionLookup resolves active catalog entries. Implementations return
// sentinel.ErrNotFound for missing or inactive ids.
type QuestionLookup interface {
	GetQuestion(ctx context.Context, qid id.QuestionID) (*models.Question, error)
}

// Evaluator matches rule conditions and applies their actions to a session.
// Compiled conditions are cached by source text.
type Evaluator struct {
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu    sync.RWMutex
	cache map[string]compiled
}

type compiled struct {
	cond *Condition
	err  error
}

// Option configures an Evaluator.
type Option func(*Evaluator)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Evaluator) {
		e.metrics = m
	}
}

func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		cache:  make(map[string]compiled),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Evaluator) compile(src string) (*Condition, error) {
	e.mu.RLock()
	c, ok := e.cache[src]
	e.mu.RUnlock()
	if ok {
		return c.cond, c.err
	}

	cond, err := Compile(src)
	e.mu.Lock()
	e.cache[src] = compiled{cond: cond, err: err}
	e.mu.Unlock()
	return cond, err
}

// Matches evaluates condition against env. A condition that does not compile
// is logged and treated as not matched.
func (e *Evaluator) Matches(ctx context.Context, condition string, env Env) bool {
	cond, err := e.compile(condition)
	if err != nil {
		e.logger.WarnContext(ctx, "rule condition not recognized, treating as not matched",
			"warning", "rule_evaluation",
			"condition", condition,
			"error", err,
		)
		e.metrics.IncrementRuleWarning(metrics.WarningUnparsableCondition)
		return false
	}
	return cond.Match(env)
}

// Outcome records what Apply changed.
type Outcome struct {
	Added   []id.QuestionID
	Removed []id.QuestionID
	Skipped []id.QuestionID
}

// Changed reports whether the remaining or skipped lists were mutated.
func (o Outcome) Changed() bool {
	return len(o.Added) > 0 || len(o.Removed) > 0 || len(o.Skipped) > 0
}

// Apply evaluates rules in order and mutates the session's remaining and
// skipped lists. Targets that are missing or inactive in the catalog are
// logged and skipped; any other catalog error aborts.
func (e *Evaluator) Apply(ctx context.Context, session *models.Session, rules []models.Rule, env Env, catalog QuestionLookup) (Outcome, error) {
	var out Outcome
	for _, rule := range rules {
		if !e.Matches(ctx, rule.Condition, env) {
			continue
		}
		e.metrics.IncrementRuleAction(string(rule.Action))

		switch rule.Action {
		case models.RuleActionAdd:
			if err := e.applyAdd(ctx, session, rule, catalog, &out); err != nil {
				return out, err
			}
		case models.RuleActionRemove:
			e.applyRemove(session, rule, &out)
		case models.RuleActionPrioritize:
			e.logger.WarnContext(ctx, "rule action not supported, ignoring",
				"warning", "rule_evaluation",
				"action", string(rule.Action),
				"condition", rule.Condition,
				"session_id", session.ID.String(),
			)
			e.metrics.IncrementRuleWarning(metrics.WarningUnsupportedAction)
		default:
			e.logger.WarnContext(ctx, "unknown rule action, ignoring",
				"warning", "rule_evaluation",
				"action", string(rule.Action),
				"session_id", session.ID.String(),
			)
			e.metrics.IncrementRuleWarning(metrics.WarningUnsupportedAction)
		}
	}
	return out, nil
}

func (e *Evaluator) applyAdd(ctx context.Context, session *models.Session, rule models.Rule, catalog QuestionLookup, out *Outcome) error {
	for _, qid := range rule.Questions {
		if session.HasAnswered(qid) || session.IsSkipped(qid) || session.IsRemaining(qid) || session.CurrentQuestionID == qid {
			continue
		}
		if _, err := catalog.GetQuestion(ctx, qid); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				e.logger.WarnContext(ctx, "rule references missing or inactive question, skipping add",
					"warning", "catalog_reference",
					"question_id", qid.String(),
					"session_id", session.ID.String(),
				)
				e.metrics.IncrementRuleWarning(metrics.WarningMissingQuestion)
				continue
			}
			return fmt.Errorf("resolve rule target %s: %w", qid, err)
		}
		session.RemainingQuestionIDs = append(session.RemainingQuestionIDs, qid)
		out.Added = append(out.Added, qid)
	}
	return nil
}

func (e *Evaluator) applyRemove(session *models.Session, rule models.Rule, out *Outcome) {
	for _, qid := range rule.Questions {
		if session.RemoveRemaining(qid) {
			out.Removed = append(out.Removed, qid)
		}
		if session.CurrentQuestionID == qid {
			session.CurrentQuestionID = ""
		}
		// Answered questions never enter the skipped set.
		if session.HasAnswered(qid) || session.IsSkipped(qid) {
			continue
		}
		session.SkippedQuestionIDs = append(session.SkippedQuestionIDs, qid)
		out.Skipped = append(out.Skipped, qid)
	}
}

// ValidateRule checks a rule at ingestion time: the condition must compile,
// the action must be known and there must be at least one target.
func ValidateRule(rule models.Rule) error {
	if _, err := Compile(rule.Condition); err != nil {
		return err
	}
	if !rule.Action.IsValid() {
		return fmt.Errorf("unknown rule action %q", rule.Action)
	}
	if len(rule.Questions) == 0 {
		return errors.New("rule has no target questions")
	}
	return nil
}
