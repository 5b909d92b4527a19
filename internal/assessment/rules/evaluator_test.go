package rules

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"migratio/internal/assessment/metrics"
	"migratio/internal/assessment/models"
	id "migratio/pkg/domain"
	"migratio/pkg/platform/sentinel"
)

type stubCatalog struct {
	questions map[id.QuestionID]*models.Question
	err       error
}

func (c stubCatalog) GetQuestion(_ context.Context, qid id.QuestionID) (*models.Question, error) {
	if c.err != nil {
		return nil, c.err
	}
	q, ok := c.questions[qid]
	if !ok || !q.IsActive {
		return nil, sentinel.ErrNotFound
	}
	return q, nil
}

type EvaluatorSuite struct {
	suite.Suite
	ctx       context.Context
	metrics   *metrics.Metrics
	evaluator *Evaluator
	catalog   stubCatalog
	session   *models.Session
}

func TestEvaluatorSuite(t *testing.T) {
	suite.Run(t, new(EvaluatorSuite))
}

func (s *EvaluatorSuite) SetupTest() {
	s.ctx = context.Background()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.evaluator = NewEvaluator(WithMetrics(s.metrics))
	s.catalog = stubCatalog{questions: map[id.QuestionID]*models.Question{
		"B":        {ID: "B", IsActive: true},
		"C":        {ID: "C", IsActive: true},
		"D":        {ID: "D", IsActive: true},
		"inactive": {ID: "inactive", IsActive: false},
	}}
	s.session = models.NewSession(id.UserID(uuid.New()), "v2.0", []id.QuestionID{"B"}, time.Now())
	s.session.RecordResponse("A", "x", time.Now())
}

func (s *EvaluatorSuite) TestAddAppendsActiveTarget() {
	rules := []models.Rule{{Condition: `answer === "x"`, Action: models.RuleActionAdd, Questions: []id.QuestionID{"C"}}}

	out, err := s.evaluator.Apply(s.ctx, s.session, rules, Env{Answer: "x"}, s.catalog)
	s.Require().NoError(err)

	s.True(out.Changed())
	s.ElementsMatch([]id.QuestionID{"B", "C"}, s.session.RemainingQuestionIDs)
}

func (s *EvaluatorSuite) TestAddSkipsMissingAndInactiveTargets() {
	rules := []models.Rule{{Condition: `answer === "x"`, Action: models.RuleActionAdd, Questions: []id.QuestionID{"Z", "inactive"}}}

	out, err := s.evaluator.Apply(s.ctx, s.session, rules, Env{Answer: "x"}, s.catalog)
	s.Require().NoError(err)

	s.False(out.Changed())
	s.Equal([]id.QuestionID{"B"}, s.session.RemainingQuestionIDs)
	s.Equal(2.0, testutil.ToFloat64(s.metrics.RuleWarnings.WithLabelValues(metrics.WarningMissingQuestion)))
}

func (s *EvaluatorSuite) TestAddSkipsKnownTargets() {
	s.session.SkippedQuestionIDs = []id.QuestionID{"D"}
	rules := []models.Rule{{Condition: `answer === "x"`, Action: models.RuleActionAdd, Questions: []id.QuestionID{"A", "B", "D"}}}

	out, err := s.evaluator.Apply(s.ctx, s.session, rules, Env{Answer: "x"}, s.catalog)
	s.Require().NoError(err)

	s.False(out.Changed())
	s.Equal([]id.QuestionID{"B"}, s.session.RemainingQuestionIDs)
}

func (s *EvaluatorSuite) TestAddPropagatesCatalogFailure() {
	failing := stubCatalog{err: errors.New("connection refused")}
	rules := []models.Rule{{Condition: `answer === "x"`, Action: models.RuleActionAdd, Questions: []id.QuestionID{"C"}}}

	_, err := s.evaluator.Apply(s.ctx, s.session, rules, Env{Answer: "x"}, failing)
	s.Require().Error(err)
	s.Contains(err.Error(), "connection refused")
}

func (s *EvaluatorSuite) TestRemoveMovesTargetsToSkipped() {
	rules := []models.Rule{{Condition: `answer === "x"`, Action: models.RuleActionRemove, Questions: []id.QuestionID{"B", "C", "A"}}}

	out, err := s.evaluator.Apply(s.ctx, s.session, rules, Env{Answer: "x"}, s.catalog)
	s.Require().NoError(err)

	s.True(out.Changed())
	s.Empty(s.session.RemainingQuestionIDs)
	s.Equal([]id.QuestionID{"B", "C"}, s.session.SkippedQuestionIDs, "answered A must not be skipped")

	out, err = s.evaluator.Apply(s.ctx, s.session, rules, Env{Answer: "x"}, s.catalog)
	s.Require().NoError(err)
	s.False(out.Changed(), "remove is idempotent")
	s.Len(s.session.SkippedQuestionIDs, 2)
}

func (s *EvaluatorSuite) TestPrioritizeHasNoEffect() {
	rules := []models.Rule{{Condition: `answer < 25`, Action: models.RuleActionPrioritize, Questions: []id.QuestionID{"C"}}}

	out, err := s.evaluator.Apply(s.ctx, s.session, rules, Env{Answer: 20.0}, s.catalog)
	s.Require().NoError(err)

	s.False(out.Changed())
	s.Equal([]id.QuestionID{"B"}, s.session.RemainingQuestionIDs)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.RuleWarnings.WithLabelValues(metrics.WarningUnsupportedAction)))
}

func (s *EvaluatorSuite) TestUnparsableConditionFailsClosed() {
	rules := []models.Rule{{Condition: `answer ~= "x"`, Action: models.RuleActionAdd, Questions: []id.QuestionID{"C"}}}

	for range 2 {
		out, err := s.evaluator.Apply(s.ctx, s.session, rules, Env{Answer: "x"}, s.catalog)
		s.Require().NoError(err)
		s.False(out.Changed())
	}
	s.Equal(2.0, testutil.ToFloat64(s.metrics.RuleWarnings.WithLabelValues(metrics.WarningUnparsableCondition)))
}

func (s *EvaluatorSuite) TestRulesApplyInOrder() {
	rules := []models.Rule{
		{Condition: `answer === "x"`, Action: models.RuleActionAdd, Questions: []id.QuestionID{"C"}},
		{Condition: `answer === "x"`, Action: models.RuleActionRemove, Questions: []id.QuestionID{"C"}},
		{Condition: `answer === "x"`, Action: models.RuleActionAdd, Questions: []id.QuestionID{"C"}},
	}

	_, err := s.evaluator.Apply(s.ctx, s.session, rules, Env{Answer: "x"}, s.catalog)
	s.Require().NoError(err)

	s.Equal([]id.QuestionID{"B"}, s.session.RemainingQuestionIDs)
	s.Equal([]id.QuestionID{"C"}, s.session.SkippedQuestionIDs)
}

func (s *EvaluatorSuite) TestValidateRule() {
	s.NoError(ValidateRule(models.Rule{Condition: `answer === "x"`, Action: models.RuleActionPrioritize, Questions: []id.QuestionID{"C"}}))
	s.Error(ValidateRule(models.Rule{Condition: `answer ===`, Action: models.RuleActionAdd, Questions: []id.QuestionID{"C"}}))
	s.Error(ValidateRule(models.Rule{Condition: `answer === "x"`, Action: "reorder", Questions: []id.QuestionID{"C"}}))
	s.Error(ValidateRule(models.Rule{Condition: `answer === "x"`, Action: models.RuleActionAdd}))
}
