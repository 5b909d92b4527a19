package catalog

import (
	"fmt"
	"strings"

	"migratio/internal/assessment/models"
	"migratio/internal/assessment/rules"
	id "migratio/pkg/domain"
	pstrings "migratio/pkg/platform/strings"
)

const supportedSpecVersion = 1

// Issue is one problem found in a question set.
type Issue struct {
	Field   string
	Message string
}

func (i Issue) String() string {
	return i.Field + ": " + i.Message
}

// ValidationError collects every blocking issue in a question set.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.String()
	}
	return "invalid question set: " + strings.Join(parts, "; ")
}

type issueCollector struct {
	issues []Issue
}

func (c *issueCollector) add(field, format string, args ...any) {
	c.issues = append(c.issues, Issue{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (c *issueCollector) result() error {
	if len(c.issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: c.issues}
}

// NormalizeSpec trims and defaults the question set, then validates it.
// Malformed rule conditions are rejected here so they never reach runtime.
// Rule targets that name no question in the set are returned as warnings.
func NormalizeSpec(spec Spec) (Spec, []Issue, error) {
	errs := &issueCollector{}
	if spec.Version != supportedSpecVersion {
		errs.add("version", "unsupported version %d", spec.Version)
	}
	spec.QuizVersion = strings.TrimSpace(spec.QuizVersion)

	seen := make(map[id.QuestionID]int, len(spec.Questions))
	questions := make([]models.Question, len(spec.Questions))
	for i, q := range spec.Questions {
		q = normalizeQuestion(q)
		validateQuestion(errs, i, q)
		if q.ID != "" {
			if first, ok := seen[q.ID]; ok {
				errs.add(fmt.Sprintf("questions[%d].id", i), "duplicate of questions[%d]", first)
			} else {
				seen[q.ID] = i
			}
		}
		questions[i] = q
	}
	if err := errs.result(); err != nil {
		return Spec{}, nil, err
	}
	spec.Questions = questions
	return spec, DanglingReferences(questions), nil
}

func normalizeQuestion(q models.Question) models.Question {
	q.ID = id.QuestionID(strings.TrimSpace(string(q.ID)))
	q.Text = strings.TrimSpace(q.Text)
	q.Section = strings.TrimSpace(q.Section)
	if q.BaseRelevance == nil {
		base := models.DefaultBaseRelevance
		q.BaseRelevance = &base
	}
	if len(q.Rules) > 0 {
		normalized := make([]models.Rule, len(q.Rules))
		for i, rule := range q.Rules {
			rule.Condition = strings.TrimSpace(rule.Condition)
			rule.Questions = pstrings.DedupeAndTrim(rule.Questions)
			normalized[i] = rule
		}
		q.Rules = normalized
	}
	return q
}

func validateQuestion(errs *issueCollector, i int, q models.Question) {
	field := func(name string) string { return fmt.Sprintf("questions[%d].%s", i, name) }

	if _, err := id.ParseQuestionID(string(q.ID)); err != nil {
		errs.add(field("id"), "%v", err)
	}
	if q.Text == "" {
		errs.add(field("text"), "is required")
	}
	if !q.Type.IsValid() {
		errs.add(field("type"), "unknown type %q", q.Type)
	}
	if q.Type == models.QuestionTypeSingleChoice || q.Type == models.QuestionTypeMultipleChoice {
		if len(q.Options) == 0 {
			errs.add(field("options"), "choice questions need at least one option")
		}
	}
	values := make(map[string]struct{}, len(q.Options))
	for j, opt := range q.Options {
		if strings.TrimSpace(opt.Value) == "" {
			errs.add(field(fmt.Sprintf("options[%d].value", j)), "is required")
			continue
		}
		if _, dup := values[opt.Value]; dup {
			errs.add(field(fmt.Sprintf("options[%d].value", j)), "duplicate option %q", opt.Value)
		}
		values[opt.Value] = struct{}{}
	}
	if q.Relevance() < 0 {
		errs.add(field("base_relevance"), "must not be negative")
	}
	for j, rule := range q.Rules {
		if err := rules.ValidateRule(rule); err != nil {
			errs.add(field(fmt.Sprintf("rules[%d]", j)), "%v", err)
		}
		for k, target := range rule.Questions {
			if _, err := id.ParseQuestionID(string(target)); err != nil {
				errs.add(field(fmt.Sprintf("rules[%d].questions[%d]", j, k)), "%v", err)
			}
		}
	}
	for j, factor := range q.RelevanceFactors {
		validateFactor(errs, field(fmt.Sprintf("relevance_factors[%d]", j)), factor)
	}
}

func validateFactor(errs *issueCollector, field string, f models.RelevanceFactor) {
	if _, err := id.ParseQuestionID(string(f.ProfileKey)); err != nil {
		errs.add(field+".profile_key", "%v", err)
	}
	switch {
	case !f.Condition.IsValid():
		errs.add(field+".condition", "unknown condition %q", f.Condition)
	case f.Condition == models.FactorGreaterThan, f.Condition == models.FactorLessThan,
		f.Condition == models.FactorGreaterThanOrEquals, f.Condition == models.FactorLessThanOrEquals:
		if _, ok := models.AsNumber(f.Value); !ok {
			errs.add(field+".value", "condition %s needs a numeric value", f.Condition)
		}
	case f.Condition != models.FactorExists:
		if f.Value == nil {
			errs.add(field+".value", "condition %s needs a value", f.Condition)
		}
	}
}

// DanglingReferences lists rule targets that name no question in the set.
// Such targets are dropped at runtime, so they are reported, not rejected.
func DanglingReferences(questions []models.Question) []Issue {
	known := make(map[id.QuestionID]struct{}, len(questions))
	for _, q := range questions {
		known[q.ID] = struct{}{}
	}
	var warnings []Issue
	for i, q := range questions {
		for j, rule := range q.Rules {
			for k, target := range rule.Questions {
				if _, ok := known[target]; !ok {
					warnings = append(warnings, Issue{
						Field:   fmt.Sprintf("questions[%d].rules[%d].questions[%d]", i, j, k),
						Message: fmt.Sprintf("unknown question %q", target),
					})
				}
			}
		}
	}
	return warnings
}
