// Package relevance scores catalog questions against a session's answers and
// preliminary scores, and orders remaining lists by that score.
package relevance

import (
	"math"
	"strings"

	"migratio/internal/assessment/models"
	id "migratio/pkg/domain"
	pstrings "migratio/pkg/platform/strings"
)

// PathwayBonus is added when a question's section matches a top pathway type.
const PathwayBonus = 3.0

// Score computes a question's relevance: base relevance, plus the pathway
// bonus, plus the modifier of every matched relevance factor, floored at 0.
func Score(q *models.Question, answers map[id.QuestionID]any, scores models.PreliminaryScores) float64 {
	if q == nil {
		return 0
	}
	score := q.Relevance()

	if matchesPathway(q.Section, scores.TopPathwayTypes()) {
		score += PathwayBonus
	}

	for _, f := range q.RelevanceFactors {
		answer, ok := answers[f.ProfileKey]
		if !ok {
			continue
		}
		if FactorMatches(answer, f.Condition, f.Value) {
			score += f.Modifier
		}
	}

	return math.Max(0, score)
}

func matchesPathway(section string, pathways []string) bool {
	section = strings.ToLower(strings.TrimSpace(section))
	if section == "" {
		return false
	}
	for _, p := range pstrings.DedupeAndTrimLower(pathways) {
		if strings.Contains(section, p) {
			return true
		}
	}
	return false
}

// FactorMatches evaluates one relevance factor condition. Comparisons that do
// not apply to the answer's type, and unknown conditions, do not match.
func FactorMatches(answer any, cond models.FactorCondition, value any) bool {
	switch cond {
	case models.FactorEquals:
		return models.LooseEqual(answer, value)
	case models.FactorNotEquals:
		return !models.LooseEqual(answer, value)
	case models.FactorExists:
		return answer != nil
	case models.FactorContains:
		found, ok := models.Contains(answer, value)
		return ok && found
	case models.FactorNotContains:
		found, ok := models.Contains(answer, value)
		return ok && !found
	}

	a, ok := models.AsNumber(answer)
	if !ok {
		return false
	}
	v, ok := models.AsNumber(value)
	if !ok {
		return false
	}
	switch cond {
	case models.FactorGreaterThan:
		return a > v
	case models.FactorLessThan:
		return a < v
	case models.FactorGreaterThanOrEquals:
		return a >= v
	case models.FactorLessThanOrEquals:
		return a <= v
	}
	return false
}
