package local

import (
	"context"
	"fmt"

	"migratio/internal/assessment/models"
	"migratio/internal/assessment/ports"
	id "migratio/pkg/domain"
)

// AgeQuestionID is the answer the heuristic recommender keys on.
const AgeQuestionID id.QuestionID = "personal_age"

const youngApplicantAge = 30

var (
	_ ports.RecommendationService = (*HeuristicRecommender)(nil)
	_ ports.CompletionHook        = (*HeuristicRecommender)(nil)
)

// HeuristicRecommender derives placeholder preliminary scores from the age
// answer: younger applicants lean towards study and work pathways.
type HeuristicRecommender struct{}

func NewHeuristicRecommender() *HeuristicRecommender {
	return &HeuristicRecommender{}
}

func (HeuristicRecommender) PreliminaryScores(_ context.Context, profile *models.Profile) (models.PreliminaryScores, error) {
	var answers map[id.QuestionID]any
	if profile != nil {
		answers = profile.Answers
	}
	if age, ok := models.AsNumber(answers[AgeQuestionID]); ok && age < youngApplicantAge {
		return models.PreliminaryScores{
			models.ScoreKeyTopPathwayTypes: []string{"Study", "Work"},
			models.ScoreKeyTopCountries:    []string{"CA", "AU"},
		}, nil
	}
	return models.PreliminaryScores{
		models.ScoreKeyTopPathwayTypes: []string{"Work", "Investment"},
		models.ScoreKeyTopCountries:    []string{"CA", "US"},
	}, nil
}

// Recommendations pairs the top pathways with the top countries, ranked by
// position in both lists.
func (h HeuristicRecommender) Recommendations(ctx context.Context, session *models.Session, profile *models.Profile) ([]models.Recommendation, error) {
	merged := &models.Profile{Answers: session.Answers()}
	if profile != nil {
		merged.UserID = profile.UserID
	}
	scores, err := h.PreliminaryScores(ctx, merged)
	if err != nil {
		return nil, err
	}
	pathways, countries := scores.TopPathwayTypes(), scores.TopCountries()

	recs := make([]models.Recommendation, 0, len(pathways)*len(countries))
	for i, pathway := range pathways {
		for j, country := range countries {
			recs = append(recs, models.Recommendation{
				PathwayType: pathway,
				Country:     country,
				Title:       fmt.Sprintf("%s pathway in %s", pathway, country),
				Score:       1 / float64(1+i+j),
			})
		}
	}
	return recs, nil
}
