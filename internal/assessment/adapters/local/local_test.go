package local

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"migratio/internal/assessment/models"
	id "migratio/pkg/domain"
)

func TestProfileStore(t *testing.T) {
	ctx := context.Background()
	store := NewProfileStore()
	userID := id.UserID(uuid.New())

	p, err := store.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, p.Answers)

	require.NoError(t, store.UpdateProfile(ctx, userID, "personal_age", 28))
	require.NoError(t, store.UpdateFromNlp(ctx, userID, "work_occupation_description", models.NlpResult{Skills: []string{"management"}}))
	require.NoError(t, store.UpdatePreliminaryScores(ctx, userID, models.PreliminaryScores{"topCountries": []string{"CA"}}))

	p, err = store.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 28, p.Answers["personal_age"])
	assert.Equal(t, []string{"management"}, p.NlpInsights["work_occupation_description"].Skills)
	assert.Equal(t, []string{"CA"}, p.PreliminaryScores.TopCountries())
	assert.WithinDuration(t, time.Now(), p.UpdatedAt, time.Minute)

	p.Answers["personal_age"] = 99
	again, err := store.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 28, again.Answers["personal_age"], "callers get a copy")
}

func TestHeuristicRecommender_PreliminaryScores(t *testing.T) {
	tests := []struct {
		name      string
		profile   *models.Profile
		pathways  []string
		countries []string
	}{
		{"young applicant", &models.Profile{Answers: map[id.QuestionID]any{AgeQuestionID: 25}}, []string{"Study", "Work"}, []string{"CA", "AU"}},
		{"older applicant", &models.Profile{Answers: map[id.QuestionID]any{AgeQuestionID: 45.0}}, []string{"Work", "Investment"}, []string{"CA", "US"}},
		{"non-numeric age", &models.Profile{Answers: map[id.QuestionID]any{AgeQuestionID: "25"}}, []string{"Work", "Investment"}, []string{"CA", "US"}},
		{"no profile", nil, []string{"Work", "Investment"}, []string{"CA", "US"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scores, err := NewHeuristicRecommender().PreliminaryScores(context.Background(), tt.profile)
			require.NoError(t, err)
			assert.Equal(t, tt.pathways, scores.TopPathwayTypes())
			assert.Equal(t, tt.countries, scores.TopCountries())
		})
	}
}

func TestHeuristicRecommender_Recommendations(t *testing.T) {
	session := models.NewSession(id.UserID(uuid.New()), "v2.0", nil, time.Now())
	session.RecordResponse(AgeQuestionID, 22, time.Now())

	recs, err := NewHeuristicRecommender().Recommendations(context.Background(), session, nil)
	require.NoError(t, err)
	require.Len(t, recs, 4)
	assert.Equal(t, "Study", recs[0].PathwayType)
	assert.Equal(t, "CA", recs[0].Country)
	assert.Equal(t, 1.0, recs[0].Score)
}

func TestKeywordAnalyzer(t *testing.T) {
	res, err := NewKeywordAnalyzer().AnalyzeText(context.Background(), "I manage a team of software engineers", "work_occupation_description")
	require.NoError(t, err)
	assert.Equal(t, []string{"engineering", "management", "software_engineering"}, res.Skills)
	assert.Equal(t, true, res.Attributes["isManagementRole"])

	res, err = NewKeywordAnalyzer().AnalyzeText(context.Background(), "gardening", "q")
	require.NoError(t, err)
	assert.Empty(t, res.Skills)
	assert.Equal(t, false, res.Attributes["isManagementRole"])
}
