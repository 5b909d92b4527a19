package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"migratio/internal/assessment/models"
	"migratio/internal/assessment/ports"
	id "migratio/pkg/domain"
	"migratio/pkg/platform/sentinel"
)

var (
	_ ports.ProfileService        = (*ProfileClient)(nil)
	_ ports.RecommendationService = (*RecommendationClient)(nil)
	_ ports.CompletionHook        = (*RecommendationClient)(nil)
	_ ports.NlpService            = (*NlpClient)(nil)
)

// ProfileClient talks to the user profile service.
type ProfileClient struct {
	client
}

func NewProfileClient(baseURL string, opts ...Option) *ProfileClient {
	return &ProfileClient{client: newClient(baseURL, opts...)}
}

func profilePath(userID id.UserID, rest ...string) string {
	p := "/profiles/" + userID.String()
	for _, r := range rest {
		p += "/" + url.PathEscape(r)
	}
	return p
}

// GetProfile treats a 404 as a user with no profile yet.
func (c *ProfileClient) GetProfile(ctx context.Context, userID id.UserID) (*models.Profile, error) {
	var p models.Profile
	err := c.do(ctx, http.MethodGet, profilePath(userID), nil, &p)
	if errors.Is(err, sentinel.ErrNotFound) {
		return &models.Profile{UserID: userID, Answers: map[id.QuestionID]any{}}, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *ProfileClient) UpdateProfile(ctx context.Context, userID id.UserID, qid id.QuestionID, answer any) error {
	body := struct {
		Answer any `json:"answer"`
	}{answer}
	return c.do(ctx, http.MethodPut, profilePath(userID, "answers", string(qid)), body, nil)
}

func (c *ProfileClient) UpdateFromNlp(ctx context.Context, userID id.UserID, qid id.QuestionID, result models.NlpResult) error {
	return c.do(ctx, http.MethodPut, profilePath(userID, "nlp", string(qid)), result, nil)
}

func (c *ProfileClient) UpdatePreliminaryScores(ctx context.Context, userID id.UserID, scores models.PreliminaryScores) error {
	return c.do(ctx, http.MethodPut, profilePath(userID, "preliminary-scores"), scores, nil)
}

// RecommendationClient talks to the recommendation service.
type RecommendationClient struct {
	client
}

func NewRecommendationClient(baseURL string, opts ...Option) *RecommendationClient {
	return &RecommendationClient{client: newClient(baseURL, opts...)}
}

func (c *RecommendationClient) PreliminaryScores(ctx context.Context, profile *models.Profile) (models.PreliminaryScores, error) {
	var scores models.PreliminaryScores
	if err := c.do(ctx, http.MethodPost, "/preliminary-scores", profile, &scores); err != nil {
		return nil, err
	}
	return scores, nil
}

type recommendationRequest struct {
	SessionID   id.SessionID          `json:"session_id"`
	UserID      id.UserID             `json:"user_id"`
	QuizVersion string                `json:"quiz_version"`
	Answers     map[id.QuestionID]any `json:"answers"`
	Profile     *models.Profile       `json:"profile,omitempty"`
}

func (c *RecommendationClient) Recommendations(ctx context.Context, session *models.Session, profile *models.Profile) ([]models.Recommendation, error) {
	req := recommendationRequest{
		SessionID:   session.ID,
		UserID:      session.UserID,
		QuizVersion: session.QuizVersion,
		Answers:     session.Answers(),
		Profile:     profile,
	}
	var recs []models.Recommendation
	if err := c.do(ctx, http.MethodPost, "/recommendations", req, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// NlpClient talks to the text analysis service.
type NlpClient struct {
	client
}

func NewNlpClient(baseURL string, opts ...Option) *NlpClient {
	return &NlpClient{client: newClient(baseURL, opts...)}
}

func (c *NlpClient) AnalyzeText(ctx context.Context, text string, contextID id.QuestionID) (models.NlpResult, error) {
	body := struct {
		Text      string        `json:"text"`
		ContextID id.QuestionID `json:"context_id"`
	}{text, contextID}
	var res models.NlpResult
	if err := c.do(ctx, http.MethodPost, "/analyze", body, &res); err != nil {
		return models.NlpResult{}, err
	}
	return res, nil
}
