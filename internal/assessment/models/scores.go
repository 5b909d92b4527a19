package models

import (
	"time"

	id "migratio/pkg/domain"
)

// Keys the engine reads from preliminary scores.
const (
	ScoreKeyTopPathwayTypes = "topPathwayTypes"
	ScoreKeyTopCountries    = "topCountries"
)

// PreliminaryScores are profile-derived signals computed by the
// recommendation service. Values are JSON-shaped: strings, numbers and lists.
type PreliminaryScores map[string]any

// Lookup returns the value stored under key.
func (p PreliminaryScores) Lookup(key string) (any, bool) {
	if p == nil {
		return nil, false
	}
	v, ok := p[key]
	return v, ok
}

// TopPathwayTypes returns the string entries of topPathwayTypes.
func (p PreliminaryScores) TopPathwayTypes() []string {
	return p.strings(ScoreKeyTopPathwayTypes)
}

func (p PreliminaryScores) TopCountries() []string {
	return p.strings(ScoreKeyTopCountries)
}

func (p PreliminaryScores) strings(key string) []string {
	v, ok := p.Lookup(key)
	if !ok {
		return nil
	}
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Profile is the external view of a user the engine reads on start and submit.
type Profile struct {
	UserID            id.UserID                   `json:"user_id"`
	Answers           map[id.QuestionID]any       `json:"answers"`
	PreliminaryScores PreliminaryScores           `json:"preliminary_scores,omitempty"`
	NlpInsights       map[id.QuestionID]NlpResult `json:"nlp_insights,omitempty"`
	UpdatedAt         time.Time                   `json:"updated_at"`
}

// NlpResult is what the NLP service extracts from a free-text answer.
type NlpResult struct {
	Skills     []string       `json:"skills,omitempty"`
	Keywords   []string       `json:"keywords,omitempty"`
	Sentiment  string         `json:"sentiment,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Recommendation is produced by the completion hook.
type Recommendation struct {
	PathwayType string  `json:"pathway_type"`
	Country     string  `json:"country"`
	Title       string  `json:"title"`
	Score       float64 `json:"score"`
}
