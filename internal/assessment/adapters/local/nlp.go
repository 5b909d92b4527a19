package local

import (
	"context"
	"slices"
	"strings"

	"migratio/internal/assessment/models"
	"migratio/internal/assessment/ports"
	id "migratio/pkg/domain"
)

var _ ports.NlpService = (*KeywordAnalyzer)(nil)

// skillKeywords maps a lowercase keyword to the skill it signals.
var skillKeywords = map[string]string{
	"manage":      "management",
	"lead":        "leadership",
	"software":    "software_engineering",
	"engineer":    "engineering",
	"nurse":       "healthcare",
	"doctor":      "healthcare",
	"teach":       "education",
	"account":     "finance",
	"sales":       "sales",
	"research":    "research",
	"construct":   "trades",
	"electric":    "trades",
	"design":      "design",
	"data":        "data_analysis",
	"analy":       "analysis",
	"marketing":   "marketing",
	"hospitality": "hospitality",
}

// KeywordAnalyzer is a deterministic stand-in for the NLP service.
type KeywordAnalyzer struct{}

func NewKeywordAnalyzer() *KeywordAnalyzer {
	return &KeywordAnalyzer{}
}

func (KeywordAnalyzer) AnalyzeText(_ context.Context, text string, contextID id.QuestionID) (models.NlpResult, error) {
	lower := strings.ToLower(text)
	var skills, keywords []string
	for keyword, skill := range skillKeywords {
		if strings.Contains(lower, keyword) {
			keywords = append(keywords, keyword)
			skills = append(skills, skill)
		}
	}
	slices.Sort(keywords)
	slices.Sort(skills)
	skills = slices.Compact(skills)

	return models.NlpResult{
		Skills:   skills,
		Keywords: keywords,
		Attributes: map[string]any{
			"isManagementRole": strings.Contains(lower, "manage"),
			"contextId":        string(contextID),
		},
	}, nil
}
