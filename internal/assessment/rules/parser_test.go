package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"migratio/internal/assessment/models"
	id "migratio/pkg/domain"
)

func TestCompile_Accepts(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`answer === "married"`, `answer === "married"`},
		{`answer === 'study'`, `answer === "study"`},
		{`answer == "x"`, `answer === "x"`},
		{`answer != "x"`, `answer !== "x"`},
		{`answer < 25`, `answer < 25`},
		{`answer >= 2.5`, `answer >= 2.5`},
		{`answer > -1`, `answer > -1`},
		{`currentAnswers.personal_age exists`, `currentAnswers.personal_age exists`},
		{`currentAnswers.goals_reason !== "work"`, `currentAnswers.goals_reason !== "work"`},
		{`preliminaryScores.topPathwayTypes.includes("Work")`, `preliminaryScores.topPathwayTypes.includes("Work")`},
		{`answer === "married" || answer === "common_law"`, `(answer === "married" || answer === "common_law")`},
		{`answer > 18 && answer < 30 || answer === 99`, `((answer > 18 && answer < 30) || answer === 99)`},
		{`(answer === "a" || answer === "b") && currentAnswers.x exists`, `((answer === "a" || answer === "b") && currentAnswers.x exists)`},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			cond, err := Compile(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cond.Root().String())
			assert.Equal(t, tt.src, cond.Source())
		})
	}
}

func TestCompile_Rejects(t *testing.T) {
	tests := []string{
		``,
		`   `,
		`answer`,
		`answer ===`,
		`answer === "unterminated`,
		`answer > "ten"`,
		`answer >= 1.`,
		`profile.age > 3`,
		`currentAnswers > 3`,
		`currentAnswers.`,
		`preliminaryScores.top.contains("x")`,
		`answer === "a" ||`,
		`answer === "a" "b"`,
		`(answer === "a"`,
		`answer === "a")`,
		`answer ; drop`,
		`process.exit(1)`,
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			_, err := Compile(src)
			require.Error(t, err)
			var syntaxErr *SyntaxError
			assert.ErrorAs(t, err, &syntaxErr)
		})
	}
}

func TestCondition_Match(t *testing.T) {
	env := Env{
		Answer: "married",
		Answers: map[id.QuestionID]any{
			"personal_age":    31.0,
			"goals_reason":    "work",
			"languages":       []any{"en", "fr"},
			"nullable_answer": nil,
		},
		Scores: models.PreliminaryScores{
			"topPathwayTypes": []any{"Study", "Work"},
			"overall":         72.0,
			"tier":            "gold",
		},
	}

	tests := []struct {
		src  string
		want bool
	}{
		{`answer === "married"`, true},
		{`answer !== "married"`, false},
		{`answer === "married" || answer === "common_law"`, true},
		{`answer > 3`, false},
		{`currentAnswers.personal_age > 30`, true},
		{`currentAnswers.personal_age <= 30`, false},
		{`currentAnswers.personal_age === 31`, true},
		{`currentAnswers.personal_age === "31"`, true},
		{`currentAnswers.goals_reason === "work" && currentAnswers.personal_age < 40`, true},
		{`currentAnswers.goals_reason > 3`, false},
		{`currentAnswers.missing === "x"`, false},
		{`currentAnswers.missing !== "x"`, true},
		{`currentAnswers.missing exists`, false},
		{`currentAnswers.nullable_answer exists`, false},
		{`currentAnswers.goals_reason exists`, true},
		{`currentAnswers.languages.includes("fr")`, true},
		{`preliminaryScores.topPathwayTypes.includes("Work")`, true},
		{`preliminaryScores.topPathwayTypes.includes("Investment")`, false},
		{`preliminaryScores.missing.includes("Work")`, false},
		{`preliminaryScores.overall > 70`, true},
		{`preliminaryScores.tier === "gold"`, true},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			cond, err := Compile(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cond.Match(env))
		})
	}
}

func TestCondition_NilScores(t *testing.T) {
	cond, err := Compile(`preliminaryScores.topPathwayTypes.includes("Work")`)
	require.NoError(t, err)
	assert.False(t, cond.Match(Env{Answer: "x"}))
}

func FuzzCompile(f *testing.F) {
	f.Add(`answer === "married" || answer === "common_law"`)
	f.Add(`currentAnswers.personal_age >= 18 && preliminaryScores.topPathwayTypes.includes("Work")`)
	f.Add(`((answer`)
	f.Add(`answer === '\'`)

	f.Fuzz(func(t *testing.T, src string) {
		cond, err := Compile(src)
		if err != nil {
			return
		}
		// Compiled conditions must evaluate without panicking on any env.
		_ = cond.Match(Env{})
		_ = cond.Match(Env{Answer: []any{1.0}, Scores: models.PreliminaryScores{"k": "v"}})
	})
}
