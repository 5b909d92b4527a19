package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLooseEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"equal strings", "married", "married", true},
		{"different strings", "married", "single", false},
		{"equal numbers", 5.0, 5, true},
		{"number and numeric string", 5.0, "5", true},
		{"numeric string and number", "2.50", 2.5, true},
		{"number and word", 5.0, "five", false},
		{"bool and string", true, "true", true},
		{"nil and nil", nil, nil, true},
		{"nil and value", nil, "x", false},
		{"json number", json.Number("7"), 7.0, true},
		{"list never equals scalar", []any{"a"}, "a", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LooseEqual(tt.a, tt.b))
		})
	}
}

func TestContains(t *testing.T) {
	found, ok := Contains([]any{"python", "go"}, "go")
	assert.True(t, ok)
	assert.True(t, found)

	found, ok = Contains("software engineer", "engineer")
	assert.True(t, ok)
	assert.True(t, found)

	found, ok = Contains([]string{"CA", "AU"}, "US")
	assert.True(t, ok)
	assert.False(t, found)

	_, ok = Contains(42.0, "4")
	assert.False(t, ok)

	_, ok = Contains("software engineer", nil)
	assert.False(t, ok)
}

func TestAsNumber(t *testing.T) {
	n, ok := AsNumber(30)
	assert.True(t, ok)
	assert.Equal(t, 30.0, n)

	_, ok = AsNumber("30")
	assert.False(t, ok)
}

func TestPreliminaryScores(t *testing.T) {
	scores := PreliminaryScores{
		ScoreKeyTopPathwayTypes: []any{"Study", "Work", 3.0},
		ScoreKeyTopCountries:    []string{"CA"},
	}
	assert.Equal(t, []string{"Study", "Work"}, scores.TopPathwayTypes())
	assert.Equal(t, []string{"CA"}, scores.TopCountries())

	var empty PreliminaryScores
	_, ok := empty.Lookup("anything")
	assert.False(t, ok)
	assert.Nil(t, empty.TopPathwayTypes())
}
