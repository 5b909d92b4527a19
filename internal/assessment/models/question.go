package models

import (
	"slices"

	id "migratio/pkg/domain"
)

// DefaultBaseRelevance applies when a catalog entry omits baseRelevance.
const DefaultBaseRelevance = 5.0

// QuestionType is the input widget a question expects.
type QuestionType string

const (
	QuestionTypeText           QuestionType = "text"
	QuestionTypeNumber         QuestionType = "number"
	QuestionTypeSingleChoice   QuestionType = "single_choice"
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeBoolean        QuestionType = "boolean"
	QuestionTypeDate           QuestionType = "date"
)

func (t QuestionType) IsValid() bool {
	switch t {
	case QuestionTypeText, QuestionTypeNumber, QuestionTypeSingleChoice,
		QuestionTypeMultipleChoice, QuestionTypeBoolean, QuestionTypeDate:
		return true
	}
	return false
}

// Question is a read-only catalog entry.
type Question struct {
	ID               id.QuestionID     `json:"id" yaml:"id"`
	Text             string            `json:"text" yaml:"text"`
	Label            string            `json:"label,omitempty" yaml:"label,omitempty"`
	HelpText         string            `json:"help_text,omitempty" yaml:"help_text,omitempty"`
	Type             QuestionType      `json:"type" yaml:"type"`
	Section          string            `json:"section" yaml:"section"`
	Order            int               `json:"order" yaml:"order"`
	Options          []Option          `json:"options,omitempty" yaml:"options,omitempty"`
	Validation       Validation        `json:"validation,omitzero" yaml:"validation,omitempty"`
	Rules            []Rule            `json:"rules,omitempty" yaml:"rules,omitempty"`
	BaseRelevance    *float64          `json:"base_relevance,omitempty" yaml:"base_relevance,omitempty"`
	RelevanceFactors []RelevanceFactor `json:"relevance_factors,omitempty" yaml:"relevance_factors,omitempty"`
	RequiresNlp      bool              `json:"requires_nlp,omitempty" yaml:"requires_nlp,omitempty"`
	IsActive         bool              `json:"is_active" yaml:"is_active"`
}

// Relevance returns the base relevance, falling back to DefaultBaseRelevance
// only when none was authored. An explicit zero is kept.
func (q *Question) Relevance() float64 {
	if q.BaseRelevance == nil {
		return DefaultBaseRelevance
	}
	return *q.BaseRelevance
}

// HasOption reports whether value is one of the declared option values.
func (q *Question) HasOption(value string) bool {
	return slices.ContainsFunc(q.Options, func(o Option) bool { return o.Value == value })
}

type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// Validation carries authoring-time answer constraints. The engine stores
// them for the front door; it does not enforce them.
type Validation struct {
	Required  bool     `json:"required,omitempty" yaml:"required,omitempty"`
	Min       *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max       *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	MaxLength int      `json:"max_length,omitempty" yaml:"max_length,omitempty"`
}

// RuleAction is the tagged mutation a matched rule performs.
type RuleAction string

const (
	RuleActionAdd    RuleAction = "add"
	RuleActionRemove RuleAction = "remove"
	// RuleActionPrioritize is accepted in catalog data but has no behavior yet.
	RuleActionPrioritize RuleAction = "prioritize"
)

func (a RuleAction) IsValid() bool {
	switch a {
	case RuleActionAdd, RuleActionRemove, RuleActionPrioritize:
		return true
	}
	return false
}

// IsSupported reports whether the engine implements the action.
func (a RuleAction) IsSupported() bool {
	return a == RuleActionAdd || a == RuleActionRemove
}

// Rule is evaluated when the question it is attached to is answered.
type Rule struct {
	Condition string          `json:"condition" yaml:"condition"`
	Action    RuleAction      `json:"action" yaml:"action"`
	Questions []id.QuestionID `json:"questions" yaml:"questions"`
}

// FactorCondition is the comparison a relevance factor applies.
type FactorCondition string

const (
	FactorEquals              FactorCondition = "equals"
	FactorNotEquals           FactorCondition = "notEquals"
	FactorGreaterThan         FactorCondition = "greaterThan"
	FactorLessThan            FactorCondition = "lessThan"
	FactorGreaterThanOrEquals FactorCondition = "greaterThanOrEquals"
	FactorLessThanOrEquals    FactorCondition = "lessThanOrEquals"
	FactorContains            FactorCondition = "contains"
	FactorNotContains         FactorCondition = "notContains"
	FactorExists              FactorCondition = "exists"
)

func (c FactorCondition) IsValid() bool {
	switch c {
	case FactorEquals, FactorNotEquals, FactorGreaterThan, FactorLessThan,
		FactorGreaterThanOrEquals, FactorLessThanOrEquals,
		FactorContains, FactorNotContains, FactorExists:
		return true
	}
	return false
}

// RelevanceFactor adjusts a question's score based on a recorded answer.
type RelevanceFactor struct {
	ProfileKey id.QuestionID   `json:"profile_key" yaml:"profile_key"`
	Condition  FactorCondition `json:"condition" yaml:"condition"`
	Value      any             `json:"value,omitempty" yaml:"value,omitempty"`
	Modifier   float64         `json:"modifier" yaml:"modifier"`
}
