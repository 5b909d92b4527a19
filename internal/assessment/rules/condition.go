package rules

import (
	"fmt"
	"strconv"

	"migratio/internal/assessment/models"
	id "migratio/pkg/domain"
)

// Scope names the data a condition subject reads from.
type Scope string

const (
	ScopeAnswer            Scope = "answer"
	ScopeCurrentAnswers    Scope = "currentAnswers"
	ScopePreliminaryScores Scope = "preliminaryScores"
)

// Operator is a comparison a term applies to its subject.
type Operator string

const (
	OpEqual        Operator = "==="
	OpNotEqual     Operator = "!=="
	OpGreater      Operator = ">"
	OpLess         Operator = "<"
	OpGreaterEqual Operator = ">="
	OpLessEqual    Operator = "<="
	OpExists       Operator = "exists"
	OpIncludes     Operator = "includes"
)

// Env is the data a condition is matched against.
type Env struct {
	// Answer is the value just submitted.
	Answer  any
	Answers map[id.QuestionID]any
	Scores  models.PreliminaryScores
}

// Subject is a scope plus an optional key ("answer" has none).
type Subject struct {
	Scope Scope
	Key   string
}

func (s Subject) String() string {
	if s.Key == "" {
		return string(s.Scope)
	}
	return string(s.Scope) + "." + s.Key
}

func (s Subject) lookup(env Env) (any, bool) {
	switch s.Scope {
	case ScopeAnswer:
		return env.Answer, true
	case ScopeCurrentAnswers:
		v, ok := env.Answers[id.QuestionID(s.Key)]
		return v, ok
	case ScopePreliminaryScores:
		return env.Scores.Lookup(s.Key)
	}
	return nil, false
}

// Expr is a compiled condition node.
type Expr interface {
	Eval(env Env) bool
	String() string
}

// Or matches when any branch matches.
type Or []Expr

func (o Or) Eval(env Env) bool {
	for _, e := range o {
		if e.Eval(env) {
			return true
		}
	}
	return false
}

func (o Or) String() string { return join(o, " || ") }

// And matches when every branch matches.
type And []Expr

func (a And) Eval(env Env) bool {
	for _, e := range a {
		if !e.Eval(env) {
			return false
		}
	}
	return true
}

func (a And) String() string { return join(a, " && ") }

func join(exprs []Expr, sep string) string {
	out := "("
	for i, e := range exprs {
		if i > 0 {
			out += sep
		}
		out += e.String()
	}
	return out + ")"
}

// Comparison is a single subject/operator/literal term. Literal is a string
// or a float64; it is nil for exists.
type Comparison struct {
	Subject Subject
	Op      Operator
	Literal any
}

func (c Comparison) String() string {
	switch c.Op {
	case OpExists:
		return c.Subject.String() + " exists"
	case OpIncludes:
		return fmt.Sprintf("%s.includes(%s)", c.Subject, literalString(c.Literal))
	}
	return fmt.Sprintf("%s %s %s", c.Subject, c.Op, literalString(c.Literal))
}

func literalString(v any) string {
	if s, ok := v.(string); ok {
		return strconv.Quote(s)
	}
	return models.Stringify(v)
}

// Eval applies the comparison. A subject that is absent matches only "!==".
// Numeric operators never match non-numeric values.
func (c Comparison) Eval(env Env) bool {
	v, present := c.Subject.lookup(env)
	switch c.Op {
	case OpEqual:
		return present && models.LooseEqual(v, c.Literal)
	case OpNotEqual:
		return !(present && models.LooseEqual(v, c.Literal))
	case OpExists:
		return present && v != nil
	case OpIncludes:
		if !present {
			return false
		}
		found, ok := models.Contains(v, c.Literal)
		return ok && found
	}

	if !present {
		return false
	}
	n, ok := models.AsNumber(v)
	if !ok {
		return false
	}
	lit, _ := c.Literal.(float64)
	switch c.Op {
	case OpGreater:
		return n > lit
	case OpLess:
		return n < lit
	case OpGreaterEqual:
		return n >= lit
	case OpLessEqual:
		return n <= lit
	}
	return false
}

// Condition is a compiled rule condition.
type Condition struct {
	source string
	root   Expr
}

// Source returns the condition text as authored.
func (c *Condition) Source() string { return c.source }

func (c *Condition) Root() Expr { return c.root }

// Match evaluates the condition against env.
func (c *Condition) Match(env Env) bool {
	if c == nil || c.root == nil {
		return false
	}
	return c.root.Eval(env)
}
