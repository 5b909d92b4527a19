package rules

import (
	"fmt"
	"strconv"
	"strings"
)

const maxConditionLength = 1024

// Compile parses a rule condition.
//
//	expr       := and ( "||" and )*
//	and        := term ( "&&" term )*
//	term       := "(" expr ")" | subject predicate
//	subject    := "answer" | "currentAnswers" "." ident | "preliminaryScores" "." ident
//	predicate  := op literal | "exists" | "." "includes" "(" literal ")"
//	op         := "===" | "!==" | "==" | "!=" | ">" | "<" | ">=" | "<="
//	literal    := string | number
//
// "==" and "!=" are accepted as spellings of "===" and "!==".
func Compile(src string) (*Condition, error) {
	trimmed := strings.TrimSpace(src)
	if trimmed == "" {
		return nil, &SyntaxError{Condition: src, Msg: "empty condition"}
	}
	if len(trimmed) > maxConditionLength {
		return nil, &SyntaxError{Condition: src, Msg: fmt.Sprintf("condition longer than %d bytes", maxConditionLength)}
	}
	toks, err := lex(trimmed)
	if err != nil {
		return nil, err
	}
	p := &parser{src: trimmed, toks: toks}
	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, p.errorf("unexpected %s", p.peek().kind)
	}
	return &Condition{source: trimmed, root: root}, nil
}

type parser struct {
	src  string
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Condition: p.src, Pos: p.peek().pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) expect(kind tokenKind) (token, error) {
	if p.peek().kind != kind {
		return token{}, p.errorf("expected %s, found %s", kind, p.peek().kind)
	}
	return p.next(), nil
}

func (p *parser) parseOr() (Expr, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	branches := Or{first}
	for p.peek().kind == tokOr {
		p.next()
		e, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		branches = append(branches, e)
	}
	if len(branches) == 1 {
		return first, nil
	}
	return branches, nil
}

func (p *parser) parseAnd() (Expr, error) {
	first, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	branches := And{first}
	for p.peek().kind == tokAnd {
		p.next()
		e, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		branches = append(branches, e)
	}
	if len(branches) == 1 {
		return first, nil
	}
	return branches, nil
}

func (p *parser) parseTerm() (Expr, error) {
	if p.peek().kind == tokLParen {
		p.next()
		e, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return e, nil
	}

	subject, err := p.parseSubject()
	if err != nil {
		return nil, err
	}

	switch t := p.peek(); {
	case t.kind == tokIdent && t.text == "exists":
		p.next()
		return Comparison{Subject: subject, Op: OpExists}, nil
	case t.kind == tokDot:
		p.next()
		method, err := p.expect(tokIdent)
		if err != nil {
			return nil, err
		}
		if method.text != "includes" {
			return nil, &SyntaxError{Condition: p.src, Pos: method.pos, Msg: fmt.Sprintf("unknown method %q", method.text)}
		}
		if _, err := p.expect(tokLParen); err != nil {
			return nil, err
		}
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return Comparison{Subject: subject, Op: OpIncludes, Literal: lit}, nil
	case t.kind == tokOp:
		p.next()
		op := normalizeOperator(t.text)
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		if isNumericOperator(op) {
			if _, ok := lit.(float64); !ok {
				return nil, &SyntaxError{Condition: p.src, Pos: t.pos, Msg: fmt.Sprintf("operator %s needs a number", op)}
			}
		}
		return Comparison{Subject: subject, Op: op, Literal: lit}, nil
	}
	return nil, p.errorf("expected operator, exists or .includes after %s", subject)
}

func (p *parser) parseSubject() (Subject, error) {
	t, err := p.expect(tokIdent)
	if err != nil {
		return Subject{}, err
	}
	switch Scope(t.text) {
	case ScopeAnswer:
		return Subject{Scope: ScopeAnswer}, nil
	case ScopeCurrentAnswers, ScopePreliminaryScores:
		if _, err := p.expect(tokDot); err != nil {
			return Subject{}, err
		}
		key, err := p.expect(tokIdent)
		if err != nil {
			return Subject{}, err
		}
		return Subject{Scope: Scope(t.text), Key: key.text}, nil
	}
	return Subject{}, &SyntaxError{Condition: p.src, Pos: t.pos, Msg: fmt.Sprintf("unknown scope %q", t.text)}
}

func (p *parser) parseLiteral() (any, error) {
	t := p.peek()
	switch t.kind {
	case tokString:
		p.next()
		return t.text, nil
	case tokNumber:
		p.next()
		f, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, &SyntaxError{Condition: p.src, Pos: t.pos, Msg: "malformed number"}
		}
		return f, nil
	}
	return nil, p.errorf("expected string or number, found %s", t.kind)
}

func normalizeOperator(op string) Operator {
	switch op {
	case "==":
		return OpEqual
	case "!=":
		return OpNotEqual
	}
	return Operator(op)
}

func isNumericOperator(op Operator) bool {
	switch op {
	case OpGreater, OpLess, OpGreaterEqual, OpLessEqual:
		return true
	}
	return false
}
