package logic

import (
	"fmt"
	"strings"

	"github.com/cognicore/casegraph/pkg/casegraph/internalerr"
)

// ParseProgram parses a prolog-syntax program: statements separated by
// fullstops, where a statement is either a clause (comma-separated literals)
// or a rule (head :- body). Whitespace between tokens is ignored.
func ParseProgram(src string) (Program, error) {
	var p Program
	n := 0
	for _, stmt := range strings.Split(src, ".") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		n++
		if strings.Contains(stmt, ":-") {
			r, err := parseRuleBody(stmt)
			if err != nil {
				return Program{}, fmt.Errorf("statement %d: %w", n, err)
			}
			p.Rules = append(p.Rules, r)
			continue
		}
		c, err := parseClauseBody(stmt)
		if err != nil {
			return Program{}, fmt.Errorf("statement %d: %w", n, err)
		}
		p.Clauses = append(p.Clauses, c)
	}
	return p, nil
}

// ParseLiteral parses a single literal: an atom, optionally prefixed with ~
// for negation.
func ParseLiteral(src string) (Literal, error) {
	s := strings.TrimSpace(src)
	negative := false
	if strings.HasPrefix(s, "~") {
		negative = true
		s = strings.TrimSpace(s[1:])
	}
	if !ValidAtom(s) {
		return Literal{}, fmt.Errorf("bad atom %q: %w", s, internalerr.ErrInvalidInput)
	}
	if negative {
		return Neg(s), nil
	}
	return Pos(s), nil
}

// ParseClause parses a single clause, with or without the trailing fullstop.
func ParseClause(src string) (Clause, error) {
	return parseClauseBody(stripFullstop(src))
}

// ParseRule parses a single rule, with or without the trailing fullstop.
func ParseRule(src string) (Rule, error) {
	return parseRuleBody(stripFullstop(src))
}

func parseClauseBody(s string) (Clause, error) {
	var literals []Literal
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		l, err := ParseLiteral(part)
		if err != nil {
			return Clause{}, err
		}
		literals = append(literals, l)
	}
	return NewClause(literals...)
}

func parseRuleBody(s string) (Rule, error) {
	parts := strings.Split(s, ":-")
	if len(parts) != 2 {
		return Rule{}, fmt.Errorf("rule %q must have exactly one ':-': %w", s, internalerr.ErrInvalidInput)
	}
	headPart := strings.TrimSpace(parts[0])
	bodyPart := strings.TrimSpace(parts[1])
	if headPart == "" {
		return Rule{}, fmt.Errorf("rule %q has no head: %w", s, internalerr.ErrInvalidInput)
	}
	if bodyPart == "" {
		return Rule{}, fmt.Errorf("rule %q has no body: %w", s, internalerr.ErrMalformedRule)
	}
	head, err := ParseLiteral(headPart)
	if err != nil {
		return Rule{}, err
	}
	body, err := parseClauseBody(bodyPart)
	if err != nil {
		return Rule{}, err
	}
	return NewRule(head, body.Literals()...)
}

func stripFullstop(src string) string {
	s := strings.TrimSpace(src)
	s = strings.TrimSuffix(s, ".")
	return s
}
