// Package logic provides the value model for a simple fact-and-rule logic:
// positive/negative literals, conjunctive clauses, and single-step modus
// ponens rules, together with a prolog-syntax parser and renderer.
//
// All types are immutable values. Equality is structural: two literals are
// equal when their atom and polarity are equal, clauses are equal as literal
// sets, rules are equal by head and body set. Canonical identity within a
// knowledge base is handled one layer up (package kb).
package logic

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cognicore/casegraph/pkg/casegraph/internalerr"
)

// Literal asserts an atom (positive) or its logical complement (negative).
// The zero value is not a valid literal; use Pos or Neg.
type Literal struct {
	atom     string
	positive bool
}

// Pos returns the positive literal for atom.
func Pos(atom string) Literal {
	return Literal{atom: atom, positive: true}
}

// Neg returns the negative literal for atom.
func Neg(atom string) Literal {
	return Literal{atom: atom, positive: false}
}

// Atom returns the literal's atom.
func (l Literal) Atom() string { return l.atom }

// Positive reports whether the literal asserts its atom rather than the
// atom's complement.
func (l Literal) Positive() bool { return l.positive }

// Negated returns a new literal with the same atom and flipped polarity.
func (l Literal) Negated() Literal {
	return Literal{atom: l.atom, positive: !l.positive}
}

// String renders the literal in prolog syntax, without a trailing fullstop.
func (l Literal) String() string {
	if !l.positive {
		return "~" + l.atom
	}
	return l.atom
}

// ValidAtom reports whether s is a well-formed atom: non-empty, consisting of
// alphanumerics and underscores, with at least one non-digit character.
func ValidAtom(s string) bool {
	if s == "" {
		return false
	}
	nonDigit := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			nonDigit = true
		case r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return nonDigit
}

// Clause asserts a non-empty set of literals in conjunction. Literal order is
// a presentation concern only: clauses with the same literal set are equal.
type Clause struct {
	literals []Literal // sorted by printed form, deduplicated
}

// NewClause creates a clause from the given literals. Duplicates collapse.
// An empty literal set is rejected.
func NewClause(literals ...Literal) (Clause, error) {
	if len(literals) == 0 {
		return Clause{}, fmt.Errorf("clause with no literals: %w", internalerr.ErrInvalidInput)
	}
	return Clause{literals: sortedLiteralSet(literals)}, nil
}

// Literals returns the clause's literals, sorted by printed form.
func (c Clause) Literals() []Literal {
	out := make([]Literal, len(c.literals))
	copy(out, c.literals)
	return out
}

// Len returns the number of distinct literals in the clause.
func (c Clause) Len() int { return len(c.literals) }

// Contains reports whether the clause asserts l.
func (c Clause) Contains(l Literal) bool {
	for _, have := range c.literals {
		if have == l {
			return true
		}
	}
	return false
}

// Equal reports set equality of the two clauses' literals.
func (c Clause) Equal(other Clause) bool {
	if len(c.literals) != len(other.literals) {
		return false
	}
	for i := range c.literals {
		if c.literals[i] != other.literals[i] {
			return false
		}
	}
	return true
}

// String renders the clause in prolog syntax with literals in alphabetical
// printed order, so equal clauses always print identically.
func (c Clause) String() string {
	parts := make([]string, len(c.literals))
	for i, l := range c.literals {
		parts[i] = l.String()
	}
	return strings.Join(parts, ", ") + "."
}

// Rule asserts that its head is derivable once every literal in its body is
// derivable (modus ponens). The body is a non-empty literal set.
type Rule struct {
	head Literal
	body []Literal // sorted by printed form, deduplicated
}

// NewRule creates a rule with the given head and body literals. Duplicates in
// the body collapse. An empty body fails with ErrMalformedRule.
func NewRule(head Literal, body ...Literal) (Rule, error) {
	if len(body) == 0 {
		return Rule{}, fmt.Errorf("rule %s has an empty body: %w", head, internalerr.ErrMalformedRule)
	}
	return Rule{head: head, body: sortedLiteralSet(body)}, nil
}

// Head returns the rule's head (consequent) literal.
func (r Rule) Head() Literal { return r.head }

// Body returns the rule's body literals, sorted by printed form.
func (r Rule) Body() []Literal {
	out := make([]Literal, len(r.body))
	copy(out, r.body)
	return out
}

// BodyContains reports whether l is one of the rule's body literals.
func (r Rule) BodyContains(l Literal) bool {
	for _, have := range r.body {
		if have == l {
			return true
		}
	}
	return false
}

// Equal reports whether the two rules have equal heads and equal body sets.
func (r Rule) Equal(other Rule) bool {
	if r.head != other.head || len(r.body) != len(other.body) {
		return false
	}
	for i := range r.body {
		if r.body[i] != other.body[i] {
			return false
		}
	}
	return true
}

// String renders the rule in prolog syntax with body literals in alphabetical
// printed order.
func (r Rule) String() string {
	parts := make([]string, len(r.body))
	for i, l := range r.body {
		parts[i] = l.String()
	}
	return r.head.String() + ":- " + strings.Join(parts, ", ") + "."
}

// Program is a parsed collection of clauses and rules, the construction input
// for a knowledge base.
type Program struct {
	Clauses []Clause
	Rules   []Rule
}

// String renders the program one statement per line, clauses before rules,
// each group sorted by printed form. The rendering is deterministic:
// structurally equal programs print identically.
func (p Program) String() string {
	clauses := make([]string, len(p.Clauses))
	for i, c := range p.Clauses {
		clauses[i] = c.String()
	}
	rules := make([]string, len(p.Rules))
	for i, r := range p.Rules {
		rules[i] = r.String()
	}
	sort.Strings(clauses)
	sort.Strings(rules)

	var b strings.Builder
	for _, s := range clauses {
		b.WriteString(s)
		b.WriteString("\n")
	}
	for _, s := range rules {
		b.WriteString(s)
		b.WriteString("\n")
	}
	return b.String()
}

func sortedLiteralSet(literals []Literal) []Literal {
	seen := make(map[Literal]struct{}, len(literals))
	out := make([]Literal, 0, len(literals))
	for _, l := range literals {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}
