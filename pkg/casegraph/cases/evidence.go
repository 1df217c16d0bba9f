package cases

import (
	"sort"
	"strconv"
	"strings"

	"github.com/cognicore/casegraph/pkg/casegraph/kb"
	"github.com/cognicore/casegraph/pkg/casegraph/logic"
)

// CCoSE is a complete collection of supporting evidence: a set of clauses and
// rules that jointly justify one literal or rule. CCoSEs are immutable values;
// equality is set equality over the evidence items.
type CCoSE struct {
	kbase   *kb.KnowledgeBase
	clauses []kb.ClauseID // sorted
	rules   []kb.RuleID   // sorted
}

// Clauses returns the clause evidence items.
func (c CCoSE) Clauses() []logic.Clause {
	out := make([]logic.Clause, len(c.clauses))
	for i, id := range c.clauses {
		out[i] = c.kbase.Clause(id)
	}
	return out
}

// Rules returns the rule evidence items.
func (c CCoSE) Rules() []logic.Rule {
	out := make([]logic.Rule, len(c.rules))
	for i, id := range c.rules {
		out[i] = c.kbase.Rule(id)
	}
	return out
}

// Size returns the number of evidence items.
func (c CCoSE) Size() int { return len(c.clauses) + len(c.rules) }

// ContainsClause reports whether the clause is one of the evidence items.
func (c CCoSE) ContainsClause(cl logic.Clause) bool {
	for _, id := range c.clauses {
		if c.kbase.Clause(id).Equal(cl) {
			return true
		}
	}
	return false
}

// ContainsRule reports whether the rule is one of the evidence items.
func (c CCoSE) ContainsRule(r logic.Rule) bool {
	for _, id := range c.rules {
		if c.kbase.Rule(id).Equal(r) {
			return true
		}
	}
	return false
}

// Equal reports set equality of the two collections' evidence items.
func (c CCoSE) Equal(other CCoSE) bool {
	return c.Key() == other.Key()
}

// Key returns a canonical string form of the evidence set, usable as a map
// key. Two CCoSEs over the same knowledge base have equal keys iff they are
// equal as sets.
func (c CCoSE) Key() string {
	var b strings.Builder
	for _, id := range c.clauses {
		b.WriteByte('c')
		b.WriteString(strconv.Itoa(int(id)))
		b.WriteByte('|')
	}
	for _, id := range c.rules {
		b.WriteByte('r')
		b.WriteString(strconv.Itoa(int(id)))
		b.WriteByte('|')
	}
	return b.String()
}

// subsetOf reports whether every evidence item of c is in other.
func (c CCoSE) subsetOf(other CCoSE) bool {
	return sortedSubset(c.clauses, other.clauses) && sortedSubset(c.rules, other.rules)
}

// sortedSubset reports whether sorted slice a is a subset of sorted slice b.
func sortedSubset[T ~int](a, b []T) bool {
	i := 0
	for _, x := range a {
		for i < len(b) && b[i] < x {
			i++
		}
		if i == len(b) || b[i] != x {
			return false
		}
		i++
	}
	return true
}

// String renders the evidence set with items sorted by printed form.
func (c CCoSE) String() string {
	items := make([]string, 0, c.Size())
	for _, id := range c.clauses {
		items = append(items, c.kbase.Clause(id).String())
	}
	for _, id := range c.rules {
		items = append(items, c.kbase.Rule(id).String())
	}
	sort.Strings(items)
	return "{" + strings.Join(items, " ") + "}"
}

// Argument pairs one CCoSE with the literal it justifies.
type Argument struct {
	Support CCoSE
	Claim   logic.Literal
}

// String renders the argument as a (support, claim) pair.
func (a Argument) String() string {
	return "(" + a.Support.String() + ", " + a.Claim.String() + ")"
}

// evset is the mutable evidence accumulator used during enumeration.
type evset struct {
	cl map[kb.ClauseID]struct{}
	ru map[kb.RuleID]struct{}
}

func emptyEvset() evset {
	return evset{cl: make(map[kb.ClauseID]struct{}), ru: make(map[kb.RuleID]struct{})}
}

func clauseEvset(id kb.ClauseID) evset {
	e := emptyEvset()
	e.cl[id] = struct{}{}
	return e
}

// union returns a new evset holding the items of both sets.
func (e evset) union(other evset) evset {
	out := emptyEvset()
	for id := range e.cl {
		out.cl[id] = struct{}{}
	}
	for id := range e.ru {
		out.ru[id] = struct{}{}
	}
	for id := range other.cl {
		out.cl[id] = struct{}{}
	}
	for id := range other.ru {
		out.ru[id] = struct{}{}
	}
	return out
}

// withRule returns a new evset with the rule added.
func (e evset) withRule(id kb.RuleID) evset {
	out := e.union(emptyEvset())
	out.ru[id] = struct{}{}
	return out
}

// freeze converts the accumulator into an immutable CCoSE.
func (e evset) freeze(kbase *kb.KnowledgeBase) CCoSE {
	clauses := make([]kb.ClauseID, 0, len(e.cl))
	for id := range e.cl {
		clauses = append(clauses, id)
	}
	rules := make([]kb.RuleID, 0, len(e.ru))
	for id := range e.ru {
		rules = append(rules, id)
	}
	sort.Slice(clauses, func(i, j int) bool { return clauses[i] < clauses[j] })
	sort.Slice(rules, func(i, j int) bool { return rules[i] < rules[j] })
	return CCoSE{kbase: kbase, clauses: clauses, rules: rules}
}
