// Package kb builds an immutable knowledge base from clause and rule values.
//
// Construction canonicalizes literal identity: every distinct (atom, polarity)
// appearing anywhere in the content is assigned one dense LitID, and every
// index and downstream cache keys on that handle, so equal facts reached
// through different statements are the same node. Construction also checks
// the rule-dependency graph for cycles; downstream fixpoint and enumeration
// passes rely on that guarantee and run without recursion guards.
package kb

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cognicore/casegraph/pkg/casegraph/internalerr"
	"github.com/cognicore/casegraph/pkg/casegraph/logic"
)

// LitID is the canonical handle for one literal within a knowledge base.
type LitID int

// ClauseID identifies one clause within a knowledge base.
type ClauseID int

// RuleID identifies one rule within a knowledge base.
type RuleID int

// KnowledgeBase is an immutable, canonicalized collection of clauses and
// rules. All accessors are safe for unsynchronized concurrent callers.
type KnowledgeBase struct {
	clauses []logic.Clause
	rules   []logic.Rule

	litIndex map[logic.Literal]LitID
	literals []logic.Literal

	assertingClauses [][]ClauseID // per literal, construction order
	rulesWithHead    [][]RuleID   // per literal, construction order
	ruleHead         []LitID
	ruleBody         [][]LitID // per rule, body in sorted printed order

	ruleIndex map[string]RuleID

	topo     []LitID // literals, dependencies first
	litComp  []int
	ruleComp []int
	numComp  int
}

// CycleError reports a cycle in the rule-dependency graph of a proposed
// knowledge base. Cycle holds the printed forms of the literals and rules
// along one offending cycle, in dependency order, first element repeated at
// the end.
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cyclic knowledge base: %s", strings.Join(e.Cycle, " -> "))
}

func (e *CycleError) Unwrap() error { return internalerr.ErrCyclicKnowledgeBase }

// New builds a knowledge base from the program's clauses and rules.
// Duplicate clauses and rules collapse. If the rule-dependency graph contains
// a cycle, New fails with a *CycleError and no knowledge base is produced.
func New(p logic.Program) (*KnowledgeBase, error) {
	k := &KnowledgeBase{
		litIndex:  make(map[logic.Literal]LitID),
		ruleIndex: make(map[string]RuleID),
	}

	seenClauses := make(map[string]struct{})
	for _, c := range p.Clauses {
		key := c.String()
		if _, ok := seenClauses[key]; ok {
			continue
		}
		seenClauses[key] = struct{}{}
		k.clauses = append(k.clauses, c)
		for _, l := range c.Literals() {
			k.intern(l)
		}
	}

	for _, r := range p.Rules {
		key := r.String()
		if _, ok := k.ruleIndex[key]; ok {
			continue
		}
		k.ruleIndex[key] = RuleID(len(k.rules))
		k.rules = append(k.rules, r)
		k.intern(r.Head())
		for _, l := range r.Body() {
			k.intern(l)
		}
	}

	nLits := len(k.literals)
	k.assertingClauses = make([][]ClauseID, nLits)
	k.rulesWithHead = make([][]RuleID, nLits)
	for ci, c := range k.clauses {
		for _, l := range c.Literals() {
			id := k.litIndex[l]
			k.assertingClauses[id] = append(k.assertingClauses[id], ClauseID(ci))
		}
	}
	k.ruleHead = make([]LitID, len(k.rules))
	k.ruleBody = make([][]LitID, len(k.rules))
	for ri, r := range k.rules {
		head := k.litIndex[r.Head()]
		k.ruleHead[ri] = head
		k.rulesWithHead[head] = append(k.rulesWithHead[head], RuleID(ri))
		body := r.Body()
		ids := make([]LitID, len(body))
		for i, l := range body {
			ids[i] = k.litIndex[l]
		}
		k.ruleBody[ri] = ids
	}

	if err := k.analyze(); err != nil {
		return nil, err
	}
	return k, nil
}

func (k *KnowledgeBase) intern(l logic.Literal) LitID {
	if id, ok := k.litIndex[l]; ok {
		return id
	}
	id := LitID(len(k.literals))
	k.litIndex[l] = id
	k.literals = append(k.literals, l)
	return id
}

// Lookup returns the canonical handle for l, or false if l never appears in
// the knowledge base.
func (k *KnowledgeBase) Lookup(l logic.Literal) (LitID, bool) {
	id, ok := k.litIndex[l]
	return id, ok
}

// LookupRule returns the handle for r, or false if r is not in the knowledge
// base.
func (k *KnowledgeBase) LookupRule(r logic.Rule) (RuleID, bool) {
	id, ok := k.ruleIndex[r.String()]
	return id, ok
}

// Contains reports whether l is canonically registered in the knowledge base.
func (k *KnowledgeBase) Contains(l logic.Literal) bool {
	_, ok := k.litIndex[l]
	return ok
}

// Literal returns the literal for a canonical handle.
func (k *KnowledgeBase) Literal(id LitID) logic.Literal { return k.literals[id] }

// Clause returns the clause for an id.
func (k *KnowledgeBase) Clause(id ClauseID) logic.Clause { return k.clauses[id] }

// Rule returns the rule for an id.
func (k *KnowledgeBase) Rule(id RuleID) logic.Rule { return k.rules[id] }

// NumLiterals returns the number of distinct canonical literals.
func (k *KnowledgeBase) NumLiterals() int { return len(k.literals) }

// NumClauses returns the number of distinct clauses.
func (k *KnowledgeBase) NumClauses() int { return len(k.clauses) }

// NumRules returns the number of distinct rules.
func (k *KnowledgeBase) NumRules() int { return len(k.rules) }

// AssertingClauses returns the clauses containing the literal, in
// construction order. The returned slice is shared; callers must not modify
// it.
func (k *KnowledgeBase) AssertingClauses(id LitID) []ClauseID {
	return k.assertingClauses[id]
}

// RulesWithHead returns the rules whose head is the literal, in construction
// order. The returned slice is shared; callers must not modify it.
func (k *KnowledgeBase) RulesWithHead(id LitID) []RuleID {
	return k.rulesWithHead[id]
}

// RuleHead returns the canonical handle of the rule's head literal.
func (k *KnowledgeBase) RuleHead(id RuleID) LitID { return k.ruleHead[id] }

// RuleBody returns the rule's body literals in sorted printed order. The
// returned slice is shared; callers must not modify it.
func (k *KnowledgeBase) RuleBody(id RuleID) []LitID {
	return k.ruleBody[id]
}

// Clauses returns a copy of the knowledge base's clauses in construction
// order.
func (k *KnowledgeBase) Clauses() []logic.Clause {
	out := make([]logic.Clause, len(k.clauses))
	copy(out, k.clauses)
	return out
}

// Rules returns a copy of the knowledge base's rules in construction order.
func (k *KnowledgeBase) Rules() []logic.Rule {
	out := make([]logic.Rule, len(k.rules))
	copy(out, k.rules)
	return out
}

// Literals returns all canonical literals, sorted by printed form.
func (k *KnowledgeBase) Literals() []logic.Literal {
	out := make([]logic.Literal, len(k.literals))
	copy(out, k.literals)
	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}

// TopoLiterals returns all literal handles in dependency order: every literal
// a rule body mentions comes before the rule's head. The returned slice is
// shared; callers must not modify it.
func (k *KnowledgeBase) TopoLiterals() []LitID { return k.topo }

// NumComponents returns the number of weakly-connected components of the
// rule-dependency graph.
func (k *KnowledgeBase) NumComponents() int { return k.numComp }

// LiteralComponent returns the component the literal belongs to.
func (k *KnowledgeBase) LiteralComponent(id LitID) int { return k.litComp[id] }

// RuleComponent returns the component the rule belongs to.
func (k *KnowledgeBase) RuleComponent(id RuleID) int { return k.ruleComp[id] }

// String renders the knowledge base as a prolog program, clauses before
// rules, each group sorted by printed form.
func (k *KnowledgeBase) String() string {
	return logic.Program{Clauses: k.clauses, Rules: k.rules}.String()
}
