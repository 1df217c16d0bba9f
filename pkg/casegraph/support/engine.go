// Package support computes derivability ("supportedness") for every literal
// and rule of a knowledge base.
//
// Supportedness is not evaluated per query. The engine runs one global
// monotone least-fixpoint pass at construction: literals asserted by clauses
// seed a worklist, each rule keeps a counter of not-yet-supported body
// literals, and a rule whose counter reaches zero marks itself and its head
// supported. Each literal and rule flips from unsupported to supported at
// most once, so the pass is linear in the sum of clause sizes and rule-body
// occurrences and needs neither recursion nor a cycle guard. Queries are O(1)
// lookups afterwards.
package support

import (
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/cognicore/casegraph/pkg/casegraph/internalerr"
	"github.com/cognicore/casegraph/pkg/casegraph/kb"
	"github.com/cognicore/casegraph/pkg/casegraph/logic"
)

// Engine answers supportedness queries against one knowledge base. All query
// methods are read-only and safe for unsynchronized concurrent callers.
type Engine struct {
	kb *kb.KnowledgeBase

	// Write-once during New, read-only afterwards.
	litSupported  []bool
	ruleSupported []bool
}

// Option configures an Engine.
type Option func(*options)

type options struct {
	workers int
}

// WithWorkers bounds the number of goroutines used to process the knowledge
// base's weakly-connected components. Defaults to runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// New runs the fixpoint pass over the knowledge base and returns an engine.
// Components of the rule-dependency graph are independent, so they propagate
// on separate workers; each worker writes only its own component's slots.
func New(k *kb.KnowledgeBase, opts ...Option) *Engine {
	o := options{workers: runtime.NumCPU()}
	for _, opt := range opts {
		opt(&o)
	}

	e := &Engine{
		kb:            k,
		litSupported:  make([]bool, k.NumLiterals()),
		ruleSupported: make([]bool, k.NumRules()),
	}

	rulesByComp := make([][]kb.RuleID, k.NumComponents())
	for ri := 0; ri < k.NumRules(); ri++ {
		c := k.RuleComponent(kb.RuleID(ri))
		rulesByComp[c] = append(rulesByComp[c], kb.RuleID(ri))
	}
	litsByComp := make([][]kb.LitID, k.NumComponents())
	for li := 0; li < k.NumLiterals(); li++ {
		c := k.LiteralComponent(kb.LitID(li))
		litsByComp[c] = append(litsByComp[c], kb.LitID(li))
	}

	var g errgroup.Group
	g.SetLimit(o.workers)
	for c := 0; c < k.NumComponents(); c++ {
		lits, rules := litsByComp[c], rulesByComp[c]
		g.Go(func() error {
			e.propagate(lits, rules)
			return nil
		})
	}
	// Workers never fail; Wait only joins them.
	_ = g.Wait()

	return e
}

// propagate runs forward chaining over one component's literals and rules.
func (e *Engine) propagate(lits []kb.LitID, rules []kb.RuleID) {
	pending := make(map[kb.RuleID]int, len(rules))
	watchers := make(map[kb.LitID][]kb.RuleID)
	for _, ri := range rules {
		body := e.kb.RuleBody(ri)
		pending[ri] = len(body)
		for _, li := range body {
			watchers[li] = append(watchers[li], ri)
		}
	}

	var queue []kb.LitID
	for _, li := range lits {
		if len(e.kb.AssertingClauses(li)) > 0 {
			e.litSupported[li] = true
			queue = append(queue, li)
		}
	}

	for len(queue) > 0 {
		li := queue[0]
		queue = queue[1:]
		for _, ri := range watchers[li] {
			pending[ri]--
			if pending[ri] != 0 {
				continue
			}
			e.ruleSupported[ri] = true
			head := e.kb.RuleHead(ri)
			if !e.litSupported[head] {
				e.litSupported[head] = true
				queue = append(queue, head)
			}
		}
	}
}

// IsSupported reports whether the literal is derivable. A literal never
// canonicalized into the knowledge base fails with ErrUnknownLiteral.
func (e *Engine) IsSupported(l logic.Literal) (bool, error) {
	id, ok := e.kb.Lookup(l)
	if !ok {
		return false, fmt.Errorf("literal %s: %w", l, internalerr.ErrUnknownLiteral)
	}
	return e.litSupported[id], nil
}

// RuleSupported reports whether every literal in the rule's body is
// derivable. A rule not in the knowledge base fails with ErrUnknownLiteral.
func (e *Engine) RuleSupported(r logic.Rule) (bool, error) {
	id, ok := e.kb.LookupRule(r)
	if !ok {
		return false, fmt.Errorf("rule %s: %w", r, internalerr.ErrUnknownLiteral)
	}
	return e.ruleSupported[id], nil
}

// SupportedID reports supportedness for a canonical literal handle.
func (e *Engine) SupportedID(id kb.LitID) bool { return e.litSupported[id] }

// RuleSupportedID reports supportedness for a rule handle.
func (e *Engine) RuleSupportedID(id kb.RuleID) bool { return e.ruleSupported[id] }

// SupportedLiterals returns every supported literal, sorted by printed form.
func (e *Engine) SupportedLiterals() []logic.Literal {
	var out []logic.Literal
	for id, ok := range e.litSupported {
		if ok {
			out = append(out, e.kb.Literal(kb.LitID(id)))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}
