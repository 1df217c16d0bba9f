// Package cases enumerates justifications: for every supported literal, the
// set of CCoSEs that establish it ("its case"), and the arguments built from
// them.
//
// The index materializes only per-literal structure (asserting clauses and
// supported rules with that head). CCoSEs themselves are composed lazily at
// enumeration time, because the Cartesian-product step over a rule's
// antecedents is combinatorial: a rule with k antecedents of n CCoSEs each
// contributes n^k combinations, and callers that need one argument must not
// pay for all of them. Enumeration recurses over the dependency structure;
// the knowledge base's construction-time acyclicity check makes that safe.
package cases

import (
	"fmt"
	"iter"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/cognicore/casegraph/pkg/casegraph/internalerr"
	"github.com/cognicore/casegraph/pkg/casegraph/kb"
	"github.com/cognicore/casegraph/pkg/casegraph/logic"
	"github.com/cognicore/casegraph/pkg/casegraph/support"
)

// Index answers justification queries against one knowledge base. All query
// methods are read-only and safe for unsynchronized concurrent callers.
type Index struct {
	kbase *kb.KnowledgeBase
	sup   *support.Engine

	// Write-once during New, read-only afterwards.
	clausesFor [][]kb.ClauseID // asserting clauses, construction order
	rulesFor   [][]kb.RuleID   // supported rules with this head, construction order

	minimal bool
	workers int
}

// Option configures an Index.
type Option func(*Index)

// WithMinimal enables minimality filtering: enumeration drops any CCoSE that
// is a proper superset of another CCoSE for the same claim. This is an
// extension beyond the structural definition; it materializes a literal's
// full case per enumeration run, trading laziness for minimality.
func WithMinimal() Option {
	return func(ix *Index) { ix.minimal = true }
}

// WithWorkers bounds the number of goroutines used to build the index.
// Defaults to runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(ix *Index) {
		if n > 0 {
			ix.workers = n
		}
	}
}

// New builds the justification index for a knowledge base and its support
// engine. Literals are visited in the topological order recorded at
// knowledge-base construction, components in parallel.
func New(k *kb.KnowledgeBase, sup *support.Engine, opts ...Option) *Index {
	ix := &Index{
		kbase:      k,
		sup:        sup,
		clausesFor: make([][]kb.ClauseID, k.NumLiterals()),
		rulesFor:   make([][]kb.RuleID, k.NumLiterals()),
		workers:    runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(ix)
	}

	topoByComp := make([][]kb.LitID, k.NumComponents())
	for _, li := range k.TopoLiterals() {
		c := k.LiteralComponent(li)
		topoByComp[c] = append(topoByComp[c], li)
	}

	var g errgroup.Group
	g.SetLimit(ix.workers)
	for _, lits := range topoByComp {
		g.Go(func() error {
			for _, li := range lits {
				ix.clausesFor[li] = k.AssertingClauses(li)
				for _, ri := range k.RulesWithHead(li) {
					if sup.RuleSupportedID(ri) {
						ix.rulesFor[li] = append(ix.rulesFor[li], ri)
					}
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	return ix
}

// CasesFor returns the literal's case as a lazy, finite, restartable sequence
// of CCoSEs. Re-ranging the sequence restarts it. Order is deterministic for
// a given knowledge base: clause-derived CCoSEs first in construction order,
// then rule-derived ones with rules in construction order, antecedents in
// sorted printed order, and antecedent combinations in odometer order.
// Duplicate CCoSEs (equal as sets) are yielded once.
//
// A literal never canonicalized into the knowledge base fails with
// ErrUnknownLiteral. A known but unsupported literal yields an empty
// sequence.
func (ix *Index) CasesFor(l logic.Literal) (iter.Seq[CCoSE], error) {
	id, ok := ix.kbase.Lookup(l)
	if !ok {
		return nil, fmt.Errorf("literal %s: %w", l, internalerr.ErrUnknownLiteral)
	}
	if ix.minimal {
		return ix.minimalSeq(id), nil
	}
	return ix.lazySeq(id), nil
}

// ArgumentsFor returns one argument per element of the literal's case,
// pairing the CCoSE with the literal as claim. Same laziness, order, and
// error contract as CasesFor.
func (ix *Index) ArgumentsFor(l logic.Literal) (iter.Seq[Argument], error) {
	ccoses, err := ix.CasesFor(l)
	if err != nil {
		return nil, err
	}
	return func(yield func(Argument) bool) {
		for c := range ccoses {
			if !yield(Argument{Support: c, Claim: l}) {
				return
			}
		}
	}, nil
}

func (ix *Index) lazySeq(id kb.LitID) iter.Seq[CCoSE] {
	return func(yield func(CCoSE) bool) {
		seen := make(map[string]struct{})
		ix.literalCases(id, func(ev evset) bool {
			c := ev.freeze(ix.kbase)
			key := c.Key()
			if _, dup := seen[key]; dup {
				return true
			}
			seen[key] = struct{}{}
			return yield(c)
		})
	}
}

// minimalSeq materializes the literal's case, drops proper supersets, and
// yields the survivors in enumeration order.
func (ix *Index) minimalSeq(id kb.LitID) iter.Seq[CCoSE] {
	return func(yield func(CCoSE) bool) {
		var all []CCoSE
		for c := range ix.lazySeq(id) {
			all = append(all, c)
		}
		for i, c := range all {
			redundant := false
			for j, other := range all {
				if i != j && other.subsetOf(c) && other.Size() < c.Size() {
					redundant = true
					break
				}
			}
			if redundant {
				continue
			}
			if !yield(c) {
				return
			}
		}
	}
}

// literalCases invokes fn once per CCoSE of the literal, in deterministic
// order, stopping early when fn returns false. Reports whether enumeration
// ran to completion.
func (ix *Index) literalCases(id kb.LitID, fn func(evset) bool) bool {
	for _, ci := range ix.clausesFor[id] {
		if !fn(clauseEvset(ci)) {
			return false
		}
	}
	for _, ri := range ix.rulesFor[id] {
		ok := ix.ruleCases(ri, func(ev evset) bool {
			return fn(ev.withRule(ri))
		})
		if !ok {
			return false
		}
	}
	return true
}

// ruleCases invokes fn once per CCoSE of the supported rule: every union of
// exactly one CCoSE per antecedent literal.
func (ix *Index) ruleCases(ri kb.RuleID, fn func(evset) bool) bool {
	return ix.product(ix.kbase.RuleBody(ri), 0, emptyEvset(), fn)
}

// product walks the Cartesian product of the body literals' cases in odometer
// order, accumulating the union of one chosen CCoSE per antecedent.
func (ix *Index) product(body []kb.LitID, i int, acc evset, fn func(evset) bool) bool {
	if i == len(body) {
		return fn(acc)
	}
	return ix.literalCases(body[i], func(ev evset) bool {
		return ix.product(body, i+1, acc.union(ev), fn)
	})
}
