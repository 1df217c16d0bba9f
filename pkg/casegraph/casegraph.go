// Package casegraph evaluates a simple fact-and-rule logic and computes, for
// every derivable fact, the complete space of independent justifications that
// establish it.
//
// The facade ties the pipeline together: a canonicalized, cycle-checked
// knowledge base (package kb), a global least-fixpoint support engine
// (package support), and lazy justification enumeration (package cases).
// Construction is the only expensive step; every query afterwards is
// read-only and safe for unsynchronized concurrent callers.
package casegraph

import (
	"iter"

	"github.com/cognicore/casegraph/pkg/casegraph/cases"
	"github.com/cognicore/casegraph/pkg/casegraph/kb"
	"github.com/cognicore/casegraph/pkg/casegraph/logic"
	"github.com/cognicore/casegraph/pkg/casegraph/support"
)

// Engine is the main query facade over one immutable knowledge base.
type Engine struct {
	kbase *kb.KnowledgeBase
	sup   *support.Engine
	idx   *cases.Index
}

// Option configures an Engine.
type Option func(*options)

type options struct {
	workers int
	minimal bool
}

// WithWorkers bounds the number of goroutines used for the construction
// passes. Defaults to runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithMinimal enables minimality filtering of enumerated CCoSEs. See
// cases.WithMinimal for the cost trade-off.
func WithMinimal() Option {
	return func(o *options) { o.minimal = true }
}

// New builds an engine from a program. Construction fails with
// ErrMalformedRule or ErrCyclicKnowledgeBase on invalid content; no partial
// engine is ever returned.
func New(p logic.Program, opts ...Option) (*Engine, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	kbase, err := kb.New(p)
	if err != nil {
		return nil, err
	}

	var supOpts []support.Option
	var idxOpts []cases.Option
	if o.workers > 0 {
		supOpts = append(supOpts, support.WithWorkers(o.workers))
		idxOpts = append(idxOpts, cases.WithWorkers(o.workers))
	}
	if o.minimal {
		idxOpts = append(idxOpts, cases.WithMinimal())
	}

	sup := support.New(kbase, supOpts...)
	idx := cases.New(kbase, sup, idxOpts...)

	return &Engine{kbase: kbase, sup: sup, idx: idx}, nil
}

// FromSource parses a prolog-syntax program and builds an engine from it.
func FromSource(src string, opts ...Option) (*Engine, error) {
	p, err := logic.ParseProgram(src)
	if err != nil {
		return nil, err
	}
	return New(p, opts...)
}

// KnowledgeBase returns the engine's immutable knowledge base.
func (e *Engine) KnowledgeBase() *kb.KnowledgeBase { return e.kbase }

// Contains reports whether the literal is canonically registered in the
// knowledge base.
func (e *Engine) Contains(l logic.Literal) bool { return e.kbase.Contains(l) }

// IsSupported reports whether the literal is derivable. O(1) after
// construction; unknown literals fail with ErrUnknownLiteral.
func (e *Engine) IsSupported(l logic.Literal) (bool, error) {
	return e.sup.IsSupported(l)
}

// RuleSupported reports whether every body literal of the rule is derivable.
func (e *Engine) RuleSupported(r logic.Rule) (bool, error) {
	return e.sup.RuleSupported(r)
}

// CasesFor returns the literal's case as a lazy, restartable sequence of
// CCoSEs. See cases.Index.CasesFor for the full contract.
func (e *Engine) CasesFor(l logic.Literal) (iter.Seq[cases.CCoSE], error) {
	return e.idx.CasesFor(l)
}

// ArgumentsFor returns one argument per CCoSE of the literal's case.
func (e *Engine) ArgumentsFor(l logic.Literal) (iter.Seq[cases.Argument], error) {
	return e.idx.ArgumentsFor(l)
}

// Literals returns every canonical literal, sorted by printed form.
func (e *Engine) Literals() []logic.Literal { return e.kbase.Literals() }

// SupportedLiterals returns every supported literal, sorted by printed form.
func (e *Engine) SupportedLiterals() []logic.Literal {
	return e.sup.SupportedLiterals()
}

// String renders the knowledge base as a prolog program.
func (e *Engine) String() string { return e.kbase.String() }
