package support

import (
	"errors"
	"testing"

	"github.com/cognicore/casegraph/pkg/casegraph/internalerr"
	"github.com/cognicore/casegraph/pkg/casegraph/kb"
	"github.com/cognicore/casegraph/pkg/casegraph/logic"
)

func buildEngine(t *testing.T, src string, opts ...Option) *Engine {
	t.Helper()
	p, err := logic.ParseProgram(src)
	if err != nil {
		t.Fatalf("ParseProgram(%q): %v", src, err)
	}
	k, err := kb.New(p)
	if err != nil {
		t.Fatalf("kb.New: %v", err)
	}
	return New(k, opts...)
}

func TestSupportScenario(t *testing.T) {
	e := buildEngine(t, "beta. alpha, beta. beta:- alpha. gamma:- beta.")

	for _, atom := range []string{"alpha", "beta", "gamma"} {
		supported, err := e.IsSupported(logic.Pos(atom))
		if err != nil {
			t.Fatalf("IsSupported(%s): %v", atom, err)
		}
		if !supported {
			t.Errorf("Expected %s to be supported", atom)
		}
	}
}

func TestChainedRules(t *testing.T) {
	// gamma is derivable only through two rule hops.
	e := buildEngine(t, "alpha. beta:- alpha. gamma:- beta.")

	supported, err := e.IsSupported(logic.Pos("gamma"))
	if err != nil {
		t.Fatalf("IsSupported: %v", err)
	}
	if !supported {
		t.Error("gamma should be supported through the rule chain")
	}
}

func TestUnsupportedKnownLiteral(t *testing.T) {
	// y appears in a rule body but nothing asserts it, so both y and x are
	// known and unsupported. That is an answer, not an error.
	e := buildEngine(t, "x:- y.")

	for _, atom := range []string{"x", "y"} {
		supported, err := e.IsSupported(logic.Pos(atom))
		if err != nil {
			t.Fatalf("IsSupported(%s): %v", atom, err)
		}
		if supported {
			t.Errorf("Expected %s to be unsupported", atom)
		}
	}
}

func TestRuleNeedsWholeBody(t *testing.T) {
	e := buildEngine(t, "a. c:- a, b.")

	supported, err := e.IsSupported(logic.Pos("c"))
	if err != nil {
		t.Fatalf("IsSupported: %v", err)
	}
	if supported {
		t.Error("c should be unsupported while b is unsupported")
	}

	r, err := logic.ParseRule("c:- a, b.")
	if err != nil {
		t.Fatalf("ParseRule: %v", err)
	}
	ruleSupported, err := e.RuleSupported(r)
	if err != nil {
		t.Fatalf("RuleSupported: %v", err)
	}
	if ruleSupported {
		t.Error("Rule should be unsupported while b is unsupported")
	}
}

func TestRuleSupported(t *testing.T) {
	e := buildEngine(t, "a. b. c:- a, b.")

	r, err := logic.ParseRule("c:- a, b.")
	if err != nil {
		t.Fatalf("ParseRule: %v", err)
	}
	supported, err := e.RuleSupported(r)
	if err != nil {
		t.Fatalf("RuleSupported: %v", err)
	}
	if !supported {
		t.Error("Rule with a fully supported body should be supported")
	}

	head, err := e.IsSupported(logic.Pos("c"))
	if err != nil {
		t.Fatalf("IsSupported: %v", err)
	}
	if !head {
		t.Error("Head of a supported rule should be supported")
	}
}

func TestUnknownLiteral(t *testing.T) {
	e := buildEngine(t, "alpha.")

	_, err := e.IsSupported(logic.Pos("omega"))
	if !errors.Is(err, internalerr.ErrUnknownLiteral) {
		t.Errorf("Expected ErrUnknownLiteral, got %v", err)
	}

	// Polarity is part of identity: ~alpha never appears.
	_, err = e.IsSupported(logic.Neg("alpha"))
	if !errors.Is(err, internalerr.ErrUnknownLiteral) {
		t.Errorf("Expected ErrUnknownLiteral for ~alpha, got %v", err)
	}
}

func TestUnknownRule(t *testing.T) {
	e := buildEngine(t, "alpha. beta:- alpha.")

	r, err := logic.ParseRule("beta:- gamma.")
	if err != nil {
		t.Fatalf("ParseRule: %v", err)
	}
	if _, err := e.RuleSupported(r); !errors.Is(err, internalerr.ErrUnknownLiteral) {
		t.Errorf("Expected ErrUnknownLiteral, got %v", err)
	}
}

func TestRepeatedQueriesStable(t *testing.T) {
	e := buildEngine(t, "beta. alpha, beta. beta:- alpha. gamma:- beta.")

	first, err := e.IsSupported(logic.Pos("gamma"))
	if err != nil {
		t.Fatalf("IsSupported: %v", err)
	}
	for i := 0; i < 100; i++ {
		again, err := e.IsSupported(logic.Pos("gamma"))
		if err != nil {
			t.Fatalf("IsSupported: %v", err)
		}
		if again != first {
			t.Fatalf("Answer changed on call %d", i)
		}
	}
}

func TestNegativeLiteralSupport(t *testing.T) {
	// ~raining is a literal like any other.
	e := buildEngine(t, "~raining. happy:- ~raining. goodday:- happy.")

	supported, err := e.IsSupported(logic.Pos("goodday"))
	if err != nil {
		t.Fatalf("IsSupported: %v", err)
	}
	if !supported {
		t.Error("goodday should be supported")
	}
}

func TestSupportedLiterals(t *testing.T) {
	e := buildEngine(t, "a. b:- a. x:- w.")

	got := e.SupportedLiterals()
	want := []logic.Literal{logic.Pos("a"), logic.Pos("b")}
	if len(got) != len(want) {
		t.Fatalf("Expected %d supported literals, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Position %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestWorkerOptions(t *testing.T) {
	// Same answers regardless of worker count.
	src := "a. b:- a. x. y:- x. p, q. r:- p, q. s:- r, y."
	serial := buildEngine(t, src, WithWorkers(1))
	parallel := buildEngine(t, src, WithWorkers(8))

	for _, atom := range []string{"a", "b", "x", "y", "p", "q", "r", "s"} {
		s1, err := serial.IsSupported(logic.Pos(atom))
		if err != nil {
			t.Fatalf("serial IsSupported(%s): %v", atom, err)
		}
		s2, err := parallel.IsSupported(logic.Pos(atom))
		if err != nil {
			t.Fatalf("parallel IsSupported(%s): %v", atom, err)
		}
		if s1 != s2 {
			t.Errorf("Worker count changed the answer for %s", atom)
		}
		if !s1 {
			t.Errorf("Expected %s to be supported", atom)
		}
	}
}
