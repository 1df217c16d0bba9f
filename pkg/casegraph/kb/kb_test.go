package kb

import (
	"errors"
	"testing"

	"github.com/cognicore/casegraph/pkg/casegraph/internalerr"
	"github.com/cognicore/casegraph/pkg/casegraph/logic"
)

func mustProgram(t *testing.T, src string) logic.Program {
	t.Helper()
	p, err := logic.ParseProgram(src)
	if err != nil {
		t.Fatalf("ParseProgram(%q): %v", src, err)
	}
	return p
}

func TestCanonicalization(t *testing.T) {
	k, err := New(mustProgram(t, "beta. alpha, beta. beta:- alpha. gamma:- beta."))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// alpha, beta, gamma: one canonical handle each, however many statements
	// mention them.
	if k.NumLiterals() != 3 {
		t.Errorf("Expected 3 canonical literals, got %d", k.NumLiterals())
	}

	betaID, ok := k.Lookup(logic.Pos("beta"))
	if !ok {
		t.Fatal("beta should be registered")
	}
	if k.Literal(betaID) != logic.Pos("beta") {
		t.Error("Handle should resolve back to the literal")
	}

	if !k.Contains(logic.Pos("gamma")) {
		t.Error("gamma appears only as a rule head and must still be registered")
	}
	if k.Contains(logic.Neg("beta")) {
		t.Error("~beta never appears and must not be registered")
	}
}

func TestIndices(t *testing.T) {
	k, err := New(mustProgram(t, "beta. alpha, beta. beta:- alpha. gamma:- beta."))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	betaID, _ := k.Lookup(logic.Pos("beta"))
	if got := len(k.AssertingClauses(betaID)); got != 2 {
		t.Errorf("beta should be asserted by 2 clauses, got %d", got)
	}
	if got := len(k.RulesWithHead(betaID)); got != 1 {
		t.Errorf("beta should head 1 rule, got %d", got)
	}

	gammaID, _ := k.Lookup(logic.Pos("gamma"))
	if got := len(k.AssertingClauses(gammaID)); got != 0 {
		t.Errorf("gamma should be asserted by no clause, got %d", got)
	}

	rules := k.RulesWithHead(gammaID)
	if len(rules) != 1 {
		t.Fatalf("gamma should head 1 rule, got %d", len(rules))
	}
	body := k.RuleBody(rules[0])
	if len(body) != 1 || k.Literal(body[0]) != logic.Pos("beta") {
		t.Error("gamma rule body should be exactly beta")
	}
	if k.RuleHead(rules[0]) != gammaID {
		t.Error("RuleHead should point back at gamma")
	}
}

func TestDuplicatesCollapse(t *testing.T) {
	k, err := New(mustProgram(t, "alpha. alpha. beta:- alpha. beta:- alpha."))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if k.NumClauses() != 1 {
		t.Errorf("Expected 1 clause, got %d", k.NumClauses())
	}
	if k.NumRules() != 1 {
		t.Errorf("Expected 1 rule, got %d", k.NumRules())
	}
}

func TestCycleDetection(t *testing.T) {
	_, err := New(mustProgram(t, "a:- b. b:- a."))
	if err == nil {
		t.Fatal("Expected construction to fail on a cyclic rule graph")
	}
	if !errors.Is(err, internalerr.ErrCyclicKnowledgeBase) {
		t.Errorf("Expected ErrCyclicKnowledgeBase, got %v", err)
	}

	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("Expected *CycleError, got %T", err)
	}
	if len(cycleErr.Cycle) < 3 {
		t.Errorf("Cycle should name the offending path, got %v", cycleErr.Cycle)
	}
	if cycleErr.Cycle[0] != cycleErr.Cycle[len(cycleErr.Cycle)-1] {
		t.Errorf("Cycle should close on its first element, got %v", cycleErr.Cycle)
	}
}

func TestSelfCycleDetection(t *testing.T) {
	_, err := New(mustProgram(t, "a:- a."))
	if !errors.Is(err, internalerr.ErrCyclicKnowledgeBase) {
		t.Errorf("Expected ErrCyclicKnowledgeBase, got %v", err)
	}
}

func TestCycleWithBaseClauseStillRejected(t *testing.T) {
	// A cycle is a structural defect even when its literals are asserted
	// directly.
	_, err := New(mustProgram(t, "a. a:- b. b:- a."))
	if !errors.Is(err, internalerr.ErrCyclicKnowledgeBase) {
		t.Errorf("Expected ErrCyclicKnowledgeBase, got %v", err)
	}
}

func TestTopologicalOrder(t *testing.T) {
	k, err := New(mustProgram(t, "beta. alpha, beta. beta:- alpha. gamma:- beta. delta:- beta, gamma."))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	pos := make(map[LitID]int)
	for i, id := range k.TopoLiterals() {
		pos[id] = i
	}
	if len(pos) != k.NumLiterals() {
		t.Fatalf("Topological order should cover all %d literals, got %d", k.NumLiterals(), len(pos))
	}

	// Every body literal must come before the rule's head.
	for ri := 0; ri < k.NumRules(); ri++ {
		head := k.RuleHead(RuleID(ri))
		for _, li := range k.RuleBody(RuleID(ri)) {
			if pos[li] >= pos[head] {
				t.Errorf("Literal %s should precede head %s in topological order",
					k.Literal(li), k.Literal(head))
			}
		}
	}
}

func TestComponents(t *testing.T) {
	k, err := New(mustProgram(t, "a. b:- a. x. y:- x. lone."))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// {a, b, b:-a}, {x, y, y:-x}, {lone}
	if k.NumComponents() != 3 {
		t.Errorf("Expected 3 components, got %d", k.NumComponents())
	}

	aID, _ := k.Lookup(logic.Pos("a"))
	bID, _ := k.Lookup(logic.Pos("b"))
	xID, _ := k.Lookup(logic.Pos("x"))
	if k.LiteralComponent(aID) != k.LiteralComponent(bID) {
		t.Error("a and b should share a component")
	}
	if k.LiteralComponent(aID) == k.LiteralComponent(xID) {
		t.Error("a and x should not share a component")
	}
}

func TestKnowledgeBaseString(t *testing.T) {
	k, err := New(mustProgram(t, "beta:- alpha. beta. alpha, beta."))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	want := "alpha, beta.\nbeta.\nbeta:- alpha.\n"
	if got := k.String(); got != want {
		t.Errorf("Rendering mismatch:\ngot  %q\nwant %q", got, want)
	}
}
