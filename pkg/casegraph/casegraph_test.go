package casegraph

import (
	"errors"
	"sync"
	"testing"

	"github.com/cognicore/casegraph/pkg/casegraph/internalerr"
	"github.com/cognicore/casegraph/pkg/casegraph/logic"
)

func TestEndToEndScenario(t *testing.T) {
	engine, err := FromSource("beta. alpha, beta. beta:- alpha. gamma:- beta.")
	if err != nil {
		t.Fatalf("FromSource: %v", err)
	}

	for _, atom := range []string{"alpha", "beta", "gamma"} {
		supported, err := engine.IsSupported(logic.Pos(atom))
		if err != nil {
			t.Fatalf("IsSupported(%s): %v", atom, err)
		}
		if !supported {
			t.Errorf("Expected %s to be supported", atom)
		}
	}

	args, err := engine.ArgumentsFor(logic.Pos("gamma"))
	if err != nil {
		t.Fatalf("ArgumentsFor: %v", err)
	}
	n := 0
	for a := range args {
		if a.Claim != logic.Pos("gamma") {
			t.Errorf("Claim should be gamma, got %s", a.Claim)
		}
		n++
	}
	if n != 3 {
		t.Errorf("Expected 3 arguments for gamma, got %d", n)
	}
}

func TestConstructionFailsOnCycle(t *testing.T) {
	_, err := FromSource("a:- b. b:- a.")
	if !errors.Is(err, internalerr.ErrCyclicKnowledgeBase) {
		t.Errorf("Expected ErrCyclicKnowledgeBase, got %v", err)
	}
}

func TestConstructionFailsOnParseError(t *testing.T) {
	_, err := FromSource("not valid!")
	if !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestContains(t *testing.T) {
	engine, err := FromSource("alpha. beta:- alpha.")
	if err != nil {
		t.Fatalf("FromSource: %v", err)
	}

	if !engine.Contains(logic.Pos("beta")) {
		t.Error("beta should be registered")
	}
	if engine.Contains(logic.Pos("omega")) {
		t.Error("omega should not be registered")
	}
}

func TestMinimalOption(t *testing.T) {
	engine, err := FromSource("beta. alpha, beta. beta:- alpha.", WithMinimal())
	if err != nil {
		t.Fatalf("FromSource: %v", err)
	}

	ccoses, err := engine.CasesFor(logic.Pos("beta"))
	if err != nil {
		t.Fatalf("CasesFor: %v", err)
	}
	n := 0
	for range ccoses {
		n++
	}
	if n != 2 {
		t.Errorf("Expected 2 minimal CCoSEs for beta, got %d", n)
	}
}

func TestConcurrentQueries(t *testing.T) {
	engine, err := FromSource("beta. alpha, beta. beta:- alpha. gamma:- beta.")
	if err != nil {
		t.Fatalf("FromSource: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			supported, err := engine.IsSupported(logic.Pos("gamma"))
			if err != nil {
				errs <- err
				return
			}
			if !supported {
				errs <- errors.New("gamma should be supported")
				return
			}
			ccoses, err := engine.CasesFor(logic.Pos("gamma"))
			if err != nil {
				errs <- err
				return
			}
			n := 0
			for range ccoses {
				n++
			}
			if n != 3 {
				errs <- errors.New("gamma should have 3 CCoSEs")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestSupportedLiteralsSorted(t *testing.T) {
	engine, err := FromSource("zeta. alpha. middle:- alpha.")
	if err != nil {
		t.Fatalf("FromSource: %v", err)
	}

	got := engine.SupportedLiterals()
	want := []logic.Literal{logic.Pos("alpha"), logic.Pos("middle"), logic.Pos("zeta")}
	if len(got) != len(want) {
		t.Fatalf("Expected %d literals, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Position %d: got %s, want %s", i, got[i], want[i])
		}
	}
}
