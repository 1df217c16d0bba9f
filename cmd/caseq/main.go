// Command caseq loads a prolog-syntax program and answers support and
// argument queries against it.
//
// The program comes either from a file (-kb) or from a program store
// (-db plus -program). With -claim it runs one query and exits; without it,
// it reads claims from stdin.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/cognicore/casegraph/pkg/casegraph"
	"github.com/cognicore/casegraph/pkg/casegraph/internalerr"
	"github.com/cognicore/casegraph/pkg/casegraph/logic"
	"github.com/cognicore/casegraph/pkg/casegraph/store/sqlite"
)

func main() {
	var (
		kbPath   = flag.String("kb", "", "Program file (prolog syntax)")
		dbPath   = flag.String("db", "", "Program store database path")
		progName = flag.String("program", "", "Stored program name (requires -db)")
		claim    = flag.String("claim", "", "One-shot claim query (non-interactive mode)")
		maxArgs  = flag.Int("max", 10, "Maximum number of arguments to print per claim")
		minimal  = flag.Bool("minimal", false, "Only enumerate minimal justifications")
		workers  = flag.Int("workers", 0, "Worker goroutines for engine construction (0 = auto)")
	)
	flag.Parse()

	ctx := context.Background()

	source, err := loadSource(ctx, *kbPath, *dbPath, *progName)
	if err != nil {
		log.Fatal(err)
	}

	var opts []casegraph.Option
	if *minimal {
		opts = append(opts, casegraph.WithMinimal())
	}
	if *workers > 0 {
		opts = append(opts, casegraph.WithWorkers(*workers))
	}

	engine, err := casegraph.FromSource(source, opts...)
	if err != nil {
		log.Fatal(err)
	}

	// One-shot query mode
	if *claim != "" {
		if err := executeQuery(engine, *claim, *maxArgs); err != nil {
			log.Fatal(err)
		}
		return
	}

	// Interactive mode
	fmt.Println("===========================================")
	fmt.Println("  caseq")
	fmt.Println("  Support and argument queries")
	fmt.Println("===========================================")
	fmt.Println()
	fmt.Print(engine.String())
	fmt.Println()
	fmt.Println("Type a claim literal (Ctrl+D to exit):")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if err := executeQuery(engine, line, *maxArgs); err != nil {
			fmt.Println(err)
		}
		fmt.Println()
	}
}

func loadSource(ctx context.Context, kbPath, dbPath, progName string) (string, error) {
	switch {
	case kbPath != "":
		data, err := os.ReadFile(kbPath)
		if err != nil {
			return "", err
		}
		return string(data), nil
	case dbPath != "" && progName != "":
		st, err := sqlite.OpenSQLite(ctx, dbPath)
		if err != nil {
			return "", err
		}
		defer st.Close()
		p, found, err := st.GetProgramByName(ctx, progName)
		if err != nil {
			return "", err
		}
		if !found {
			return "", fmt.Errorf("program %q not found in %s", progName, dbPath)
		}
		return p.Source, nil
	default:
		return "", errors.New("either -kb, or -db and -program, required")
	}
}

func executeQuery(engine *casegraph.Engine, claim string, maxArgs int) error {
	lit, err := logic.ParseLiteral(claim)
	if err != nil {
		return err
	}

	supported, err := engine.IsSupported(lit)
	if errors.Is(err, internalerr.ErrUnknownLiteral) {
		fmt.Printf("claim: %s\nunknown literal\n", lit)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("claim: %s\nsupported: %v\n", lit, supported)
	if !supported {
		return nil
	}

	args, err := engine.ArgumentsFor(lit)
	if err != nil {
		return err
	}

	fmt.Println("arguments:")
	n := 0
	for a := range args {
		n++
		fmt.Printf("  %d. %s\n", n, a)
		if maxArgs > 0 && n >= maxArgs {
			fmt.Println("  ... (truncated, raise -max for more)")
			break
		}
	}
	return nil
}
