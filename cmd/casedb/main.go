// Command casedb manages a program store: add, list, show, and remove
// prolog-syntax programs in a SQLite database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/cognicore/casegraph/pkg/casegraph/store"
	"github.com/cognicore/casegraph/pkg/casegraph/store/sqlite"
)

func main() {
	var (
		dbPath = flag.String("db", "", "Program store database path (required)")
		add    = flag.String("add", "", "Program file to add")
		name   = flag.String("name", "", "Program name (required with -add, optional with -show)")
		list   = flag.Bool("list", false, "List stored programs")
		show   = flag.String("show", "", "Show a stored program by name")
		rm     = flag.String("rm", "", "Remove a stored program by ID")
	)
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("-db required")
	}

	ctx := context.Background()

	st, err := sqlite.OpenSQLite(ctx, *dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()

	switch {
	case *add != "":
		if *name == "" {
			log.Fatal("-name required with -add")
		}
		if err := addProgram(ctx, st, *name, *add); err != nil {
			log.Fatal(err)
		}
	case *list:
		if err := listPrograms(ctx, st); err != nil {
			log.Fatal(err)
		}
	case *show != "":
		if err := showProgram(ctx, st, *show); err != nil {
			log.Fatal(err)
		}
	case *rm != "":
		if err := st.DeleteProgram(ctx, *rm); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("removed %s\n", *rm)
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func addProgram(ctx context.Context, st store.Store, name, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	p, err := st.PutProgram(ctx, name, string(data))
	if err != nil {
		return err
	}
	fmt.Printf("stored %s as %q (id %s)\n", path, p.Name, p.ID)
	return nil
}

func listPrograms(ctx context.Context, st store.Store) error {
	programs, err := st.ListPrograms(ctx)
	if err != nil {
		return err
	}
	if len(programs) == 0 {
		fmt.Println("no programs stored")
		return nil
	}
	for _, p := range programs {
		fmt.Printf("%s  %-20s  %s\n", p.ID, p.Name, p.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func showProgram(ctx context.Context, st store.Store, name string) error {
	p, found, err := st.GetProgramByName(ctx, name)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("program %q not found", name)
	}
	fmt.Printf("# %s (id %s)\n%s", p.Name, p.ID, p.Source)
	return nil
}
