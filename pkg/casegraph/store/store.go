// Package store persists prolog-syntax programs. Programs are stored as
// rendered canonical text and re-parsed on use; the renderer/parser
// round-trip law makes that lossless.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/cognicore/casegraph/pkg/casegraph/internalerr"
	"github.com/cognicore/casegraph/pkg/casegraph/logic"
)

// Store is the interface for persisting and retrieving programs.
type Store interface {
	Close() error

	// PutProgram validates and stores a program under a name, normalizing
	// the source to its canonical rendering. An existing name keeps its ID
	// and creation time; the source is replaced.
	PutProgram(ctx context.Context, name, source string) (Program, error)

	// GetProgram returns a program by ID, failing with ErrNotFound when no
	// such program exists.
	GetProgram(ctx context.Context, id string) (Program, error)

	// GetProgramByName returns a program by name, reporting whether it was
	// found.
	GetProgramByName(ctx context.Context, name string) (Program, bool, error)

	// ListPrograms returns all stored programs, newest first.
	ListPrograms(ctx context.Context) ([]Program, error)

	// DeleteProgram removes a program by ID, failing with ErrNotFound when
	// no such program exists.
	DeleteProgram(ctx context.Context, id string) error
}

// Program is a stored program record.
type Program struct {
	ID        string // ULID
	Name      string
	Source    string // canonical prolog rendering
	CreatedAt time.Time
}

// Parse parses the stored source back into clause and rule values.
func (p Program) Parse() (logic.Program, error) {
	return logic.ParseProgram(p.Source)
}

// Normalize parses source and renders it back in canonical form: statements
// sorted, literals in alphabetical printed order, one statement per line.
// Invalid source fails with the parser's error.
func Normalize(source string) (string, error) {
	p, err := logic.ParseProgram(source)
	if err != nil {
		return "", err
	}
	if len(p.Clauses) == 0 && len(p.Rules) == 0 {
		return "", fmt.Errorf("empty program: %w", internalerr.ErrInvalidInput)
	}
	return p.String(), nil
}
