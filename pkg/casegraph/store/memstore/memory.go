// Package memstore provides an in-memory store.Store, used by tests and
// short-lived tooling.
package memstore

import (
	"context"
	"crypto/rand"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/casegraph/pkg/casegraph/internalerr"
	"github.com/cognicore/casegraph/pkg/casegraph/store"
)

// Store is an in-memory implementation of store.Store.
type Store struct {
	mu       sync.RWMutex
	entropy  *ulid.MonotonicEntropy
	programs map[string]store.Program // by ID
	names    map[string]string        // name -> ID
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		entropy:  ulid.Monotonic(rand.Reader, 0),
		programs: make(map[string]store.Program),
		names:    make(map[string]string),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// PutProgram validates, normalizes, and stores a program, keyed by name.
func (s *Store) PutProgram(ctx context.Context, name, source string) (store.Program, error) {
	if name == "" {
		return store.Program{}, fmt.Errorf("program name is empty: %w", internalerr.ErrInvalidInput)
	}
	normalized, err := store.Normalize(source)
	if err != nil {
		return store.Program{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.names[name]; ok {
		p := s.programs[id]
		p.Source = normalized
		s.programs[id] = p
		return p, nil
	}

	p := store.Program{
		ID:        ulid.MustNew(ulid.Now(), s.entropy).String(),
		Name:      name,
		Source:    normalized,
		CreatedAt: time.Now().UTC(),
	}
	s.programs[p.ID] = p
	s.names[name] = p.ID
	return p, nil
}

// GetProgram returns a program by ID.
func (s *Store) GetProgram(ctx context.Context, id string) (store.Program, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.programs[id]; ok {
		return p, nil
	}
	return store.Program{}, fmt.Errorf("program %s: %w", id, internalerr.ErrNotFound)
}

// GetProgramByName returns a program by name.
func (s *Store) GetProgramByName(ctx context.Context, name string) (store.Program, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id, ok := s.names[name]; ok {
		return s.programs[id], true, nil
	}
	return store.Program{}, false, nil
}

// ListPrograms returns all stored programs, newest first.
func (s *Store) ListPrograms(ctx context.Context) ([]store.Program, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.Program, 0, len(s.programs))
	for _, p := range s.programs {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// DeleteProgram removes a program by ID.
func (s *Store) DeleteProgram(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.programs[id]
	if !ok {
		return fmt.Errorf("program %s: %w", id, internalerr.ErrNotFound)
	}
	delete(s.programs, id)
	delete(s.names, p.Name)
	return nil
}
