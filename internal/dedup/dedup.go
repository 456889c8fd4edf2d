// Package dedup tracks symbols that have already been alerted on or acted
// upon, so a condition fires at most once across polling cycles and process
// restarts.
package dedup

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// ErrPersistence wraps a failed state save. The in-memory set is left
// uncommitted so the next cycle retries; a duplicate alert is preferred over
// a silently lost one.
var ErrPersistence = errors.New("known-set persistence failed")

// StateStore persists the known set across restarts.
type StateStore interface {
	LoadKnownSymbols(ctx context.Context) (map[string]struct{}, error)
	SaveKnownSymbols(ctx context.Context, symbols map[string]struct{}) error
}

// Store holds the committed known set. The set grows monotonically; there is
// no removal policy.
type Store struct {
	mu      sync.Mutex
	known   map[string]struct{}
	backend StateStore
	log     zerolog.Logger
}

// Load builds a store seeded from the backend. A load failure starts the set
// empty rather than aborting: worst case is a re-alert.
func Load(ctx context.Context, backend StateStore, logger zerolog.Logger) *Store {
	known, err := backend.LoadKnownSymbols(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("loading known symbols failed, starting empty")
		known = nil
	}
	if known == nil {
		known = make(map[string]struct{})
	}
	logger.Info().Int("count", len(known)).Msg("loaded known symbols")
	return &Store{known: known, backend: backend, log: logger}
}

// Delta returns the members of current not yet committed, sorted.
func (s *Store) Delta(current map[string]struct{}) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var fresh []string
	for sym := range current {
		if _, seen := s.known[sym]; !seen {
			fresh = append(fresh, sym)
		}
	}
	sort.Strings(fresh)
	return fresh
}

// Commit merges items into the known set and persists the result. On a save
// failure the in-memory set is rolled back to its pre-commit contents and
// ErrPersistence is returned: the items stay uncommitted and will show up in
// the next Delta.
func (s *Store) Commit(ctx context.Context, items []string) error {
	if len(items) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := make(map[string]struct{}, len(s.known)+len(items))
	for sym := range s.known {
		merged[sym] = struct{}{}
	}
	for _, sym := range items {
		merged[sym] = struct{}{}
	}

	if err := s.backend.SaveKnownSymbols(ctx, merged); err != nil {
		s.log.Error().Err(err).Int("items", len(items)).Msg("known-set save failed, commit deferred")
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.known = merged
	return nil
}

// Contains reports whether a symbol has been committed.
func (s *Store) Contains(symbol string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, seen := s.known[symbol]
	return seen
}

// Len returns the committed set size.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.known)
}
