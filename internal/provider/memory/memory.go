// Package memory implements an in-memory Store for tests and local runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rankbeam/citewatch/internal/provider"
	"github.com/rankbeam/citewatch/pkg/types"
)

// Compile-time interface satisfaction check.
var _ provider.Store = (*Store)(nil)

// Store is an in-memory Store implementation. Safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	targets map[string]types.Target
	runs    map[string][]types.Run             // key: targetID, append order
	results map[string]map[string]types.Result // key: runID -> resultKey
	locks   map[string]time.Time               // key -> expiry
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		targets: make(map[string]types.Target),
		runs:    make(map[string][]types.Run),
		results: make(map[string]map[string]types.Result),
		locks:   make(map[string]time.Time),
	}
}

func resultKey(query string, repetition int) string {
	return fmt.Sprintf("%s#%03d", query, repetition)
}

// PutTarget registers or updates a target.
func (s *Store) PutTarget(_ context.Context, target types.Target) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.targets[target.ID] = target
	return nil
}

// GetTarget retrieves a target by id.
func (s *Store) GetTarget(_ context.Context, id string) (*types.Target, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.targets[id]
	if !ok {
		return nil, fmt.Errorf("target %q: %w", id, provider.ErrNotFound)
	}
	return &t, nil
}

// ListTargets returns all registered targets, ordered by id.
func (s *Store) ListTargets(_ context.Context) ([]types.Target, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Target, 0, len(s.targets))
	for _, t := range s.targets {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreateRun stores a new Run.
func (s *Store) CreateRun(_ context.Context, run types.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.TargetID] = append(s.runs[run.TargetID], run)
	return nil
}

// LatestRunSince returns the most recent Run for (target, platform) created
// at or after since, or nil when none qualifies (half-open window).
func (s *Store) LatestRunSince(_ context.Context, targetID string, platform types.Platform, since time.Time) (*types.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var latest *types.Run
	for i := range s.runs[targetID] {
		run := s.runs[targetID][i]
		if run.Platform != platform {
			continue
		}
		if latest == nil || run.CreatedAt.After(latest.CreatedAt) {
			latest = &run
		}
	}
	if latest == nil || latest.CreatedAt.Before(since) {
		return nil, nil
	}
	out := *latest
	return &out, nil
}

// ListRuns returns all runs for a target, oldest first.
func (s *Store) ListRuns(_ context.Context, targetID string) ([]types.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Run, len(s.runs[targetID]))
	copy(out, s.runs[targetID])
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// PutResult stores a Result, enforcing at most one per (run, query,
// repetition). Duplicates return provider.ErrResultExists.
func (s *Store) PutResult(_ context.Context, result types.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byKey, ok := s.results[result.RunID]
	if !ok {
		byKey = make(map[string]types.Result)
		s.results[result.RunID] = byKey
	}

	key := resultKey(result.Query, result.Repetition)
	if _, dup := byKey[key]; dup {
		return provider.ErrResultExists
	}
	byKey[key] = result
	return nil
}

// HasResult reports whether a Result exists for (run, query, repetition).
func (s *Store) HasResult(_ context.Context, runID, query string, repetition int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.results[runID][resultKey(query, repetition)]
	return ok, nil
}

// ListResults returns all results for a run, sorted by (query, repetition).
func (s *Store) ListResults(_ context.Context, runID string) ([]types.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.results[runID]))
	for k := range s.results[runID] {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]types.Result, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.results[runID][k])
	}
	return out, nil
}

// AcquireLock acquires a single-flight lock unless an unexpired holder exists.
func (s *Store) AcquireLock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if expiry, held := s.locks[key]; held && time.Now().Before(expiry) {
		return false, nil
	}
	s.locks[key] = time.Now().Add(ttl)
	return true, nil
}

// ReleaseLock releases a single-flight lock.
func (s *Store) ReleaseLock(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, key)
	return nil
}

// Start is a no-op for the in-memory store.
func (s *Store) Start(_ context.Context) error { return nil }

// Stop is a no-op for the in-memory store.
func (s *Store) Stop(_ context.Context) error { return nil }

// Ping always succeeds for the in-memory store.
func (s *Store) Ping(_ context.Context) error { return nil }
