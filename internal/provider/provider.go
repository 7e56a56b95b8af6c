// Package provider defines the storage backend interface for citewatch.
package provider

import (
	"context"
	"errors"
	"time"

	"github.com/rankbeam/citewatch/pkg/types"
)

// ErrResultExists is returned by PutResult when a Result with the same
// (run, query, repetition) tuple already exists.
var ErrResultExists = errors.New("result already exists")

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store is the storage backend interface. DynamoDB is the production
// backend; the memory backend serves tests and local runs.
type Store interface {
	// Target registry
	PutTarget(ctx context.Context, target types.Target) error
	GetTarget(ctx context.Context, id string) (*types.Target, error)
	ListTargets(ctx context.Context) ([]types.Target, error)

	// Runs — created once per (target, platform) per freshness window,
	// never updated or deleted.
	CreateRun(ctx context.Context, run types.Run) error
	LatestRunSince(ctx context.Context, targetID string, platform types.Platform, since time.Time) (*types.Run, error)
	ListRuns(ctx context.Context, targetID string) ([]types.Run, error)

	// Results — written exactly once per (run, query, repetition).
	PutResult(ctx context.Context, result types.Result) error
	HasResult(ctx context.Context, runID, query string, repetition int) (bool, error)
	ListResults(ctx context.Context, runID string) ([]types.Result, error)

	// Single-flight locking for run creation
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key string) error

	// Lifecycle
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Ping(ctx context.Context) error
}
