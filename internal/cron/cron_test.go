package cron

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rankbeam/citewatch/internal/alert"
	"github.com/rankbeam/citewatch/internal/catalog"
	"github.com/rankbeam/citewatch/internal/executor"
	"github.com/rankbeam/citewatch/internal/orchestrator"
	"github.com/rankbeam/citewatch/internal/platform"
	"github.com/rankbeam/citewatch/internal/provider"
	"github.com/rankbeam/citewatch/internal/provider/memory"
	"github.com/rankbeam/citewatch/internal/runner"
	"github.com/rankbeam/citewatch/internal/testutil"
	"github.com/rankbeam/citewatch/pkg/types"
)

// flakyStore fails ListRuns on demand to simulate a storage outage during
// the orchestrator's read-back.
type flakyStore struct {
	*memory.Store
	failListRuns bool
}

func (s *flakyStore) ListRuns(ctx context.Context, targetID string) ([]types.Run, error) {
	if s.failListRuns {
		return nil, errors.New("connection reset by peer")
	}
	return s.Store.ListRuns(ctx, targetID)
}

func newTestDriver(t *testing.T, store provider.Store, cat *catalog.Resolver, sink *testutil.CaptureSink, adapters ...platform.Adapter) *Driver {
	t.Helper()
	dispatcher := alert.NewDispatcherWithSinks(sink)
	reg := &platform.Registry{}
	for _, a := range adapters {
		reg.Register(a, "test-model")
	}
	r := runner.New(store, executor.New(store, dispatcher), dispatcher, time.Millisecond)
	orch := orchestrator.New(store, reg, r, 1, 24*time.Hour)

	d := New(store, orch, cat, dispatcher)
	d.sleep = func(_ context.Context, _ time.Duration) {}
	return d
}

func baseCatalog() *catalog.Resolver {
	return catalog.NewResolver([]types.CatalogEntry{
		{Query: "q1", Category: "discovery"},
	}, "")
}

func TestRunBatch_AllTargetsSucceed(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	require.NoError(t, store.PutTarget(ctx, types.Target{ID: "alpha", Hostname: "alpha.example"}))
	require.NoError(t, store.PutTarget(ctx, types.Target{ID: "beta", Hostname: "beta.example"}))

	adapter := testutil.NewFakeAdapter(types.PlatformOpenAI)
	d := newTestDriver(t, store, baseCatalog(), &testutil.CaptureSink{}, adapter)

	summary, err := d.RunBatch(ctx)
	require.NoError(t, err)

	assert.NotEmpty(t, summary.BatchID)
	assert.Equal(t, 2, summary.Targets)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Empty(t, summary.Failed)
	assert.False(t, summary.EndedAt.Before(summary.StartedAt))

	// One run per target on the single configured platform.
	for _, id := range []string{"alpha", "beta"} {
		runs, err := store.ListRuns(ctx, id)
		require.NoError(t, err)
		assert.Len(t, runs, 1, "target %s", id)
	}
	assert.Equal(t, 2, adapter.CallCount())
}

func TestRunBatch_FailedTargetDoesNotAbortBatch(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	require.NoError(t, store.PutTarget(ctx, types.Target{ID: "broken", Hostname: "broken.example"}))
	require.NoError(t, store.PutTarget(ctx, types.Target{ID: "healthy", Hostname: "healthy.example"}))

	// A present but invalid per-target catalog makes resolution fail for
	// "broken" only.
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("queries: []\n"), 0o644))
	cat := catalog.NewResolver([]types.CatalogEntry{{Query: "q1", Category: "discovery"}}, dir)

	sink := &testutil.CaptureSink{}
	adapter := testutil.NewFakeAdapter(types.PlatformOpenAI)
	d := newTestDriver(t, store, cat, sink, adapter)

	summary, err := d.RunBatch(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Targets)
	assert.Equal(t, 1, summary.Succeeded)
	require.Len(t, summary.Failed, 1)
	assert.Equal(t, "broken", summary.Failed[0].TargetID)
	assert.Equal(t, types.FailureTransient, summary.Failed[0].Category)

	runs, err := store.ListRuns(ctx, "healthy")
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	// The batch-level failure is alerted.
	var batchAlerts int
	for _, a := range sink.Alerts() {
		if a.TargetID == "broken" {
			batchAlerts++
		}
	}
	assert.Equal(t, 1, batchAlerts)
}

func TestRunBatch_RetriesTransientFailures(t *testing.T) {
	store := &flakyStore{Store: memory.New(), failListRuns: true}
	ctx := context.Background()

	require.NoError(t, store.PutTarget(ctx, types.Target{ID: "flaky", Hostname: "flaky.example"}))

	d := newTestDriver(t, store, baseCatalog(), &testutil.CaptureSink{}, testutil.NewFakeAdapter(types.PlatformOpenAI))

	var sleeps []time.Duration
	d.sleep = func(_ context.Context, dur time.Duration) { sleeps = append(sleeps, dur) }

	summary, err := d.RunBatch(ctx)
	require.NoError(t, err)
	require.Len(t, summary.Failed, 1)

	// MaxAttempts=2 means exactly one backoff sleep between attempts.
	require.Len(t, sleeps, 1)
	assert.Equal(t, time.Duration(d.retry.BackoffSeconds)*time.Second, sleeps[0])
}

func TestRunBatch_EmptyTargetList(t *testing.T) {
	store := memory.New()
	d := newTestDriver(t, store, baseCatalog(), &testutil.CaptureSink{}, testutil.NewFakeAdapter(types.PlatformOpenAI))

	summary, err := d.RunBatch(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.Targets)
	assert.Zero(t, summary.Succeeded)
	assert.Empty(t, summary.Failed)
}
