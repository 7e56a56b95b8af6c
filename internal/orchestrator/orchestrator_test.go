package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/rankbeam/citewatch/internal/alert"
	"github.com/rankbeam/citewatch/internal/executor"
	"github.com/rankbeam/citewatch/internal/platform"
	"github.com/rankbeam/citewatch/internal/provider/memory"
	"github.com/rankbeam/citewatch/internal/runner"
	"github.com/rankbeam/citewatch/internal/testutil"
	"github.com/rankbeam/citewatch/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var orchTarget = types.Target{ID: "rentail", Hostname: "rentail.space"}

func newOrchestrator(store *memory.Store, reg *platform.Registry, repetitions int) *Orchestrator {
	dispatcher := alert.NewDispatcherWithSinks(&testutil.CaptureSink{})
	r := runner.New(store, executor.New(store, dispatcher), dispatcher, time.Millisecond)
	return New(store, reg, r, repetitions, 24*time.Hour)
}

func TestRunAll_EmptyCatalogRejected(t *testing.T) {
	store := memory.New()
	reg := &platform.Registry{}
	reg.Register(testutil.NewFakeAdapter(types.PlatformOpenAI), "gpt-4o")

	_, err := newOrchestrator(store, reg, 1).RunAll(context.Background(), orchTarget, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog is empty")
}

func TestRunAll_EndToEnd(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	// Three scripted answers cycle across the 6 calls (2 queries x 3 reps).
	adapter := testutil.NewFakeAdapter(types.PlatformOpenAI,
		testutil.Scripted{Answer: &types.Answer{
			Text:      "cited first",
			Citations: []string{"https://rentail.space/home", "https://other.com"},
		}},
		testutil.Scripted{Answer: &types.Answer{
			Text:      "cited third",
			Citations: []string{"https://a.com", "https://b.com", "https://rentail.space"},
		}},
		testutil.Scripted{Answer: &types.Answer{
			Text:      "not cited",
			Citations: []string{"https://a.com"},
		}},
	)
	reg := &platform.Registry{}
	reg.Register(adapter, "gpt-4o")

	catalog := []types.CatalogEntry{
		{Query: "q1", Category: "discovery"},
		{Query: "q2", Category: "comparison"},
	}

	history, err := newOrchestrator(store, reg, 3).RunAll(ctx, orchTarget, catalog)
	require.NoError(t, err)

	require.Len(t, history, 1)
	require.Len(t, history[0].Runs, 1)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), history[0].Date)

	rh := history[0].Runs[0]
	assert.Equal(t, types.PlatformOpenAI, rh.Run.Platform)
	require.Len(t, rh.Results, 6)

	// Results come back sorted by (query, repetition); the script cycles so
	// each query sees positions 0, 2, none.
	wantPositions := []*int{intPtr(0), intPtr(2), nil, intPtr(0), intPtr(2), nil}
	for i, res := range rh.Results {
		if wantPositions[i] == nil {
			assert.Nil(t, res.Position, "result %d", i)
		} else {
			require.NotNil(t, res.Position, "result %d", i)
			assert.Equal(t, *wantPositions[i], *res.Position, "result %d", i)
		}
	}
	assert.Equal(t, "q1", rh.Results[0].Query)
	assert.Equal(t, 1, rh.Results[0].Repetition)
	assert.Equal(t, "q2", rh.Results[5].Query)
	assert.Equal(t, 3, rh.Results[5].Repetition)
}

func TestRunAll_PlatformFailureDoesNotBlockSiblings(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	broken := testutil.NewFakeAdapter(types.PlatformAnthropic,
		testutil.Scripted{Err: errors.New("returned status 500")})
	healthy := testutil.NewFakeAdapter(types.PlatformOpenAI,
		testutil.Scripted{Answer: &types.Answer{Text: "fine", Citations: []string{"https://rentail.space"}}})

	reg := &platform.Registry{}
	reg.Register(broken, "claude-3-7-sonnet-latest")
	reg.Register(healthy, "gpt-4o")

	catalog := []types.CatalogEntry{{Query: "q1", Category: "discovery"}}
	history, err := newOrchestrator(store, reg, 1).RunAll(ctx, orchTarget, catalog)
	require.NoError(t, err)

	// Both platforms got a Run; only the healthy one has a persisted result.
	runs, err := store.ListRuns(ctx, "rentail")
	require.NoError(t, err)
	require.Len(t, runs, 2)

	total := 0
	for _, day := range history {
		for _, rh := range day.Runs {
			total += len(rh.Results)
			if rh.Run.Platform == types.PlatformOpenAI {
				assert.Len(t, rh.Results, 1)
			} else {
				assert.Empty(t, rh.Results)
			}
		}
	}
	assert.Equal(t, 1, total)
}

func TestRunAll_FreshPlatformsSkippedIndependently(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	// Anthropic already ran within the window; OpenAI has not.
	require.NoError(t, store.CreateRun(ctx, types.Run{
		RunID: "fresh", TargetID: "rentail", Platform: types.PlatformAnthropic,
		CreatedAt: time.Now().UTC().Add(-time.Hour),
	}))

	anthropic := testutil.NewFakeAdapter(types.PlatformAnthropic)
	openai := testutil.NewFakeAdapter(types.PlatformOpenAI)
	reg := &platform.Registry{}
	reg.Register(anthropic, "claude-3-7-sonnet-latest")
	reg.Register(openai, "gpt-4o")

	catalog := []types.CatalogEntry{{Query: "q1", Category: "discovery"}}
	_, err := newOrchestrator(store, reg, 1).RunAll(ctx, orchTarget, catalog)
	require.NoError(t, err)

	assert.Zero(t, anthropic.CallCount())
	assert.Equal(t, 1, openai.CallCount())
}

func TestHistory_GroupsByUTCDayAscending(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	days := []string{"2026-08-28", "2026-08-26", "2026-08-27"}
	for i, d := range days {
		run := types.Run{
			RunID: d, TargetID: "rentail", Platform: types.PlatformOpenAI,
			CreatedAt: testutil.Day(d),
		}
		require.NoError(t, store.CreateRun(ctx, run))
		require.NoError(t, store.PutResult(ctx, types.Result{
			RunID: run.RunID, Query: "q1", Repetition: i + 1,
		}))
	}

	orch := New(store, nil, nil, 1, 24*time.Hour)
	history, err := orch.History(ctx, "rentail")
	require.NoError(t, err)

	require.Len(t, history, 3)
	assert.Equal(t, "2026-08-26", history[0].Date)
	assert.Equal(t, "2026-08-27", history[1].Date)
	assert.Equal(t, "2026-08-28", history[2].Date)
	for _, day := range history {
		require.Len(t, day.Runs, 1)
		assert.Len(t, day.Runs[0].Results, 1)
	}
}

func TestHistory_EmptyTarget(t *testing.T) {
	orch := New(memory.New(), nil, nil, 1, 24*time.Hour)

	history, err := orch.History(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func intPtr(i int) *int { return &i }
