//go:build integration

package dynamodb

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rankbeam/citewatch/internal/provider"
	"github.com/rankbeam/citewatch/pkg/types"
)

// Integration tests against DynamoDB Local (http://localhost:8000).
// Run with: go test -tags integration ./internal/provider/dynamodb/

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	tableName := fmt.Sprintf("citewatch-test-%d", time.Now().UnixNano())
	cfg := &Config{
		TableName:   tableName,
		Region:      "us-east-1",
		Endpoint:    "http://localhost:8000",
		CreateTable: true,
	}
	store, err := New(cfg)
	if err != nil {
		t.Skipf("DynamoDB Local not available: %v", err)
	}
	if err := store.Start(ctx); err != nil {
		t.Skipf("DynamoDB Local not available: %v", err)
	}
	t.Cleanup(func() {
		client, ok := store.client.(*dynamodb.Client)
		if ok {
			_, _ = client.DeleteTable(context.Background(), &dynamodb.DeleteTableInput{
				TableName: &tableName,
			})
		}
	})
	return store
}

func TestIntegration_TargetLifecycle(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	target := types.Target{
		ID: "rentail", Hostname: "rentail.space", Name: "Rentail",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.PutTarget(ctx, target))

	got, err := store.GetTarget(ctx, "rentail")
	require.NoError(t, err)
	assert.Equal(t, target.Hostname, got.Hostname)

	targets, err := store.ListTargets(ctx)
	require.NoError(t, err)
	require.Len(t, targets, 1)

	_, err = store.GetTarget(ctx, "missing")
	assert.ErrorIs(t, err, provider.ErrNotFound)
}

func TestIntegration_RunFreshnessWindow(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, store.CreateRun(ctx, types.Run{
		RunID: "old", TargetID: "t1", Platform: types.PlatformOpenAI,
		CreatedAt: now.Add(-48 * time.Hour),
	}))
	require.NoError(t, store.CreateRun(ctx, types.Run{
		RunID: "new", TargetID: "t1", Platform: types.PlatformOpenAI,
		CreatedAt: now.Add(-time.Hour),
	}))

	run, err := store.LatestRunSince(ctx, "t1", types.PlatformOpenAI, now.Add(-24*time.Hour))
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, "new", run.RunID)

	run, err = store.LatestRunSince(ctx, "t1", types.PlatformGemini, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Nil(t, run)

	runs, err := store.ListRuns(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "old", runs[0].RunID)
}

func TestIntegration_ResultIdempotency(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	result := types.Result{RunID: "r1", Query: "q1", Repetition: 1, Answer: "first"}
	require.NoError(t, store.PutResult(ctx, result))

	result.Answer = "second"
	assert.ErrorIs(t, store.PutResult(ctx, result), provider.ErrResultExists)

	ok, err := store.HasResult(ctx, "r1", "q1", 1)
	require.NoError(t, err)
	assert.True(t, ok)

	results, err := store.ListResults(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "first", results[0].Answer)
}

func TestIntegration_ConcurrentLockAcquisition(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	acquired := make([]bool, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok, err := store.AcquireLock(ctx, "run:t1:openai:2026-08-30", time.Minute)
			require.NoError(t, err)
			acquired[i] = ok
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, ok := range acquired {
		if ok {
			winners++
		}
	}
	assert.Equal(t, 1, winners)
}
