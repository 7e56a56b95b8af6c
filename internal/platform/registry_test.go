package platform

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rankbeam/citewatch/pkg/types"
)

func literalResolve(_ context.Context, ref string) (string, error) {
	return ref, nil
}

func TestNewRegistry_BuildsConfiguredPlatforms(t *testing.T) {
	cfgs := []types.PlatformConfig{
		{Name: types.PlatformOpenAI, APIKey: "sk-1"},
		{Name: types.PlatformGemini, APIKey: "gk-1", Model: "gemini-custom"},
	}

	reg, err := NewRegistry(context.Background(), cfgs, literalResolve)
	require.NoError(t, err)

	assert.Equal(t, []types.Platform{types.PlatformOpenAI, types.PlatformGemini}, reg.Platforms())

	entry, ok := reg.Get(types.PlatformOpenAI)
	require.True(t, ok)
	assert.Equal(t, defaultModels[types.PlatformOpenAI], entry.Model)

	entry, ok = reg.Get(types.PlatformGemini)
	require.True(t, ok)
	assert.Equal(t, "gemini-custom", entry.Model)

	_, ok = reg.Get(types.PlatformAnthropic)
	assert.False(t, ok)
}

func TestNewRegistry_UnknownPlatformRejected(t *testing.T) {
	cfgs := []types.PlatformConfig{{Name: "bing", APIKey: "x"}}

	_, err := NewRegistry(context.Background(), cfgs, literalResolve)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown platform")
}

func TestNewRegistry_DuplicatePlatformRejected(t *testing.T) {
	cfgs := []types.PlatformConfig{
		{Name: types.PlatformOpenAI, APIKey: "a"},
		{Name: types.PlatformOpenAI, APIKey: "b"},
	}

	_, err := NewRegistry(context.Background(), cfgs, literalResolve)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configured twice")
}

func TestNewRegistry_EmptyRejected(t *testing.T) {
	_, err := NewRegistry(context.Background(), nil, literalResolve)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no platforms configured")
}

func TestNewRegistry_ResolveErrorPropagates(t *testing.T) {
	cfgs := []types.PlatformConfig{{Name: types.PlatformOpenAI, APIKey: "env:MISSING"}}
	resolve := func(_ context.Context, _ string) (string, error) {
		return "", errors.New("environment variable MISSING is not set")
	}

	_, err := NewRegistry(context.Background(), cfgs, resolve)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolving openai api key")
}

type countingAdapter struct {
	calls atomic.Int64
}

func (c *countingAdapter) Name() types.Platform { return types.PlatformOpenAI }

func (c *countingAdapter) Query(_ context.Context, _ string) (*types.Answer, error) {
	c.calls.Add(1)
	return nil, errors.New("returned status 500")
}

func TestBreaker_FastFailsAfterConsecutiveFailures(t *testing.T) {
	inner := &countingAdapter{}
	wrapped := withBreaker(inner)
	ctx := context.Background()

	for i := 0; i < breakerFailThreshold; i++ {
		_, err := wrapped.Query(ctx, "q")
		require.Error(t, err)
	}
	require.EqualValues(t, breakerFailThreshold, inner.calls.Load())

	// The breaker is open: subsequent calls fail without reaching the adapter.
	_, err := wrapped.Query(ctx, "q")
	require.Error(t, err)
	assert.EqualValues(t, breakerFailThreshold, inner.calls.Load())
}
