package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rankbeam/citewatch/pkg/types"
)

func TestRunLockKey(t *testing.T) {
	windowStart := time.Date(2026, 8, 30, 6, 30, 0, 0, time.UTC)

	key := RunLockKey("rentail", types.PlatformOpenAI, windowStart)
	assert.Equal(t, "run:rentail:openai:2026-08-30", key)

	// Different platforms and targets get independent locks.
	assert.NotEqual(t, key, RunLockKey("rentail", types.PlatformGemini, windowStart))
	assert.NotEqual(t, key, RunLockKey("other", types.PlatformOpenAI, windowStart))

	// A new window date yields a new key, so stale locks never carry over.
	assert.NotEqual(t, key, RunLockKey("rentail", types.PlatformOpenAI, windowStart.Add(24*time.Hour)))
}

func TestRunLockKey_NormalizesToUTC(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	// 23:00 EST on the 29th is 04:00 UTC on the 30th.
	local := time.Date(2026, 8, 29, 23, 0, 0, 0, est)

	assert.Equal(t, "run:rentail:openai:2026-08-30",
		RunLockKey("rentail", types.PlatformOpenAI, local))
}

func TestCalculateBackoff(t *testing.T) {
	policy := RetryPolicy{BackoffSeconds: 30, BackoffMultiplier: 2.0}

	assert.Equal(t, 30*time.Second, CalculateBackoff(policy, 1))
	assert.Equal(t, 60*time.Second, CalculateBackoff(policy, 2))
	assert.Equal(t, 120*time.Second, CalculateBackoff(policy, 3))
}

func TestCalculateBackoff_Capped(t *testing.T) {
	policy := RetryPolicy{BackoffSeconds: 300, BackoffMultiplier: 10.0}

	assert.Equal(t, 600*time.Second, CalculateBackoff(policy, 5))
}

func TestCalculateBackoff_ZeroMultiplierDefaults(t *testing.T) {
	policy := RetryPolicy{BackoffSeconds: 10}

	assert.Equal(t, 20*time.Second, CalculateBackoff(policy, 2))
}

func TestIsRetryable(t *testing.T) {
	policy := DefaultRetryPolicy()

	assert.True(t, IsRetryable(policy, types.FailureTransient))
	assert.True(t, IsRetryable(policy, types.FailureTimeout))
	assert.False(t, IsRetryable(policy, types.FailurePermanent))
}

func TestIsRetryable_EmptyPolicyDefaults(t *testing.T) {
	policy := RetryPolicy{}

	assert.True(t, IsRetryable(policy, types.FailureTransient))
	assert.True(t, IsRetryable(policy, types.FailureTimeout))
	assert.False(t, IsRetryable(policy, types.FailurePermanent))
}
