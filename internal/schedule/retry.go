package schedule

import (
	"math"
	"time"

	"github.com/rankbeam/citewatch/pkg/types"
)

const maxBackoffSeconds = 600

// RetryPolicy controls per-target re-attempts within one daily batch.
// Re-invoking a target is safe: result idempotency and the freshness window
// prevent double billing for work that already completed.
type RetryPolicy struct {
	MaxAttempts       int
	BackoffSeconds    int
	BackoffMultiplier float64
	RetryableFailures []types.FailureCategory
}

// DefaultRetryPolicy returns the default retry configuration.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:       2,
		BackoffSeconds:    30,
		BackoffMultiplier: 2.0,
		RetryableFailures: []types.FailureCategory{
			types.FailureTransient,
			types.FailureTimeout,
		},
	}
}

// CalculateBackoff returns the wait duration for a given attempt number.
// Uses exponential backoff: base * multiplier^(attempt-1).
func CalculateBackoff(policy RetryPolicy, attempt int) time.Duration {
	if attempt <= 1 {
		return time.Duration(policy.BackoffSeconds) * time.Second
	}
	multiplier := policy.BackoffMultiplier
	if multiplier <= 0 {
		multiplier = 2.0
	}
	backoff := float64(policy.BackoffSeconds) * math.Pow(multiplier, float64(attempt-1))
	if backoff > maxBackoffSeconds {
		backoff = maxBackoffSeconds
	}
	return time.Duration(backoff) * time.Second
}

// IsRetryable returns whether a failure category should be retried.
func IsRetryable(policy RetryPolicy, category types.FailureCategory) bool {
	if category == types.FailurePermanent {
		return false
	}
	if len(policy.RetryableFailures) == 0 {
		// Default: retry transient and timeout
		return category == types.FailureTransient || category == types.FailureTimeout
	}
	for _, fc := range policy.RetryableFailures {
		if fc == category {
			return true
		}
	}
	return false
}
