// Package schedule holds run-window helpers and the batch retry policy.
package schedule

import (
	"time"

	"github.com/rankbeam/citewatch/pkg/types"
)

// RunLockKey returns the single-flight lock key guarding run creation for a
// (target, platform) pair within one freshness window. The window date keys
// the lock so a stale lock from a previous day never blocks a new window.
func RunLockKey(targetID string, platform types.Platform, windowStart time.Time) string {
	return "run:" + targetID + ":" + string(platform) + ":" + windowStart.UTC().Format("2006-01-02")
}
