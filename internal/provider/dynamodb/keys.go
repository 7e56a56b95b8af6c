package dynamodb

import (
	"fmt"
	"time"
)

// PK/SK prefix constants. Single-table layout:
//
//	TARGET#<id>  / CONFIG                            target registry
//	TARGET#<id>  / RUN#<platform>#<createdAt>#<runID> run index per target
//	RUN#<runID>  / RESULT#<query>#<repetition>        results per run
//	LOCK#<key>   / LOCK                               single-flight locks
const (
	prefixTarget = "TARGET#"
	prefixRun    = "RUN#"
	prefixResult = "RESULT#"
	prefixLock   = "LOCK#"

	skConfig = "CONFIG"
	skLock   = "LOCK"

	gsiTargets = "TARGET"
)

func targetPK(id string) string { return prefixTarget + id }
func runPK(runID string) string { return prefixRun + runID }
func lockPK(key string) string  { return prefixLock + key }

func runSKPrefix(platform string) string {
	return prefixRun + platform + "#"
}

// runSKTimeLayout is fixed-width so lexical SK order matches chronological
// order. RFC3339Nano trims trailing zeros, which breaks that for sub-second
// timestamps ('Z' sorts after '.').
const runSKTimeLayout = "2006-01-02T15:04:05.000000000Z"

func runSK(platform string, createdAt time.Time, runID string) string {
	return runSKPrefix(platform) + createdAt.UTC().Format(runSKTimeLayout) + "#" + runID
}

// resultSK sorts results by (query, repetition) within a run partition.
// The repetition is zero-padded so lexical order matches numeric order.
func resultSK(query string, repetition int) string {
	return fmt.Sprintf("%s%s#%03d", prefixResult, query, repetition)
}

func ttlEpoch(d time.Duration) int64 {
	return time.Now().Add(d).Unix()
}
