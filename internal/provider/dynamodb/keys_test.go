package dynamodb

import (
	"sort"
	"testing"
	"time"
)

func TestTargetPK(t *testing.T) {
	got := targetPK("rentail")
	if got != "TARGET#rentail" {
		t.Errorf("targetPK = %q, want %q", got, "TARGET#rentail")
	}
}

func TestRunPK(t *testing.T) {
	got := runPK("01JXYZ")
	if got != "RUN#01JXYZ" {
		t.Errorf("runPK = %q, want %q", got, "RUN#01JXYZ")
	}
}

func TestLockPK(t *testing.T) {
	got := lockPK("run:rentail:openai:2026-08-30")
	if got != "LOCK#run:rentail:openai:2026-08-30" {
		t.Errorf("lockPK = %q, want %q", got, "LOCK#run:rentail:openai:2026-08-30")
	}
}

func TestRunSK(t *testing.T) {
	created := time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC)
	got := runSK("openai", created, "01JXYZ")
	want := "RUN#openai#2026-08-30T06:00:00.000000000Z#01JXYZ"
	if got != want {
		t.Errorf("runSK = %q, want %q", got, want)
	}
}

func TestRunSK_FixedWidthSubSecond(t *testing.T) {
	base := time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC)
	whole := runSK("openai", base, "a")
	half := runSK("openai", base.Add(500*time.Millisecond), "b")

	if len(whole) != len(half) {
		t.Errorf("runSK widths differ: %q vs %q", whole, half)
	}
	if !(whole < half) {
		t.Errorf("runSK %q should sort before %q", whole, half)
	}
}

func TestRunSK_SortsChronologically(t *testing.T) {
	base := time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC)
	keys := []string{
		runSK("openai", base.Add(2*time.Hour), "c"),
		runSK("openai", base, "a"),
		runSK("openai", base.Add(time.Hour), "b"),
	}
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	if sorted[0] != keys[1] || sorted[1] != keys[2] || sorted[2] != keys[0] {
		t.Errorf("runSK keys do not sort chronologically: %v", sorted)
	}
}

func TestResultSK(t *testing.T) {
	got := resultSK("best rental platforms", 3)
	want := "RESULT#best rental platforms#003"
	if got != want {
		t.Errorf("resultSK = %q, want %q", got, want)
	}
}

func TestResultSK_RepetitionPaddingSortsNumerically(t *testing.T) {
	keys := []string{
		resultSK("q", 10),
		resultSK("q", 2),
		resultSK("q", 1),
	}
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	if sorted[0] != keys[2] || sorted[1] != keys[1] || sorted[2] != keys[0] {
		t.Errorf("resultSK keys do not sort numerically: %v", sorted)
	}
}
