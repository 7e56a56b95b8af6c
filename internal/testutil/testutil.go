// Package testutil provides scripted fakes shared across package tests.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/rankbeam/citewatch/pkg/types"
)

// FakeAdapter is a scripted platform adapter. Each Query call consumes the
// next scripted response; the script cycles when it runs out.
type FakeAdapter struct {
	Platform types.Platform

	mu      sync.Mutex
	script  []Scripted
	calls   []string
	callIdx int
}

// Scripted is one scripted adapter response.
type Scripted struct {
	Answer *types.Answer
	Err    error
}

// NewFakeAdapter creates a FakeAdapter for a platform with a response script.
func NewFakeAdapter(p types.Platform, script ...Scripted) *FakeAdapter {
	return &FakeAdapter{Platform: p, script: script}
}

// Name returns the platform identifier.
func (f *FakeAdapter) Name() types.Platform { return f.Platform }

// Query records the call and returns the next scripted response.
func (f *FakeAdapter) Query(_ context.Context, text string) (*types.Answer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, text)
	if len(f.script) == 0 {
		return &types.Answer{Text: "answer to " + text}, nil
	}

	s := f.script[f.callIdx%len(f.script)]
	f.callIdx++
	return s.Answer, s.Err
}

// Calls returns the query texts received, in order.
func (f *FakeAdapter) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount returns the number of Query invocations.
func (f *FakeAdapter) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// PanicAdapter panics on every Query. Used to exercise runner recovery.
type PanicAdapter struct {
	Platform types.Platform
}

// Name returns the platform identifier.
func (p *PanicAdapter) Name() types.Platform { return p.Platform }

// Query always panics.
func (p *PanicAdapter) Query(_ context.Context, _ string) (*types.Answer, error) {
	panic("scripted adapter panic")
}

// CaptureSink records dispatched alerts.
type CaptureSink struct {
	mu     sync.Mutex
	alerts []types.Alert
}

// Name returns the sink identifier.
func (c *CaptureSink) Name() string { return "capture" }

// Send records the alert.
func (c *CaptureSink) Send(_ context.Context, alert types.Alert) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alerts = append(c.alerts, alert)
	return nil
}

// Alerts returns the recorded alerts.
func (c *CaptureSink) Alerts() []types.Alert {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]types.Alert, len(c.alerts))
	copy(out, c.alerts)
	return out
}

// Cycle builds a script that repeats the given answers in order forever
// once consumed; convenient for runs with many repetitions.
func Cycle(answers ...*types.Answer) []Scripted {
	out := make([]Scripted, 0, len(answers))
	for _, a := range answers {
		out = append(out, Scripted{Answer: a})
	}
	return out
}

// Day returns a UTC time on the given date, for history grouping tests.
func Day(date string) time.Time {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return t.Add(12 * time.Hour)
}
