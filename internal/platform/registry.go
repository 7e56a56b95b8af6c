package platform

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/rankbeam/citewatch/pkg/types"
)

// Default model identifiers per platform.
var defaultModels = map[types.Platform]string{
	types.PlatformOpenAI:     "gpt-4o",
	types.PlatformAnthropic:  "claude-3-7-sonnet-latest",
	types.PlatformPerplexity: "sonar",
	types.PlatformGemini:     "gemini-2.0-flash",
}

// Circuit breaker defaults: open after 5 consecutive failures, probe after 60s.
const (
	breakerFailThreshold = 5
	breakerCooldown      = 60 * time.Second
)

// ResolveFunc resolves a credential reference (literal, env var, or secrets
// manager reference) into an API key.
type ResolveFunc func(ctx context.Context, ref string) (string, error)

// Entry is one configured platform: its adapter and model identifier.
type Entry struct {
	Adapter Adapter
	Model   string
}

// Registry maps platform names to configured adapters. This is the seam
// where new platforms are added without touching the runner or orchestrator.
type Registry struct {
	entries map[types.Platform]Entry
	order   []types.Platform
}

// NewRegistry builds a Registry from platform configs, resolving credentials
// through resolve. Each adapter is wrapped in a per-platform circuit breaker
// so a dead provider fails fast instead of burning the pacing budget.
func NewRegistry(ctx context.Context, cfgs []types.PlatformConfig, resolve ResolveFunc) (*Registry, error) {
	r := &Registry{entries: make(map[types.Platform]Entry)}

	for _, cfg := range cfgs {
		model := cfg.Model
		if model == "" {
			model = defaultModels[cfg.Name]
		}

		apiKey, err := resolve(ctx, cfg.APIKey)
		if err != nil {
			return nil, fmt.Errorf("resolving %s api key: %w", cfg.Name, err)
		}

		var adapter Adapter
		switch cfg.Name {
		case types.PlatformOpenAI:
			adapter = NewOpenAIAdapter(apiKey, model, cfg.BaseURL)
		case types.PlatformAnthropic:
			adapter = NewAnthropicAdapter(apiKey, model, cfg.BaseURL)
		case types.PlatformPerplexity:
			adapter = NewPerplexityAdapter(apiKey, model, cfg.BaseURL)
		case types.PlatformGemini:
			adapter = NewGeminiAdapter(apiKey, model, cfg.BaseURL)
		default:
			return nil, fmt.Errorf("unknown platform %q", cfg.Name)
		}

		if _, dup := r.entries[cfg.Name]; dup {
			return nil, fmt.Errorf("platform %q configured twice", cfg.Name)
		}
		r.entries[cfg.Name] = Entry{Adapter: withBreaker(adapter), Model: model}
		r.order = append(r.order, cfg.Name)
	}

	if len(r.entries) == 0 {
		return nil, fmt.Errorf("no platforms configured")
	}
	return r, nil
}

// Register adds a prebuilt adapter under its own name. Used by tests to
// install scripted fakes.
func (r *Registry) Register(adapter Adapter, model string) {
	if r.entries == nil {
		r.entries = make(map[types.Platform]Entry)
	}
	name := adapter.Name()
	if _, dup := r.entries[name]; !dup {
		r.order = append(r.order, name)
	}
	r.entries[name] = Entry{Adapter: adapter, Model: model}
}

// Get returns the entry for a platform.
func (r *Registry) Get(p types.Platform) (Entry, bool) {
	e, ok := r.entries[p]
	return e, ok
}

// Platforms returns the configured platform names in configuration order.
func (r *Registry) Platforms() []types.Platform {
	out := make([]types.Platform, len(r.order))
	copy(out, r.order)
	return out
}

// breakerAdapter wraps an Adapter in a circuit breaker. A fast-failed call
// surfaces as an ordinary adapter failure and is handled per item.
type breakerAdapter struct {
	inner Adapter
	cb    *gobreaker.CircuitBreaker
}

func withBreaker(inner Adapter) Adapter {
	return &breakerAdapter{
		inner: inner,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    string(inner.Name()),
			Timeout: breakerCooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= breakerFailThreshold
			},
		}),
	}
}

func (b *breakerAdapter) Name() types.Platform { return b.inner.Name() }

func (b *breakerAdapter) Query(ctx context.Context, text string) (*types.Answer, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.inner.Query(ctx, text)
	})
	if err != nil {
		return nil, err
	}
	return out.(*types.Answer), nil
}
