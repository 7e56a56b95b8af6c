// Package types defines the public domain types for the citewatch
// citation-visibility pipeline.
package types

import "time"

// Platform identifies an AI answer platform.
type Platform string

// Platform values enumerate the supported AI answer platforms.
const (
	PlatformOpenAI     Platform = "openai"
	PlatformAnthropic  Platform = "anthropic"
	PlatformPerplexity Platform = "perplexity"
	PlatformGemini     Platform = "gemini"
)

// AllPlatforms lists every supported platform in a stable order.
var AllPlatforms = []Platform{
	PlatformOpenAI,
	PlatformAnthropic,
	PlatformPerplexity,
	PlatformGemini,
}

// Target is a monitored site or account. Immutable for the duration of a
// pipeline invocation.
type Target struct {
	ID        string    `yaml:"id" json:"id"`
	Hostname  string    `yaml:"hostname" json:"hostname"`
	Name      string    `yaml:"name,omitempty" json:"name,omitempty"`
	CreatedAt time.Time `yaml:"createdAt,omitempty" json:"createdAt,omitempty"`
}

// CatalogEntry is one query in a target's query catalog.
type CatalogEntry struct {
	Query    string `yaml:"query" json:"query"`
	Category string `yaml:"category" json:"category"`
}

// Answer is the platform-independent outcome of one adapter query.
// Citations preserve the platform's citation order; only URL-typed sources
// are included.
type Answer struct {
	Text         string   `json:"text"`
	Citations    []string `json:"citations"`
	ExtraQueries []string `json:"extraQueries,omitempty"`
}

// Run is one execution attempt of the full query catalog against one
// platform for one target. At most one Run is created per (target, platform)
// per freshness window.
type Run struct {
	RunID     string    `json:"runId" dynamodbav:"runId"`
	TargetID  string    `json:"targetId" dynamodbav:"targetId"`
	Platform  Platform  `json:"platform" dynamodbav:"platform"`
	Model     string    `json:"model" dynamodbav:"model"`
	CreatedAt time.Time `json:"createdAt" dynamodbav:"createdAt"`
}

// Result is one persisted outcome of one query-repetition within one Run.
// Position is the index of the target's hostname within Citations, or nil
// when the target is not cited.
type Result struct {
	RunID        string    `json:"runId" dynamodbav:"runId"`
	Query        string    `json:"query" dynamodbav:"query"`
	Category     string    `json:"category" dynamodbav:"category"`
	Repetition   int       `json:"repetition" dynamodbav:"repetition"`
	Answer       string    `json:"answer" dynamodbav:"answer"`
	Citations    []string  `json:"citations" dynamodbav:"citations"`
	ExtraQueries []string  `json:"extraQueries,omitempty" dynamodbav:"extraQueries,omitempty"`
	Position     *int      `json:"position,omitempty" dynamodbav:"position,omitempty"`
	CreatedAt    time.Time `json:"createdAt" dynamodbav:"createdAt"`
}

// RunHistory pairs a Run with its persisted Results.
type RunHistory struct {
	Run     Run      `json:"run"`
	Results []Result `json:"results"`
}

// DayGroup is the per-UTC-calendar-day view of a target's runs, used by the
// orchestrator read-back and the reporting API.
type DayGroup struct {
	Date string       `json:"date"` // "2006-01-02", UTC
	Runs []RunHistory `json:"runs"`
}

// AlertType defines the alert sink type.
type AlertType string

// AlertType values enumerate the supported alert sink backends.
const (
	AlertConsole AlertType = "console"
	AlertWebhook AlertType = "webhook"
	AlertFile    AlertType = "file"
	AlertSNS     AlertType = "sns"
)

// AlertLevel grades alert severity.
type AlertLevel string

const (
	AlertLevelError   AlertLevel = "error"
	AlertLevelWarning AlertLevel = "warning"
	AlertLevelInfo    AlertLevel = "info"
)

// Alert is an operator-visible notification dispatched to configured sinks.
type Alert struct {
	Level     AlertLevel `json:"level"`
	TargetID  string     `json:"targetId,omitempty"`
	Platform  Platform   `json:"platform,omitempty"`
	RunID     string     `json:"runId,omitempty"`
	Query     string     `json:"query,omitempty"`
	Message   string     `json:"message"`
	Timestamp time.Time  `json:"timestamp"`
}

// FailureCategory classifies why an adapter call or a target batch failed.
type FailureCategory string

const (
	FailureTransient FailureCategory = "TRANSIENT"
	FailurePermanent FailureCategory = "PERMANENT"
	FailureTimeout   FailureCategory = "TIMEOUT"
)

// TargetFailure records one failed target within a daily batch.
type TargetFailure struct {
	TargetID string          `json:"targetId"`
	Category FailureCategory `json:"category"`
	Error    string          `json:"error"`
}

// BatchSummary is the outcome of one daily batch invocation across all
// registered targets.
type BatchSummary struct {
	BatchID   string          `json:"batchId"`
	StartedAt time.Time       `json:"startedAt"`
	EndedAt   time.Time       `json:"endedAt"`
	Targets   int             `json:"targets"`
	Succeeded int             `json:"succeeded"`
	Failed    []TargetFailure `json:"failed,omitempty"`
}
