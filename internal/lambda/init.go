// Package lambda wires shared dependencies for the Lambda entrypoints.
package lambda

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rankbeam/citewatch/internal/alert"
	"github.com/rankbeam/citewatch/internal/catalog"
	"github.com/rankbeam/citewatch/internal/cron"
	"github.com/rankbeam/citewatch/internal/executor"
	"github.com/rankbeam/citewatch/internal/orchestrator"
	"github.com/rankbeam/citewatch/internal/platform"
	"github.com/rankbeam/citewatch/internal/provider"
	"github.com/rankbeam/citewatch/internal/provider/dynamodb"
	"github.com/rankbeam/citewatch/internal/runner"
	"github.com/rankbeam/citewatch/internal/secrets"
	"github.com/rankbeam/citewatch/pkg/types"
)

// Deps holds shared dependencies for Lambda handlers.
type Deps struct {
	Store        provider.Store
	Orchestrator *orchestrator.Orchestrator
	Driver       *cron.Driver
	Logger       *slog.Logger
}

// apiKeyEnvVars maps each platform to the environment variable holding its
// credential reference (a literal key, env: ref, or aws-sm:// ref).
var apiKeyEnvVars = map[types.Platform]string{
	types.PlatformOpenAI:     "OPENAI_API_KEY",
	types.PlatformAnthropic:  "ANTHROPIC_API_KEY",
	types.PlatformPerplexity: "PERPLEXITY_API_KEY",
	types.PlatformGemini:     "GEMINI_API_KEY",
}

// Init creates shared dependencies from environment variables.
// Reads: TABLE_NAME, AWS_REGION, CATALOG_FILE, CATALOG_DIR, SNS_TOPIC_ARN,
// REPETITIONS, FRESHNESS_HOURS, PACING_SECONDS, and one *_API_KEY variable
// per enabled platform.
func Init(ctx context.Context) (*Deps, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	tableName := os.Getenv("TABLE_NAME")
	region := os.Getenv("AWS_REGION")
	if tableName == "" {
		return nil, fmt.Errorf("TABLE_NAME environment variable required")
	}
	if region == "" {
		return nil, fmt.Errorf("AWS_REGION environment variable required")
	}

	store, err := dynamodb.New(&dynamodb.Config{
		TableName: tableName,
		Region:    region,
	})
	if err != nil {
		return nil, fmt.Errorf("creating DynamoDB store: %w", err)
	}
	if err := store.Start(ctx); err != nil {
		return nil, fmt.Errorf("starting store: %w", err)
	}

	var alertCfgs []types.AlertConfig
	if topicARN := os.Getenv("SNS_TOPIC_ARN"); topicARN != "" {
		alertCfgs = append(alertCfgs, types.AlertConfig{Type: types.AlertSNS, TopicARN: topicARN})
	} else {
		alertCfgs = append(alertCfgs, types.AlertConfig{Type: types.AlertConsole})
	}
	dispatcher, err := alert.NewDispatcher(alertCfgs)
	if err != nil {
		return nil, fmt.Errorf("creating alert dispatcher: %w", err)
	}

	cfgs := platformConfigs()
	if len(cfgs) == 0 {
		return nil, fmt.Errorf("no platform API keys configured")
	}
	resolver := secrets.NewResolver()
	registry, err := platform.NewRegistry(ctx, cfgs, resolver.Resolve)
	if err != nil {
		return nil, fmt.Errorf("creating platform registry: %w", err)
	}

	repetitions := envInt("REPETITIONS", types.DefaultRepetitions)
	freshness := time.Duration(envInt("FRESHNESS_HOURS", types.DefaultFreshnessHours)) * time.Hour
	pacing := time.Duration(envInt("PACING_SECONDS", types.DefaultPacingSeconds)) * time.Second

	exec := executor.New(store, dispatcher)
	run := runner.New(store, exec, dispatcher, pacing)
	orch := orchestrator.New(store, registry, run, repetitions, freshness)

	catalogFile := envOrDefault("CATALOG_FILE", "/var/task/queries.yaml")
	base, err := catalog.Load(catalogFile)
	if err != nil {
		return nil, fmt.Errorf("loading catalog %s: %w", catalogFile, err)
	}
	cat := catalog.NewResolver(base, os.Getenv("CATALOG_DIR"))

	driver := cron.New(store, orch, cat, dispatcher)

	return &Deps{
		Store:        store,
		Orchestrator: orch,
		Driver:       driver,
		Logger:       logger,
	}, nil
}

// platformConfigs builds adapter configs for every platform whose credential
// environment variable is set. The value is passed through as a secret
// reference, so literals, env: refs, and aws-sm:// refs all work.
func platformConfigs() []types.PlatformConfig {
	var cfgs []types.PlatformConfig
	for _, p := range types.AllPlatforms {
		ref := strings.TrimSpace(os.Getenv(apiKeyEnvVars[p]))
		if ref == "" {
			continue
		}
		cfgs = append(cfgs, types.PlatformConfig{
			Name:   p,
			Model:  os.Getenv(strings.ToUpper(string(p)) + "_MODEL"),
			APIKey: ref,
		})
	}
	return cfgs
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
