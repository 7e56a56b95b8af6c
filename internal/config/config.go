// Package config handles loading and validation of citewatch.yaml project
// configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	ddbprov "github.com/rankbeam/citewatch/internal/provider/dynamodb"
	"github.com/rankbeam/citewatch/pkg/types"
)

// Filename is the project configuration file name.
const Filename = "citewatch.yaml"

// providerConfigs is a helper struct used for a second YAML unmarshal pass
// to decode provider-specific config sections into their concrete types.
type providerConfigs struct {
	DynamoDB *ddbprov.Config `yaml:"dynamodb,omitempty"`
}

// Load reads and parses citewatch.yaml from the given directory.
func Load(dir string) (*types.ProjectConfig, error) {
	path := filepath.Join(dir, Filename)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg types.ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Second pass: decode provider-specific sections into concrete types.
	var raw providerConfigs
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing provider config: %w", err)
	}
	if raw.DynamoDB != nil {
		cfg.DynamoDB = raw.DynamoDB
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *types.ProjectConfig) {
	if cfg.Repetitions == 0 {
		cfg.Repetitions = types.DefaultRepetitions
	}
	if cfg.FreshnessHours == 0 {
		cfg.FreshnessHours = types.DefaultFreshnessHours
	}
	if cfg.PacingSeconds == 0 {
		cfg.PacingSeconds = types.DefaultPacingSeconds
	}
	if len(cfg.Alerts) == 0 {
		cfg.Alerts = []types.AlertConfig{{Type: types.AlertConsole}}
	}
}

func validate(cfg *types.ProjectConfig) error {
	switch cfg.Provider {
	case "":
		return fmt.Errorf("provider is required")
	case "memory":
		// nothing to validate
	case "dynamodb":
		dc, _ := cfg.DynamoDB.(*ddbprov.Config)
		if dc == nil {
			return fmt.Errorf("dynamodb config is required when provider is dynamodb")
		}
		if dc.TableName == "" {
			return fmt.Errorf("dynamodb.tableName is required")
		}
	default:
		return fmt.Errorf("unknown provider %q", cfg.Provider)
	}

	if len(cfg.Platforms) == 0 {
		return fmt.Errorf("at least one platform is required")
	}
	known := make(map[types.Platform]bool, len(types.AllPlatforms))
	for _, p := range types.AllPlatforms {
		known[p] = true
	}
	for i, p := range cfg.Platforms {
		if !known[p.Name] {
			return fmt.Errorf("platforms[%d]: unknown platform %q", i, p.Name)
		}
		if p.APIKey == "" {
			return fmt.Errorf("platforms[%d] (%s): apiKey is required", i, p.Name)
		}
	}

	if cfg.Repetitions < 0 {
		return fmt.Errorf("repetitions must be positive")
	}
	return nil
}
