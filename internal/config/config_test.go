package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ddbprov "github.com/rankbeam/citewatch/internal/provider/dynamodb"
	"github.com/rankbeam/citewatch/pkg/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, Filename), []byte(content), 0o644))
	return dir
}

func TestLoad_FullConfig(t *testing.T) {
	dir := writeConfig(t, `provider: dynamodb
dynamodb:
  tableName: citewatch
  region: us-east-1
  endpoint: http://localhost:8000
  createTable: true
platforms:
  - name: openai
    apiKey: env:OPENAI_API_KEY
  - name: gemini
    apiKey: gk-literal
    model: gemini-custom
repetitions: 5
freshnessHours: 12
pacingSeconds: 4
catalogFile: ./queries.yaml
catalogDir: ./catalogs
server:
  addr: ":8080"
  apiKey: secret
alerts:
  - type: webhook
    url: https://hooks.example.com/citewatch
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "dynamodb", cfg.Provider)
	assert.Equal(t, 5, cfg.Repetitions)
	assert.Equal(t, 12, cfg.FreshnessHours)
	assert.Equal(t, 4, cfg.PacingSeconds)
	assert.Equal(t, "./queries.yaml", cfg.CatalogFile)
	assert.Equal(t, ":8080", cfg.Server.Addr)

	require.Len(t, cfg.Platforms, 2)
	assert.Equal(t, types.PlatformOpenAI, cfg.Platforms[0].Name)
	assert.Equal(t, "gemini-custom", cfg.Platforms[1].Model)

	require.Len(t, cfg.Alerts, 1)
	assert.Equal(t, types.AlertWebhook, cfg.Alerts[0].Type)

	dc, ok := cfg.DynamoDB.(*ddbprov.Config)
	require.True(t, ok)
	assert.Equal(t, "citewatch", dc.TableName)
	assert.Equal(t, "us-east-1", dc.Region)
	assert.Equal(t, "http://localhost:8000", dc.Endpoint)
	assert.True(t, dc.CreateTable)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	dir := writeConfig(t, `provider: memory
platforms:
  - name: openai
    apiKey: sk-test
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, types.DefaultRepetitions, cfg.Repetitions)
	assert.Equal(t, types.DefaultFreshnessHours, cfg.FreshnessHours)
	assert.Equal(t, types.DefaultPacingSeconds, cfg.PacingSeconds)
	require.Len(t, cfg.Alerts, 1)
	assert.Equal(t, types.AlertConsole, cfg.Alerts[0].Type)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			"missing provider",
			"platforms:\n  - name: openai\n    apiKey: x\n",
			"provider is required",
		},
		{
			"unknown provider",
			"provider: sqlite\nplatforms:\n  - name: openai\n    apiKey: x\n",
			"unknown provider",
		},
		{
			"dynamodb without table",
			"provider: dynamodb\ndynamodb:\n  region: us-east-1\nplatforms:\n  - name: openai\n    apiKey: x\n",
			"tableName is required",
		},
		{
			"no platforms",
			"provider: memory\n",
			"at least one platform",
		},
		{
			"unknown platform",
			"provider: memory\nplatforms:\n  - name: copilot\n    apiKey: x\n",
			"unknown platform",
		},
		{
			"missing api key",
			"provider: memory\nplatforms:\n  - name: openai\n",
			"apiKey is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}
