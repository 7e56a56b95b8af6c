package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rankbeam/citewatch/internal/config"
)

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [project-name]",
		Short: "Initialize a new citewatch project",
		Long:  "Creates project scaffolding: citewatch.yaml, a starter query catalog, and a per-target override directory.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(args[0])
		},
	}
}

func runInit(projectName string) error {
	bold := color.New(color.Bold)
	_, _ = bold.Printf("Initializing citewatch project: %s\n", projectName)

	if err := os.MkdirAll(filepath.Join(projectName, "catalogs"), 0o755); err != nil {
		return fmt.Errorf("creating project directory: %w", err)
	}

	configPath := filepath.Join(projectName, config.Filename)
	configContent := `provider: dynamodb
dynamodb:
  tableName: citewatch
  region: us-east-1
  # endpoint: http://localhost:8000   # uncomment for DynamoDB Local
  # createTable: true
platforms:
  - name: openai
    apiKey: env:OPENAI_API_KEY
  - name: anthropic
    apiKey: env:ANTHROPIC_API_KEY
  - name: perplexity
    apiKey: env:PERPLEXITY_API_KEY
  - name: gemini
    apiKey: env:GEMINI_API_KEY
catalogFile: ./queries.yaml
catalogDir: ./catalogs
server:
  addr: ":3000"
alerts:
  - type: console
`
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	catalogPath := filepath.Join(projectName, "queries.yaml")
	catalogContent := `queries:
  - query: "What are the best tools for monitoring AI search visibility?"
    category: discovery
  - query: "How do I track whether my site is cited by AI assistants?"
    category: discovery
  - query: "Which platforms help brands measure AI answer citations?"
    category: comparison
`
	if err := os.WriteFile(catalogPath, []byte(catalogContent), 0o644); err != nil {
		return fmt.Errorf("writing starter catalog: %w", err)
	}

	color.Green("Created %s", configPath)
	color.Green("Created %s", catalogPath)
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Printf("  cd %s\n", projectName)
	fmt.Println("  citewatch add-target my-site example.com")
	fmt.Println("  citewatch run my-site")
	return nil
}
