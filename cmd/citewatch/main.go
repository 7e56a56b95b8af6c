package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/rankbeam/citewatch/internal/commands"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "citewatch",
		Short: "Citation visibility monitoring for AI answer platforms",
		Long: `Citewatch measures whether a hostname appears in the citations that
AI answer platforms (OpenAI, Anthropic, Perplexity, Gemini) attach to
their answers. It runs a fixed catalog of queries against each platform,
records every answer with its cited URLs, and tracks the target's
position within those citations over time.`,
		Version: version,
	}

	root.AddCommand(
		commands.NewInitCmd(),
		commands.NewAddTargetCmd(),
		commands.NewRunCmd(),
		commands.NewBatchCmd(),
		commands.NewStatusCmd(),
		commands.NewServeCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
