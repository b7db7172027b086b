package main

import (
	"fmt"
	"os"

	"github.com/orbia-ai/orbia/internal/cli"
	"github.com/orbia-ai/orbia/internal/cli/client"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "orbia",
		Short: "Orbia CLI - Knowledge-augmented chat assistant",
		Long: `Orbia CLI provides commands to chat with the assistant and inspect what it has learned.

Environment variables:
  ORBIA_API_KEY   API key for authentication (required)
  ORBIA_API_URL   API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-key", "", "API key for authentication (overrides env and config)")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.AskCmd())
	rootCmd.AddCommand(client.ChatCmd())
	rootCmd.AddCommand(client.ConversationsCmd())
	rootCmd.AddCommand(client.ActionsCmd())
	rootCmd.AddCommand(client.KnowledgeCmd())
	rootCmd.AddCommand(client.AuthCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
