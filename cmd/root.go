package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the meetsched application
var rootCmd = &cobra.Command{
	Use:   "meetsched",
	Short: "Meeting scheduling over IMAP and a YAML calendar",
	Long: `meetsched exposes a personal availability calendar and an IMAP mailbox
as MCP (Model Context Protocol) tools, so an AI assistant can find free
meeting slots, block them, search emails, and prepare reply drafts.

It can run as:
  - An MCP server (default)
  - A standalone CLI for listing free slots or initializing the calendar`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "meetsched version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newSlotsCmd())
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}
