package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the tasknest application
var rootCmd = &cobra.Command{
	Use:   "tasknest",
	Short: "MCP server for managing tasks on a Trello board",
	Long: `tasknest exposes a Trello board as a task management backend for AI
assistants via the Model Context Protocol (MCP).

Tasks are Trello cards; a task's state is encoded by which list the card
sits in ("To Do", "In Progress" or "Done"). The server provides tools to
add tasks, list and filter them, advance them between states, and manage
per-task checklists.`,
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
	rootCmd.SetVersionTemplate(`{{printf "tasknest version %s\n" .Version}}`)

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
	rootCmd.AddCommand(newPurgeCmd())
	rootCmd.AddCommand(newVersionCmd())
}
