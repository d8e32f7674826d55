// Package cmd implements the command-line interface for tasknest.
//
// This package provides the following commands:
//   - serve: Start the MCP server exposing the task management tools
//   - purge: Delete all tasks in one of the board's lists
//   - version: Display version information
//
// The serve command is the default command when no subcommand is specified.
package cmd
