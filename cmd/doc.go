// Package cmd implements the command-line interface for meetsched.
//
// This package provides the following commands:
//   - serve: Start the MCP server to provide scheduling tools for AI assistants
//   - slots: List free meeting slots on the command line
//   - init: Write a default calendar file
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// The serve command is the default command when no subcommand is specified.
package cmd
