// Package mail_tools provides MCP tools for the email side of meeting
// scheduling. Each tool call dials a fresh IMAP connection and closes it
// when done.
package mail_tools
