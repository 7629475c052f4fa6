// Package main is the entry point for the m365roadmap CLI application.
//
// The binary exposes the Microsoft 365 public roadmap RSS feed to AI
// assistants over the Model Context Protocol. Startup follows this sequence:
//
// 1. Parse flags and load configuration (defaults when no file exists)
// 2. Initialize logging (stderr only; stdout belongs to the protocol)
// 3. Build the feed fetcher, the snapshot cache and the query service
// 4. Serve MCP over stdio, or run a single query for the query subcommands
//
// Without a subcommand the MCP server is started.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
