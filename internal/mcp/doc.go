// Package mcp provides the Model Context Protocol (MCP) server that exposes the
// Microsoft 365 public roadmap to AI assistants.
//
// # Implementation
//
// The package uses the mcp-go library (github.com/mark3labs/mcp-go) for the
// protocol and the stdio transport. All roadmap logic lives in the query and
// roadmap packages; this package only declares tool schemas, decodes
// arguments and turns results into tool responses.
//
// # Tools
//
//   - get_roadmap_items: list items in feed order (limit, default 50)
//   - search_roadmap: case-insensitive keyword search over title, description
//     and summary (query, limit default 20)
//   - filter_by_category: case-insensitive match on category or title
//     (category, limit default 20)
//   - get_recent_updates: items published in the last N days (days default
//     30, limit default 20)
//
// All tools are read-only.
//
// # Errors
//
// Failures never escape as protocol errors. A feed that cannot be fetched or
// parsed, or a missing required argument, produces a tool result with IsError
// set and a human-readable message, and the server keeps serving.
//
// # Usage
//
// The server is normally started as a subprocess by an MCP-capable assistant:
//
//	m365roadmap serve
//
// It reads JSON-RPC requests from stdin and writes responses to stdout until
// it receives EOF or is terminated. Logs go to stderr.
//
// # References
//
// - MCP Specification: https://modelcontextprotocol.io/specification
// - mcp-go Library: https://github.com/mark3labs/mcp-go
package mcp
