// Package mcp implements the roadmap Model Context Protocol server using the
// mcp-go library.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"m365roadmap/internal/config"
	"m365roadmap/internal/logging"
	"m365roadmap/internal/query"

	"github.com/mark3labs/mcp-go/server"
)

const (
	ServerName    = "m365-roadmap"
	ServerVersion = "1.0.0"

	serverInstructions = "Query the Microsoft 365 public roadmap. Use search_roadmap for keywords, " +
		"filter_by_category for products such as Teams or SharePoint, and get_recent_updates for " +
		"announcements from the last few days. Results are cached for five minutes."
)

// Server represents an MCP server instance using mcp-go
type Server struct {
	config    *config.Config
	logger    *logging.AppLogger
	service   *query.Service
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance. Tools are registered on the
// first call to Start or Handler.
func NewServer(cfg *config.Config, logger *logging.AppLogger, service *query.Service) *Server {
	return &Server{
		config:  cfg,
		logger:  logger,
		service: service,
	}
}

// Handler returns the underlying mcp-go server with all tools registered.
func (s *Server) Handler() *server.MCPServer {
	if s.mcpServer == nil {
		s.mcpServer = server.NewMCPServer(ServerName, ServerVersion,
			server.WithToolCapabilities(false),
			server.WithInstructions(serverInstructions),
			server.WithRecovery(),
		)
		s.registerTools()
		s.logger.Debug("MCP tools registered", "count", len(toolNames))
	}
	return s.mcpServer
}

// Start serves JSON-RPC over stdin/stdout until ctx is cancelled or stdin
// is closed.
func (s *Server) Start(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve runs the stdio transport over the given streams.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	s.logger.Info("Starting MCP server", "name", ServerName, "feed", s.feedURL())

	stdio := server.NewStdioServer(s.Handler())
	stdio.SetErrorLogger(s.logger.StandardLog())

	if err := stdio.Listen(ctx, in, out); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the MCP server
func (s *Server) Stop() error {
	s.logger.Info("Stopping MCP server")
	// The stdio transport stops when its context is cancelled
	return nil
}

func (s *Server) feedURL() string {
	if s.config == nil {
		return ""
	}
	return s.config.FeedURL
}
