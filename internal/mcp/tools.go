package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"m365roadmap/internal/query"
	"m365roadmap/internal/roadmap"
	"m365roadmap/internal/validation"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	ToolListItems        = "get_roadmap_items"
	ToolSearch           = "search_roadmap"
	ToolFilterByCategory = "filter_by_category"
	ToolRecentUpdates    = "get_recent_updates"
)

var toolNames = []string{ToolListItems, ToolSearch, ToolFilterByCategory, ToolRecentUpdates}

func limitParam(def int) mcp.ToolOption {
	return mcp.WithNumber("limit",
		mcp.Description(fmt.Sprintf("Maximum number of items to return (default: %d)", def)),
		mcp.Min(1),
	)
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool(ToolListItems,
		mcp.WithDescription("Get items from the Microsoft 365 public roadmap in feed order"),
		limitParam(query.DefaultListLimit),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.handleListItems)

	s.mcpServer.AddTool(mcp.NewTool(ToolSearch,
		mcp.WithDescription("Search roadmap items by keyword in title, description or summary (case-insensitive)"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Keyword or phrase to search for"),
		),
		limitParam(query.DefaultSearchLimit),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.handleSearch)

	s.mcpServer.AddTool(mcp.NewTool(ToolFilterByCategory,
		mcp.WithDescription("Filter roadmap items by product or category, e.g. Teams, SharePoint, Outlook"),
		mcp.WithString("category",
			mcp.Required(),
			mcp.Description("Category or product name to match against category and title"),
		),
		limitParam(query.DefaultCategoryLimit),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.handleFilterByCategory)

	s.mcpServer.AddTool(mcp.NewTool(ToolRecentUpdates,
		mcp.WithDescription("Get roadmap items published within the last N days"),
		mcp.WithNumber("days",
			mcp.Description(fmt.Sprintf("Number of days to look back (default: %d)", query.DefaultRecentDays)),
			mcp.Min(0),
		),
		limitParam(query.DefaultRecentLimit),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.handleRecentUpdates)
}

func (s *Server) handleListItems(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", query.DefaultListLimit)
	return s.respond(ctx, ToolListItems, func(ctx context.Context) (string, error) {
		return s.service.List(ctx, limit)
	})
}

func (s *Server) handleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q := req.GetString("query", "")
	limit := req.GetInt("limit", query.DefaultSearchLimit)
	return s.respond(ctx, ToolSearch, func(ctx context.Context) (string, error) {
		return s.service.Search(ctx, q, limit)
	})
}

func (s *Server) handleFilterByCategory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category := req.GetString("category", "")
	limit := req.GetInt("limit", query.DefaultCategoryLimit)
	return s.respond(ctx, ToolFilterByCategory, func(ctx context.Context) (string, error) {
		return s.service.ByCategory(ctx, category, limit)
	})
}

func (s *Server) handleRecentUpdates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	days := req.GetInt("days", query.DefaultRecentDays)
	limit := req.GetInt("limit", query.DefaultRecentLimit)
	return s.respond(ctx, ToolRecentUpdates, func(ctx context.Context) (string, error) {
		return s.service.Recent(ctx, days, limit)
	})
}

// respond runs one tool call and converts any failure into an error result
// so the transport keeps serving.
func (s *Server) respond(ctx context.Context, tool string, run func(context.Context) (string, error)) (*mcp.CallToolResult, error) {
	log := s.logger.With("tool", tool, "request_id", uuid.NewString())
	start := time.Now()

	text, err := run(ctx)
	log.LogPerformance(tool, start)
	if err != nil {
		log.Warn("Tool call failed", "error", err)
		return mcp.NewToolResultError(errorMessage(err)), nil
	}

	log.Debug("Tool call succeeded", "bytes", len(text))
	return mcp.NewToolResultText(text), nil
}

func errorMessage(err error) string {
	var (
		fetchErr *roadmap.FetchError
		parseErr *roadmap.ParseError
		valErr   *validation.ValidationError
	)
	switch {
	case errors.As(err, &valErr):
		return fmt.Sprintf("Invalid request: %s %s.", valErr.Field, valErr.Message)
	case errors.As(err, &fetchErr):
		return fmt.Sprintf("Could not reach the Microsoft 365 roadmap feed: %v", fetchErr)
	case errors.As(err, &parseErr):
		return fmt.Sprintf("The Microsoft 365 roadmap feed could not be read: %v", parseErr)
	default:
		return fmt.Sprintf("Roadmap query failed: %v", err)
	}
}
