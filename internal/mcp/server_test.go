package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"m365roadmap/internal/config"
	"m365roadmap/internal/logging"
	"m365roadmap/internal/query"
	"m365roadmap/internal/roadmap"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

type stubFetcher struct {
	calls int
	items []roadmap.Item
	err   error
}

func (f *stubFetcher) Fetch(ctx context.Context) ([]roadmap.Item, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func testItems() []roadmap.Item {
	return []roadmap.Item{
		{
			Title:           "New Teams meeting experience",
			Description:     strings.Repeat("d", 250),
			Link:            "https://roadmap/1",
			PublicationDate: "Mon, 12 Oct 2026 17:00:00 Z",
			Category:        "Microsoft Teams",
			PublishedAt:     time.Date(2026, 10, 12, 17, 0, 0, 0, time.UTC),
		},
		{
			Title:           "Outlook rules sync",
			Link:            "https://roadmap/2",
			PublicationDate: "",
			Category:        roadmap.DefaultCategory,
		},
	}
}

func createTestServer(t *testing.T, fetcher roadmap.Fetcher) *Server {
	t.Helper()

	logger, _ := logging.NewTestLogger()
	clock := func() time.Time { return testNow }
	cache := roadmap.NewCache(fetcher, roadmap.WithClock(clock), roadmap.WithLogger(logger))
	service := query.NewService(cache, query.WithClock(clock), query.WithLogger(logger))
	cfg := config.DefaultConfig()

	return NewServer(&cfg, logger, service)
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

func TestNewServer(t *testing.T) {
	cfg := &config.Config{FeedURL: "https://example.com/feed"}
	logger, _ := logging.NewTestLogger()

	server := NewServer(cfg, logger, nil)

	if server == nil {
		t.Fatal("NewServer returned nil")
	}
	if server.config != cfg {
		t.Error("Server config not set correctly")
	}
	if server.logger != logger {
		t.Error("Server logger not set correctly")
	}
	if server.mcpServer != nil {
		t.Error("MCP server should not be initialized until Handler() or Start() is called")
	}
}

func TestHandlerIsBuiltOnce(t *testing.T) {
	server := createTestServer(t, &stubFetcher{})

	first := server.Handler()
	second := server.Handler()
	assert.Same(t, first, second)
}

func TestToolsListedOverJSONRPC(t *testing.T) {
	server := createTestServer(t, &stubFetcher{})

	resp := server.Handler().HandleMessage(context.Background(),
		json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	out := string(raw)
	for _, name := range toolNames {
		assert.Contains(t, out, `"`+name+`"`)
	}
	assert.Contains(t, out, `"readOnlyHint":true`)
}

func TestToolCallOverJSONRPC(t *testing.T) {
	fetcher := &stubFetcher{items: testItems()}
	server := createTestServer(t, fetcher)

	resp := server.Handler().HandleMessage(context.Background(), json.RawMessage(
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"search_roadmap","arguments":{"query":"TEAMS","limit":5}}}`))
	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	assert.Contains(t, string(raw), "New Teams meeting experience")
	assert.NotContains(t, string(raw), `"isError":true`)
}

func TestHandleListItemsDefaults(t *testing.T) {
	fetcher := &stubFetcher{items: testItems()}
	server := createTestServer(t, fetcher)

	result, err := server.handleListItems(context.Background(), callRequest(ToolListItems, nil))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "showing 2 of 2 items")
	assert.Contains(t, text, "Category: General")
	assert.Contains(t, text, "Published: unknown")
}

func TestHandleListItemsLimit(t *testing.T) {
	server := createTestServer(t, &stubFetcher{items: testItems()})

	result, err := server.handleListItems(context.Background(), callRequest(ToolListItems, map[string]any{"limit": float64(1)}))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, "showing 1 of 2 items")
	assert.NotContains(t, text, "Outlook rules sync")
}

func TestHandleSearchTruncatesDescription(t *testing.T) {
	server := createTestServer(t, &stubFetcher{items: testItems()})

	result, err := server.handleSearch(context.Background(), callRequest(ToolSearch, map[string]any{"query": "teams"}))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, "1. New Teams meeting experience")
	assert.Contains(t, text, strings.Repeat("d", 200)+query.Ellipsis)
	assert.NotContains(t, text, "2. ")
}

func TestHandleSearchMissingQuery(t *testing.T) {
	fetcher := &stubFetcher{items: testItems()}
	server := createTestServer(t, fetcher)

	result, err := server.handleSearch(context.Background(), callRequest(ToolSearch, map[string]any{}))
	require.NoError(t, err, "validation failures are tool errors, not protocol errors")
	assert.True(t, result.IsError)
	assert.Equal(t, "Invalid request: query must not be empty.", resultText(t, result))
	assert.Zero(t, fetcher.calls, "validation happens before fetching")
}

func TestHandleFilterByCategory(t *testing.T) {
	server := createTestServer(t, &stubFetcher{items: testItems()})

	result, err := server.handleFilterByCategory(context.Background(), callRequest(ToolFilterByCategory, map[string]any{"category": "general"}))
	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, "Outlook rules sync")
	assert.NotContains(t, text, "New Teams meeting experience")

	result, err = server.handleFilterByCategory(context.Background(), callRequest(ToolFilterByCategory, map[string]any{"category": "Viva"}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, `No roadmap items found for category "Viva".`, resultText(t, result))
}

func TestHandleRecentUpdates(t *testing.T) {
	server := createTestServer(t, &stubFetcher{items: testItems()})

	result, err := server.handleRecentUpdates(context.Background(), callRequest(ToolRecentUpdates, nil))
	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, "New Teams meeting experience")
	assert.NotContains(t, text, "Outlook rules sync")

	result, err = server.handleRecentUpdates(context.Background(), callRequest(ToolRecentUpdates, map[string]any{"days": float64(3)}))
	require.NoError(t, err)
	assert.Equal(t, "No roadmap items found published in the last 3 days.", resultText(t, result))
}

func TestFetchFailureIsToolError(t *testing.T) {
	fetcher := &stubFetcher{err: &roadmap.FetchError{
		URL:        "https://example.com/feed",
		StatusCode: 500,
		Err:        errors.New("unexpected status 500 Internal Server Error"),
	}}
	server := createTestServer(t, fetcher)

	result, err := server.handleListItems(context.Background(), callRequest(ToolListItems, nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "Could not reach the Microsoft 365 roadmap feed")
	assert.Contains(t, resultText(t, result), "HTTP 500")
	assert.Equal(t, 1, fetcher.calls)

	// the next call tries again and succeeds
	fetcher.err = nil
	fetcher.items = testItems()
	result, err = server.handleListItems(context.Background(), callRequest(ToolListItems, nil))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, 2, fetcher.calls)
}

func TestParseFailureIsToolError(t *testing.T) {
	server := createTestServer(t, &stubFetcher{err: &roadmap.ParseError{Err: errors.New("feed type not detected")}})

	result, err := server.handleSearch(context.Background(), callRequest(ToolSearch, map[string]any{"query": "teams"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "could not be read")
}

func TestStop(t *testing.T) {
	server := createTestServer(t, &stubFetcher{})

	err := server.Stop()
	if err != nil {
		t.Errorf("Stop should not return error: %v", err)
	}
}

func TestServeStdio(t *testing.T) {
	server := createTestServer(t, &stubFetcher{items: testItems()})

	input := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test-client","version":"0.0.1"}}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"get_recent_updates","arguments":{"days":-1}}}`,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"get_roadmap_items","arguments":{"limit":0}}}`,
	}, "\n") + "\n"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var out bytes.Buffer
	require.NoError(t, server.Serve(ctx, strings.NewReader(input), &out))

	type response struct {
		ID     int             `json:"id"`
		Result json.RawMessage `json:"result"`
	}
	responses := make(map[int]json.RawMessage)
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		var resp response
		require.NoError(t, json.Unmarshal([]byte(line), &resp), "line: %s", line)
		responses[resp.ID] = resp.Result
	}
	require.Len(t, responses, 3, "output: %s", out.String())

	assert.Contains(t, string(responses[1]), `"protocolVersion"`)
	assert.Contains(t, string(responses[1]), ServerName)

	type toolResult struct {
		IsError bool `json:"isError"`
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}

	var recent toolResult
	require.NoError(t, json.Unmarshal(responses[2], &recent))
	assert.True(t, recent.IsError)
	require.Len(t, recent.Content, 1)
	assert.Contains(t, recent.Content[0].Text, "must not be negative")

	var list toolResult
	require.NoError(t, json.Unmarshal(responses[3], &list))
	assert.False(t, list.IsError)
	require.Len(t, list.Content, 1)
	assert.Equal(t, "Microsoft 365 Roadmap: showing 0 of 2 items", list.Content[0].Text)
}
