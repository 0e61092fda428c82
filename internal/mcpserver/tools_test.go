package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/research-analyst/internal/formats"
	"github.com/jonathan/research-analyst/internal/store"
	"github.com/jonathan/research-analyst/internal/types"
	"github.com/jonathan/research-analyst/internal/validation"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st := store.NewFileStore(t.TempDir())
	ctx := context.Background()
	require.NoError(t, st.SaveTask(ctx, types.Task{
		ID:          "task-001",
		Title:       "EV battery market analysis",
		Description: "Competitive market analysis of EV battery suppliers",
		Category:    types.CategoryResearchSupport,
	}))
	require.NoError(t, st.SaveSource(ctx, types.Source{ID: "src-1", Title: "Office lunch menu"}))
	require.NoError(t, st.SaveSource(ctx, types.Source{ID: "src-2", Title: "EV battery suppliers", Description: "Market analysis"}))
	require.NoError(t, st.SaveSource(ctx, types.Source{ID: "src-3", Title: "Battery recycling"}))
	return New(Deps{Store: st}, "test")
}

func call(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestDetectFormat(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{name: "stored task", args: map[string]any{"task_id": "task-001"}, want: formats.MarketAnalysis},
		{name: "override", args: map[string]any{"task_id": "task-001", "override": formats.PolicyMemo}, want: formats.PolicyMemo},
		{name: "ad hoc task", args: map[string]any{
			"title":        "Competitor market analysis",
			"description":  "Market trends and competitors",
			"category":     types.CategoryResearchSupport,
			"stakeholders": "Strategy Team, Product",
		}, want: formats.MarketAnalysis},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.handleDetectFormat(ctx, call(tt.args))
			require.NoError(t, err)
			require.False(t, result.IsError, resultText(t, result))

			var detection types.FormatDetection
			require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &detection))
			assert.Equal(t, tt.want, detection.Format)
		})
	}
}

func TestDetectFormat_Errors(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	result, err := s.handleDetectFormat(ctx, call(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "task_id or title")

	result, err = s.handleDetectFormat(ctx, call(map[string]any{"task_id": "task-404"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, "task not found: task-404", resultText(t, result))
}

func TestRankSources(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	result, err := s.handleRankSources(ctx, call(map[string]any{"task_id": "task-001", "limit": float64(2)}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var ranked []RankedSource
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &ranked))
	require.Len(t, ranked, 2)
	assert.Equal(t, "src-2", ranked[0].ID)
	assert.GreaterOrEqual(t, ranked[0].RelevanceScore, ranked[1].RelevanceScore)

	result, err = s.handleRankSources(ctx, call(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestValidateTask(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	result, err := s.handleValidateTask(ctx, call(map[string]any{"task_id": "task-001"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var report validation.TaskReport
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &report))
	assert.Equal(t, "task-001", report.TaskID)
	assert.False(t, report.Valid, "task is missing required fields")
	assert.Equal(t, len(report.Errors), report.ErrorCount)

	result, err = s.handleValidateTask(ctx, call(map[string]any{"task_id": "task-404"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestSearch(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	result, err := s.handleSearch(ctx, call(map[string]any{"query": "BATTERY"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var results []struct {
		Type string `json:"type"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &results))
	require.Len(t, results, 3)
	assert.Equal(t, store.ResultTask, results[0].Type)

	result, err = s.handleSearch(ctx, call(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b c"}, splitList(" a, ,b c,"))
	assert.Nil(t, splitList(""))
}

func TestNew_Handlers(t *testing.T) {
	s := newTestServer(t)
	assert.NotNil(t, s.MCPServer())
	assert.NotNil(t, s.HTTPHandler())
}
