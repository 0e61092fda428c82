package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/jonathan/research-analyst/internal/store"
	"github.com/jonathan/research-analyst/internal/types"
	"github.com/jonathan/research-analyst/internal/validation"
)

// DefaultRankLimit is the number of sources rank_sources returns when no
// limit is given.
const DefaultRankLimit = 10

// RankedSource is one entry of the rank_sources result.
type RankedSource struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Type           string  `json:"type,omitempty"`
	URL            string  `json:"url,omitempty"`
	RelevanceScore float64 `json:"relevance_score"`
}

func (s *Server) registerTools() {
	detectTool := mcp.NewTool("detect_format",
		mcp.WithDescription("Detect the deliverable format for a stored task, or for an ad hoc task described by its fields"),
		mcp.WithString("task_id", mcp.Description("ID of a stored task")),
		mcp.WithString("title", mcp.Description("Task title, used when task_id is empty")),
		mcp.WithString("description", mcp.Description("Task description")),
		mcp.WithString("category", mcp.Description("Task category, e.g. Research Support")),
		mcp.WithString("urgency", mcp.Description("Low, Medium, High or Critical")),
		mcp.WithString("stakeholders", mcp.Description("Comma-separated stakeholder names")),
		mcp.WithString("override", mcp.Description("Format to use instead of detecting one")),
	)
	s.mcpServer.AddTool(detectTool, s.handleDetectFormat)

	rankTool := mcp.NewTool("rank_sources",
		mcp.WithDescription("Rank stored sources by relevance to a task"),
		mcp.WithString("task_id", mcp.Required(), mcp.Description("ID of a stored task")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of sources to return (default 10)")),
	)
	s.mcpServer.AddTool(rankTool, s.handleRankSources)

	validateTool := mcp.NewTool("validate_task",
		mcp.WithDescription("Validate a stored task and report its quality score"),
		mcp.WithString("task_id", mcp.Required(), mcp.Description("ID of a stored task")),
	)
	s.mcpServer.AddTool(validateTool, s.handleValidateTask)

	searchTool := mcp.NewTool("search",
		mcp.WithDescription("Search task, source and deliverable titles and descriptions"),
		mcp.WithString("query", mcp.Required(), mcp.Description("Case-insensitive search text")),
	)
	s.mcpServer.AddTool(searchTool, s.handleSearch)
}

func (s *Server) handleDetectFormat(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	override := request.GetString("override", "")

	if taskID := request.GetString("task_id", ""); taskID != "" {
		task, result := s.loadTask(ctx, taskID)
		if result != nil {
			return result, nil
		}
		return jsonResult(s.classifier.Detect(task, override))
	}

	title := request.GetString("title", "")
	if title == "" {
		return mcp.NewToolResultError("task_id or title parameter required"), nil
	}
	task := &types.Task{
		Title:        title,
		Description:  request.GetString("description", ""),
		Category:     request.GetString("category", ""),
		Urgency:      request.GetString("urgency", ""),
		Stakeholders: splitList(request.GetString("stakeholders", "")),
	}
	return jsonResult(s.classifier.Detect(task, override))
}

func (s *Server) handleRankSources(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID := request.GetString("task_id", "")
	if taskID == "" {
		return mcp.NewToolResultError("task_id parameter required"), nil
	}
	limit := int(request.GetFloat("limit", DefaultRankLimit))
	if limit <= 0 {
		limit = DefaultRankLimit
	}

	task, result := s.loadTask(ctx, taskID)
	if result != nil {
		return result, nil
	}
	sources, err := s.store.ListSources(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load sources: %v", err)), nil
	}

	ranked := s.ranker.Rank(task, sources)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]RankedSource, 0, len(ranked))
	for _, src := range ranked {
		out = append(out, RankedSource{
			ID:             src.ID,
			Title:          src.Title,
			Type:           src.Type,
			URL:            src.URL,
			RelevanceScore: src.RelevanceScore,
		})
	}
	return jsonResult(out)
}

func (s *Server) handleValidateTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID := request.GetString("task_id", "")
	if taskID == "" {
		return mcp.NewToolResultError("task_id parameter required"), nil
	}
	task, result := s.loadTask(ctx, taskID)
	if result != nil {
		return result, nil
	}
	return jsonResult(validation.ReportTask(task))
}

func (s *Server) handleSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := request.GetString("query", "")
	if query == "" {
		return mcp.NewToolResultError("query parameter required"), nil
	}
	results, err := store.Search(ctx, s.store, query)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to search: %v", err)), nil
	}
	return jsonResult(results)
}

// loadTask returns the task, or a tool error result when it cannot be read.
func (s *Server) loadTask(ctx context.Context, taskID string) (*types.Task, *mcp.CallToolResult) {
	task, err := s.store.GetTask(ctx, taskID)
	if err == nil {
		return task, nil
	}
	if store.IsNotFound(err) {
		return nil, mcp.NewToolResultError(fmt.Sprintf("task not found: %s", taskID))
	}
	s.logger.Error("failed to load task", zap.String("task_id", taskID), zap.Error(err))
	return nil, mcp.NewToolResultError(fmt.Sprintf("failed to load task: %v", err))
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
