package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/research-analyst/internal/config"
	"github.com/jonathan/research-analyst/internal/deliverables"
	"github.com/jonathan/research-analyst/internal/formats"
	"github.com/jonathan/research-analyst/internal/pipeline"
	"github.com/jonathan/research-analyst/internal/ranking"
	"github.com/jonathan/research-analyst/internal/server/ratelimit"
	"github.com/jonathan/research-analyst/internal/store"
	"github.com/jonathan/research-analyst/internal/types"
)

type testServer struct {
	*Server
	store *store.FileStore
}

func newTestServer(t *testing.T, configure ...func(*Config)) *testServer {
	t.Helper()
	st := store.NewFileStore(t.TempDir())
	ctx := context.Background()
	require.NoError(t, st.SaveTask(ctx, types.Task{
		ID:           "task-001",
		Title:        "EV battery market analysis",
		Description:  "Competitive market analysis of EV battery suppliers and trends",
		Category:     types.CategoryResearchSupport,
		Stakeholders: []string{"Strategy Team"},
		Status:       types.StatusNew,
	}))
	require.NoError(t, st.SaveSource(ctx, types.Source{
		ID:            "src-1",
		Title:         "EV battery market trends",
		Description:   "Market analysis of battery suppliers",
		Tags:          []string{"battery", "ev"},
		AssignedTasks: []string{"task-001"},
	}))
	require.NoError(t, st.SaveSource(ctx, types.Source{
		ID:    "src-2",
		Title: "Office lunch menu",
		Tags:  []string{"lunch"},
	}))

	classifier := formats.NewClassifier(formats.DefaultRules(), formats.DefaultWeights(), nil)
	engine := deliverables.NewEngine(classifier, nil, nil)
	cfg := Config{
		Store:     st,
		Pipeline:  pipeline.New(st, ranking.NewRanker(ranking.DefaultRecency()), engine, nil),
		RateLimit: &ratelimit.Config{Enabled: false},
	}
	for _, fn := range configure {
		fn(&cfg)
	}

	s, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return &testServer{Server: s, store: st}
}

func (ts *testServer) do(t *testing.T, method, path string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	ts.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, w)["error"]
}

func TestNew_RequiresStoreAndPipeline(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)

	_, err = New(Config{Store: store.NewFileStore(t.TempDir())})
	assert.Error(t, err)
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[HealthResponse](t, w)
	assert.Equal(t, "healthy", resp.Status)
	assert.NotEmpty(t, resp.Timestamp)
	require.NotNil(t, resp.DataFiles)
	assert.Equal(t, store.Counts{Tasks: 1, Sources: 2}, *resp.DataFiles)
}

func TestSearchEndpoint(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/search?q=Battery", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[SearchResponse](t, w)
	assert.Equal(t, "Battery", resp.Query)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, store.ResultTask, resp.Results[0].Type)
	assert.Equal(t, store.ResultSource, resp.Results[1].Type)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodOptions, "/api/tasks", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "DELETE")
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestListTasks_IncludesQualityScore(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/api/tasks", nil)
	require.Equal(t, http.StatusOK, w.Code)

	tasks := decode[[]map[string]any](t, w)
	require.Len(t, tasks, 1)
	assert.Equal(t, "task-001", tasks[0]["id"])
	assert.Contains(t, tasks[0], "quality_score")

	w = ts.do(t, http.MethodGet, "/api/tasks/task-001", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "EV battery market analysis", decode[ScoredTask](t, w).Title)

	w = ts.do(t, http.MethodGet, "/api/tasks/task-404", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Task not found", errorMessage(t, w))
}

func TestCreateTask(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodPost, "/api/tasks", map[string]any{
		"title":       "Battery supplier review",
		"description": "Review lithium battery suppliers in Asia",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[CreateTaskResponse](t, w)
	task := resp.Task
	assert.True(t, strings.HasPrefix(task.ID, "task-"))
	assert.Len(t, task.ID, len("task-")+8)
	assert.Equal(t, DefaultOrigin, task.Origin)
	assert.Equal(t, types.StatusNew, task.Status)
	assert.NotEmpty(t, task.CreatedAt)
	assert.Equal(t, []string{"battery"}, task.Tags)
	assert.Equal(t, []string{"src-1"}, task.Sources)
	assert.Equal(t, task.ID, resp.Validation.TaskID)
	assert.False(t, resp.Validation.Valid)

	source, err := ts.store.GetSource(context.Background(), "src-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"task-001", task.ID}, source.AssignedTasks)

	stored, err := ts.store.GetTask(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.Title, stored.Title)
}

func TestCreateTask_Rejected(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"missing title", map[string]any{"description": "No title"}, http.StatusBadRequest},
		{"wrong type", map[string]any{"title": "Valid title", "progress": "half"}, http.StatusBadRequest},
		{"invalid JSON", "{", http.StatusBadRequest},
		{"existing ID", map[string]any{"id": "task-001", "title": "Duplicate"}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, "/api/tasks", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.NotEmpty(t, errorMessage(t, w))
		})
	}
}

func TestUpdateTask(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPut, "/api/tasks", map[string]any{"id": "task-001", "status": types.StatusInProgress})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	task := decode[types.Task](t, w)
	assert.Equal(t, types.StatusInProgress, task.Status)
	assert.Equal(t, "EV battery market analysis", task.Title, "unset fields are kept")
	assert.NotEmpty(t, task.LastUpdated)

	w = ts.do(t, http.MethodPut, "/api/tasks/task-001", map[string]any{"id": "task-999", "progress": 40})
	require.Equal(t, http.StatusOK, w.Code)
	task = decode[types.Task](t, w)
	assert.Equal(t, "task-001", task.ID, "path ID wins")
	assert.Equal(t, 40.0, task.ProgressValue())
	assert.Equal(t, types.StatusInProgress, task.Status)

	w = ts.do(t, http.MethodPut, "/api/tasks", map[string]any{"id": "task-404"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Task not found", errorMessage(t, w))

	w = ts.do(t, http.MethodPut, "/api/tasks", map[string]any{"status": "New"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteTask(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodDelete, "/api/tasks/task-001", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodDelete, "/api/tasks/task-001", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Task not found", errorMessage(t, w))
}

func TestValidationRoutes(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/tasks/validate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode[map[string]any](t, w)
	assert.Equal(t, false, summary["is_valid"])
	assert.Greater(t, summary["error_count"], 0.0)

	w = ts.do(t, http.MethodGet, "/api/tasks/quality-report", nil)
	require.Equal(t, http.StatusOK, w.Code)
	report := decode[map[string]any](t, w)
	assert.Equal(t, 1.0, report["total_tasks"])

	w = ts.do(t, http.MethodGet, "/api/tasks/task-001/validate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	single := decode[map[string]any](t, w)
	assert.Equal(t, "task-001", single["task_id"])
	assert.Contains(t, single, "quality_score")

	w = ts.do(t, http.MethodGet, "/api/tasks/task-404/validate", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFixTasks(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/tasks/fix", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[FixResponse](t, w)
	assert.NotEmpty(t, resp.FixedErrors)
	if resp.Valid {
		assert.Equal(t, "Tasks validated and fixed successfully", resp.Message)
	} else {
		assert.Equal(t, "Some issues could not be automatically fixed", resp.Message)
	}

	task, err := ts.store.GetTask(context.Background(), "task-001")
	require.NoError(t, err)
	assert.NotEmpty(t, task.Objectives, "fixes are stored")
}

func TestCreateSource_Defaults(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodPost, "/api/sources", map[string]any{"title": "Grid storage report", "url": "https://example.com/grid"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	source := decode[types.Source](t, w)
	assert.True(t, strings.HasPrefix(source.ID, "source-"))
	assert.Equal(t, DefaultMediaType, source.MediaType)
	assert.Equal(t, types.AccessAvailable, source.AccessStatus)
	assert.Equal(t, []string{}, source.Tags)
	assert.NotEmpty(t, source.Freshness)
	assert.Zero(t, source.RelevanceScore)

	w = ts.do(t, http.MethodPost, "/api/sources", map[string]any{"url": "https://example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodGet, "/api/sources", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]types.Source](t, w), 3)
}

func TestTag(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		body   TagRequest
		status int
	}{
		{"source", TagRequest{Type: "source", ItemID: "src-2", Tags: []string{"food"}}, http.StatusOK},
		{"task", TagRequest{Type: "task", ItemID: "task-001", Tags: []string{"ev", "battery"}}, http.StatusOK},
		{"missing item", TagRequest{Type: "task", ItemID: "task-404"}, http.StatusNotFound},
		{"bad type", TagRequest{Type: "deliverable", ItemID: "x"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, "/api/tag", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}

	source, err := ts.store.GetSource(ctx, "src-2")
	require.NoError(t, err)
	assert.Equal(t, []string{"food"}, source.Tags)
	task, err := ts.store.GetTask(ctx, "task-001")
	require.NoError(t, err)
	assert.Equal(t, []string{"ev", "battery"}, task.Tags)

	w := ts.do(t, http.MethodPost, "/api/tag", TagRequest{Type: "source", ItemID: "src-404"})
	assert.Equal(t, "Item not found", errorMessage(t, w))
}

func TestSuggestedSources(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/api/suggested_sources/task-001", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[SuggestedSourcesResponse](t, w)
	assert.Equal(t, "task-001", resp.TaskID)
	require.Len(t, resp.SuggestedSources, 2)
	assert.Equal(t, "src-1", resp.SuggestedSources[0].Source.ID)
	assert.Equal(t, 2, resp.SuggestedSources[0].TagOverlap)

	w = ts.do(t, http.MethodGet, "/api/suggested_sources/task-404", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeliverablesCreateAndList(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodPost, "/api/deliverables", CreateDeliverableRequest{
		Title: "Battery brief", TaskID: "task-001", Type: formats.ExecutiveBrief, Content: "# Brief",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	d := decode[types.Deliverable](t, w)
	assert.True(t, strings.HasPrefix(d.ID, "deliverable-"))
	assert.Equal(t, types.DeliverableDraft, d.Status)
	assert.Equal(t, formats.ExecutiveBrief, d.FormatType)
	assert.Equal(t, d.CreatedAt, d.LastUpdated)

	w = ts.do(t, http.MethodGet, "/api/deliverables", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]types.Deliverable](t, w), 1)

	w = ts.do(t, http.MethodPost, "/api/deliverables", map[string]any{"title": "No task"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation error: task_id - is required", errorMessage(t, w))
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		name   string
		body   map[string]any
		method string
	}{
		{"defaults fall back to the template engine", map[string]any{"task_id": "task-001"}, pipeline.MethodEnhanced},
		{"enhanced", map[string]any{"task_id": "task-001", "use_llm": false}, pipeline.MethodEnhanced},
		{"basic", map[string]any{"task_id": "task-001", "use_llm": false, "use_enhanced_engine": false}, types.GenerationBasic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			w := ts.do(t, http.MethodPost, "/api/deliverables/generate", tt.body)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			result := decode[pipeline.Result](t, w)
			assert.Equal(t, tt.method, result.GenerationMethod)
			assert.NotEmpty(t, result.Content)
			assert.Equal(t, "task-001", result.Deliverable.TaskID)

			saved, err := ts.store.GetDeliverableByTask(context.Background(), "task-001")
			require.NoError(t, err)
			assert.Equal(t, result.Deliverable.ID, saved.ID)
		})
	}
}

func TestGenerate_Errors(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/deliverables/generate", map[string]any{"task_id": "task-404"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Task not found", errorMessage(t, w))

	w = ts.do(t, http.MethodPost, "/api/deliverables/generate", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateStream(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodPost, "/api/deliverables/generate/stream", map[string]any{"task_id": "task-001", "use_llm": false})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	body := w.Body.String()
	assert.Contains(t, body, "id: 1\nevent: progress\n")
	assert.Contains(t, body, `"step":"load_inputs"`)
	assert.Contains(t, body, "event: complete\n")
	assert.NotContains(t, body, "event: error")

	w = ts.do(t, http.MethodPost, "/api/deliverables/generate/stream", map[string]any{"task_id": "task-404"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExport(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/deliverables/export", ExportRequest{TaskID: "task-001", Content: "# Title\n\n**Bold** text\n"})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[ExportResponse](t, w)
	assert.Equal(t, "markdown", resp.Format)
	assert.Equal(t, "deliverable-task-001.markdown", resp.Filename)
	assert.Equal(t, "# Title\n\n**Bold** text\n", resp.Content)

	w = ts.do(t, http.MethodPost, "/api/deliverables/export", ExportRequest{TaskID: "task-001", Content: "# Title\n", Format: "text"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Title\n", decode[ExportResponse](t, w).Content)

	w = ts.do(t, http.MethodPost, "/api/deliverables/export", ExportRequest{TaskID: "task-001", Format: "pdf"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/api/deliverables/export", ExportRequest{TaskID: "task-404"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpsertDeliverable(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPut, "/api/deliverables/task-001", map[string]any{"content": "first draft"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	created := decode[types.Deliverable](t, w)
	assert.Equal(t, "Deliverable for Task task-001", created.Title)
	assert.Equal(t, types.DeliverableDraft, created.Status)
	assert.Equal(t, "first draft", created.Content)

	w = ts.do(t, http.MethodPut, "/api/deliverables/task-001", map[string]any{"status": "Final", "id": "other"})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[types.Deliverable](t, w)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Final", updated.Status)
	assert.Equal(t, "first draft", updated.Content)

	all, err := ts.store.ListDeliverables(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestDetectFormat(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/detect_format", DetectFormatRequest{TaskID: "task-001"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, formats.MarketAnalysis, decode[types.FormatDetection](t, w).Format)

	w = ts.do(t, http.MethodPost, "/api/detect_format", DetectFormatRequest{
		Task: &types.Task{Title: "New compliance policy", Description: "Regulatory policy review"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, formats.PolicyMemo, decode[types.FormatDetection](t, w).Format)

	w = ts.do(t, http.MethodPost, "/api/detect_format", DetectFormatRequest{TaskID: "task-001", FormatType: formats.StrategyDeck})
	require.Equal(t, http.StatusOK, w.Code)
	detection := decode[types.FormatDetection](t, w)
	assert.Equal(t, formats.StrategyDeck, detection.Format)
	assert.Equal(t, 1.0, detection.Confidence)

	w = ts.do(t, http.MethodPost, "/api/detect_format", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/api/detect_format", DetectFormatRequest{TaskID: "task-404"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRankSources(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/rank_sources", RankSourcesRequest{TaskID: "task-001", Limit: 1})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[RankSourcesResponse](t, w)
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, "src-1", resp.Sources[0].ID)
	assert.Greater(t, resp.Sources[0].RelevanceScore, 0.0)

	w = ts.do(t, http.MethodPost, "/api/rank_sources", RankSourcesRequest{TaskID: "task-001"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[RankSourcesResponse](t, w).Sources, 2)

	w = ts.do(t, http.MethodPost, "/api/rank_sources", map[string]any{"task_id": "task-001", "limit": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthOnMutatingRoutes(t *testing.T) {
	jwtConfig := &config.JWTConfig{Secret: "0123456789abcdef-test", Issuer: "research-analyst", ExpirationHours: 1}
	ts := newTestServer(t, func(c *Config) { c.JWT = jwtConfig })

	w := ts.do(t, http.MethodGet, "/api/tasks", nil)
	assert.Equal(t, http.StatusOK, w.Code, "reads stay open")

	w = ts.do(t, http.MethodPost, "/api/sources", map[string]any{"title": "Grid report"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := NewJWTService(jwtConfig).GenerateToken("analyst-dashboard")
	require.NoError(t, err)
	w = ts.do(t, http.MethodPost, "/api/sources", map[string]any{"title": "Grid report"}, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, func(c *Config) {
		c.RateLimit = &ratelimit.Config{
			Enabled:       true,
			DefaultLimit:  1000,
			DefaultWindow: time.Minute,
			EndpointConfigs: []ratelimit.EndpointConfig{
				{Path: "/api/sources", Method: http.MethodGet, Limit: 1, Window: time.Hour},
			},
		}
	})

	w := ts.do(t, http.MethodGet, "/api/sources", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = ts.do(t, http.MethodGet, "/api/sources", nil)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	resp := decode[map[string]any](t, w)
	assert.Equal(t, "rate_limit_exceeded", resp["error"])
	assert.Equal(t, 1.0, resp["limit"])

	w = ts.do(t, http.MethodGet, "/api/tasks", nil)
	assert.Equal(t, http.StatusOK, w.Code, "other endpoints use the default limit")
}

func TestMergeJSON(t *testing.T) {
	current := types.Task{ID: "task-1", Title: "Original", Tags: []string{"a"}}

	merged, err := mergeJSON(current, []byte(`{"title":"Changed","progress":12.5}`))
	require.NoError(t, err)
	assert.Equal(t, "Changed", merged.Title)
	assert.Equal(t, []string{"a"}, merged.Tags)
	assert.Equal(t, 12.5, merged.ProgressValue())

	merged, err = mergeJSON(current, nil)
	require.NoError(t, err)
	assert.Equal(t, current, merged)

	_, err = mergeJSON(current, []byte(`{"title":5}`))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
}

func TestNewID(t *testing.T) {
	id := newID("source")
	assert.Regexp(t, `^source-[0-9a-f]{8}$`, id)
	assert.NotEqual(t, id, newID("source"))
}
