package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/jonathan/research-analyst/internal/ranking"
	"github.com/jonathan/research-analyst/internal/schemas"
	"github.com/jonathan/research-analyst/internal/types"
	"github.com/jonathan/research-analyst/internal/validation"
)

// DefaultOrigin is recorded on tasks created without one.
const DefaultOrigin = "analyst"

const msgTaskNotFound = "Task not found"

// ScoredTask is a task with its quality score.
type ScoredTask struct {
	types.Task
	QualityScore float64 `json:"quality_score"`
}

// CreateTaskResponse is returned by POST /api/tasks.
type CreateTaskResponse struct {
	Task       types.Task            `json:"task"`
	Validation validation.TaskReport `json:"validation"`
}

// FixResponse is returned by POST /api/tasks/fix.
type FixResponse struct {
	Valid       bool     `json:"is_valid"`
	FixedErrors []string `json:"fixed_errors"`
	Message     string   `json:"message"`
}

func scored(task types.Task) ScoredTask {
	return ScoredTask{Task: task, QualityScore: validation.RoundScore(validation.QualityScore(&task))}
}

// handleListTasks returns every task with its quality score
func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.store.ListTasks(r.Context())
	if err != nil {
		s.storeError(w, err, msgTaskNotFound)
		return
	}
	out := make([]ScoredTask, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, scored(task))
	}
	s.jsonResponse(w, http.StatusOK, out)
}

// handleGetTask returns one task with its quality score
func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.store.GetTask(r.Context(), r.PathValue("id"))
	if err != nil {
		s.storeError(w, err, msgTaskNotFound)
		return
	}
	s.jsonResponse(w, http.StatusOK, scored(*task))
}

// handleCreateTask validates and stores a new task, then assigns matching
// sources and tags to it
func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := readBody(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := validateDocument(schemas.KindTask, body); err != nil {
		s.writeError(w, err)
		return
	}

	var task types.Task
	if err := json.Unmarshal(body, &task); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if task.ID == "" {
		task.ID = newID("task")
	} else if _, err := s.store.GetTask(ctx, task.ID); err == nil {
		s.errorResponse(w, http.StatusConflict, "Task already exists: "+task.ID)
		return
	}

	now := types.FormatTimestamp(s.now())
	if task.Origin == "" {
		task.Origin = DefaultOrigin
	}
	if task.Status == "" {
		task.Status = types.StatusNew
	}
	if task.CreatedAt == "" {
		task.CreatedAt = now
	}
	task.LastUpdated = now

	sources, err := s.store.ListSources(ctx)
	if err != nil {
		s.storeError(w, err, "")
		return
	}
	var matched []ranking.MatchResult
	for _, m := range s.matcher.Match(&task, sources, ranking.DefaultMatchLimit) {
		if m.TagOverlap > 0 {
			matched = append(matched, m)
		}
	}
	task.Tags = append(task.Tags, ranking.SuggestTags(&task, matched)...)
	if len(task.Sources) == 0 {
		task.Sources = make([]string, 0, len(matched))
		for _, m := range matched {
			task.Sources = append(task.Sources, m.Source.ID)
		}
	}

	if err := s.store.SaveTask(ctx, task); err != nil {
		s.storeError(w, err, "")
		return
	}
	if ranking.AssignSources(task.ID, sources, matched) > 0 {
		for i := range sources {
			if !sources[i].HasTask(task.ID) {
				continue
			}
			if err := s.store.SaveSource(ctx, sources[i]); err != nil {
				s.storeError(w, err, "")
				return
			}
		}
	}

	s.logger.Info("task created",
		zap.String("task_id", task.ID),
		zap.Int("matched_sources", len(matched)))
	s.jsonResponse(w, http.StatusOK, CreateTaskResponse{
		Task:       task,
		Validation: validation.ReportTask(&task),
	})
}

// handleUpdateTask merges the request body into a stored task. The task ID
// comes from the path, or from the body's id field on PUT /api/tasks.
func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := readBody(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	id := r.PathValue("id")
	if id == "" {
		var ref struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(body, &ref); err != nil {
			s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
			return
		}
		id = ref.ID
	}
	if id == "" {
		s.writeError(w, &ErrValidation{Field: "id", Message: "is required"})
		return
	}

	current, err := s.store.GetTask(ctx, id)
	if err != nil {
		s.storeError(w, err, msgTaskNotFound)
		return
	}
	task, err := mergeJSON(*current, body)
	if err != nil {
		s.writeError(w, err)
		return
	}
	task.ID = id
	task.LastUpdated = types.FormatTimestamp(s.now())

	if err := s.store.SaveTask(ctx, task); err != nil {
		s.storeError(w, err, msgTaskNotFound)
		return
	}
	s.jsonResponse(w, http.StatusOK, task)
}

// handleDeleteTask removes a task
func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.DeleteTask(r.Context(), id); err != nil {
		s.storeError(w, err, msgTaskNotFound)
		return
	}
	s.logger.Info("task deleted", zap.String("task_id", id))
	s.jsonResponse(w, http.StatusOK, map[string]any{"success": true, "id": id})
}

// handleValidateTasks validates every stored task
func (s *Server) handleValidateTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.store.ListTasks(r.Context())
	if err != nil {
		s.storeError(w, err, "")
		return
	}
	s.jsonResponse(w, http.StatusOK, validation.Summarize(validation.ValidateAll(tasks)))
}

// handleQualityReport returns the quality report for every stored task
func (s *Server) handleQualityReport(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.store.ListTasks(r.Context())
	if err != nil {
		s.storeError(w, err, "")
		return
	}
	s.jsonResponse(w, http.StatusOK, validation.QualityReport(tasks, s.qualityThreshold))
}

// handleFixTasks repairs common task problems, stores the result and
// reports whether the task list now validates
func (s *Server) handleFixTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		s.storeError(w, err, "")
		return
	}

	fixed, changes := validation.Fix(tasks)
	if len(changes) > 0 {
		if err := s.store.ReplaceTasks(ctx, fixed); err != nil {
			s.storeError(w, err, "")
			return
		}
	}
	if changes == nil {
		changes = []string{}
	}

	resp := FixResponse{
		Valid:       validation.ValidateAll(fixed).Valid,
		FixedErrors: changes,
		Message:     "Some issues could not be automatically fixed",
	}
	if resp.Valid {
		resp.Message = "Tasks validated and fixed successfully"
	}
	s.logger.Info("tasks fixed", zap.Int("changes", len(changes)), zap.Bool("valid", resp.Valid))
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleValidateTask validates one task and reports its quality score
func (s *Server) handleValidateTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.store.GetTask(r.Context(), r.PathValue("id"))
	if err != nil {
		s.storeError(w, err, msgTaskNotFound)
		return
	}
	s.jsonResponse(w, http.StatusOK, validation.ReportTask(task))
}
