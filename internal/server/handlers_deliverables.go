package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/jonathan/research-analyst/internal/pipeline"
	"github.com/jonathan/research-analyst/internal/rendering"
	"github.com/jonathan/research-analyst/internal/store"
	"github.com/jonathan/research-analyst/internal/types"
)

// CreateDeliverableRequest is the body of POST /api/deliverables.
type CreateDeliverableRequest struct {
	Title   string `json:"title"`
	TaskID  string `json:"task_id" validate:"required"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

// GenerateRequest is the body of the generate endpoints. Both flags default
// to true when absent.
type GenerateRequest struct {
	TaskID            string `json:"task_id" validate:"required"`
	FormatType        string `json:"format_type"`
	UseLLM            *bool  `json:"use_llm"`
	UseEnhancedEngine *bool  `json:"use_enhanced_engine"`
}

func (req *GenerateRequest) options() pipeline.Options {
	return pipeline.Options{
		TaskID:            req.TaskID,
		FormatType:        req.FormatType,
		UseLLM:            req.UseLLM == nil || *req.UseLLM,
		UseEnhancedEngine: req.UseEnhancedEngine == nil || *req.UseEnhancedEngine,
	}
}

// ExportRequest is the body of POST /api/deliverables/export.
type ExportRequest struct {
	TaskID  string `json:"task_id" validate:"required"`
	Content string `json:"content"`
	Format  string `json:"format"`
}

// ExportResponse is returned by POST /api/deliverables/export.
type ExportResponse struct {
	Content  string `json:"content"`
	Format   string `json:"format"`
	Filename string `json:"filename"`
}

// handleListDeliverables returns every deliverable
func (s *Server) handleListDeliverables(w http.ResponseWriter, r *http.Request) {
	deliverables, err := s.store.ListDeliverables(r.Context())
	if err != nil {
		s.storeError(w, err, "")
		return
	}
	s.jsonResponse(w, http.StatusOK, deliverables)
}

// handleCreateDeliverable stores a draft deliverable
func (s *Server) handleCreateDeliverable(w http.ResponseWriter, r *http.Request) {
	var req CreateDeliverableRequest
	if err := decodeRequest(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	now := types.FormatTimestamp(s.now())
	d := types.Deliverable{
		ID:          newID("deliverable"),
		TaskID:      req.TaskID,
		Title:       req.Title,
		FormatType:  req.Type,
		Status:      types.DeliverableDraft,
		Content:     req.Content,
		CreatedAt:   now,
		LastUpdated: now,
	}
	if err := s.store.SaveDeliverable(r.Context(), d); err != nil {
		s.storeError(w, err, "")
		return
	}
	s.jsonResponse(w, http.StatusOK, d)
}

// handleGenerate runs the generation pipeline for a task
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := decodeRequest(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.pipeline.Run(r.Context(), req.options())
	if err != nil {
		if errors.Is(err, pipeline.ErrTaskNotFound) {
			s.errorResponse(w, http.StatusNotFound, msgTaskNotFound)
			return
		}
		s.logger.Error("deliverable generation failed", zap.String("task_id", req.TaskID), zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "Error generating deliverable: "+err.Error())
		return
	}

	s.logger.Info("deliverable generated",
		zap.String("task_id", req.TaskID),
		zap.String("deliverable_id", result.Deliverable.ID),
		zap.String("method", result.GenerationMethod))
	s.jsonResponse(w, http.StatusOK, result)
}

// handleGenerateStream runs the generation pipeline and streams progress
// via SSE
func (s *Server) handleGenerateStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req GenerateRequest
	if err := decodeRequest(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if _, err := s.store.GetTask(ctx, req.TaskID); err != nil {
		s.storeError(w, err, msgTaskNotFound)
		return
	}

	stream, err := newProgressStream(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	opts := req.options()
	opts.OnProgress = func(event pipeline.ProgressEvent) {
		if err := stream.Progress(event); err != nil {
			s.logger.Warn("failed to write SSE event", zap.String("step", event.Step), zap.Error(err))
		}
	}

	result, err := s.pipeline.Run(ctx, opts)
	if err != nil {
		s.logger.Error("streaming generation failed", zap.String("task_id", req.TaskID), zap.Error(err))
		if werr := stream.Fail(err); werr != nil {
			s.logger.Warn("failed to write SSE error", zap.Error(werr))
		}
		return
	}
	if err := stream.Complete(result); err != nil {
		s.logger.Warn("failed to write SSE completion", zap.Error(err))
	}
}

// handleExport converts deliverable content to a download format
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if err := decodeRequest(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if _, err := s.store.GetTask(r.Context(), req.TaskID); err != nil {
		s.storeError(w, err, msgTaskNotFound)
		return
	}
	if req.Format == "" {
		req.Format = rendering.FormatMarkdown
	}

	content, err := rendering.Export(req.Content, req.Format)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ExportResponse{
		Content:  content,
		Format:   req.Format,
		Filename: rendering.Filename(req.TaskID, req.Format),
	})
}

// handleUpsertDeliverable merges the body into the task's deliverable, or
// creates one when the task has none
func (s *Server) handleUpsertDeliverable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	taskID := r.PathValue("task_id")
	body, err := readBody(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	now := types.FormatTimestamp(s.now())

	var d types.Deliverable
	existing, err := s.store.GetDeliverableByTask(ctx, taskID)
	switch {
	case err == nil:
		d, err = mergeJSON(*existing, body)
		if err != nil {
			s.writeError(w, err)
			return
		}
		d.ID = existing.ID
		d.TaskID = taskID
		d.LastUpdated = now
	case store.IsNotFound(err):
		var req struct {
			Content string `json:"content"`
			Status  string `json:"status"`
		}
		if len(body) > 0 {
			if err := json.Unmarshal(body, &req); err != nil {
				s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
				return
			}
		}
		if req.Status == "" {
			req.Status = types.DeliverableDraft
		}
		d = types.Deliverable{
			ID:          newID("deliverable"),
			TaskID:      taskID,
			Title:       "Deliverable for Task " + taskID,
			Content:     req.Content,
			Status:      req.Status,
			CreatedAt:   now,
			LastUpdated: now,
		}
	default:
		s.storeError(w, err, "")
		return
	}

	if err := s.store.SaveDeliverable(ctx, d); err != nil {
		s.storeError(w, err, "")
		return
	}
	s.jsonResponse(w, http.StatusOK, d)
}
