package server

import (
	"net/http"

	"github.com/jonathan/research-analyst/internal/pipeline"
	"github.com/jonathan/research-analyst/internal/types"
)

// DetectFormatRequest is the body of POST /api/detect_format. TaskID names a
// stored task; otherwise Task is classified as given.
type DetectFormatRequest struct {
	TaskID     string      `json:"task_id"`
	Task       *types.Task `json:"task"`
	FormatType string      `json:"format_type"`
}

// RankSourcesRequest is the body of POST /api/rank_sources.
type RankSourcesRequest struct {
	TaskID string `json:"task_id" validate:"required"`
	Limit  int    `json:"limit" validate:"gte=0"`
}

// RankSourcesResponse is returned by POST /api/rank_sources.
type RankSourcesResponse struct {
	TaskID  string         `json:"task_id"`
	Sources []types.Source `json:"sources"`
}

// handleDetectFormat classifies a stored or inline task
func (s *Server) handleDetectFormat(w http.ResponseWriter, r *http.Request) {
	var req DetectFormatRequest
	if err := decodeRequest(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	task := req.Task
	if req.TaskID != "" {
		stored, err := s.store.GetTask(r.Context(), req.TaskID)
		if err != nil {
			s.storeError(w, err, msgTaskNotFound)
			return
		}
		task = stored
	}
	if task == nil {
		s.writeError(w, &ErrValidation{Field: "task_id", Message: "task_id or task is required"})
		return
	}
	s.jsonResponse(w, http.StatusOK, s.classifier.Detect(task, req.FormatType))
}

// handleRankSources scores every stored source against a task
func (s *Server) handleRankSources(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req RankSourcesRequest
	if err := decodeRequest(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Limit == 0 {
		req.Limit = pipeline.TaskSourceLimit
	}

	task, err := s.store.GetTask(ctx, req.TaskID)
	if err != nil {
		s.storeError(w, err, msgTaskNotFound)
		return
	}
	sources, err := s.store.ListSources(ctx)
	if err != nil {
		s.storeError(w, err, "")
		return
	}

	ranked := s.ranker.Rank(task, sources)
	if len(ranked) > req.Limit {
		ranked = ranked[:req.Limit]
	}
	s.jsonResponse(w, http.StatusOK, RankSourcesResponse{TaskID: req.TaskID, Sources: ranked})
}
