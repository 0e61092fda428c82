package server

import (
	"encoding/json"
	"net/http"

	"github.com/jonathan/research-analyst/internal/ranking"
	"github.com/jonathan/research-analyst/internal/schemas"
	"github.com/jonathan/research-analyst/internal/store"
	"github.com/jonathan/research-analyst/internal/types"
)

// DefaultMediaType is recorded on sources created without one.
const DefaultMediaType = "article"

// TagRequest is the body of POST /api/tag.
type TagRequest struct {
	Type   string   `json:"type" validate:"required,oneof=source task"`
	ItemID string   `json:"item_id" validate:"required"`
	Tags   []string `json:"tags"`
}

// SuggestedSourcesResponse is returned by GET /api/suggested_sources/{task_id}.
type SuggestedSourcesResponse struct {
	TaskID           string                `json:"task_id"`
	SuggestedSources []ranking.MatchResult `json:"suggested_sources"`
}

// handleListSources returns every source
func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	sources, err := s.store.ListSources(r.Context())
	if err != nil {
		s.storeError(w, err, "")
		return
	}
	s.jsonResponse(w, http.StatusOK, sources)
}

// handleCreateSource stores a new source with a generated ID
func (s *Server) handleCreateSource(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := validateDocument(schemas.KindSource, body); err != nil {
		s.writeError(w, err)
		return
	}

	var source types.Source
	if err := json.Unmarshal(body, &source); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	source.ID = newID("source")
	if source.MediaType == "" {
		source.MediaType = DefaultMediaType
	}
	if source.AccessStatus == "" {
		source.AccessStatus = types.AccessAvailable
	}
	if source.Tags == nil {
		source.Tags = []string{}
	}
	if source.Freshness == "" {
		source.Freshness = types.FormatTimestamp(s.now())
	}
	if source.AssignedTasks == nil {
		source.AssignedTasks = []string{}
	}

	if err := s.store.SaveSource(r.Context(), source); err != nil {
		s.storeError(w, err, "")
		return
	}
	s.jsonResponse(w, http.StatusOK, source)
}

// handleTag replaces the tags of a source or task
func (s *Server) handleTag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req TagRequest
	if err := decodeRequest(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Tags == nil {
		req.Tags = []string{}
	}

	switch req.Type {
	case store.KindSource:
		source, err := s.store.GetSource(ctx, req.ItemID)
		if err != nil {
			s.storeError(w, err, "Item not found")
			return
		}
		source.Tags = req.Tags
		if err := s.store.SaveSource(ctx, *source); err != nil {
			s.storeError(w, err, "")
			return
		}
	case store.KindTask:
		task, err := s.store.GetTask(ctx, req.ItemID)
		if err != nil {
			s.storeError(w, err, "Item not found")
			return
		}
		task.Tags = req.Tags
		task.LastUpdated = types.FormatTimestamp(s.now())
		if err := s.store.SaveTask(ctx, *task); err != nil {
			s.storeError(w, err, "")
			return
		}
	}
	s.jsonResponse(w, http.StatusOK, map[string]bool{"success": true})
}

// handleSuggestedSources returns the best tag and freshness matches for a task
func (s *Server) handleSuggestedSources(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	taskID := r.PathValue("task_id")
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		s.storeError(w, err, msgTaskNotFound)
		return
	}
	sources, err := s.store.ListSources(ctx)
	if err != nil {
		s.storeError(w, err, "")
		return
	}
	s.jsonResponse(w, http.StatusOK, SuggestedSourcesResponse{
		TaskID:           taskID,
		SuggestedSources: s.matcher.Match(task, sources, ranking.DefaultMatchLimit),
	})
}
