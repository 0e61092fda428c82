package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/research-analyst/internal/schemas"
	"github.com/jonathan/research-analyst/internal/store"
	"github.com/jonathan/research-analyst/internal/types"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func requestValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status    string        `json:"status"`
	Timestamp string        `json:"timestamp"`
	DataFiles *store.Counts `json:"data_files,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// SearchResponse is returned by GET /search.
type SearchResponse struct {
	Query   string               `json:"query"`
	Results []store.SearchResult `json:"results"`
}

// handleHealth returns server health status and collection sizes
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	timestamp := types.FormatTimestamp(s.now())
	counts, err := s.store.Counts(r.Context())
	if err != nil {
		s.logger.Error("health check failed", zap.Error(err))
		s.jsonResponse(w, http.StatusInternalServerError, HealthResponse{
			Status:    "error",
			Timestamp: timestamp,
			Error:     err.Error(),
		})
		return
	}
	s.jsonResponse(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: timestamp,
		DataFiles: &counts,
	})
}

// handleSearch matches ?q= against task, source and deliverable titles and
// descriptions
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	results, err := store.Search(r.Context(), s.store, query)
	if err != nil {
		s.storeError(w, err, "")
		return
	}
	s.jsonResponse(w, http.StatusOK, SearchResponse{Query: query, Results: results})
}

// readBody reads the request body up to maxBodyBytes.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, &ErrValidation{Message: "failed to read request body: " + err.Error()}
	}
	return body, nil
}

// decodeRequest decodes a JSON body into req and runs its validate tags.
func decodeRequest(w http.ResponseWriter, r *http.Request, req any) error {
	body, err := readBody(w, r)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}
	if err := json.Unmarshal(body, req); err != nil {
		return &ErrValidation{Message: "Invalid request body: " + err.Error()}
	}
	return validateRequest(req)
}

// validateRequest reports the first failing validate tag as an ErrValidation.
func validateRequest(req any) error {
	err := requestValidator().Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ErrValidation{Field: fe.Field(), Message: describeTag(fe)}
	}
	return &ErrValidation{Message: err.Error()}
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	default:
		return fmt.Sprintf("failed %s check", fe.Tag())
	}
}

// validateDocument checks body against the embedded schema for kind.
func validateDocument(kind string, body []byte) error {
	err := schemas.ValidateDocument(kind, body)
	var ve *schemas.ValidationError
	if errors.As(err, &ve) {
		return &ErrValidation{Message: strings.Join(ve.Messages(), "; ")}
	}
	return err
}

// writeError writes err with the status HTTPStatus assigns it.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	s.errorResponse(w, status, err.Error())
}

// mergeJSON overlays the top-level fields of patch onto current.
func mergeJSON[T any](current T, patch []byte) (T, error) {
	if len(bytes.TrimSpace(patch)) == 0 {
		return current, nil
	}
	var merged T
	base, err := json.Marshal(current)
	if err != nil {
		return merged, err
	}
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(base, &fields); err != nil {
		return merged, err
	}
	updates := make(map[string]json.RawMessage)
	if err := json.Unmarshal(patch, &updates); err != nil {
		return merged, &ErrValidation{Message: "Invalid request body: " + err.Error()}
	}
	for k, v := range updates {
		fields[k] = v
	}
	combined, err := json.Marshal(fields)
	if err != nil {
		return merged, err
	}
	if err := json.Unmarshal(combined, &merged); err != nil {
		return merged, &ErrValidation{Message: "Invalid request body: " + err.Error()}
	}
	return merged, nil
}

// newID returns prefix followed by eight random hex characters.
func newID(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}
