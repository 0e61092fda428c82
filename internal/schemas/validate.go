// Package schemas validates task and source documents against the embedded
// JSON Schemas.
package schemas

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed json/*.schema.json
var schemaFS embed.FS

// Document kinds with an embedded schema.
const (
	KindTask   = "task"
	KindSource = "source"
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// Messages returns the field errors as "field: message" strings.
func (ve *ValidationError) Messages() []string {
	out := make([]string, len(ve.Errors))
	for i, err := range ve.Errors {
		out[i] = err.Field + ": " + err.Message
	}
	return out
}

var (
	cacheMu  sync.Mutex
	compiled = make(map[string]*gojsonschema.Schema)
)

func schemaFor(kind string) (*gojsonschema.Schema, error) {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	if s, ok := compiled[kind]; ok {
		return s, nil
	}

	path := "json/" + kind + ".schema.json"
	raw, err := schemaFS.ReadFile(path)
	if err != nil {
		return nil, &SchemaLoadError{Path: path, Message: "unknown document kind " + kind, Cause: err}
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, &SchemaLoadError{Path: path, Message: "invalid schema", Cause: err}
	}
	compiled[kind] = s
	return s, nil
}

// ValidateDocument validates one JSON document of the given kind. It returns
// a *ValidationError when the document does not match the schema.
func ValidateDocument(kind string, data []byte) error {
	s, err := schemaFor(kind)
	if err != nil {
		return err
	}

	result, err := s.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return &ValidationError{Errors: []FieldError{{Field: "(root)", Message: "invalid JSON: " + err.Error()}}}
	}
	if result.Valid() {
		return nil
	}
	return toValidationError(result, "")
}

// ValidateCollection validates a JSON array whose items are documents of the
// given kind. Field paths are prefixed with the item index.
func ValidateCollection(kind string, data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return &ValidationError{Errors: []FieldError{{Field: "(root)", Message: "expected a JSON array: " + err.Error()}}}
	}

	s, err := schemaFor(kind)
	if err != nil {
		return err
	}

	all := &ValidationError{}
	for i, item := range items {
		result, err := s.Validate(gojsonschema.NewBytesLoader(item))
		if err != nil {
			return &SchemaLoadError{Path: kind, Message: "failed to validate item", Cause: err}
		}
		if !result.Valid() {
			all.Errors = append(all.Errors, toValidationError(result, fmt.Sprintf("[%d]", i)).Errors...)
		}
	}
	if len(all.Errors) > 0 {
		return all
	}
	return nil
}

func toValidationError(result *gojsonschema.Result, prefix string) *ValidationError {
	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" || field == "(root)" {
			field = "(root)"
			if prefix != "" {
				field = prefix
			}
		} else if prefix != "" {
			field = prefix + "." + field
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
