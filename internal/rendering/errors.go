// Package rendering turns generated deliverables into Markdown and exports
// Markdown to the supported output formats.
package rendering

import (
	"errors"
	"strings"
)

// ErrUnsupportedFormat is the cause of a RenderError for an unknown export
// format.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// TemplateError reports a deliverable template that failed to parse or
// execute.
type TemplateError struct {
	Template string // Empty when the whole template set failed to parse
	Message  string
	Cause    error
}

func (e *TemplateError) Error() string {
	var b strings.Builder
	b.WriteString("template error")
	if e.Template != "" {
		b.WriteString(" in " + e.Template)
	}
	b.WriteString(": " + e.Message)
	if e.Cause != nil {
		b.WriteString(": " + e.Cause.Error())
	}
	return b.String()
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// RenderError reports an export that could not be produced.
type RenderError struct {
	Format  string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	msg := "render error: " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}
