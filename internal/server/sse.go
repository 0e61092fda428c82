package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/research-analyst/internal/pipeline"
)

// Event names sent on the generation stream.
const (
	eventProgress = "progress"
	eventError    = "error"
	eventComplete = "complete"
)

var errStreamingUnsupported = errors.New("response writer does not support streaming")

// progressStream writes a generation run to the client as Server-Sent
// Events. Each event carries an increasing id so a client can tell how far
// the run got.
type progressStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
	seq     int
}

func newProgressStream(w http.ResponseWriter) (*progressStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errStreamingUnsupported
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &progressStream{w: w, flusher: flusher}, nil
}

func (p *progressStream) send(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event, err)
	}
	p.seq++
	if _, err := fmt.Fprintf(p.w, "id: %d\nevent: %s\ndata: %s\n\n", p.seq, event, data); err != nil {
		return err
	}
	p.flusher.Flush()
	return nil
}

// Progress forwards one pipeline step.
func (p *progressStream) Progress(event pipeline.ProgressEvent) error {
	return p.send(eventProgress, event)
}

// Fail ends the stream with the run's error.
func (p *progressStream) Fail(err error) error {
	return p.send(eventError, map[string]string{"error": "Error generating deliverable: " + err.Error()})
}

// Complete ends the stream with the generated deliverable.
func (p *progressStream) Complete(result *pipeline.Result) error {
	return p.send(eventComplete, result)
}
