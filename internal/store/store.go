// Package store persists tasks, sources and deliverables.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/research-analyst/internal/types"
)

// Collection names, shared by every Store implementation.
const (
	CollectionTasks        = "tasks"
	CollectionSources      = "sources"
	CollectionDeliverables = "deliverables"
)

// Document kinds reported in NotFoundError.
const (
	KindTask        = "task"
	KindSource      = "source"
	KindDeliverable = "deliverable"
)

// Store is the document store behind the CLI, the HTTP API and the MCP
// tools. Save methods insert new documents at the end of their collection
// and replace existing ones in place.
type Store interface {
	ListTasks(ctx context.Context) ([]types.Task, error)
	GetTask(ctx context.Context, id string) (*types.Task, error)
	SaveTask(ctx context.Context, task types.Task) error
	DeleteTask(ctx context.Context, id string) error
	ReplaceTasks(ctx context.Context, tasks []types.Task) error

	ListSources(ctx context.Context) ([]types.Source, error)
	GetSource(ctx context.Context, id string) (*types.Source, error)
	SaveSource(ctx context.Context, source types.Source) error
	ReplaceSources(ctx context.Context, sources []types.Source) error

	ListDeliverables(ctx context.Context) ([]types.Deliverable, error)
	GetDeliverableByTask(ctx context.Context, taskID string) (*types.Deliverable, error)
	SaveDeliverable(ctx context.Context, deliverable types.Deliverable) error

	Counts(ctx context.Context) (Counts, error)
	Close() error
}

// Counts is the number of documents in each collection.
type Counts struct {
	Tasks        int `json:"tasks"`
	Sources      int `json:"sources"`
	Deliverables int `json:"deliverables"`
}

// NotFoundError is returned when a document does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// SourcesByID returns the sources whose IDs appear in ids, in store order.
func SourcesByID(sources []types.Source, ids []string) []types.Source {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []types.Source
	for _, s := range sources {
		if want[s.ID] {
			out = append(out, s)
		}
	}
	return out
}

// SourcesAssignedTo returns the sources that list taskID in assigned_tasks.
func SourcesAssignedTo(sources []types.Source, taskID string) []types.Source {
	var out []types.Source
	for i := range sources {
		if sources[i].HasTask(taskID) {
			out = append(out, sources[i])
		}
	}
	return out
}
