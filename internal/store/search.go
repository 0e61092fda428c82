package store

import (
	"context"
	"strings"
)

// Search result types.
const (
	ResultTask        = "task"
	ResultSource      = "source"
	ResultDeliverable = "deliverable"
)

// SearchResult is one document matching a search query.
type SearchResult struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Search returns the tasks, sources and deliverables whose title or
// description contains query, ignoring case. Results are grouped by type in
// that order. An empty query matches nothing.
func Search(ctx context.Context, s Store, query string) ([]SearchResult, error) {
	results := []SearchResult{}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return results, nil
	}
	match := func(fields ...string) bool {
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f), q) {
				return true
			}
		}
		return false
	}

	tasks, err := s.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range tasks {
		if match(t.Title, t.Description) {
			results = append(results, SearchResult{Type: ResultTask, Data: t})
		}
	}

	sources, err := s.ListSources(ctx)
	if err != nil {
		return nil, err
	}
	for _, src := range sources {
		if match(src.Title, src.Description) {
			results = append(results, SearchResult{Type: ResultSource, Data: src})
		}
	}

	deliverables, err := s.ListDeliverables(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range deliverables {
		if match(d.Title) {
			results = append(results, SearchResult{Type: ResultDeliverable, Data: d})
		}
	}
	return results, nil
}
