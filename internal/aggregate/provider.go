package aggregate

import (
	"context"
	"strings"
	"time"

	"github.com/jonathan/research-analyst/internal/config"
	"github.com/jonathan/research-analyst/internal/types"
)

// Media types recorded on aggregated sources.
const (
	MediaArticle      = "article"
	MediaChat         = "chat"
	MediaPresentation = "presentation"
	MediaDocument     = "document"
)

// Provider fetches candidate sources for a task.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, task *types.Task, terms []string) ([]types.Source, error)
}

// StaticProvider offers the internal notes listed in configuration to every
// task. Ranking decides whether they are relevant.
type StaticProvider struct {
	Notes []config.InternalSource
	Now   func() time.Time
}

// NewStaticProvider creates a StaticProvider for notes.
func NewStaticProvider(notes []config.InternalSource) *StaticProvider {
	return &StaticProvider{Notes: notes, Now: time.Now}
}

// Name implements Provider.
func (p *StaticProvider) Name() string { return "internal" }

// Fetch implements Provider.
func (p *StaticProvider) Fetch(ctx context.Context, _ *types.Task, _ []string) ([]types.Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := time.Now
	if p.Now != nil {
		now = p.Now
	}

	sources := make([]types.Source, 0, len(p.Notes))
	for _, note := range p.Notes {
		channel := strings.ToLower(strings.TrimSpace(note.Channel))
		sourceType, mediaType := internalKind(channel)
		prefix := channel
		if prefix == "" {
			prefix = "internal"
		}

		published := note.PublishedAt
		if published == "" {
			published = types.FormatTimestamp(now())
		}
		tags := append([]string{"internal"}, note.Tags...)

		sources = append(sources, withID(prefix, types.Source{
			Title:        note.Title,
			Description:  note.Description,
			Content:      note.Content,
			URL:          note.URL,
			Source:       internalSourceName(note),
			Author:       note.Author,
			PublishedAt:  published,
			Type:         sourceType,
			MediaType:    mediaType,
			AccessStatus: types.AccessAvailable,
			Tags:         tags,
		}))
	}
	return sources, nil
}

func internalKind(channel string) (sourceType, mediaType string) {
	switch channel {
	case "slack":
		return types.SourceTypeSlack, MediaChat
	case "sharepoint":
		return types.SourceTypeSharePoint, MediaPresentation
	default:
		return types.SourceTypeInternalNote, MediaDocument
	}
}

func internalSourceName(note config.InternalSource) string {
	switch strings.ToLower(note.Channel) {
	case "slack":
		return "Slack"
	case "sharepoint":
		return "SharePoint"
	case "":
		return "Internal"
	default:
		return note.Channel
	}
}
