package aggregate

import (
	"context"
	"net/url"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/research-analyst/internal/fetch"
	"github.com/jonathan/research-analyst/internal/types"
)

// webConcurrency bounds parallel page fetches.
const webConcurrency = 4

const webDescriptionLength = 300

// PageFetcher loads a web page. Satisfied by *fetch.Fetcher.
type PageFetcher interface {
	Page(ctx context.Context, url string) (*fetch.Page, error)
}

// WebProvider turns configured seed pages into sources when their text
// mentions a search term.
type WebProvider struct {
	SeedURLs []string
	Fetcher  PageFetcher
	Logger   *zap.Logger
}

// NewWebProvider creates a provider for seedURLs.
func NewWebProvider(seedURLs []string, fetcher PageFetcher, logger *zap.Logger) *WebProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebProvider{SeedURLs: seedURLs, Fetcher: fetcher, Logger: logger}
}

// Name implements Provider.
func (p *WebProvider) Name() string { return "web" }

// Fetch implements Provider. Pages that fail to load are logged and skipped.
func (p *WebProvider) Fetch(ctx context.Context, _ *types.Task, terms []string) ([]types.Source, error) {
	if len(terms) == 0 || len(p.SeedURLs) == 0 || p.Fetcher == nil {
		return nil, nil
	}
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	pages := make([]*fetch.Page, len(p.SeedURLs))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(webConcurrency)
	for i, seed := range p.SeedURLs {
		g.Go(func() error {
			page, err := p.Fetcher.Page(gCtx, seed)
			if err != nil {
				logger.Warn("failed to fetch seed page", zap.String("url", seed), zap.Error(err))
				return nil
			}
			pages[i] = page
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var sources []types.Source
	for _, page := range pages {
		if page == nil {
			continue
		}
		text := strings.ToLower(page.Metadata.Title + " " + page.Text)
		hits := countHits(text, terms)
		if hits == 0 {
			continue
		}
		sources = append(sources, pageSource(page, float64(hits)/float64(len(terms))))
	}
	return sources, nil
}

func pageSource(page *fetch.Page, relevance float64) types.Source {
	title := page.Metadata.Title
	if title == "" {
		title = page.URL
	}
	description := page.Metadata.Description
	if description == "" {
		description = truncate(page.Text, webDescriptionLength)
	}
	site := page.Metadata.SiteName
	if site == "" {
		if u, err := url.Parse(page.URL); err == nil {
			site = u.Hostname()
		}
	}
	return withID("web", types.Source{
		Title:          title,
		Description:    description,
		URL:            page.URL,
		Source:         site,
		Author:         page.Metadata.Author,
		Content:        page.Text,
		PublishedAt:    page.Metadata.PublishedAt,
		Type:           types.SourceTypeWebPage,
		MediaType:      MediaArticle,
		AccessStatus:   types.AccessAvailable,
		RelevanceScore: relevance,
		Tags:           []string{},
	})
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
