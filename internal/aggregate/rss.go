package aggregate

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/jonathan/research-analyst/internal/types"
)

// DefaultEntriesPerFeed is the number of entries read from each feed.
const DefaultEntriesPerFeed = 5

// RSSProvider reads RSS and Atom feeds and keeps entries that mention a
// search term.
type RSSProvider struct {
	Feeds          []string
	EntriesPerFeed int
	Client         *http.Client
	UserAgent      string
	Logger         *zap.Logger
}

// NewRSSProvider creates a provider for feeds.
func NewRSSProvider(feeds []string, logger *zap.Logger) *RSSProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RSSProvider{
		Feeds:          feeds,
		EntriesPerFeed: DefaultEntriesPerFeed,
		Client:         &http.Client{Timeout: 10 * time.Second},
		UserAgent:      "ResearchAnalyst/1.0",
		Logger:         logger,
	}
}

// Name implements Provider.
func (p *RSSProvider) Name() string { return "rss" }

// Fetch implements Provider. A feed that fails to load is logged and
// skipped. Each kept entry starts with relevance hits/len(terms).
func (p *RSSProvider) Fetch(ctx context.Context, _ *types.Task, terms []string) ([]types.Source, error) {
	if len(terms) == 0 {
		return nil, nil
	}

	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := p.EntriesPerFeed
	if limit <= 0 {
		limit = DefaultEntriesPerFeed
	}

	parser := gofeed.NewParser()
	parser.Client = p.Client
	parser.UserAgent = p.UserAgent

	var sources []types.Source
	for _, feedURL := range p.Feeds {
		if err := ctx.Err(); err != nil {
			return sources, err
		}

		feed, err := parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			logger.Warn("failed to fetch RSS feed", zap.String("feed", feedURL), zap.Error(err))
			continue
		}

		feedTitle := feed.Title
		if feedTitle == "" {
			feedTitle = "RSS Feed"
		}

		for i, item := range feed.Items {
			if i == limit {
				break
			}
			text := strings.ToLower(item.Title + " " + item.Description)
			hits := countHits(text, terms)
			if hits == 0 {
				continue
			}
			sources = append(sources, withID("rss", types.Source{
				Title:          item.Title,
				Description:    item.Description,
				URL:            item.Link,
				Source:         feedTitle,
				Author:         itemAuthor(item),
				PublishedAt:    item.Published,
				Type:           types.SourceTypeRSSFeed,
				MediaType:      MediaArticle,
				AccessStatus:   types.AccessAvailable,
				RelevanceScore: float64(hits) / float64(len(terms)),
				Tags:           append([]string{}, item.Categories...),
			}))
		}
	}
	return sources, nil
}

func itemAuthor(item *gofeed.Item) string {
	if item.Author != nil {
		return item.Author.Name
	}
	if len(item.Authors) > 0 && item.Authors[0] != nil {
		return item.Authors[0].Name
	}
	return ""
}
