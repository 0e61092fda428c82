package fetch

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// DefaultCacheTTL is how long a fetched page is reused.
const DefaultCacheTTL = time.Hour

// Page is a fetched web page reduced to its article text and metadata.
type Page struct {
	URL         string
	Metadata    Metadata
	Text        string
	UsedBrowser bool
	FetchedAt   time.Time
}

// FetcherConfig holds configuration for a Fetcher.
type FetcherConfig struct {
	Options        *Options
	UseBrowser     bool // Render short pages in a headless browser
	BrowserTimeout time.Duration
	CacheTTL       time.Duration // Zero uses DefaultCacheTTL; negative disables caching
	Logger         *zap.Logger
}

// Fetcher retrieves article pages with an in-memory cache and optional
// browser fallback. It is safe for concurrent use.
type Fetcher struct {
	options        *Options
	useBrowser     bool
	browserTimeout time.Duration
	cacheTTL       time.Duration
	logger         *zap.Logger

	// render is swapped in tests to avoid launching Chrome.
	render func(ctx context.Context, url string, timeout time.Duration, logger *zap.Logger) (string, error)
	now    func() time.Time

	mu    sync.Mutex
	cache map[string]*Page
}

// NewFetcher creates a Fetcher from cfg.
func NewFetcher(cfg FetcherConfig) *Fetcher {
	if cfg.Options == nil {
		cfg.Options = DefaultOptions()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	return &Fetcher{
		options:        cfg.Options,
		useBrowser:     cfg.UseBrowser,
		browserTimeout: cfg.BrowserTimeout,
		cacheTTL:       cfg.CacheTTL,
		logger:         cfg.Logger,
		render:         WithBrowser,
		now:            time.Now,
		cache:          make(map[string]*Page),
	}
}

// Page fetches urlStr and extracts its article text. Cached pages younger
// than the cache TTL are returned without a request.
func (f *Fetcher) Page(ctx context.Context, urlStr string) (*Page, error) {
	if page := f.cached(urlStr); page != nil {
		f.logger.Debug("page served from cache", zap.String("url", urlStr))
		return page, nil
	}

	result, err := URL(ctx, urlStr, f.options)
	if err != nil {
		return nil, err
	}

	publisher := DetectPublisher(urlStr)
	page, err := parsePage(urlStr, result.HTML, publisher)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to parse page", Cause: err}
	}

	if f.useBrowser && ShouldUseBrowser(page.Text) {
		f.logger.Debug("page text too short, rendering in browser",
			zap.String("url", urlStr),
			zap.Int("text_length", len(page.Text)))
		html, err := f.render(ctx, urlStr, f.browserTimeout, f.logger)
		if err != nil {
			// Keep the plain HTTP result when rendering is unavailable.
			f.logger.Warn("browser rendering failed", zap.String("url", urlStr), zap.Error(err))
		} else if rendered, err := parsePage(urlStr, html, publisher); err == nil {
			rendered.UsedBrowser = true
			page = rendered
		}
	}

	page.FetchedAt = f.now()
	f.store(page)
	return page, nil
}

// Invalidate drops urlStr from the cache.
func (f *Fetcher) Invalidate(urlStr string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.cache, urlStr)
}

func (f *Fetcher) cached(urlStr string) *Page {
	if f.cacheTTL < 0 {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	page, ok := f.cache[urlStr]
	if !ok {
		return nil
	}
	if f.now().Sub(page.FetchedAt) > f.cacheTTL {
		delete(f.cache, urlStr)
		return nil
	}
	return page
}

func (f *Fetcher) store(page *Page) {
	if f.cacheTTL < 0 {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cache[page.URL] = page
}

func parsePage(urlStr, html string, publisher Publisher) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	md := ExtractMetadata(doc)
	text := mainText(doc, PublisherContentSelectors(publisher), PublisherNoiseSelectors(publisher))
	return &Page{URL: urlStr, Metadata: md, Text: text}, nil
}
