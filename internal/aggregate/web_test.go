package aggregate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/research-analyst/internal/fetch"
	"github.com/jonathan/research-analyst/internal/types"
)

type fakePages map[string]*fetch.Page

func (f fakePages) Page(_ context.Context, url string) (*fetch.Page, error) {
	page, ok := f[url]
	if !ok {
		return nil, errors.New("not found")
	}
	return page, nil
}

func TestWebProvider_KeepsMatchingPages(t *testing.T) {
	pages := fakePages{
		"https://a.example/bnpl": {
			URL:      "https://a.example/bnpl",
			Metadata: fetch.Metadata{Title: "BNPL outlook", Author: "Analyst"},
			Text:     "Buy now pay later volumes rose in the market this quarter.",
		},
		"https://b.example/sports": {
			URL:  "https://b.example/sports",
			Text: "Nothing relevant here.",
		},
	}

	p := NewWebProvider([]string{"https://a.example/bnpl", "https://missing.example", "https://b.example/sports"}, pages, nil)
	sources, err := p.Fetch(t.Context(), &types.Task{}, []string{"bnpl", "market"})
	require.NoError(t, err)
	require.Len(t, sources, 1)

	s := sources[0]
	assert.Equal(t, sourceID("web", types.Source{URL: "https://a.example/bnpl"}), s.ID)
	assert.Equal(t, "BNPL outlook", s.Title)
	assert.Equal(t, "a.example", s.Source)
	assert.Equal(t, "Analyst", s.Author)
	assert.Equal(t, types.SourceTypeWebPage, s.Type)
	assert.Equal(t, "Buy now pay later volumes rose in the market this quarter.", s.Description)
	assert.InDelta(t, 1.0, s.RelevanceScore, 1e-9)
}

func TestWebProvider_WithFetcher(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><title>Wallet report</title>
<meta name="description" content="Digital wallet adoption in LATAM"></head>
<body><nav>menu</nav><article><p>Digital wallet adoption keeps growing.</p></article></body></html>`))
	}))
	defer server.Close()

	fetcher := fetch.NewFetcher(fetch.FetcherConfig{CacheTTL: -1})
	p := NewWebProvider([]string{server.URL}, fetcher, nil)

	sources, err := p.Fetch(t.Context(), &types.Task{}, []string{"wallet"})
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "Wallet report", sources[0].Title)
	assert.Equal(t, "Digital wallet adoption in LATAM", sources[0].Description)
	assert.Equal(t, "Digital wallet adoption keeps growing.", sources[0].Content)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abc...", truncate("abcdef", 3))
}
