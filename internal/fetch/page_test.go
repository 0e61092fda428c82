package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const articleHTML = `<html><head><meta property="og:title" content="Rates outlook"></head>
<body><article><p>Central banks signalled a pause.</p></article></body></html>`

func TestFetcher_PageAndCache(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer server.Close()

	f := NewFetcher(FetcherConfig{})
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f.now = func() time.Time { return clock }

	page, err := f.Page(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "Rates outlook", page.Metadata.Title)
	assert.Equal(t, "Central banks signalled a pause.", page.Text)
	assert.False(t, page.UsedBrowser)

	_, err = f.Page(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	clock = clock.Add(2 * DefaultCacheTTL)
	_, err = f.Page(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))

	f.Invalidate(server.URL)
	_, err = f.Page(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestFetcher_CacheDisabled(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer server.Close()

	f := NewFetcher(FetcherConfig{CacheTTL: -1})
	for i := 0; i < 2; i++ {
		_, err := f.Page(context.Background(), server.URL)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestFetcher_BrowserFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div id="root"></div></body></html>`))
	}))
	defer server.Close()

	f := NewFetcher(FetcherConfig{UseBrowser: true})
	rendered := "<html><body><article>" + strings.Repeat("Rendered text. ", 50) + "</article></body></html>"
	f.render = func(_ context.Context, _ string, _ time.Duration, _ *zap.Logger) (string, error) {
		return rendered, nil
	}

	page, err := f.Page(context.Background(), server.URL)
	require.NoError(t, err)
	assert.True(t, page.UsedBrowser)
	assert.Contains(t, page.Text, "Rendered text.")
}

func TestFetcher_BrowserFailureKeepsHTTPResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer server.Close()

	f := NewFetcher(FetcherConfig{UseBrowser: true})
	f.render = func(context.Context, string, time.Duration, *zap.Logger) (string, error) {
		return "", errors.New("chrome not installed")
	}

	page, err := f.Page(context.Background(), server.URL)
	require.NoError(t, err)
	assert.False(t, page.UsedBrowser)
	assert.Equal(t, "Central banks signalled a pause.", page.Text)
}

func TestFetcher_HTTPErrorNotCached(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	f := NewFetcher(FetcherConfig{})
	_, err := f.Page(context.Background(), server.URL)
	require.Error(t, err)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Nil(t, f.cached(server.URL))
}
