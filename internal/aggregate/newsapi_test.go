package aggregate

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/research-analyst/internal/types"
)

const newsBody = `{
  "status": "ok",
  "articles": [
    {"source": {"name": "Reuters"}, "author": "J. Doe", "title": "BNPL usage climbs", "description": "Buy now pay later grows", "url": "https://example.com/a", "publishedAt": "2024-06-28T10:00:00Z"},
    {"source": {"name": "FT"}, "title": "Regulators eye BNPL", "description": "New rules", "url": "https://example.com/b", "publishedAt": "2024-06-20T08:00:00Z"}
  ]
}`

func TestNewsAPIProvider_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/everything", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "bnpl market", q.Get("q"))
		assert.Equal(t, "secret", q.Get("apiKey"))
		assert.Equal(t, "en", q.Get("language"))
		assert.Equal(t, "relevancy", q.Get("sortBy"))
		assert.Equal(t, "10", q.Get("pageSize"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(newsBody))
	}))
	defer server.Close()

	p := NewNewsAPIProvider(server.URL+"/", "secret")
	sources, err := p.Fetch(t.Context(), &types.Task{}, []string{"bnpl", "market"})
	require.NoError(t, err)
	require.Len(t, sources, 2)

	assert.Equal(t, sourceID("news", types.Source{URL: "https://example.com/a"}), sources[0].ID)
	assert.Equal(t, sourceID("news", types.Source{URL: "https://example.com/b"}), sources[1].ID)
	assert.Equal(t, "BNPL usage climbs", sources[0].Title)
	assert.Equal(t, "Reuters", sources[0].Source)
	assert.Equal(t, "J. Doe", sources[0].Author)
	assert.Equal(t, "2024-06-28T10:00:00Z", sources[0].PublishedAt)
	assert.Equal(t, types.SourceTypeNewsArticle, sources[0].Type)
	assert.Equal(t, MediaArticle, sources[0].MediaType)
	assert.Equal(t, types.AccessAvailable, sources[0].AccessStatus)
	assert.NotNil(t, sources[0].Tags)
}

func TestNewsAPIProvider_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status":"error","message":"Your API key is invalid"}`))
	}))
	defer server.Close()

	p := NewNewsAPIProvider(server.URL, "bad")
	_, err := p.Fetch(t.Context(), &types.Task{}, []string{"bnpl"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
	assert.Contains(t, err.Error(), "Your API key is invalid")
}

func TestNewsAPIProvider_SkipsWithoutKeyOrTerms(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		calls++
	}))
	defer server.Close()

	sources, err := NewNewsAPIProvider(server.URL, "").Fetch(t.Context(), &types.Task{}, []string{"bnpl"})
	require.NoError(t, err)
	assert.Empty(t, sources)

	sources, err = NewNewsAPIProvider(server.URL, "key").Fetch(t.Context(), &types.Task{}, nil)
	require.NoError(t, err)
	assert.Empty(t, sources)
	assert.Zero(t, calls)
}
