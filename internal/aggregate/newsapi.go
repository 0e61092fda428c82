package aggregate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/research-analyst/internal/types"
)

// DefaultNewsPageSize is the number of articles requested per query.
const DefaultNewsPageSize = 10

// NewsAPIProvider queries the NewsAPI /everything endpoint.
type NewsAPIProvider struct {
	BaseURL  string
	APIKey   string
	PageSize int
	Client   *http.Client
}

// NewNewsAPIProvider creates a provider for the API at baseURL.
func NewNewsAPIProvider(baseURL, apiKey string) *NewsAPIProvider {
	return &NewsAPIProvider{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		APIKey:   apiKey,
		PageSize: DefaultNewsPageSize,
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Name implements Provider.
func (p *NewsAPIProvider) Name() string { return "newsapi" }

type newsResponse struct {
	Status   string        `json:"status"`
	Message  string        `json:"message"`
	Articles []newsArticle `json:"articles"`
}

type newsArticle struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}

// Fetch implements Provider. It returns no sources when the key or the
// search terms are empty.
func (p *NewsAPIProvider) Fetch(ctx context.Context, _ *types.Task, terms []string) ([]types.Source, error) {
	if p.APIKey == "" || len(terms) == 0 {
		return nil, nil
	}

	pageSize := p.PageSize
	if pageSize <= 0 {
		pageSize = DefaultNewsPageSize
	}
	params := url.Values{}
	params.Set("q", strings.Join(terms, " "))
	params.Set("apiKey", p.APIKey)
	params.Set("language", "en")
	params.Set("sortBy", "relevancy")
	params.Set("pageSize", strconv.Itoa(pageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+"/everything?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create news request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query news API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read news response: %w", err)
	}

	var decoded newsResponse
	if err := json.Unmarshal(body, &decoded); err != nil && resp.StatusCode == http.StatusOK {
		return nil, fmt.Errorf("failed to decode news response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if decoded.Message != "" {
			return nil, fmt.Errorf("news API returned status %d: %s", resp.StatusCode, decoded.Message)
		}
		return nil, fmt.Errorf("news API returned status %d", resp.StatusCode)
	}

	sources := make([]types.Source, 0, len(decoded.Articles))
	for _, article := range decoded.Articles {
		sources = append(sources, withID("news", types.Source{
			Title:        article.Title,
			Description:  article.Description,
			URL:          article.URL,
			Source:       article.Source.Name,
			Author:       article.Author,
			Content:      article.Content,
			PublishedAt:  article.PublishedAt,
			Type:         types.SourceTypeNewsArticle,
			MediaType:    MediaArticle,
			AccessStatus: types.AccessAvailable,
			Tags:         []string{},
		}))
	}
	return sources, nil
}
