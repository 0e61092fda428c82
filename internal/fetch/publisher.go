package fetch

import (
	"net/url"
	"strings"
)

// Publisher is a known news publisher with its own page layout.
type Publisher string

const (
	// PublisherBBC is BBC News
	PublisherBBC Publisher = "bbc"
	// PublisherFT is the Financial Times
	PublisherFT Publisher = "ft"
	// PublisherReuters is Reuters
	PublisherReuters Publisher = "reuters"
	// PublisherUnknown is an unrecognized site
	PublisherUnknown Publisher = "unknown"
)

// DetectPublisher identifies the publisher from a URL.
func DetectPublisher(urlStr string) Publisher {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PublisherUnknown
	}

	host := strings.ToLower(parsed.Hostname())
	switch {
	case host == "bbc.co.uk" || host == "bbc.com" ||
		strings.HasSuffix(host, ".bbc.co.uk") || strings.HasSuffix(host, ".bbc.com"):
		return PublisherBBC
	case host == "ft.com" || strings.HasSuffix(host, ".ft.com"):
		return PublisherFT
	case host == "reuters.com" || strings.HasSuffix(host, ".reuters.com"):
		return PublisherReuters
	default:
		return PublisherUnknown
	}
}

// PublisherContentSelectors returns content selectors for a publisher,
// followed by the generic article selectors.
func PublisherContentSelectors(p Publisher) []string {
	var specific []string
	switch p {
	case PublisherBBC:
		specific = []string{"[data-component='text-block']", "article"}
	case PublisherFT:
		specific = []string{".article-body", "#site-content"}
	case PublisherReuters:
		specific = []string{"[data-testid='paragraph-0']", ".article-body__content"}
	}
	return append(specific, ArticleSelectors()...)
}

// PublisherNoiseSelectors returns elements to strip before text extraction.
func PublisherNoiseSelectors(p Publisher) []string {
	common := []string{
		".social-share",
		".share-buttons",
		".newsletter-signup",
		".related-content",
		".cookie-consent",
		".gdpr-notice",
		"figure figcaption",
	}

	switch p {
	case PublisherBBC:
		return append(common, "[data-component='links-block']", "[data-component='byline-block']")
	case PublisherFT:
		return append(common, ".barrier", ".o-ads")
	case PublisherReuters:
		return append(common, "[data-testid='Toolbar']", ".trust-badge")
	default:
		return common
	}
}
