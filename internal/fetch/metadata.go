package fetch

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Metadata is the descriptive information a page publishes about itself.
type Metadata struct {
	Title       string
	Description string
	Author      string
	PublishedAt string
	SiteName    string
}

// ExtractMetadata reads Open Graph, article and standard meta tags.
// Missing values are left empty.
func ExtractMetadata(doc *goquery.Document) Metadata {
	md := Metadata{
		Title: firstNonEmpty(
			metaContent(doc, "property", "og:title"),
			metaContent(doc, "name", "twitter:title"),
			strings.TrimSpace(doc.Find("title").First().Text()),
			strings.TrimSpace(doc.Find("h1").First().Text()),
		),
		Description: firstNonEmpty(
			metaContent(doc, "property", "og:description"),
			metaContent(doc, "name", "description"),
		),
		Author: firstNonEmpty(
			metaContent(doc, "name", "author"),
			metaContent(doc, "property", "article:author"),
		),
		PublishedAt: firstNonEmpty(
			metaContent(doc, "property", "article:published_time"),
			metaContent(doc, "name", "date"),
			timeAttr(doc),
		),
		SiteName: metaContent(doc, "property", "og:site_name"),
	}
	return md
}

func metaContent(doc *goquery.Document, attr, value string) string {
	content, _ := doc.Find("meta[" + attr + "='" + value + "']").First().Attr("content")
	return strings.TrimSpace(content)
}

func timeAttr(doc *goquery.Document) string {
	datetime, _ := doc.Find("time[datetime]").First().Attr("datetime")
	return strings.TrimSpace(datetime)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
