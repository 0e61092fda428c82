package types

import "time"

// Source types produced by the aggregators and the API.
const (
	SourceTypeNewsArticle  = "news_article"
	SourceTypeRSSFeed      = "rss_feed"
	SourceTypeWebPage      = "web_page"
	SourceTypeInternalNote = "internal_note"
	SourceTypeSlack        = "slack_message"
	SourceTypeSharePoint   = "sharepoint_document"
)

// AccessAvailable is the default access status for new sources.
const AccessAvailable = "Available"

// Source represents a candidate information source for one or more tasks.
type Source struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description,omitempty"`
	URL            string   `json:"url,omitempty"`
	Source         string   `json:"source,omitempty"` // Publisher or channel name
	Author         string   `json:"author,omitempty"`
	Content        string   `json:"content,omitempty"`
	PublishedAt    string   `json:"published_at,omitempty"`
	Freshness      string   `json:"freshness,omitempty"`
	Type           string   `json:"type,omitempty"`
	MediaType      string   `json:"media_type,omitempty"`
	AccessStatus   string   `json:"access_status,omitempty"`
	Tags           []string `json:"tags"`
	RelevanceScore float64  `json:"relevance_score"`
	AssignedTasks  []string `json:"assigned_tasks,omitempty"`
}

// Text returns the title and description joined by a single space.
func (s *Source) Text() string {
	return s.Title + " " + s.Description
}

// PublishedTime returns the publication time of the source. The
// published_at field wins over freshness. ok is false when neither parses.
func (s *Source) PublishedTime() (t time.Time, ok bool) {
	if t, ok = ParseTimestamp(s.PublishedAt); ok {
		return t, true
	}
	return ParseTimestamp(s.Freshness)
}

// HasTask reports whether taskID is already in the assigned task list.
func (s *Source) HasTask(taskID string) bool {
	for _, id := range s.AssignedTasks {
		if id == taskID {
			return true
		}
	}
	return false
}
