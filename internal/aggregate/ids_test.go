package aggregate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/research-analyst/internal/types"
)

func TestSourceID(t *testing.T) {
	article := types.Source{URL: "https://example.com/a", Title: "BNPL usage climbs"}

	id := sourceID("news", article)
	assert.True(t, strings.HasPrefix(id, "news-"), id)
	assert.Len(t, id, len("news-")+sourceIDLength)

	retitled := article
	retitled.Title = "BNPL usage climbs again"
	assert.Equal(t, id, sourceID("news", retitled), "URL decides the ID")
	assert.NotEqual(t, id, sourceID("news", types.Source{URL: "https://example.com/b"}))

	note := types.Source{Source: "Slack", Title: "Strategy thread"}
	assert.Equal(t, sourceID("slack", note), sourceID("slack", note))
	assert.NotEqual(t, sourceID("slack", note), sourceID("slack", types.Source{Source: "Slack", Title: "Other thread"}))
}

func TestDedupe(t *testing.T) {
	got := dedupe([]types.Source{{ID: "a", Title: "first"}, {ID: "b"}, {ID: "a", Title: "second"}})
	assert.Equal(t, []types.Source{{ID: "a", Title: "first"}, {ID: "b"}}, got)
	assert.Empty(t, dedupe(nil))
}
