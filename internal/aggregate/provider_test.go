package aggregate

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/research-analyst/internal/config"
	"github.com/jonathan/research-analyst/internal/types"
)

func TestStaticProvider_Fetch(t *testing.T) {
	p := NewStaticProvider([]config.InternalSource{
		{Title: "Strategy thread", Description: "Gen Z prefers BNPL", Channel: "Slack", Tags: []string{"strategy"}},
		{Title: "LATAM wallet deck", Channel: "sharepoint", PublishedAt: "2024-05-01"},
		{Title: "Analyst memo"},
	})
	p.Now = func() time.Time { return time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC) }

	sources, err := p.Fetch(t.Context(), &types.Task{}, nil)
	require.NoError(t, err)
	require.Len(t, sources, 3)

	assert.True(t, strings.HasPrefix(sources[0].ID, "slack-"), sources[0].ID)
	assert.Equal(t, types.SourceTypeSlack, sources[0].Type)
	assert.Equal(t, MediaChat, sources[0].MediaType)
	assert.Equal(t, "Slack", sources[0].Source)
	assert.Equal(t, []string{"internal", "strategy"}, sources[0].Tags)
	assert.Equal(t, "2024-06-30T12:00:00.000000", sources[0].PublishedAt)

	assert.True(t, strings.HasPrefix(sources[1].ID, "sharepoint-"), sources[1].ID)
	assert.Equal(t, types.SourceTypeSharePoint, sources[1].Type)
	assert.Equal(t, "2024-05-01", sources[1].PublishedAt)

	assert.True(t, strings.HasPrefix(sources[2].ID, "internal-"), sources[2].ID)

	again, err := p.Fetch(t.Context(), &types.Task{}, nil)
	require.NoError(t, err)
	assert.Equal(t, sources[0].ID, again[0].ID, "IDs are stable across fetches")
	assert.Equal(t, types.SourceTypeInternalNote, sources[2].Type)
	assert.Equal(t, "Internal", sources[2].Source)
}
