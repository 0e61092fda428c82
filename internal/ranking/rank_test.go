package ranking

import (
	"testing"
	"time"

	"github.com/jonathan/research-analyst/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

func newTestRanker() *Ranker {
	r := NewRanker(DefaultRecency())
	r.Now = func() time.Time { return fixedNow }
	return r
}

func TestScore_RecencyBoost(t *testing.T) {
	task := &types.Task{Title: "market trends", Description: "outlook"}
	r := newTestRanker()

	tests := []struct {
		name      string
		published string
		want      float64
	}{
		// Jaccard("market trends outlook", "market trends") = 2/3
		{name: "within a week", published: "2024-06-28T00:00:00Z", want: 2.0 / 3.0 * 1.2},
		{name: "within a month", published: "2024-06-10T00:00:00Z", want: 2.0 / 3.0 * 1.1},
		{name: "older", published: "2023-01-01T00:00:00Z", want: 2.0 / 3.0},
		{name: "unparseable", published: "last tuesday", want: 2.0 / 3.0},
		{name: "missing", published: "", want: 2.0 / 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := &types.Source{Title: "market trends", PublishedAt: tt.published}
			assert.InDelta(t, tt.want, r.Score(task, source), 1e-9)
		})
	}
}

func TestScore_ClampedToOne(t *testing.T) {
	task := &types.Task{Title: "market", Description: "trends"}
	source := &types.Source{Title: "market", Description: "trends", PublishedAt: "2024-06-29"}

	assert.Equal(t, 1.0, newTestRanker().Score(task, source))
}

func TestScore_FreshnessFallback(t *testing.T) {
	task := &types.Task{Title: "market", Description: "trends"}
	source := &types.Source{Title: "market", Description: "news", Freshness: "2024-06-29T08:00:00"}

	// 1/3 boosted by 1.2
	assert.InDelta(t, 0.4, newTestRanker().Score(task, source), 1e-9)
}

func TestRank_SortsDescendingAndStable(t *testing.T) {
	task := &types.Task{Title: "energy market", Description: "outlook"}
	sources := []types.Source{
		{ID: "s1", Title: "unrelated", Description: "topic"},
		{ID: "s2", Title: "energy market", Description: "outlook"},
		{ID: "s3", Title: "other", Description: "thing"},
		{ID: "s4", Title: "energy", Description: "prices"},
	}

	ranked := newTestRanker().Rank(task, sources)
	require.Len(t, ranked, 4)

	ids := make([]string, len(ranked))
	for i, s := range ranked {
		ids[i] = s.ID
	}
	// s1 and s3 tie at zero and keep their input order
	assert.Equal(t, []string{"s2", "s4", "s1", "s3"}, ids)
	assert.Equal(t, 1.0, ranked[0].RelevanceScore)

	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].RelevanceScore, ranked[i].RelevanceScore)
	}
}

func TestRank_RecencyNeverDemotesNewer(t *testing.T) {
	task := &types.Task{Title: "market trends", Description: "outlook"}

	tests := []struct {
		name  string
		older string
		newer string
	}{
		{name: "week over month", older: "2024-06-10", newer: "2024-06-28"},
		{name: "month over stale", older: "2023-01-01", newer: "2024-06-10"},
		{name: "week over stale", older: "2023-01-01", newer: "2024-06-29T08:00:00Z"},
		{name: "same week", older: "2024-06-25", newer: "2024-06-29"},
		{name: "both stale", older: "2020-01-01", newer: "2023-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			older := types.Source{ID: "older", Title: "market trends", PublishedAt: tt.older}
			newer := older
			newer.ID = "newer"
			newer.PublishedAt = tt.newer

			ranked := newTestRanker().Rank(task, []types.Source{older, newer})
			require.Len(t, ranked, 2)
			scores := map[string]float64{}
			for _, s := range ranked {
				scores[s.ID] = s.RelevanceScore
			}

			assert.GreaterOrEqual(t, scores["newer"], scores["older"])
			if scores["newer"] > scores["older"] {
				assert.Equal(t, "newer", ranked[0].ID)
			}
		})
	}
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	task := &types.Task{Title: "energy", Description: "market"}
	sources := []types.Source{
		{ID: "a", Title: "other", RelevanceScore: 0.9},
		{ID: "b", Title: "energy market"},
	}

	ranked := newTestRanker().Rank(task, sources)

	assert.Equal(t, "a", sources[0].ID)
	assert.Equal(t, 0.9, sources[0].RelevanceScore)
	assert.Equal(t, "b", ranked[0].ID)
}

func TestRank_Empty(t *testing.T) {
	ranked := newTestRanker().Rank(&types.Task{Title: "x"}, nil)
	assert.Empty(t, ranked)
}

func TestRank_ScoresAlwaysInRange(t *testing.T) {
	task := &types.Task{Title: "a b c", Description: "d"}
	sources := []types.Source{
		{Title: "a b c d", PublishedAt: "2024-06-30"},
		{Title: "a", PublishedAt: "2024-06-20"},
		{Title: "", Description: ""},
	}
	for _, s := range newTestRanker().Rank(task, sources) {
		assert.GreaterOrEqual(t, s.RelevanceScore, 0.0)
		assert.LessOrEqual(t, s.RelevanceScore, 1.0)
	}
}
