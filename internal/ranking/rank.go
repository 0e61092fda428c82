package ranking

import (
	"sort"
	"time"

	"github.com/jonathan/research-analyst/internal/types"
)

// Ranker scores sources against a task using token overlap and recency.
type Ranker struct {
	Recency RecencyConfig
	Now     func() time.Time
}

// NewRanker creates a Ranker with the given recency settings.
func NewRanker(recency RecencyConfig) *Ranker {
	return &Ranker{Recency: recency, Now: time.Now}
}

// Score returns the relevance of a single source to the task, clamped to [0, 1].
// Sources without a parseable timestamp get no recency boost.
func (r *Ranker) Score(task *types.Task, source *types.Source) float64 {
	score := Jaccard(task.Text(), source.Text())

	if published, ok := source.PublishedTime(); ok {
		score *= r.Recency.Multiplier(published, r.now())
	}

	// Ensure score is in valid range
	if score > 1.0 {
		score = 1.0
	}
	if score < 0.0 {
		score = 0.0
	}
	return score
}

// Rank returns copies of sources with RelevanceScore recomputed, sorted by
// score descending. Ties keep their input order. The input is not modified.
func (r *Ranker) Rank(task *types.Task, sources []types.Source) []types.Source {
	ranked := make([]types.Source, len(sources))
	copy(ranked, sources)

	for i := range ranked {
		ranked[i].RelevanceScore = r.Score(task, &ranked[i])
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].RelevanceScore > ranked[j].RelevanceScore
	})

	return ranked
}

func (r *Ranker) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}
