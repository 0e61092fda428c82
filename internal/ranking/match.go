package ranking

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/jonathan/research-analyst/internal/types"
)

// Matcher suggests sources for a task from tag overlap and freshness.
type Matcher struct {
	TagWeight       float64
	FreshnessWeight float64
	HorizonDays     float64 // Age at which freshness reaches zero
	DefaultAgeDays  float64 // Age assumed when a source has no timestamp
	Now             func() time.Time
}

// DefaultMatchLimit is the number of suggestions returned when none is requested.
const DefaultMatchLimit = 5

// NewMatcher returns a Matcher with the standard weights.
func NewMatcher() *Matcher {
	return &Matcher{
		TagWeight:       0.7,
		FreshnessWeight: 0.3,
		HorizonDays:     365,
		DefaultAgeDays:  999,
		Now:             time.Now,
	}
}

// MatchResult is a suggested source and its match score.
type MatchResult struct {
	Source     types.Source `json:"source"`
	MatchScore float64      `json:"match_score"`
	TagOverlap int          `json:"tag_overlap"`
}

// Match returns up to limit sources ordered by match score. A limit of zero
// or less uses DefaultMatchLimit.
func (m *Matcher) Match(task *types.Task, sources []types.Source, limit int) []MatchResult {
	if limit <= 0 {
		limit = DefaultMatchLimit
	}

	terms := taskTerms(task)
	now := time.Now()
	if m.Now != nil {
		now = m.Now()
	}

	results := make([]MatchResult, 0, len(sources))
	for _, source := range sources {
		overlap := 0
		seen := make(map[string]bool, len(source.Tags))
		for _, tag := range source.Tags {
			tag = strings.ToLower(tag)
			if terms[tag] && !seen[tag] {
				overlap++
			}
			seen[tag] = true
		}

		age := m.DefaultAgeDays
		if published, ok := source.PublishedTime(); ok {
			age = float64(int(now.Sub(published) / (24 * time.Hour)))
		}
		freshness := math.Max(0, 1-age/m.HorizonDays)

		score := m.TagWeight*float64(overlap) + m.FreshnessWeight*freshness
		results = append(results, MatchResult{
			Source:     source,
			MatchScore: math.Round(score*100) / 100,
			TagOverlap: overlap,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchScore > results[j].MatchScore
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// AssignSources records taskID on every source whose ID is in matched.
// Sources already carrying the task are left untouched. It returns the
// number of sources changed.
func AssignSources(taskID string, sources []types.Source, matched []MatchResult) int {
	ids := make(map[string]bool, len(matched))
	for _, m := range matched {
		ids[m.Source.ID] = true
	}

	changed := 0
	for i := range sources {
		if !ids[sources[i].ID] || sources[i].HasTask(taskID) {
			continue
		}
		sources[i].AssignedTasks = append(sources[i].AssignedTasks, taskID)
		changed++
	}
	return changed
}

// SuggestTags returns the tags of matched sources that occur in the task
// title or description and are not already task tags, lowercased and in
// first-seen order.
func SuggestTags(task *types.Task, matched []MatchResult) []string {
	words := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(task.Text())) {
		words[word] = true
	}
	seen := make(map[string]bool, len(task.Tags))
	for _, tag := range task.Tags {
		seen[strings.ToLower(tag)] = true
	}

	var tags []string
	for _, m := range matched {
		for _, tag := range m.Source.Tags {
			tag = strings.ToLower(tag)
			if words[tag] && !seen[tag] {
				tags = append(tags, tag)
			}
			seen[tag] = true
		}
	}
	return tags
}

// taskTerms returns the task tags plus the lowercase words of its title and
// description.
func taskTerms(task *types.Task) map[string]bool {
	terms := make(map[string]bool)
	for _, tag := range task.Tags {
		terms[strings.ToLower(tag)] = true
	}
	for _, word := range strings.Fields(strings.ToLower(task.Text())) {
		terms[word] = true
	}
	return terms
}
