package deliverables

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jonathan/research-analyst/internal/citations"
	"github.com/jonathan/research-analyst/internal/types"
)

// Keyword stems that mark a source as evidence for a section.
var (
	trendWords       = []string{"trend", "growth", "grow", "rise", "rising", "increase", "adoption", "emerging", "surge", "decline", "shift"}
	regulationWords  = []string{"regulat", "law", "directive", "legislat", "compliance", "policy", "rule", "supervis", "act "}
	riskWords        = []string{"risk", "delinquen", "fraud", "breach", "scrutiny", "penalt", "default", "threat", "pressure", "loss", "decline"}
	opportunityWords = []string{"opportunit", "expan", "launch", "partnership", "demand", "adoption", "growth", "untapped"}
	competitionWords = []string{"compet", "rival", "market share", "entrant", "incumbent"}
	proposedWords    = []string{"propos", "draft", "consult", "plan", "expected", "upcoming"}
	activeWords      = []string{"in force", "effective", "enforce", "adopted", "active", "applies"}
	risingWords      = []string{"rise", "rising", "grow", "increase", "up ", "surge", "climb"}
	fallingWords     = []string{"fall", "decline", "drop", "down ", "shrink", "slow"}
	seniorWords      = []string{"vp", "chief", "head", "director", "executive", "lead", "ceo", "cfo", "cso"}
)

var (
	percentPattern = regexp.MustCompile(`\d+(?:\.\d+)?\s?%`)
	moneyPattern   = regexp.MustCompile(`[$€£]\s?\d[\d,.]*\s?(?:trillion|billion|million|bn|m|k)?\b`)
	sentenceEnd    = regexp.MustCompile(`[.!?](\s|$)`)
)

func sourceText(s *types.Source) string {
	return strings.ToLower(s.Title + " " + s.Description + " ")
}

func mentions(s *types.Source, words []string) bool {
	text := sourceText(s)
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// matching returns up to limit sources mentioning any of words, in order.
func matching(sources []types.Source, words []string, limit int) []types.Source {
	var out []types.Source
	for i := range sources {
		if mentions(&sources[i], words) {
			out = append(out, sources[i])
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

func firstPercent(s *types.Source) string {
	return percentPattern.FindString(s.Title + " " + s.Description + " " + s.Content)
}

func firstMoney(s *types.Source) string {
	return strings.TrimSpace(moneyPattern.FindString(s.Title + " " + s.Description + " " + s.Content))
}

// firstSentence returns the first sentence of text, or text truncated.
func firstSentence(text string, limit int) string {
	text = strings.TrimSpace(text)
	if loc := sentenceEnd.FindStringIndex(text); loc != nil {
		text = text[:loc[0]+1]
	}
	return truncate(text, limit)
}

// truncate cuts s to n runes and appends "..." when it was longer.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

// clip cuts s to n runes without a marker.
func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func sourceName(s *types.Source) string {
	if s.Source != "" {
		return s.Source
	}
	return "Unknown"
}

func citation(s *types.Source, now time.Time) string {
	return "(" + sourceName(s) + ", " + strconv.Itoa(citations.Year(s, now)) + ")"
}

// levelFor maps a relevance score onto High, Medium or Low.
func levelFor(score float64) string {
	switch {
	case score >= 0.5:
		return types.LevelHigh
	case score >= 0.2:
		return types.LevelMedium
	default:
		return types.LevelLow
	}
}

// horizonFor estimates how soon a development reported by s will matter.
func horizonFor(s *types.Source, now time.Time) string {
	published, ok := s.PublishedTime()
	if !ok {
		return "1-2 years"
	}
	age := now.Sub(published)
	switch {
	case age <= 30*24*time.Hour:
		return "0-6 months"
	case age <= 365*24*time.Hour:
		return "6-12 months"
	default:
		return "1-2 years"
	}
}

func direction(s *types.Source) string {
	text := sourceText(s)
	for _, w := range fallingWords {
		if strings.Contains(text, w) {
			return "Decreasing"
		}
	}
	for _, w := range risingWords {
		if strings.Contains(text, w) {
			return "Increasing"
		}
	}
	return "Stable"
}

func regulationStatus(s *types.Source) string {
	text := sourceText(s)
	for _, w := range proposedWords {
		if strings.Contains(text, w) {
			return "Proposed"
		}
	}
	for _, w := range activeWords {
		if strings.Contains(text, w) {
			return "Active"
		}
	}
	return "Under review"
}

type tagCount struct {
	tag   string
	count int
	first string
}

// topTags counts tags across sources, skipping "internal", and returns the
// most frequent first. Ties keep first-seen order.
func topTags(sources []types.Source, limit int) []tagCount {
	index := make(map[string]int)
	var counts []tagCount
	for i := range sources {
		seen := make(map[string]bool)
		for _, tag := range sources[i].Tags {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag == "" || tag == "internal" || seen[tag] {
				continue
			}
			seen[tag] = true
			if j, ok := index[tag]; ok {
				counts[j].count++
				continue
			}
			index[tag] = len(counts)
			counts = append(counts, tagCount{tag: tag, count: 1, first: sources[i].Title})
		}
	}
	sort.SliceStable(counts, func(a, b int) bool { return counts[a].count > counts[b].count })
	if len(counts) > limit {
		counts = counts[:limit]
	}
	return counts
}

func sourceTypes(sources []types.Source) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, s := range sources {
		t := s.Type
		if t == "" {
			t = "unknown"
		}
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

func isSenior(name string) bool {
	for _, field := range strings.Fields(strings.ToLower(name)) {
		for _, w := range seniorWords {
			if strings.HasPrefix(field, w) {
				return true
			}
		}
	}
	return false
}

func titleCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '_' || r == ' ' })
	for i, w := range words {
		r := []rune(w)
		r[0] = []rune(strings.ToUpper(string(r[0])))[0]
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
