// Package citations provides inline citations, reference lists and source
// snippets for generated deliverables.
package citations

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jonathan/research-analyst/internal/types"
)

const (
	unknownSource = "Unknown Source"
	unknownAuthor = "Unknown Author"

	// NoContent is returned by ExtractSnippet for sources without content.
	NoContent = "Content not available for this source."

	// DefaultSnippetLength bounds snippets built from leading sentences.
	DefaultSnippetLength = 200

	shortTitleLength = 50
)

var (
	sentenceSplit  = regexp.MustCompile(`[.!?]+`)
	inlineCitation = regexp.MustCompile(`\([^)]+\)`)
)

// Inline returns the short "(title, year)" citation for source.
func Inline(source *types.Source, now time.Time) string {
	return fmt.Sprintf("(%s, %d)", ShortTitle(source), Year(source, now))
}

// ShortTitle returns the part of the title before " - ", or its first 50
// characters when there is no such separator.
func ShortTitle(source *types.Source) string {
	title := titleOf(source)
	if before, _, found := strings.Cut(title, " - "); found {
		return before
	}
	return truncateRunes(title, shortTitleLength)
}

// Year returns the publication year of source, or the year of now when the
// source carries no usable timestamp.
func Year(source *types.Source, now time.Time) int {
	if t, ok := types.ParseTimestamp(source.Freshness); ok {
		return t.Year()
	}
	if t, ok := types.ParseTimestamp(source.PublishedAt); ok {
		return t.Year()
	}
	return now.Year()
}

// Reference returns an APA style reference list entry.
func Reference(source *types.Source, now time.Time) string {
	ref := fmt.Sprintf("%s (%d). %s.", authorOf(source), Year(source, now), titleOf(source))
	if source.URL != "" {
		ref += " Retrieved from " + source.URL
	}
	return ref
}

// Footnotes numbers footnote citations in the order they are requested.
type Footnotes struct {
	next int
	now  time.Time
}

// NewFootnotes starts a footnote sequence at 1.
func NewFootnotes(now time.Time) *Footnotes {
	return &Footnotes{next: 1, now: now}
}

// Next returns the next numbered footnote for source.
func (f *Footnotes) Next(source *types.Source) string {
	note := fmt.Sprintf("%d. %s (%d). %s", f.next, authorOf(source), Year(source, f.now), titleOf(source))
	if source.URL != "" {
		note += " [Online]. Available: " + source.URL
	}
	f.next++
	return note
}

// ExtractSnippet returns the first sentence mentioning keyword or, when
// keyword is empty or absent, up to three leading sentences that fit in
// maxLength characters.
func ExtractSnippet(source *types.Source, keyword string, maxLength int) string {
	if source.Content == "" {
		return NoContent
	}
	if maxLength <= 0 {
		maxLength = DefaultSnippetLength
	}

	sentences := sentenceSplit.Split(source.Content, -1)
	if keyword != "" {
		lower := strings.ToLower(keyword)
		for _, sentence := range sentences {
			if strings.Contains(strings.ToLower(sentence), lower) {
				return strings.TrimSpace(sentence) + "."
			}
		}
	}

	var b strings.Builder
	for i, sentence := range sentences {
		if i == 3 {
			break
		}
		if utf8.RuneCountInString(b.String()+sentence) < maxLength {
			b.WriteString(strings.TrimSpace(sentence))
			b.WriteString(". ")
		}
	}
	return strings.TrimSpace(b.String())
}

// Insert places the inline citation for source into text. position is
// "end", "start" or a character index; anything else appends.
func Insert(text string, source *types.Source, position string, now time.Time) string {
	citation := Inline(source, now)
	switch position {
	case "", "end":
		return text + " " + citation
	case "start":
		return citation + " " + text
	}

	pos, err := strconv.Atoi(position)
	runes := []rune(text)
	if err != nil || pos < 0 {
		return text + " " + citation
	}
	if pos > len(runes) {
		pos = len(runes)
	}
	return string(runes[:pos]) + " " + citation + " " + string(runes[pos:])
}

// Summary renders a numbered Markdown list of sources.
func Summary(sources []types.Source) string {
	var b strings.Builder
	b.WriteString("## Sources and References\n\n")
	for i := range sources {
		s := &sources[i]
		fmt.Fprintf(&b, "%d. **%s**\n", i+1, titleOf(s))
		fmt.Fprintf(&b, "   - Author: %s\n", authorOf(s))
		if s.URL != "" {
			fmt.Fprintf(&b, "   - URL: %s\n", s.URL)
		}
		fmt.Fprintf(&b, "   - Relevance Score: %.2f\n\n", s.RelevanceScore)
	}
	return b.String()
}

// ValidationResult reports citations in a text that match no source.
type ValidationResult struct {
	Valid         bool     `json:"valid"`
	Issues        []string `json:"issues"`
	CitationCount int      `json:"citation_count"`
}

// Validate checks that every parenthesised citation in text names one of
// sources by its short title.
func Validate(text string, sources []types.Source) ValidationResult {
	found := inlineCitation.FindAllString(text, -1)
	issues := []string{}

	for _, citation := range found {
		lower := strings.ToLower(citation)
		matched := false
		for i := range sources {
			short := strings.ToLower(ShortTitle(&sources[i]))
			if sources[i].Title != "" && strings.Contains(lower, short) {
				matched = true
				break
			}
		}
		if !matched {
			issues = append(issues, "Unmatched citation: "+citation)
		}
	}

	return ValidationResult{
		Valid:         len(issues) == 0,
		Issues:        issues,
		CitationCount: len(found),
	}
}

// RelevantSnippets returns up to limit sentences of the source content ranked
// by how many keywords they mention. Sentences mentioning none are dropped.
func RelevantSnippets(source *types.Source, keywords []string, limit int) []string {
	if source.Content == "" {
		return nil
	}

	type scored struct {
		text  string
		score int
	}
	var candidates []scored
	for _, sentence := range sentenceSplit.Split(source.Content, -1) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		lower := strings.ToLower(sentence)
		score := 0
		for _, kw := range keywords {
			if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
				score++
			}
		}
		if score > 0 {
			candidates = append(candidates, scored{text: sentence + ".", score: score})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.text
	}
	return out
}

// QuoteBlock formats snippet as a Markdown block quote attributed to source.
func QuoteBlock(snippet string, source *types.Source, now time.Time) string {
	return fmt.Sprintf("> \"%s\"\n> \n> — %s", snippet, Inline(source, now))
}

func titleOf(s *types.Source) string {
	if s.Title == "" {
		return unknownSource
	}
	return s.Title
}

func authorOf(s *types.Source) string {
	if s.Author == "" {
		return unknownAuthor
	}
	return s.Author
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
