// Package aggregate collects candidate sources for a task from news APIs,
// RSS feeds, web pages and configured internal notes.
package aggregate

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/research-analyst/internal/types"
)

// MaxSearchTerms is the number of search terms derived from a task.
const MaxSearchTerms = 5

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true,
}

// SearchTerms returns up to MaxSearchTerms lowercase words from the task
// title and description, in order, skipping stop words and words of three
// characters or fewer. Duplicates are kept.
func SearchTerms(task *types.Task) []string {
	words := wordPattern.FindAllString(strings.ToLower(task.Text()), -1)
	terms := make([]string, 0, MaxSearchTerms)
	for _, word := range words {
		if stopWords[word] || utf8.RuneCountInString(word) <= 3 {
			continue
		}
		terms = append(terms, word)
		if len(terms) == MaxSearchTerms {
			break
		}
	}
	return terms
}

// countHits returns how many terms appear in text. text must be lowercase.
func countHits(text string, terms []string) int {
	hits := 0
	for _, term := range terms {
		if strings.Contains(text, term) {
			hits++
		}
	}
	return hits
}
