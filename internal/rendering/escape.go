package rendering

import "strings"

// EscapeTableCell makes text safe inside a Markdown table cell.
// Pipes are escaped and line breaks collapse to a single space.
func EscapeTableCell(text string) string {
	if text == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(text) + 8)

	lastSpace := false
	for _, r := range text {
		switch r {
		case '|':
			result.WriteString(`\|`)
			lastSpace = false
		case '\r', '\n':
			if !lastSpace {
				result.WriteByte(' ')
				lastSpace = true
			}
		default:
			result.WriteRune(r)
			lastSpace = r == ' '
		}
	}

	return strings.TrimSpace(result.String())
}
