package rendering

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Export formats.
const (
	FormatMarkdown = "markdown"
	FormatText     = "text"
	FormatTerminal = "terminal"
)

// TerminalWidth is the word wrap width for terminal output.
const TerminalWidth = 80

var (
	headingPrefix = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	strong        = regexp.MustCompile(`\*\*([^*\n]+)\*\*`)
	emphasis      = regexp.MustCompile(`\*([^*\n]+)\*`)
	tableRule     = regexp.MustCompile(`(?m)^\|?[ \t:|-]+\|[ \t:|-]*$\n?`)
	tableEdges    = regexp.MustCompile(`(?m)^\| ?| ?\|$`)
	tableInner    = regexp.MustCompile(`\s\|\s`)
	markdownLink  = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	lineBreak     = regexp.MustCompile(`(?m) {2}$`)
)

// Export converts rendered Markdown into format.
func Export(markdown, format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatMarkdown:
		return markdown, nil
	case FormatText:
		return StripMarkdown(markdown), nil
	case FormatTerminal:
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(TerminalWidth),
		)
		if err != nil {
			return "", &RenderError{Format: FormatTerminal, Message: "failed to create terminal renderer", Cause: err}
		}
		out, err := renderer.Render(markdown)
		if err != nil {
			return "", &RenderError{Format: FormatTerminal, Message: "failed to render markdown for terminal", Cause: err}
		}
		return out, nil
	default:
		return "", &RenderError{Format: format, Message: "cannot export", Cause: fmt.Errorf("%w %q", ErrUnsupportedFormat, format)}
	}
}

// Filename returns the download name for a deliverable export.
func Filename(taskID, format string) string {
	if format == "" {
		format = FormatMarkdown
	}
	return fmt.Sprintf("deliverable-%s.%s", taskID, format)
}

// StripMarkdown removes headings, emphasis, links and table pipes, leaving
// readable plain text.
func StripMarkdown(markdown string) string {
	text := headingPrefix.ReplaceAllString(markdown, "")
	text = tableRule.ReplaceAllString(text, "")
	text = tableEdges.ReplaceAllString(text, "")
	text = tableInner.ReplaceAllString(text, "  ")
	text = markdownLink.ReplaceAllString(text, "$1 ($2)")
	text = strong.ReplaceAllString(text, "$1")
	text = emphasis.ReplaceAllString(text, "$1")
	text = lineBreak.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, `\|`, "|")
	return text
}
