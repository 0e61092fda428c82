// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/research-analyst/internal/types"
	"github.com/jonathan/research-analyst/internal/validation"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(line))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// pad truncates or right-pads line to the inner box width.
func pad(line string) string {
	width := boxWidth - 4
	if n := utf8.RuneCountInString(line); n > width {
		runes := []rune(line)
		return string(runes[:width-3]) + "..."
	} else if n < width {
		return line + strings.Repeat(" ", width-n)
	}
	return line
}

// PrintRanking outputs the top ranked sources for a task with their scores.
func (p *Printer) PrintRanking(task *types.Task, sources []types.Source) {
	if task == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Task:     %s\n", task.ID))
	sb.WriteString(fmt.Sprintf("Sources:  %d ranked\n", len(sources)))

	count := min(len(sources), maxItemsToShow)
	if count > 0 {
		sb.WriteString("\n")
	}
	for i := 0; i < count; i++ {
		s := sources[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, s.Title))
		sb.WriteString(fmt.Sprintf("    Score: %.3f  ID: %s\n", s.RelevanceScore, s.ID))
	}
	if len(sources) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(sources)-maxItemsToShow))
	}

	p.printBox("RANKED SOURCES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDetection outputs a format detection with its reasoning.
func (p *Printer) PrintDetection(detection types.FormatDetection) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Format:     %s\n", detection.Format))
	sb.WriteString(fmt.Sprintf("Confidence: %.2f\n", detection.Confidence))
	if detection.EstimatedLength != "" {
		sb.WriteString(fmt.Sprintf("Length:     %s\n", detection.EstimatedLength))
	}
	if len(detection.OutputFormats) > 0 {
		sb.WriteString(fmt.Sprintf("Outputs:    %s\n", strings.Join(detection.OutputFormats, ", ")))
	}

	if len(detection.Reasoning) > 0 {
		sb.WriteString("\nReasoning:\n")
		for _, reason := range detection.Reasoning {
			sb.WriteString(fmt.Sprintf("  • %s\n", reason))
		}
	}

	p.printBox("FORMAT DETECTION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintValidation outputs the errors and warnings found for a task list.
func (p *Printer) PrintValidation(result validation.Result) {
	var sb strings.Builder
	if result.Valid {
		sb.WriteString("✓ Valid\n")
	} else {
		sb.WriteString("✗ Invalid\n")
	}
	sb.WriteString(fmt.Sprintf("Errors: %d  Warnings: %d\n", len(result.Errors), len(result.Warnings)))

	writeList(&sb, "Errors", result.Errors)
	writeList(&sb, "Warnings", result.Warnings)

	p.printBox("TASK VALIDATION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintQualityReport outputs per-task quality scores and recommendations.
func (p *Printer) PrintQualityReport(report *validation.Report) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Tasks:    %d\n", report.TotalTasks))
	if report.AverageQualityScore != nil {
		sb.WriteString(fmt.Sprintf("Average:  %.1f\n", *report.AverageQualityScore))
	}
	sb.WriteString(fmt.Sprintf("Valid:    %t (%d errors, %d warnings)\n",
		report.ValidationResults.Valid,
		report.ValidationResults.ErrorCount,
		report.ValidationResults.WarningCount))

	if len(report.QualityScores) > 0 {
		sb.WriteString("\nScores:\n")
		for _, score := range report.QualityScores {
			sb.WriteString(fmt.Sprintf("  %5.1f  %s\n", score.QualityScore, score.TaskID))
		}
	}
	writeList(&sb, "Recommendations", report.Recommendations)

	p.printBox("QUALITY REPORT", strings.TrimSuffix(sb.String(), "\n"))
}

func writeList(sb *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("\n%s:\n", heading))
	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
}
