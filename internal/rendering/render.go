package rendering

import (
	"embed"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/jonathan/research-analyst/internal/citations"
	"github.com/jonathan/research-analyst/internal/formats"
	"github.com/jonathan/research-analyst/internal/types"
)

//go:embed templates/*.md.tmpl
var templateFS embed.FS

const genericTemplate = "generic"

// citedSourceLimit caps how many sources the Sources Cited section lists.
const citedSourceLimit = 10

var (
	parsed     *template.Template
	parseOnce  sync.Once
	errParsing error
)

// templateData is the view handed to every deliverable template.
type templateData struct {
	Title        string
	PreparedFor  string
	Date         string
	Category     string
	DueDate      string
	Summary      string
	Sections     *types.DeliverableContent
	Implications *types.StrategicImplications
	SourceCount  int
	SourceGroups []sourceGroup
	Generated    string
	Confidence   string
}

type sourceGroup struct {
	Label   string
	Entries []string
}

// Render formats deliverable as Markdown using the template for its format.
// Formats without a template use the generic layout.
func Render(deliverable *types.Deliverable, task *types.Task, sources []types.Source, now time.Time) (string, error) {
	tmpl, err := templates()
	if err != nil {
		return "", err
	}

	name := TemplateName(deliverable.FormatType)
	var result strings.Builder
	if err := tmpl.ExecuteTemplate(&result, name+".md.tmpl", buildTemplateData(deliverable, task, sources, now)); err != nil {
		return "", &TemplateError{
			Template: name + ".md.tmpl",
			Message:  "failed to execute template",
			Cause:    err,
		}
	}
	return result.String(), nil
}

// TemplateName returns the template used for format.
func TemplateName(format string) string {
	switch format {
	case formats.ExecutiveBrief, formats.MarketAnalysis, formats.PolicyMemo,
		formats.RegulatoryRoadmap, formats.StrategyDeck:
		return format
	default:
		return genericTemplate
	}
}

func templates() (*template.Template, error) {
	parseOnce.Do(func() {
		parsed, errParsing = template.New("deliverable").Funcs(template.FuncMap{
			"cell": EscapeTableCell,
		}).ParseFS(templateFS, "templates/*.md.tmpl")
		if errParsing != nil {
			errParsing = &TemplateError{Message: "failed to parse templates", Cause: errParsing}
		}
	})
	return parsed, errParsing
}

func buildTemplateData(d *types.Deliverable, task *types.Task, sources []types.Source, now time.Time) *templateData {
	sections := d.Sections
	if sections == nil {
		sections = &types.DeliverableContent{}
	}
	implications := sections.StrategicImplications
	if implications == nil {
		implications = &types.StrategicImplications{}
	}

	data := &templateData{
		Title:        orDefault(task.Title, "Task Title"),
		PreparedFor:  orDefault(strings.Join(task.Stakeholders, ", "), "Stakeholders"),
		Date:         now.Format("January 02, 2006"),
		Category:     orDefault(task.Category, "Research"),
		DueDate:      orDefault(task.DueDate, "Not specified"),
		Summary:      orDefault(sections.ExecutiveSummary, "Executive summary not available."),
		Sections:     sections,
		Implications: implications,
		SourceCount:  len(sources),
		SourceGroups: groupSources(sources, now),
		Generated:    now.Format("January 02, 2006 at 03:04 PM"),
		Confidence:   "N/A",
	}
	if d.Metadata != nil && d.Metadata.FormatDetection != nil {
		data.Confidence = strconv.FormatFloat(d.Metadata.FormatDetection.Confidence, 'f', 2, 64)
	}
	return data
}

// groupSources groups the leading sources by type, keeping first-seen order.
func groupSources(sources []types.Source, now time.Time) []sourceGroup {
	if len(sources) > citedSourceLimit {
		sources = sources[:citedSourceLimit]
	}
	var groups []sourceGroup
	index := make(map[string]int)
	for i := range sources {
		s := &sources[i]
		kind := orDefault(s.Type, "unknown")
		pos, ok := index[kind]
		if !ok {
			pos = len(groups)
			index[kind] = pos
			groups = append(groups, sourceGroup{Label: typeLabel(kind)})
		}
		name := orDefault(s.Source, "Unknown")
		entry := fmt.Sprintf("%s (%s, %d)", orDefault(s.Title, "Source"), name, citations.Year(s, now))
		groups[pos].Entries = append(groups[pos].Entries, entry)
	}
	return groups
}

// typeLabel turns "news_article" into "News Article".
func typeLabel(kind string) string {
	words := strings.Fields(strings.ReplaceAll(kind, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
