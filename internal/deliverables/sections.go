package deliverables

import (
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/research-analyst/internal/types"
)

const (
	synthesisSources = 5
	summarySources   = 3
	findingSources   = 5
	insightLength    = 200
	findingLength    = 300
)

// Prefixes applied to key findings by source type.
var findingPrefixes = map[string]string{
	types.SourceTypeSlack:       "Internal discussion reveals: ",
	types.SourceTypeNewsArticle: "Recent market analysis indicates: ",
	types.SourceTypeSharePoint:  "Internal research shows: ",
}

// generator holds the inputs shared by every section.
type generator struct {
	task    *types.Task
	sources []types.Source
	now     time.Time
}

func (g *generator) top(n int) []types.Source {
	if len(g.sources) < n {
		return g.sources
	}
	return g.sources[:n]
}

func (g *generator) category(fallback string) string {
	if g.task.Category != "" {
		return g.task.Category
	}
	return fallback
}

func (g *generator) urgency() string {
	if g.task.Urgency != "" {
		return g.task.Urgency
	}
	if g.task.Context != nil && g.task.Context.Urgency != "" {
		return g.task.Context.Urgency
	}
	return types.LevelMedium
}

func (g *generator) stakeholders(fallback string) string {
	if len(g.task.Stakeholders) == 0 {
		return fallback
	}
	return strings.Join(g.task.Stakeholders, ", ")
}

func (g *generator) owner() string {
	if len(g.task.Stakeholders) > 0 {
		return g.task.Stakeholders[0]
	}
	return "TBD"
}

func (g *generator) contextAnalysis() *types.ContextAnalysis {
	due := g.task.DueDate
	if due == "" {
		due = "Not specified"
	}
	return &types.ContextAnalysis{
		TaskContext:     fmt.Sprintf("Analysis of %s for stakeholders: %s", g.task.Title, strings.Join(g.task.Stakeholders, ", ")),
		BusinessContext: fmt.Sprintf("Business context: %s category with %s urgency", g.category("General"), g.urgency()),
		Scope:           fmt.Sprintf("Scope covers %d relevant sources from multiple platforms", len(g.sources)),
		Timeline:        "Timeline: " + due,
	}
}

func (g *generator) sourceSynthesis() *types.SourceSynthesis {
	synthesis := &types.SourceSynthesis{
		TotalSources: len(g.sources),
		SourceTypes:  sourceTypes(g.sources),
		KeyInsights:  []types.Insight{},
	}
	for _, s := range g.top(synthesisSources) {
		published := s.PublishedAt
		if published == "" {
			published = "Unknown date"
		}
		synthesis.KeyInsights = append(synthesis.KeyInsights, types.Insight{
			SourceTitle:    s.Title,
			SourceType:     s.Type,
			Insight:        truncate(s.Description, insightLength),
			RelevanceScore: s.RelevanceScore,
			Citation:       fmt.Sprintf("(%s, %s)", sourceName(&s), published),
		})
	}
	return synthesis
}

func (g *generator) executiveSummary() string {
	placeholders := []string{
		"Primary insight from source analysis",
		"Secondary insight from market research",
		"Strategic implication for business decisions",
	}
	bullets := make([]string, summarySources)
	top := g.top(summarySources)
	for i := range bullets {
		if i < len(top) {
			bullets[i] = "• " + top[i].Title + " " + citation(&top[i], g.now)
		} else {
			bullets[i] = "• " + placeholders[i]
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Executive Summary for %s\n\n", g.task.Title)
	fmt.Fprintf(&b, "This analysis synthesizes insights from %d sources to address %s requirements. Key findings include:\n\n",
		len(g.sources), g.category("the specified"))
	b.WriteString(strings.Join(bullets, "\n"))
	fmt.Fprintf(&b, "\n\nThe analysis reveals critical implications for %s and provides actionable recommendations for immediate consideration.",
		g.stakeholders("stakeholders"))

	if mix := g.mixSentence(); mix != "" {
		b.WriteString("\n\nSource Coverage:\n")
		b.WriteString(mix)
	}
	return b.String()
}

// mixSentence describes the source mix and the signals found in it.
func (g *generator) mixSentence() string {
	if len(g.sources) == 0 {
		return ""
	}
	counts := make(map[string]int)
	for _, s := range g.sources {
		t := s.Type
		if t == "" {
			t = "unknown"
		}
		counts[t]++
	}
	parts := make([]string, 0, len(counts))
	for _, t := range sourceTypes(g.sources) {
		parts = append(parts, fmt.Sprintf("%d %s", counts[t], strings.ReplaceAll(t, "_", " ")))
	}
	sentence := "The evidence base combines " + strings.Join(parts, ", ") + "."

	var signals []string
	if n := len(matching(g.sources, regulationWords, len(g.sources))); n > 0 {
		signals = append(signals, fmt.Sprintf("%d discuss regulation", n))
	}
	if n := len(matching(g.sources, riskWords, len(g.sources))); n > 0 {
		signals = append(signals, fmt.Sprintf("%d flag risks", n))
	}
	if n := len(matching(g.sources, opportunityWords, len(g.sources))); n > 0 {
		signals = append(signals, fmt.Sprintf("%d point to opportunities", n))
	}
	if len(signals) > 0 {
		sentence += " Of these, " + strings.Join(signals, "; ") + "."
	}
	return sentence
}

func (g *generator) keyFindings() []types.Finding {
	findings := []types.Finding{}
	for i, s := range g.top(findingSources) {
		var content string
		if prefix, ok := findingPrefixes[s.Type]; ok {
			content = prefix + clip(s.Description, insightLength) + "..."
		} else {
			content = truncate(s.Description, findingLength)
		}

		title := s.Title
		if title == "" {
			title = "Key Insight"
		}
		sourceType := s.Type
		if sourceType == "" {
			sourceType = "unknown"
		}
		findings = append(findings, types.Finding{
			ID:             fmt.Sprintf("finding-%d", i+1),
			Title:          fmt.Sprintf("Finding %d: %s", i+1, title),
			Content:        content,
			Source:         sourceName(&s),
			Citation:       citation(&s, g.now),
			Confidence:     s.RelevanceScore,
			Implications:   fmt.Sprintf("Implications for %s strategy and operations", g.category("business")),
			SourceType:     sourceType,
			RelevanceScore: s.RelevanceScore,
		})
	}
	return findings
}

func (g *generator) recommendations() []types.Recommendation {
	return []types.Recommendation{
		{
			ID:              "rec-1",
			Title:           "Immediate Action Required",
			Description:     fmt.Sprintf("Based on analysis of %d sources, immediate action is recommended for %s", len(g.sources), g.category("the identified area")),
			Priority:        types.LevelHigh,
			Timeline:        "1-2 weeks",
			Owner:           g.owner(),
			ExpectedOutcome: "Improved strategic positioning and risk mitigation",
		},
		{
			ID:              "rec-2",
			Title:           "Strategic Initiative",
			Description:     "Develop comprehensive strategy based on market insights and competitive analysis",
			Priority:        types.LevelMedium,
			Timeline:        "1-3 months",
			Owner:           "Strategy Team",
			ExpectedOutcome: "Enhanced competitive advantage and market positioning",
		},
		{
			ID:              "rec-3",
			Title:           "Long-term Planning",
			Description:     "Establish monitoring and evaluation framework for ongoing assessment",
			Priority:        types.LevelLow,
			Timeline:        "3-6 months",
			Owner:           "Operations Team",
			ExpectedOutcome: "Sustainable competitive advantage and risk management",
		},
	}
}
