package rendering

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/research-analyst/internal/deliverables"
	"github.com/jonathan/research-analyst/internal/formats"
	"github.com/jonathan/research-analyst/internal/types"
)

var renderNow = time.Date(2024, 6, 30, 14, 5, 0, 0, time.UTC)

func briefFixture() (*types.Deliverable, *types.Task, []types.Source) {
	d := &types.Deliverable{
		FormatType: formats.ExecutiveBrief,
		Sections: &types.DeliverableContent{
			ExecutiveSummary: "Summary text.",
			KeyFindings: []types.Finding{
				{Title: "Adoption", Content: "Up 20%.", Citation: "(Reuters, 2024)", Implications: "Act now."},
			},
			Recommendations: []types.Recommendation{
				{Title: "Pilot", Description: "Run a pilot.", Priority: "High", Timeline: "30 days", Owner: "VP Strategy", ExpectedOutcome: "Evidence"},
			},
			StrategicImplications: &types.StrategicImplications{
				Opportunities: []types.ImplicationRow{
					{Name: "Gen Z | BNPL", Detail: "Demand\nrising", SuggestedAction: "Launch", Timeline: "0-6 months", Priority: "High"},
				},
			},
		},
		Metadata: &types.DeliverableMetadata{
			FormatDetection: &types.FormatDetection{Format: formats.ExecutiveBrief, Confidence: 0.8},
		},
	}
	task := &types.Task{
		ID:           "task-001",
		Title:        "BNPL",
		Stakeholders: []string{"VP Strategy", "CFO"},
		Category:     types.CategoryCorporateStrategy,
		DueDate:      "2024-07-15",
	}
	sources := []types.Source{
		{ID: "news-0", Title: "BNPL climbs", Source: "Reuters", PublishedAt: "2024-06-28", Type: types.SourceTypeNewsArticle},
		{ID: "slack-0", Title: "Thread", Type: types.SourceTypeSlack},
	}
	return d, task, sources
}

func TestRender_ExecutiveBrief(t *testing.T) {
	d, task, sources := briefFixture()

	out, err := Render(d, task, sources, renderNow)
	require.NoError(t, err)

	expected := strings.Join([]string{
		"# BNPL - Strategy Brief",
		"",
		"**Prepared for:** VP Strategy, CFO  ",
		"**Date:** June 30, 2024  ",
		"**Category:** Corporate Strategy  ",
		"**Due Date:** 2024-07-15",
		"",
		"## Executive Summary",
		"Summary text.",
		"",
		"## Key Findings",
		"### Adoption",
		"Up 20%.",
		"*Source: (Reuters, 2024)*",
		"",
		"**Implications:** Act now.",
		"",
		"## Strategic Implications",
		"### Opportunities",
		"| Opportunity | Detail | Suggested Action | Timeline | Priority |",
		"|-------------|--------|------------------|----------|----------|",
		`| Gen Z \| BNPL | Demand rising | Launch | 0-6 months | High |`,
		"",
		"### Threats",
		"| Threat | Detail | Mitigation | Timeline | Priority |",
		"|--------|--------|------------|----------|----------|",
		"",
		"## Recommendations",
		"### Pilot",
		"Run a pilot.",
		"- **Priority**: High",
		"- **Timeline**: 30 days",
		"- **Owner**: VP Strategy",
		"- **Expected Outcome**: Evidence",
		"",
		"## Sources Cited",
		"This analysis is based on 2 sources including:",
		"",
		"**News Article:**",
		"- BNPL climbs (Reuters, 2024)",
		"",
		"**Slack Message:**",
		"- Thread (Unknown, 2024)",
		"",
		"## Deliverable Metadata",
		"- **Version**: 1.0",
		"- **Generated**: June 30, 2024 at 02:05 PM",
		"- **Format**: Strategy Brief",
		"- **Source Count**: 2",
		"- **Confidence Score**: 0.80",
		"",
	}, "\n")
	assert.Equal(t, expected, out)
}

func TestRender_Defaults(t *testing.T) {
	d := &types.Deliverable{FormatType: formats.ExecutiveBrief}

	out, err := Render(d, &types.Task{}, nil, renderNow)
	require.NoError(t, err)
	assert.Contains(t, out, "# Task Title - Strategy Brief")
	assert.Contains(t, out, "**Prepared for:** Stakeholders  ")
	assert.Contains(t, out, "**Category:** Research  ")
	assert.Contains(t, out, "**Due Date:** Not specified")
	assert.Contains(t, out, "Executive summary not available.")
	assert.Contains(t, out, "- **Confidence Score**: N/A")
}

func TestRender_CitedSourcesCapped(t *testing.T) {
	d, task, _ := briefFixture()
	sources := make([]types.Source, 12)
	for i := range sources {
		sources[i] = types.Source{Title: "Item", Source: "Wire", Type: types.SourceTypeRSSFeed, PublishedAt: "2024-01-01"}
	}

	out, err := Render(d, task, sources, renderNow)
	require.NoError(t, err)
	assert.Contains(t, out, "This analysis is based on 12 sources including:")
	assert.Equal(t, 10, strings.Count(out, "- Item (Wire, 2024)"))
	assert.Contains(t, out, "**Rss Feed:**")
}

func TestRender_EveryFormat(t *testing.T) {
	task := &types.Task{
		ID:           "task-002",
		Title:        "Assess BNPL regulation",
		Description:  "Review the draft directive on buy now pay later lending.",
		Category:     types.CategoryCorporateStrategy,
		Stakeholders: []string{"Head of Compliance"},
		Urgency:      "High",
		DueDate:      "2024-09-01",
	}
	sources := []types.Source{
		{ID: "rss-0", Title: "Regulators propose BNPL rules", Description: "A draft directive on BNPL risk.", Source: "FT", PublishedAt: "2024-05-01", Type: types.SourceTypeRSSFeed, RelevanceScore: 0.5},
		{ID: "news-0", Title: "BNPL usage climbs 20%", Description: "Adoption keeps growing.", Source: "Reuters", PublishedAt: "2024-06-01", Type: types.SourceTypeNewsArticle, RelevanceScore: 0.4},
	}

	engine := deliverables.NewEngine(formats.NewClassifier(formats.DefaultRules(), formats.DefaultWeights(), nil), nil, nil)
	engine.Now = func() time.Time { return renderNow }

	tests := []struct {
		format   string
		headings []string
	}{
		{formats.ExecutiveBrief, []string{"# Assess BNPL regulation - Strategy Brief", "## Strategic Implications", "## Sources Cited"}},
		{formats.MarketAnalysis, []string{"# Market Analysis: Assess BNPL regulation", "### Market Drivers", "## Competitive Landscape", "### Threats"}},
		{formats.PolicyMemo, []string{"# Policy Memo: Assess BNPL regulation", "### Regulatory Environment", "### Key Stakeholders", "### High Risks"}},
		{formats.RegulatoryRoadmap, []string{"# Regulatory Roadmap: Assess BNPL regulation", "### Current Regulations", "### Cost Implications", "### Short-term Goals"}},
		{formats.StrategyDeck, []string{"# Strategy Deck: Assess BNPL regulation", "### Task Context", "### Key Trends", "### Strategic Implications"}},
		{"board_memo", []string{"# Deliverable: Assess BNPL regulation", "## Key Findings", "This analysis is based on 2 sources."}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			d := engine.Generate(task, sources, tt.format)
			out, err := Render(&d, task, sources, renderNow)
			require.NoError(t, err)
			for _, h := range tt.headings {
				assert.Contains(t, out, h)
			}
			assert.NotContains(t, out, "<no value>")
		})
	}
}

func TestTemplateName(t *testing.T) {
	assert.Equal(t, "policy_memo", TemplateName(formats.PolicyMemo))
	assert.Equal(t, "generic", TemplateName(""))
	assert.Equal(t, "generic", TemplateName("board_memo"))
}

func TestGroupSources_FirstSeenOrder(t *testing.T) {
	sources := []types.Source{
		{Title: "A", Type: types.SourceTypeWebPage},
		{Title: "B", Type: types.SourceTypeNewsArticle},
		{Title: "C", Type: types.SourceTypeWebPage},
		{Title: "D"},
	}

	groups := groupSources(sources, renderNow)
	require.Len(t, groups, 3)
	assert.Equal(t, "Web Page", groups[0].Label)
	assert.Len(t, groups[0].Entries, 2)
	assert.Equal(t, "News Article", groups[1].Label)
	assert.Equal(t, "Unknown", groups[2].Label)
	assert.Equal(t, "D (Unknown, 2024)", groups[2].Entries[0])
}
