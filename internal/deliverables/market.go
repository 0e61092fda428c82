package deliverables

import (
	"fmt"
	"strconv"

	"github.com/jonathan/research-analyst/internal/citations"
	"github.com/jonathan/research-analyst/internal/types"
)

const (
	signalSources = 3
	maxMetrics    = 5
	detailLength  = 160
)

func (g *generator) marketOverview() *types.MarketOverview {
	overview := &types.MarketOverview{
		MarketSize:    fmt.Sprintf("Market size not reported in the %d available sources", len(g.sources)),
		MarketDrivers: []types.TitledItem{},
		GrowthTrends:  []types.GrowthTrend{},
	}
	for i := range g.sources {
		if value := firstMoney(&g.sources[i]); value != "" {
			overview.MarketSize = fmt.Sprintf("%s according to %q %s", value, citations.ShortTitle(&g.sources[i]), citation(&g.sources[i], g.now))
			break
		}
	}

	for _, tc := range topTags(g.sources, signalSources) {
		overview.MarketDrivers = append(overview.MarketDrivers, types.TitledItem{
			Title:       titleCase(tc.tag),
			Description: fmt.Sprintf("Raised in %d of %d sources, including %q", tc.count, len(g.sources), tc.first),
		})
	}
	if len(overview.MarketDrivers) == 0 {
		for _, s := range matching(g.sources, trendWords, signalSources) {
			overview.MarketDrivers = append(overview.MarketDrivers, types.TitledItem{
				Title:       citations.ShortTitle(&s),
				Description: firstSentence(s.Description, detailLength),
			})
		}
	}

	for _, s := range matching(g.sources, trendWords, signalSources) {
		rate := firstPercent(&s)
		if rate == "" {
			rate = "Not quantified"
		}
		overview.GrowthTrends = append(overview.GrowthTrends, types.GrowthTrend{
			Trend:  citations.ShortTitle(&s),
			Rate:   rate,
			Period: strconv.Itoa(citations.Year(&s, g.now)),
		})
	}
	return overview
}

func (g *generator) competitiveLandscape() *types.CompetitiveLandscape {
	landscape := &types.CompetitiveLandscape{
		KeyCompetitors:        []types.Competitor{},
		CompetitiveAdvantages: []string{},
	}
	for _, s := range matching(g.sources, competitionWords, signalSources) {
		share := firstPercent(&s)
		if share == "" {
			share = "Not disclosed"
		}
		landscape.KeyCompetitors = append(landscape.KeyCompetitors, types.Competitor{
			Name:               citations.ShortTitle(&s),
			MarketShare:        share,
			Strengths:          firstSentence(s.Description, detailLength),
			Weaknesses:         "Not covered by available sources",
			RecentDevelopments: s.Title + " " + citation(&s, g.now),
		})
	}

	for _, s := range g.sources {
		switch s.Type {
		case types.SourceTypeSlack, types.SourceTypeSharePoint, types.SourceTypeInternalNote:
			landscape.CompetitiveAdvantages = append(landscape.CompetitiveAdvantages, "Internal insight: "+s.Title)
		}
		if len(landscape.CompetitiveAdvantages) == signalSources {
			break
		}
	}
	if len(landscape.CompetitiveAdvantages) == 0 && len(g.sources) > 0 {
		landscape.CompetitiveAdvantages = append(landscape.CompetitiveAdvantages,
			fmt.Sprintf("Curated evidence from %d sources across %d channels", len(g.sources), len(sourceTypes(g.sources))))
	}
	return landscape
}

func (g *generator) trendAnalysis() *types.TrendAnalysis {
	analysis := &types.TrendAnalysis{
		EmergingTrends: []types.EmergingTrend{},
		MarketDynamics: []string{},
	}
	trends := matching(g.sources, trendWords, 2*signalSources)
	for i, s := range trends {
		if i < signalSources {
			analysis.EmergingTrends = append(analysis.EmergingTrends, types.EmergingTrend{
				Trend:    citations.ShortTitle(&s),
				Impact:   levelFor(s.RelevanceScore),
				Timeline: horizonFor(&s, g.now),
			})
		}
		if sentence := firstSentence(s.Description, detailLength); sentence != "" && len(analysis.MarketDynamics) < signalSources {
			analysis.MarketDynamics = append(analysis.MarketDynamics, sentence)
		}
	}
	return analysis
}

func (g *generator) dataAnalysis() *types.DataAnalysis {
	analysis := &types.DataAnalysis{
		KeyMetrics:   []types.Metric{},
		DataInsights: []string{},
	}
	for _, s := range g.sources {
		value := firstPercent(&s)
		if value == "" {
			value = firstMoney(&s)
		}
		if value == "" {
			continue
		}
		analysis.KeyMetrics = append(analysis.KeyMetrics, types.Metric{
			Metric: citations.ShortTitle(&s),
			Value:  value,
			Trend:  direction(&s),
		})
		if len(analysis.KeyMetrics) == maxMetrics {
			break
		}
	}

	if len(g.sources) == 0 {
		return analysis
	}
	var total float64
	for _, s := range g.sources {
		total += s.RelevanceScore
	}
	analysis.DataInsights = append(analysis.DataInsights,
		fmt.Sprintf("Average relevance of %.2f across %d sources", total/float64(len(g.sources)), len(g.sources)),
		fmt.Sprintf("%d of %d sources report quantitative figures", countQuantified(g.sources), len(g.sources)))
	if latest, ok := g.latest(); ok {
		analysis.DataInsights = append(analysis.DataInsights, fmt.Sprintf("Most recent evidence: %q %s", latest.Title, citation(&latest, g.now)))
	}
	return analysis
}

func countQuantified(sources []types.Source) int {
	n := 0
	for i := range sources {
		if firstPercent(&sources[i]) != "" || firstMoney(&sources[i]) != "" {
			n++
		}
	}
	return n
}

// latest returns the most recently published source.
func (g *generator) latest() (types.Source, bool) {
	var best types.Source
	found := false
	for _, s := range g.sources {
		t, ok := s.PublishedTime()
		if !ok {
			continue
		}
		if bt, _ := best.PublishedTime(); !found || t.After(bt) {
			best, found = s, true
		}
	}
	return best, found
}

func (g *generator) strategicInsights() *types.StrategicInsights {
	insights := &types.StrategicInsights{
		Opportunities:         []types.Opportunity{},
		Threats:               []types.Threat{},
		StrategicImplications: []string{},
	}
	for _, s := range matching(g.sources, opportunityWords, 2) {
		size := firstMoney(&s)
		if size == "" {
			size = "Not quantified"
		}
		risk := types.LevelLow
		if mentions(&s, riskWords) {
			risk = types.LevelMedium
		}
		insights.Opportunities = append(insights.Opportunities, types.Opportunity{
			Title:       citations.ShortTitle(&s),
			Description: truncate(s.Description, insightLength),
			Size:        size,
			Timeline:    horizonFor(&s, g.now),
			RiskLevel:   risk,
		})
		insights.StrategicImplications = append(insights.StrategicImplications, "Capitalize on: "+s.Title)
	}
	for _, s := range matching(g.sources, riskWords, 2) {
		insights.Threats = append(insights.Threats, types.Threat{
			Title:       citations.ShortTitle(&s),
			Description: truncate(s.Description, insightLength),
			Impact:      levelFor(s.RelevanceScore),
			Mitigation:  "Monitor follow-up coverage from " + sourceName(&s),
		})
		insights.StrategicImplications = append(insights.StrategicImplications, "Mitigate: "+s.Title)
	}
	if len(insights.StrategicImplications) == 0 {
		insights.StrategicImplications = append(insights.StrategicImplications,
			"No strategic signals found in the available sources; widen the source search")
	}
	return insights
}

// strategicImplications builds the opportunity and threat tables of an
// executive brief.
func (g *generator) strategicImplications() *types.StrategicImplications {
	table := &types.StrategicImplications{
		Opportunities: []types.ImplicationRow{},
		Threats:       []types.ImplicationRow{},
	}
	for _, s := range matching(g.sources, opportunityWords, signalSources) {
		table.Opportunities = append(table.Opportunities, types.ImplicationRow{
			Name:            citations.ShortTitle(&s),
			Detail:          firstSentence(s.Description, detailLength),
			SuggestedAction: "Scope a pilot informed by " + sourceName(&s),
			Timeline:        horizonFor(&s, g.now),
			Priority:        levelFor(s.RelevanceScore),
		})
	}
	for _, s := range matching(g.sources, riskWords, signalSources) {
		table.Threats = append(table.Threats, types.ImplicationRow{
			Name:            citations.ShortTitle(&s),
			Detail:          firstSentence(s.Description, detailLength),
			SuggestedAction: "Prepare a response plan and monitor " + sourceName(&s),
			Timeline:        "Ongoing",
			Priority:        levelFor(s.RelevanceScore),
		})
	}
	return table
}
