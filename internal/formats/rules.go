// Package formats provides deliverable format detection and the prompt
// profiles that describe how each format is assembled.
package formats

import "github.com/jonathan/research-analyst/internal/types"

// Deliverable format identifiers.
const (
	ExecutiveBrief    = "executive_brief"
	MarketAnalysis    = "market_analysis"
	PolicyMemo        = "policy_memo"
	RegulatoryRoadmap = "regulatory_roadmap"
	StrategyDeck      = "strategy_deck"
)

// FallbackFormat is selected when no rule scores above zero.
const FallbackFormat = ExecutiveBrief

// Values reported for a detection that matched no rule.
const (
	UnknownLength = "Unknown"
	DefaultOutput = "pdf"
)

// DefaultRules returns the built-in rule table in evaluation order.
func DefaultRules() []types.FormatRule {
	return []types.FormatRule{
		{
			Name:              ExecutiveBrief,
			Triggers:          []string{"executive", "brief", "summary", "overview", "dashboard"},
			StakeholderLevels: []string{"executive", "vp", "director", "c-suite"},
			UrgencyLevels:     []string{"high", "critical"},
			TaskCategories:    []string{"strategy", "overview", "summary"},
			EstimatedLength:   "2-3 pages",
			OutputFormats:     []string{"pdf", "docx"},
		},
		{
			Name:              MarketAnalysis,
			Triggers:          []string{"market", "analysis", "research", "trends", "competitive", "industry"},
			StakeholderLevels: []string{"strategy", "marketing", "product", "business"},
			UrgencyLevels:     []string{"medium", "high"},
			TaskCategories:    []string{"research", "analysis", "market"},
			EstimatedLength:   "10-15 pages",
			OutputFormats:     []string{"pdf", "docx", "pptx"},
		},
		{
			Name:              PolicyMemo,
			Triggers:          []string{"policy", "regulatory", "compliance", "legal", "government"},
			StakeholderLevels: []string{"legal", "compliance", "regulatory", "government"},
			UrgencyLevels:     []string{"high", "critical"},
			TaskCategories:    []string{"policy", "regulatory", "compliance"},
			EstimatedLength:   "3-5 pages",
			OutputFormats:     []string{"pdf", "docx"},
		},
		{
			Name:              RegulatoryRoadmap,
			Triggers:          []string{"regulatory", "compliance", "roadmap", "timeline", "deadline"},
			StakeholderLevels: []string{"compliance", "legal", "regulatory"},
			UrgencyLevels:     []string{"medium", "high"},
			TaskCategories:    []string{"compliance", "regulatory"},
			EstimatedLength:   "5-8 pages",
			OutputFormats:     []string{"pdf", "docx", "pptx"},
		},
		{
			Name:              StrategyDeck,
			Triggers:          []string{"strategy", "presentation", "deck", "pitch", "proposal"},
			StakeholderLevels: []string{"executive", "strategy", "business"},
			UrgencyLevels:     []string{"medium", "high"},
			TaskCategories:    []string{"strategy", "presentation"},
			EstimatedLength:   "15-20 slides",
			OutputFormats:     []string{"pptx", "pdf"},
		},
	}
}

// FindRule returns the rule named name, if present.
func FindRule(rules []types.FormatRule, name string) (types.FormatRule, bool) {
	for _, rule := range rules {
		if rule.Name == name {
			return rule, true
		}
	}
	return types.FormatRule{}, false
}
