package formats

import "github.com/jonathan/research-analyst/internal/types"

// Prompt chain step identifiers. Each has a section generator.
const (
	StepContextAnalysis      = "context_analysis"
	StepSourceSynthesis      = "source_synthesis"
	StepExecutiveSummary     = "executive_summary"
	StepKeyFindings          = "key_findings"
	StepRecommendations      = "recommendations"
	StepMarketOverview       = "market_overview"
	StepCompetitiveLandscape = "competitive_landscape"
	StepTrendAnalysis        = "trend_analysis"
	StepDataAnalysis         = "data_analysis"
	StepStrategicInsights    = "strategic_insights"
	StepPolicyContext        = "policy_context"
	StepStakeholderAnalysis  = "stakeholder_analysis"
	StepImpactAnalysis       = "impact_analysis"
	StepRiskAssessment       = "risk_assessment"
	StepRegulatoryLandscape  = "regulatory_landscape"
	StepActionPlan           = "action_plan"
)

// DefaultProfiles returns the built-in prompt profile for every format.
func DefaultProfiles() map[string]types.PromptProfile {
	return map[string]types.PromptProfile{
		ExecutiveBrief: {
			Name:        "Executive Brief",
			Description: "Concise summary for executive stakeholders",
			PromptChain: []types.PromptStep{
				{Step: StepContextAnalysis, Prompt: "Analyze the task context and stakeholder requirements to understand the key information needs."},
				{Step: StepSourceSynthesis, Prompt: "Synthesize key insights from all available sources, prioritizing the most relevant and recent information."},
				{Step: StepExecutiveSummary, Prompt: "Create a concise executive summary that highlights the most critical findings and implications."},
				{Step: StepKeyFindings, Prompt: "Extract and present the 3-5 most important findings with clear business impact."},
				{Step: StepRecommendations, Prompt: "Provide 2-3 actionable recommendations with clear ownership and timelines."},
			},
			Tone:            "professional, concise, actionable",
			TargetAudience:  "executive leadership",
			EstimatedLength: "2-3 pages",
		},
		MarketAnalysis: {
			Name:        "Market Analysis Report",
			Description: "Comprehensive market research and analysis",
			PromptChain: []types.PromptStep{
				{Step: StepMarketOverview, Prompt: "Provide a comprehensive overview of the target market, including size, growth, and key dynamics."},
				{Step: StepCompetitiveLandscape, Prompt: "Analyze the competitive landscape, identifying key players, market shares, and competitive advantages."},
				{Step: StepTrendAnalysis, Prompt: "Identify and analyze key market trends, drivers, and emerging opportunities."},
				{Step: StepDataAnalysis, Prompt: "Present quantitative analysis with relevant metrics, growth rates, and market data."},
				{Step: StepStrategicInsights, Prompt: "Generate strategic insights and implications for business decision-making."},
				{Step: StepRecommendations, Prompt: "Provide detailed strategic recommendations with implementation considerations."},
			},
			Tone:            "analytical, data-driven, strategic",
			TargetAudience:  "strategy and business teams",
			EstimatedLength: "10-15 pages",
		},
		PolicyMemo: {
			Name:        "Policy Memo",
			Description: "Policy analysis and recommendations",
			PromptChain: []types.PromptStep{
				{Step: StepPolicyContext, Prompt: "Analyze the policy context and regulatory environment relevant to the issue."},
				{Step: StepStakeholderAnalysis, Prompt: "Identify key stakeholders and their positions on the policy issue."},
				{Step: StepImpactAnalysis, Prompt: "Assess the potential impact of policy changes on business operations and stakeholders."},
				{Step: StepRiskAssessment, Prompt: "Evaluate risks and opportunities associated with different policy options."},
				{Step: StepRecommendations, Prompt: "Provide policy recommendations with clear rationale and implementation strategy."},
			},
			Tone:            "objective, analytical, policy-focused",
			TargetAudience:  "legal and compliance teams",
			EstimatedLength: "3-5 pages",
		},
		RegulatoryRoadmap: {
			Name:        "Regulatory Roadmap",
			Description: "Timeline of regulatory obligations and the actions they require",
			PromptChain: []types.PromptStep{
				{Step: StepRegulatoryLandscape, Prompt: "Map the regulations in force or proposed that apply to the issue, with their status."},
				{Step: StepImpactAnalysis, Prompt: "Assess the operational and cost impact of each regulatory change."},
				{Step: StepActionPlan, Prompt: "Lay out immediate actions and short-term goals with owners and target dates."},
				{Step: StepRiskAssessment, Prompt: "Evaluate compliance risks and how they will be mitigated."},
			},
			Tone:            "precise, compliance-focused, time-bound",
			TargetAudience:  "compliance and legal teams",
			EstimatedLength: "5-8 pages",
		},
		StrategyDeck: {
			Name:        "Strategy Deck",
			Description: "Slide-ready strategic narrative for decision makers",
			PromptChain: []types.PromptStep{
				{Step: StepContextAnalysis, Prompt: "Frame the strategic question and the stakeholders it matters to."},
				{Step: StepExecutiveSummary, Prompt: "Summarize the strategic position in a few slide-ready statements."},
				{Step: StepMarketOverview, Prompt: "Outline the market drivers and growth trends that shape the strategy."},
				{Step: StepStrategicInsights, Prompt: "Present opportunities and threats with their size and timing."},
				{Step: StepRecommendations, Prompt: "Close with the recommended strategic moves and their owners."},
			},
			Tone:            "persuasive, visual, strategic",
			TargetAudience:  "executive and strategy teams",
			EstimatedLength: "15-20 slides",
		},
	}
}

// Profile returns the profile for format from profiles, falling back to the
// FallbackFormat profile. ok is false when the fallback was used.
func Profile(profiles map[string]types.PromptProfile, format string) (types.PromptProfile, bool) {
	if p, found := profiles[format]; found {
		return p, true
	}
	return profiles[FallbackFormat], false
}
