package types

// Deliverable statuses.
const (
	DeliverableDraft = "Draft"
)

// Generation methods recorded in deliverable metadata.
const (
	GenerationTemplate = "template_engine"
	GenerationLLM      = "llm"
	GenerationBasic    = "basic_generator"
)

// Deliverable is a generated report document for a task.
type Deliverable struct {
	ID              string               `json:"id"`
	TaskID          string               `json:"task_id"`
	Title           string               `json:"title"`
	FormatType      string               `json:"format_type,omitempty"`
	Status          string               `json:"status"`
	Sections        *DeliverableContent  `json:"sections,omitempty"`
	Content         string               `json:"content"`
	CreatedAt       string               `json:"created_at"`
	LastUpdated     string               `json:"last_updated"`
	SourcesUsed     []string             `json:"sources_used,omitempty"`
	EstimatedLength string               `json:"estimated_length,omitempty"`
	OutputFormats   []string             `json:"output_formats,omitempty"`
	Metadata        *DeliverableMetadata `json:"metadata,omitempty"`
}

// DeliverableMetadata records how a deliverable was produced.
type DeliverableMetadata struct {
	FormatDetection  *FormatDetection `json:"format_detection,omitempty"`
	SourceCount      int              `json:"source_count"`
	GenerationMethod string           `json:"generation_method"`
	Tone             string           `json:"tone,omitempty"`
	TargetAudience   string           `json:"target_audience,omitempty"`
	TokensUsed       int              `json:"tokens_used,omitempty"`
}

// DeliverableContent holds the structured output of each prompt chain step.
// Only the steps in the chosen profile are populated.
type DeliverableContent struct {
	ContextAnalysis       *ContextAnalysis       `json:"context_analysis,omitempty"`
	SourceSynthesis       *SourceSynthesis       `json:"source_synthesis,omitempty"`
	ExecutiveSummary      string                 `json:"executive_summary,omitempty"`
	KeyFindings           []Finding              `json:"key_findings,omitempty"`
	Recommendations       []Recommendation       `json:"recommendations,omitempty"`
	MarketOverview        *MarketOverview        `json:"market_overview,omitempty"`
	CompetitiveLandscape  *CompetitiveLandscape  `json:"competitive_landscape,omitempty"`
	TrendAnalysis         *TrendAnalysis         `json:"trend_analysis,omitempty"`
	DataAnalysis          *DataAnalysis          `json:"data_analysis,omitempty"`
	StrategicInsights     *StrategicInsights     `json:"strategic_insights,omitempty"`
	PolicyContext         *PolicyContext         `json:"policy_context,omitempty"`
	StakeholderAnalysis   *StakeholderAnalysis   `json:"stakeholder_analysis,omitempty"`
	ImpactAnalysis        *ImpactAnalysis        `json:"impact_analysis,omitempty"`
	RiskAssessment        *RiskAssessment        `json:"risk_assessment,omitempty"`
	RegulatoryLandscape   *RegulatoryLandscape   `json:"regulatory_landscape,omitempty"`
	ActionPlan            *ActionPlan            `json:"action_plan,omitempty"`
	StrategicImplications *StrategicImplications `json:"strategic_implications,omitempty"`
}

// ContextAnalysis frames the task for the reader.
type ContextAnalysis struct {
	TaskContext     string `json:"task_context"`
	BusinessContext string `json:"business_context"`
	Scope           string `json:"scope"`
	Timeline        string `json:"timeline"`
}

// SourceSynthesis summarises the strongest sources.
type SourceSynthesis struct {
	TotalSources int       `json:"total_sources"`
	SourceTypes  []string  `json:"source_types"`
	KeyInsights  []Insight `json:"key_insights"`
}

// Insight is a single source-backed observation.
type Insight struct {
	SourceTitle    string  `json:"source_title"`
	SourceType     string  `json:"source_type"`
	Insight        string  `json:"insight"`
	RelevanceScore float64 `json:"relevance_score"`
	Citation       string  `json:"citation"`
}

// Finding is a key finding derived from a source.
type Finding struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Content        string  `json:"content"`
	Source         string  `json:"source"`
	Citation       string  `json:"citation"`
	Confidence     float64 `json:"confidence"`
	Implications   string  `json:"implications"`
	SourceType     string  `json:"source_type"`
	RelevanceScore float64 `json:"relevance_score"`
}

// Recommendation is an actionable recommendation with an owner.
type Recommendation struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Priority        string `json:"priority"`
	Timeline        string `json:"timeline"`
	Owner           string `json:"owner"`
	ExpectedOutcome string `json:"expected_outcome"`
}

// TitledItem is a titled description, used for drivers and similar lists.
type TitledItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// GrowthTrend describes a measured trend.
type GrowthTrend struct {
	Trend  string `json:"trend"`
	Rate   string `json:"rate"`
	Period string `json:"period"`
}

// MarketOverview describes the market addressed by the task.
type MarketOverview struct {
	MarketSize    string        `json:"market_size"`
	MarketDrivers []TitledItem  `json:"market_drivers"`
	GrowthTrends  []GrowthTrend `json:"growth_trends"`
}

// Competitor is a competitor profile.
type Competitor struct {
	Name               string `json:"name"`
	MarketShare        string `json:"market_share"`
	Strengths          string `json:"strengths"`
	Weaknesses         string `json:"weaknesses"`
	RecentDevelopments string `json:"recent_developments"`
}

// CompetitiveLandscape lists competitors and advantages.
type CompetitiveLandscape struct {
	KeyCompetitors        []Competitor `json:"key_competitors"`
	CompetitiveAdvantages []string     `json:"competitive_advantages"`
}

// EmergingTrend is a trend with its expected impact.
type EmergingTrend struct {
	Trend    string `json:"trend"`
	Impact   string `json:"impact"`
	Timeline string `json:"timeline"`
}

// TrendAnalysis lists trends and dynamics.
type TrendAnalysis struct {
	EmergingTrends []EmergingTrend `json:"emerging_trends"`
	MarketDynamics []string        `json:"market_dynamics"`
}

// Metric is a named value with a direction.
type Metric struct {
	Metric string `json:"metric"`
	Value  string `json:"value"`
	Trend  string `json:"trend"`
}

// DataAnalysis holds quantitative observations.
type DataAnalysis struct {
	KeyMetrics   []Metric `json:"key_metrics"`
	DataInsights []string `json:"data_insights"`
}

// Opportunity is a strategic opportunity.
type Opportunity struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Size        string `json:"size"`
	Timeline    string `json:"timeline"`
	RiskLevel   string `json:"risk_level"`
}

// Threat is a strategic threat.
type Threat struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
	Mitigation  string `json:"mitigation"`
}

// StrategicInsights lists opportunities, threats and implications.
type StrategicInsights struct {
	Opportunities         []Opportunity `json:"opportunities"`
	Threats               []Threat      `json:"threats"`
	StrategicImplications []string      `json:"strategic_implications"`
}

// Regulation is a regulation with its status and impact.
type Regulation struct {
	Regulation string `json:"regulation"`
	Status     string `json:"status"`
	Impact     string `json:"impact"`
}

// PolicyContext describes the regulatory environment.
type PolicyContext struct {
	RegulatoryEnvironment []Regulation `json:"regulatory_environment"`
	PolicyTrends          []string     `json:"policy_trends"`
}

// StakeholderPosition is a stakeholder's stance and influence.
type StakeholderPosition struct {
	Stakeholder string `json:"stakeholder"`
	Position    string `json:"position"`
	Influence   string `json:"influence"`
}

// StakeholderAnalysis lists stakeholders and their concerns.
type StakeholderAnalysis struct {
	KeyStakeholders     []StakeholderPosition `json:"key_stakeholders"`
	StakeholderConcerns []string              `json:"stakeholder_concerns"`
}

// ImpactArea is an affected business area.
type ImpactArea struct {
	Area     string `json:"area"`
	Impact   string `json:"impact"`
	Timeline string `json:"timeline"`
}

// CostItem is a cost implication.
type CostItem struct {
	Item     string `json:"item"`
	Cost     string `json:"cost"`
	Timeline string `json:"timeline"`
}

// ImpactAnalysis lists business and cost impacts.
type ImpactAnalysis struct {
	BusinessImpact   []ImpactArea `json:"business_impact"`
	CostImplications []CostItem   `json:"cost_implications"`
}

// Risk is an assessed risk with mitigation.
type Risk struct {
	Risk        string `json:"risk"`
	Probability string `json:"probability"`
	Impact      string `json:"impact"`
	Mitigation  string `json:"mitigation"`
}

// RiskAssessment groups risks by severity.
type RiskAssessment struct {
	HighRisks                []Risk   `json:"high_risks"`
	MediumRisks              []Risk   `json:"medium_risks"`
	RiskMitigationStrategies []string `json:"risk_mitigation_strategies"`
}

// RegulatoryLandscape lists regulations currently in force or proposed.
type RegulatoryLandscape struct {
	CurrentRegulations []Regulation `json:"current_regulations"`
}

// Action is an owned action item.
type Action struct {
	Action   string `json:"action"`
	Owner    string `json:"owner"`
	Timeline string `json:"timeline"`
}

// Goal is a dated goal with success metrics.
type Goal struct {
	Goal           string `json:"goal"`
	TargetDate     string `json:"target_date"`
	SuccessMetrics string `json:"success_metrics"`
}

// ActionPlan lists immediate actions and short-term goals.
type ActionPlan struct {
	ImmediateActions []Action `json:"immediate_actions"`
	ShortTermGoals   []Goal   `json:"short_term_goals"`
}

// ImplicationRow is a row of the opportunity or threat table.
type ImplicationRow struct {
	Name            string `json:"name"`
	Detail          string `json:"detail"`
	SuggestedAction string `json:"suggested_action"`
	Timeline        string `json:"timeline"`
	Priority        string `json:"priority"`
}

// StrategicImplications holds the opportunity and threat tables of a brief.
type StrategicImplications struct {
	Opportunities []ImplicationRow `json:"opportunities"`
	Threats       []ImplicationRow `json:"threats"`
}
