// Package deliverables assembles report deliverables for research tasks,
// either from the section generators of a format's prompt chain or from a
// single LLM call.
package deliverables

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/research-analyst/internal/formats"
	"github.com/jonathan/research-analyst/internal/types"
)

// MaxSourcesUsed is the number of source IDs recorded on a deliverable.
const MaxSourcesUsed = 10

const (
	defaultTone     = "professional"
	defaultAudience = "general"
	genericTitle    = "Deliverable"
)

// sectionFunc fills one prompt chain step into content.
type sectionFunc func(g *generator, content *types.DeliverableContent)

var sectionGenerators = map[string]sectionFunc{
	formats.StepContextAnalysis:      func(g *generator, c *types.DeliverableContent) { c.ContextAnalysis = g.contextAnalysis() },
	formats.StepSourceSynthesis:      func(g *generator, c *types.DeliverableContent) { c.SourceSynthesis = g.sourceSynthesis() },
	formats.StepExecutiveSummary:     func(g *generator, c *types.DeliverableContent) { c.ExecutiveSummary = g.executiveSummary() },
	formats.StepKeyFindings:          func(g *generator, c *types.DeliverableContent) { c.KeyFindings = g.keyFindings() },
	formats.StepRecommendations:      func(g *generator, c *types.DeliverableContent) { c.Recommendations = g.recommendations() },
	formats.StepMarketOverview:       func(g *generator, c *types.DeliverableContent) { c.MarketOverview = g.marketOverview() },
	formats.StepCompetitiveLandscape: func(g *generator, c *types.DeliverableContent) { c.CompetitiveLandscape = g.competitiveLandscape() },
	formats.StepTrendAnalysis:        func(g *generator, c *types.DeliverableContent) { c.TrendAnalysis = g.trendAnalysis() },
	formats.StepDataAnalysis:         func(g *generator, c *types.DeliverableContent) { c.DataAnalysis = g.dataAnalysis() },
	formats.StepStrategicInsights:    func(g *generator, c *types.DeliverableContent) { c.StrategicInsights = g.strategicInsights() },
	formats.StepPolicyContext:        func(g *generator, c *types.DeliverableContent) { c.PolicyContext = g.policyContext() },
	formats.StepStakeholderAnalysis:  func(g *generator, c *types.DeliverableContent) { c.StakeholderAnalysis = g.stakeholderAnalysis() },
	formats.StepImpactAnalysis:       func(g *generator, c *types.DeliverableContent) { c.ImpactAnalysis = g.impactAnalysis() },
	formats.StepRiskAssessment:       func(g *generator, c *types.DeliverableContent) { c.RiskAssessment = g.riskAssessment() },
	formats.StepRegulatoryLandscape:  func(g *generator, c *types.DeliverableContent) { c.RegulatoryLandscape = g.regulatoryLandscape() },
	formats.StepActionPlan:           func(g *generator, c *types.DeliverableContent) { c.ActionPlan = g.actionPlan() },
}

// HasGenerator reports whether step has a section generator.
func HasGenerator(step string) bool {
	_, ok := sectionGenerators[step]
	return ok
}

// Engine builds deliverables from prompt profiles and ranked sources.
type Engine struct {
	Profiles   map[string]types.PromptProfile
	Classifier *formats.Classifier
	Logger     *zap.Logger
	Now        func() time.Time
}

// NewEngine creates an engine. Nil profiles use formats.DefaultProfiles.
func NewEngine(classifier *formats.Classifier, profiles map[string]types.PromptProfile, logger *zap.Logger) *Engine {
	if profiles == nil {
		profiles = formats.DefaultProfiles()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{Profiles: profiles, Classifier: classifier, Logger: logger, Now: time.Now}
}

// Generate detects the task's format (or applies formatOverride), runs every
// step of the format's prompt chain over sources and returns a Draft
// deliverable. sources are expected in ranked order. The Content field is
// left for a renderer to fill.
func (e *Engine) Generate(task *types.Task, sources []types.Source, formatOverride string) types.Deliverable {
	now := e.now()
	detection := e.Classifier.Detect(task, formatOverride)

	profile, known := formats.Profile(e.Profiles, detection.Format)
	name := profile.Name
	estimated := profile.EstimatedLength
	if !known {
		name = genericTitle
		estimated = detection.EstimatedLength
	}
	if estimated == "" {
		estimated = formats.UnknownLength
	}

	g := &generator{task: task, sources: sources, now: now}
	content := &types.DeliverableContent{}
	for _, step := range profile.PromptChain {
		fn, ok := sectionGenerators[step.Step]
		if !ok {
			e.Logger.Warn("no generator for prompt step",
				zap.String("step", step.Step),
				zap.String("format", detection.Format))
			continue
		}
		fn(g, content)
	}
	if detection.Format == formats.ExecutiveBrief {
		content.StrategicImplications = g.strategicImplications()
	}

	used := make([]string, 0, MaxSourcesUsed)
	for i := 0; i < len(sources) && i < MaxSourcesUsed; i++ {
		used = append(used, sources[i].ID)
	}

	tone := profile.Tone
	if tone == "" {
		tone = defaultTone
	}
	audience := profile.TargetAudience
	if audience == "" {
		audience = defaultAudience
	}

	stamp := types.FormatTimestamp(now)
	e.Logger.Debug("generated deliverable",
		zap.String("task_id", task.ID),
		zap.String("format", detection.Format),
		zap.Int("steps", len(profile.PromptChain)),
		zap.Int("sources", len(sources)))

	return types.Deliverable{
		ID:              DeliverableID(task.ID),
		TaskID:          task.ID,
		Title:           fmt.Sprintf("%s: %s", name, task.Title),
		FormatType:      detection.Format,
		Status:          types.DeliverableDraft,
		Sections:        content,
		CreatedAt:       stamp,
		LastUpdated:     stamp,
		SourcesUsed:     used,
		EstimatedLength: estimated,
		OutputFormats:   detection.OutputFormats,
		Metadata: &types.DeliverableMetadata{
			FormatDetection:  &detection,
			SourceCount:      len(sources),
			GenerationMethod: types.GenerationTemplate,
			Tone:             tone,
			TargetAudience:   audience,
		},
	}
}

// DeliverableID returns the deliverable identifier for a task.
func DeliverableID(taskID string) string {
	if taskID == "" {
		taskID = "unknown"
	}
	return "deliverable-" + taskID
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}
