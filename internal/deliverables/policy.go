package deliverables

import (
	"fmt"
	"sort"
	"time"

	"github.com/jonathan/research-analyst/internal/citations"
	"github.com/jonathan/research-analyst/internal/types"
)

const goalHorizon = 90 * 24 * time.Hour

// impactArea groups keyword stems under a business area.
type impactArea struct {
	name     string
	words    []string
	timeline string
}

var impactAreas = []impactArea{
	{name: "Compliance", words: []string{"regulat", "complian", "law", "legal", "policy"}, timeline: "3 months"},
	{name: "Operations", words: []string{"operat", "process", "supply", "logistic"}, timeline: "6 months"},
	{name: "Technology", words: []string{"tech", "digital", "platform", " ai ", "data", "api"}, timeline: "12 months"},
	{name: "Customers", words: []string{"customer", "consumer", "user", "client"}, timeline: "6 months"},
	{name: "Finance", words: []string{"cost", "revenue", "price", "margin", "profit", "credit"}, timeline: "6 months"},
}

func (g *generator) regulations() []types.Regulation {
	regs := []types.Regulation{}
	for _, s := range matching(g.sources, regulationWords, signalSources) {
		regs = append(regs, types.Regulation{
			Regulation: citations.ShortTitle(&s),
			Status:     regulationStatus(&s),
			Impact:     levelFor(s.RelevanceScore),
		})
	}
	return regs
}

func (g *generator) policyContext() *types.PolicyContext {
	policy := &types.PolicyContext{
		RegulatoryEnvironment: g.regulations(),
		PolicyTrends:          []string{},
	}
	for _, s := range matching(g.sources, regulationWords, signalSources) {
		if sentence := firstSentence(s.Description, detailLength); sentence != "" {
			policy.PolicyTrends = append(policy.PolicyTrends, sentence)
		}
	}
	return policy
}

func (g *generator) stakeholderAnalysis() *types.StakeholderAnalysis {
	analysis := &types.StakeholderAnalysis{
		KeyStakeholders:     []types.StakeholderPosition{},
		StakeholderConcerns: []string{},
	}
	for i, name := range g.task.Stakeholders {
		position := "Contributor"
		if i == 0 {
			position = "Sponsor"
		}
		influence := types.LevelMedium
		if isSenior(name) {
			influence = types.LevelHigh
		}
		analysis.KeyStakeholders = append(analysis.KeyStakeholders, types.StakeholderPosition{
			Stakeholder: name,
			Position:    position,
			Influence:   influence,
		})
	}

	// External voices, ranked by how often they appear among the sources.
	counts := make(map[string]int)
	var order []string
	for _, s := range g.sources {
		if s.Source == "" {
			continue
		}
		if counts[s.Source] == 0 {
			order = append(order, s.Source)
		}
		counts[s.Source]++
	}
	sort.SliceStable(order, func(a, b int) bool { return counts[order[a]] > counts[order[b]] })
	for i, name := range order {
		if i == signalSources {
			break
		}
		influence := types.LevelLow
		if counts[name] > 1 {
			influence = types.LevelMedium
		}
		analysis.KeyStakeholders = append(analysis.KeyStakeholders, types.StakeholderPosition{
			Stakeholder: name,
			Position:    fmt.Sprintf("External voice (%d sources)", counts[name]),
			Influence:   influence,
		})
	}

	for _, s := range matching(g.sources, riskWords, signalSources) {
		if sentence := firstSentence(s.Description, detailLength); sentence != "" {
			analysis.StakeholderConcerns = append(analysis.StakeholderConcerns, sentence)
		}
	}
	if len(analysis.StakeholderConcerns) == 0 {
		analysis.StakeholderConcerns = append(analysis.StakeholderConcerns,
			"No stakeholder concerns surfaced in the available sources")
	}
	return analysis
}

func (g *generator) impactAnalysis() *types.ImpactAnalysis {
	analysis := &types.ImpactAnalysis{
		BusinessImpact:   []types.ImpactArea{},
		CostImplications: []types.CostItem{},
	}
	for _, area := range impactAreas {
		n := len(matching(g.sources, area.words, len(g.sources)))
		if n == 0 {
			continue
		}
		impact := types.LevelLow
		switch {
		case n >= 3 || (len(g.sources) > 1 && 2*n >= len(g.sources)):
			impact = types.LevelHigh
		case n == 2:
			impact = types.LevelMedium
		}
		analysis.BusinessImpact = append(analysis.BusinessImpact, types.ImpactArea{
			Area:     area.name,
			Impact:   impact,
			Timeline: area.timeline,
		})
	}

	for _, s := range g.sources {
		cost := firstMoney(&s)
		if cost == "" {
			continue
		}
		analysis.CostImplications = append(analysis.CostImplications, types.CostItem{
			Item:     citations.ShortTitle(&s),
			Cost:     cost,
			Timeline: horizonFor(&s, g.now),
		})
		if len(analysis.CostImplications) == signalSources {
			break
		}
	}
	return analysis
}

func (g *generator) riskAssessment() *types.RiskAssessment {
	assessment := &types.RiskAssessment{
		HighRisks:                []types.Risk{},
		MediumRisks:              []types.Risk{},
		RiskMitigationStrategies: []string{},
	}
	for _, s := range matching(g.sources, riskWords, 2*signalSources) {
		probability := types.LevelMedium
		if horizonFor(&s, g.now) == "0-6 months" {
			probability = types.LevelHigh
		}
		risk := types.Risk{
			Risk:        citations.ShortTitle(&s),
			Probability: probability,
			Impact:      levelFor(s.RelevanceScore),
			Mitigation:  "Track follow-up coverage from " + sourceName(&s),
		}
		if s.RelevanceScore >= 0.3 {
			if len(assessment.HighRisks) < signalSources {
				assessment.HighRisks = append(assessment.HighRisks, risk)
			}
		} else if len(assessment.MediumRisks) < signalSources {
			assessment.MediumRisks = append(assessment.MediumRisks, risk)
		}
	}

	if len(matching(g.sources, regulationWords, 1)) > 0 {
		assessment.RiskMitigationStrategies = append(assessment.RiskMitigationStrategies, "Proactive regulatory engagement")
	}
	assessment.RiskMitigationStrategies = append(assessment.RiskMitigationStrategies,
		fmt.Sprintf("Continuous monitoring of the %d tracked sources", len(g.sources)))
	if len(assessment.HighRisks) > 0 {
		assessment.RiskMitigationStrategies = append(assessment.RiskMitigationStrategies,
			"Escalate high risks to "+g.owner())
	}
	return assessment
}

func (g *generator) regulatoryLandscape() *types.RegulatoryLandscape {
	return &types.RegulatoryLandscape{CurrentRegulations: g.regulations()}
}

func (g *generator) actionPlan() *types.ActionPlan {
	plan := &types.ActionPlan{
		ImmediateActions: []types.Action{},
		ShortTermGoals:   []types.Goal{},
	}
	for _, s := range matching(g.sources, append(append([]string{}, regulationWords...), riskWords...), signalSources) {
		plan.ImmediateActions = append(plan.ImmediateActions, types.Action{
			Action:   fmt.Sprintf("Review %q", citations.ShortTitle(&s)),
			Owner:    g.owner(),
			Timeline: "1-2 weeks",
		})
	}

	target := g.task.DueDate
	if target == "" {
		target = "TBD"
	}
	deliverable := g.task.Deliverable
	if deliverable == "" {
		deliverable = g.task.Title
	}
	plan.ShortTermGoals = append(plan.ShortTermGoals, types.Goal{
		Goal:           "Complete " + deliverable,
		TargetDate:     target,
		SuccessMetrics: "Approved by " + g.stakeholders("stakeholders"),
	})
	if regs := g.regulations(); len(regs) > 0 {
		plan.ShortTermGoals = append(plan.ShortTermGoals, types.Goal{
			Goal:           "Assess compliance gaps for each tracked regulation",
			TargetDate:     g.now.Add(goalHorizon).Format("2006-01-02"),
			SuccessMetrics: fmt.Sprintf("%d regulations assessed", len(regs)),
		})
	}
	return plan
}
