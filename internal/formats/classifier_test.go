package formats

import (
	"testing"

	"github.com/jonathan/research-analyst/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDefaultClassifier() *Classifier {
	return NewClassifier(DefaultRules(), DefaultWeights(), nil)
}

func TestDetect_Override(t *testing.T) {
	task := &types.Task{Title: "Quarterly market trends", Description: "competitive research"}

	got := newDefaultClassifier().Detect(task, "policy_memo")

	assert.Equal(t, "policy_memo", got.Format)
	assert.Equal(t, 1.0, got.Confidence)
	assert.Equal(t, []string{"Manually overridden by user"}, got.Reasoning)
	assert.Equal(t, "3-5 pages", got.EstimatedLength)
}

func TestDetect_UnknownOverrideKept(t *testing.T) {
	got := newDefaultClassifier().Detect(&types.Task{}, "white_paper")

	assert.Equal(t, "white_paper", got.Format)
	assert.Equal(t, 1.0, got.Confidence)
	assert.Equal(t, UnknownLength, got.EstimatedLength)
	assert.Equal(t, []string{"pdf"}, got.OutputFormats)
}

func TestDetect_MarketAnalysis(t *testing.T) {
	task := &types.Task{
		Title:        "Market trends",
		Description:  "Competitive research",
		Stakeholders: []string{"Head of Marketing"},
		Urgency:      "Medium",
		Category:     "Research",
	}

	got := newDefaultClassifier().Detect(task, "")

	// market, research, trends, competitive = 12; marketing = 2; urgency = 1; category = 2
	assert.Equal(t, MarketAnalysis, got.Format)
	assert.Equal(t, 1.0, got.Confidence)
	assert.Equal(t, "10-15 pages", got.EstimatedLength)
	assert.Equal(t, []string{"pdf", "docx", "pptx"}, got.OutputFormats)
	assert.Contains(t, got.Reasoning, `Trigger "market" found in task text`)
	assert.Contains(t, got.Reasoning, `Stakeholder "Head of Marketing" matches level "marketing"`)
	assert.Contains(t, got.Reasoning, `Urgency "medium" matches format requirements`)
	assert.Contains(t, got.Reasoning, `Category "research" matches format requirements`)
}

func TestDetect_MarketAnalysisRequest(t *testing.T) {
	task := &types.Task{
		Title:        "Market analysis request",
		Category:     "research",
		Urgency:      "high",
		Stakeholders: []string{"strategy lead"},
	}
	marketOnly := []types.FormatRule{{
		Name:              MarketAnalysis,
		Triggers:          []string{"market", "analysis"},
		StakeholderLevels: []string{"strategy"},
		UrgencyLevels:     []string{"high"},
		TaskCategories:    []string{"research"},
	}}
	// A divisor of 100 exposes the raw score: 3 + 3 + 2 + 1 + 2 = 11.
	rawScore := DefaultWeights()
	rawScore.Divisor = 100

	tests := []struct {
		name           string
		rules          []types.FormatRule
		weights        Weights
		wantConfidence float64
	}{
		{name: "single rule capped", rules: marketOnly, weights: DefaultWeights(), wantConfidence: 1.0},
		{name: "single rule raw score", rules: marketOnly, weights: rawScore, wantConfidence: 0.11},
		{name: "default rules capped", rules: DefaultRules(), weights: DefaultWeights(), wantConfidence: 1.0},
		{name: "default rules raw score", rules: DefaultRules(), weights: rawScore, wantConfidence: 0.11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewClassifier(tt.rules, tt.weights, nil).Detect(task, "")

			assert.Equal(t, MarketAnalysis, got.Format)
			assert.InDelta(t, tt.wantConfidence, got.Confidence, 1e-9)
			assert.Equal(t, []string{
				`Trigger "market" found in task text`,
				`Trigger "analysis" found in task text`,
				`Stakeholder "strategy lead" matches level "strategy"`,
				`Urgency "high" matches format requirements`,
				`Category "research" matches format requirements`,
			}, got.Reasoning)
		})
	}
}

func TestDetect_ConfidenceScaled(t *testing.T) {
	// "policy" only: 3 points, urgency defaults to medium which policy_memo lacks
	task := &types.Task{Title: "New policy", Description: "details"}

	got := newDefaultClassifier().Detect(task, "")

	assert.Equal(t, PolicyMemo, got.Format)
	assert.InDelta(t, 0.3, got.Confidence, 1e-9)
}

func TestDetect_TieKeepsFirstRule(t *testing.T) {
	// "regulatory" triggers both policy_memo and regulatory_roadmap for 3 points.
	// Urgency high matches both. policy_memo comes first.
	task := &types.Task{Title: "regulatory", Description: "", Urgency: "high"}

	got := newDefaultClassifier().Detect(task, "")

	assert.Equal(t, PolicyMemo, got.Format)
	assert.InDelta(t, 0.4, got.Confidence, 1e-9)
}

func TestDetect_Fallback(t *testing.T) {
	task := &types.Task{Title: "zzz", Description: "qqq", Urgency: "whenever"}

	got := newDefaultClassifier().Detect(task, "")

	assert.Equal(t, FallbackFormat, got.Format)
	assert.Equal(t, 0.0, got.Confidence)
	assert.Equal(t, UnknownLength, got.EstimatedLength)
	assert.Equal(t, []string{"pdf"}, got.OutputFormats)
}

func TestDetect_UrgencyFromContext(t *testing.T) {
	task := &types.Task{
		Title:   "zzz",
		Context: &types.TaskContext{Urgency: "Critical"},
	}

	got := newDefaultClassifier().Detect(task, "")

	// executive_brief is the first rule accepting critical urgency
	assert.Equal(t, ExecutiveBrief, got.Format)
	assert.InDelta(t, 0.1, got.Confidence, 1e-9)
}

func TestDetect_StakeholderCountsOncePerRule(t *testing.T) {
	// Three of executive_brief's levels appear in one stakeholder name.
	task := &types.Task{Title: "zzz", Stakeholders: []string{"VP Executive Director"}, Urgency: "low"}

	got := newDefaultClassifier().Detect(task, "")

	assert.Equal(t, ExecutiveBrief, got.Format)
	assert.InDelta(t, 0.2, got.Confidence, 1e-9)
}

func TestDetect_CustomWeights(t *testing.T) {
	rules := []types.FormatRule{
		{Name: "a", Triggers: []string{"alpha"}},
		{Name: "b", TaskCategories: []string{"beta"}},
	}
	weights := Weights{Trigger: 1, Category: 5, Divisor: 5}
	task := &types.Task{Title: "alpha", Category: "Beta"}

	got := NewClassifier(rules, weights, nil).Detect(task, "")

	assert.Equal(t, "b", got.Format)
	assert.Equal(t, 1.0, got.Confidence)
}

func TestDetect_ZeroDivisorUsesDefault(t *testing.T) {
	c := NewClassifier(DefaultRules(), Weights{Trigger: 3}, nil)
	got := c.Detect(&types.Task{Title: "policy"}, "")

	require.Equal(t, PolicyMemo, got.Format)
	assert.InDelta(t, 0.3, got.Confidence, 1e-9)
}
