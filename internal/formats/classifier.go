package formats

import (
	"fmt"
	"math"
	"strings"

	"github.com/jonathan/research-analyst/internal/types"
	"go.uber.org/zap"
)

// Weights are the points awarded per matching signal. Confidence is the
// winning score divided by Divisor, capped at 1.
type Weights struct {
	Trigger     float64
	Stakeholder float64
	Urgency     float64
	Category    float64
	Divisor     float64
}

// DefaultWeights returns the standard scoring weights.
func DefaultWeights() Weights {
	return Weights{
		Trigger:     3,
		Stakeholder: 2,
		Urgency:     1,
		Category:    2,
		Divisor:     10,
	}
}

// Classifier selects a deliverable format for a task from an ordered rule table.
type Classifier struct {
	rules   []types.FormatRule
	weights Weights
	logger  *zap.Logger
}

// NewClassifier creates a classifier over rules. Rules are evaluated in
// order and the first rule with the highest score wins.
func NewClassifier(rules []types.FormatRule, weights Weights, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if weights.Divisor <= 0 {
		weights.Divisor = DefaultWeights().Divisor
	}
	return &Classifier{rules: rules, weights: weights, logger: logger}
}

// Rules returns the rule table in evaluation order.
func (c *Classifier) Rules() []types.FormatRule {
	return c.rules
}

// Detect returns the best matching format for task. A non-empty override is
// returned as is with full confidence.
func (c *Classifier) Detect(task *types.Task, override string) types.FormatDetection {
	if override = strings.TrimSpace(override); override != "" {
		detection := types.FormatDetection{
			Format:     override,
			Confidence: 1.0,
			Reasoning:  []string{"Manually overridden by user"},
		}
		c.describe(&detection)
		return detection
	}

	text := strings.ToLower(task.Text())
	urgency := strings.ToLower(task.EffectiveUrgency())
	category := strings.ToLower(strings.TrimSpace(task.Category))

	best := -1
	bestScore := 0.0
	var bestReasons []string

	for i, rule := range c.rules {
		score, reasons := c.scoreRule(rule, task.Stakeholders, text, urgency, category)
		c.logger.Debug("format rule scored",
			zap.String("rule", rule.Name),
			zap.Float64("score", score))

		// Strict comparison keeps the earlier rule on ties.
		if score > bestScore {
			best = i
			bestScore = score
			bestReasons = reasons
		}
	}

	if best < 0 {
		detection := types.FormatDetection{
			Format:          FallbackFormat,
			Confidence:      0,
			Reasoning:       []string{fmt.Sprintf("No format rule matched; defaulting to %s", FallbackFormat)},
			EstimatedLength: UnknownLength,
			OutputFormats:   []string{DefaultOutput},
		}
		c.logger.Debug("no format rule matched", zap.String("task_id", task.ID))
		return detection
	}

	rule := c.rules[best]
	detection := types.FormatDetection{
		Format:          rule.Name,
		Confidence:      math.Min(bestScore/c.weights.Divisor, 1.0),
		Reasoning:       bestReasons,
		EstimatedLength: rule.EstimatedLength,
		OutputFormats:   rule.OutputFormats,
	}
	c.logger.Debug("format detected",
		zap.String("task_id", task.ID),
		zap.String("format", detection.Format),
		zap.Float64("confidence", detection.Confidence))
	return detection
}

func (c *Classifier) scoreRule(rule types.FormatRule, stakeholders []string, text, urgency, category string) (float64, []string) {
	score := 0.0
	var reasons []string

	for _, trigger := range rule.Triggers {
		if strings.Contains(text, strings.ToLower(trigger)) {
			score += c.weights.Trigger
			reasons = append(reasons, fmt.Sprintf("Trigger %q found in task text", trigger))
		}
	}

	for _, stakeholder := range stakeholders {
		lower := strings.ToLower(stakeholder)
		for _, level := range rule.StakeholderLevels {
			if strings.Contains(lower, strings.ToLower(level)) {
				score += c.weights.Stakeholder
				reasons = append(reasons, fmt.Sprintf("Stakeholder %q matches level %q", stakeholder, level))
				break
			}
		}
	}

	for _, level := range rule.UrgencyLevels {
		if strings.ToLower(level) == urgency {
			score += c.weights.Urgency
			reasons = append(reasons, fmt.Sprintf("Urgency %q matches format requirements", urgency))
			break
		}
	}

	if category != "" {
		for _, cat := range rule.TaskCategories {
			if strings.ToLower(cat) == category {
				score += c.weights.Category
				reasons = append(reasons, fmt.Sprintf("Category %q matches format requirements", category))
				break
			}
		}
	}

	return score, reasons
}

// describe fills length and output formats for a known format.
func (c *Classifier) describe(detection *types.FormatDetection) {
	if rule, ok := FindRule(c.rules, detection.Format); ok {
		detection.EstimatedLength = rule.EstimatedLength
		detection.OutputFormats = rule.OutputFormats
		return
	}
	detection.EstimatedLength = UnknownLength
	detection.OutputFormats = []string{DefaultOutput}
}
