package deliverables

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/research-analyst/internal/formats"
	"github.com/jonathan/research-analyst/internal/llm"
	"github.com/jonathan/research-analyst/internal/prompts"
	"github.com/jonathan/research-analyst/internal/types"
	"github.com/jonathan/research-analyst/internal/usage"
)

// Sampling defaults for deliverable generation.
const (
	DefaultTemperature = 0.3
	DefaultMaxTokens   = 1500
)

// LLMOutputFormats are the formats offered for LLM drafted deliverables.
var LLMOutputFormats = []string{"pdf", "docx", "html"}

// LLMGenerator drafts deliverables with a language model and charges the
// tokens to a usage ledger.
type LLMGenerator struct {
	Client      llm.Client
	Ledger      *usage.Ledger // Optional; no budget is enforced when nil
	Temperature float64
	MaxTokens   int
	Tier        llm.ModelTier
	Logger      *zap.Logger
	Now         func() time.Time
}

// NewLLMGenerator creates a generator with the default sampling settings.
func NewLLMGenerator(client llm.Client, ledger *usage.Ledger, logger *zap.Logger) *LLMGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLMGenerator{
		Client:      client,
		Ledger:      ledger,
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
		Tier:        llm.TierStandard,
		Logger:      logger,
		Now:         time.Now,
	}
}

// Generate drafts the whole deliverable in one completion. It fails before
// calling the model when the daily budget is spent, and after it when this
// call pushes usage over the budget.
func (g *LLMGenerator) Generate(ctx context.Context, task *types.Task, sources []types.Source) (*llm.Response, error) {
	prompt, err := BuildPrompt(task, sources)
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}
	return g.complete(ctx, prompt)
}

// GenerateChain runs every step of profile through the model and joins the
// sections under "## <Step Title>" headings. TotalTokens is the sum over
// all steps.
func (g *LLMGenerator) GenerateChain(ctx context.Context, task *types.Task, sources []types.Source, profile types.PromptProfile) (*llm.Response, error) {
	var b strings.Builder
	total := &llm.Response{}
	for i, step := range profile.PromptChain {
		prompt, err := BuildStepPrompt(task, sources, profile, step, g.now())
		if err != nil {
			return nil, fmt.Errorf("failed to build prompt for step %s: %w", step.Step, err)
		}
		resp, err := g.complete(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("step %s failed: %w", step.Step, err)
		}
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "## %s\n\n%s", StepTitle(step.Step), resp.Text)
		total.TotalTokens += resp.TotalTokens
		total.Model = resp.Model
	}
	total.Text = b.String()
	return total, nil
}

func (g *LLMGenerator) complete(ctx context.Context, prompt string) (*llm.Response, error) {
	if g.Ledger != nil {
		if err := g.Ledger.Check(); err != nil {
			return nil, err
		}
	}

	system, err := prompts.Get(prompts.Deliverables, prompts.KeySystem)
	if err != nil {
		return nil, err
	}
	resp, err := g.Client.Complete(ctx, llm.Request{
		System:      system,
		Prompt:      prompt,
		Temperature: g.Temperature,
		MaxTokens:   g.MaxTokens,
		Tier:        g.Tier,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate deliverable: %w", err)
	}

	tokens := resp.TotalTokens
	if tokens <= 0 {
		tokens = usage.DefaultTokens
	}
	if g.Ledger != nil {
		cost, err := g.Ledger.Record(tokens)
		if err != nil {
			return nil, err
		}
		g.Logger.Info("LLM usage recorded",
			zap.String("model", resp.Model),
			zap.Int("tokens", tokens),
			zap.Float64("daily_cost_usd", cost))
	}

	return &llm.Response{Text: llm.StripCodeFence(resp.Text), TotalTokens: tokens, Model: resp.Model}, nil
}

func (g *LLMGenerator) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

// LLMDeliverable wraps LLM drafted Markdown in a Draft deliverable record.
// The format is formatType, then the task's output type, then the fallback.
func LLMDeliverable(task *types.Task, sources []types.Source, formatType string, resp *llm.Response, now time.Time) types.Deliverable {
	format := firstNonEmpty(formatType, task.OutputType, formats.FallbackFormat)
	used := make([]string, 0, len(sources))
	for _, s := range sources {
		used = append(used, s.ID)
	}
	stamp := types.FormatTimestamp(now)
	return types.Deliverable{
		ID:            DeliverableID(task.ID),
		TaskID:        task.ID,
		Title:         task.Title,
		FormatType:    format,
		Status:        types.DeliverableDraft,
		Content:       resp.Text,
		CreatedAt:     stamp,
		LastUpdated:   stamp,
		SourcesUsed:   used,
		OutputFormats: append([]string{}, LLMOutputFormats...),
		Metadata: &types.DeliverableMetadata{
			SourceCount:      len(sources),
			GenerationMethod: types.GenerationLLM,
			TokensUsed:       resp.TotalTokens,
		},
	}
}
