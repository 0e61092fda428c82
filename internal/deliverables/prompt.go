package deliverables

import (
	"strings"
	"time"

	"github.com/jonathan/research-analyst/internal/prompts"
	"github.com/jonathan/research-analyst/internal/types"
)

// Defaults used when a task carries no LLM hints.
const (
	DefaultDeliverableType = "Executive Brief"
	DefaultPromptFormat    = "Narrative"
	DefaultSections        = "Executive Summary, Key Findings, Recommendations, Sources Cited"
)

const snippetLength = 200

type promptSource struct {
	Snippet  string
	Title    string
	Citation string
}

type deliverablePrompt struct {
	DeliverableType string
	Format          string
	Sections        string
	Instructions    string
	Title           string
	Description     string
	Objectives      string
	Deliverable     string
	Sources         []promptSource
}

// BuildPrompt renders the single-shot LLM prompt for task. Every source is
// listed as "- snippet [title]" for inline citation.
func BuildPrompt(task *types.Task, sources []types.Source) (string, error) {
	data := deliverablePrompt{
		DeliverableType: firstNonEmpty(task.DeliverableType, task.OutputType, DefaultDeliverableType),
		Format:          firstNonEmpty(task.Format, DefaultPromptFormat),
		Sections:        DefaultSections,
		Title:           task.Title,
		Description:     task.Description,
		Objectives:      strings.Join(task.Objectives, "; "),
		Deliverable:     task.Deliverable,
		Sources:         promptSources(sources, time.Time{}),
	}
	if len(task.Sections) > 0 {
		data.Sections = strings.Join(task.Sections, ", ")
	}
	if task.Instructions != "" {
		data.Instructions = "Special instructions: " + task.Instructions
	}
	return prompts.Render(prompts.Deliverables, prompts.KeyBuildDeliverable, data)
}

type chainStepPrompt struct {
	StepTitle   string
	ProfileName string
	Audience    string
	Tone        string
	Instruction string
	Title       string
	Description string
	Objectives  string
	Sources     []promptSource
}

// BuildStepPrompt renders the prompt for one prompt chain step.
func BuildStepPrompt(task *types.Task, sources []types.Source, profile types.PromptProfile, step types.PromptStep, now time.Time) (string, error) {
	data := chainStepPrompt{
		StepTitle:   StepTitle(step.Step),
		ProfileName: firstNonEmpty(profile.Name, genericTitle),
		Audience:    firstNonEmpty(profile.TargetAudience, defaultAudience),
		Tone:        firstNonEmpty(profile.Tone, defaultTone),
		Instruction: step.Prompt,
		Title:       task.Title,
		Description: task.Description,
		Objectives:  strings.Join(task.Objectives, "; "),
		Sources:     promptSources(sources, now),
	}
	return prompts.Render(prompts.Deliverables, prompts.KeyChainStep, data)
}

// StepTitle turns a step identifier such as "key_findings" into a heading.
func StepTitle(step string) string {
	return titleCase(step)
}

func promptSources(sources []types.Source, now time.Time) []promptSource {
	if now.IsZero() {
		now = time.Now()
	}
	out := make([]promptSource, 0, len(sources))
	for i := range sources {
		s := &sources[i]
		snippet := s.Title
		if s.Description != "" {
			snippet = truncate(s.Description, snippetLength)
		}
		out = append(out, promptSource{Snippet: snippet, Title: s.Title, Citation: citation(s, now)})
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
