package types

// FormatRule maps task characteristics to a deliverable template identifier.
type FormatRule struct {
	Name              string   `json:"name" yaml:"-"`
	Triggers          []string `json:"triggers" yaml:"triggers"`
	StakeholderLevels []string `json:"stakeholder_levels" yaml:"stakeholder_levels"`
	UrgencyLevels     []string `json:"urgency_levels" yaml:"urgency_levels"`
	TaskCategories    []string `json:"task_categories" yaml:"task_categories"`
	EstimatedLength   string   `json:"estimated_length" yaml:"estimated_length"`
	OutputFormats     []string `json:"output_formats" yaml:"output_formats"`
}

// FormatDetection is the outcome of classifying a task.
type FormatDetection struct {
	Format          string   `json:"format"`
	Confidence      float64  `json:"confidence"`
	Reasoning       []string `json:"reasoning"`
	EstimatedLength string   `json:"estimated_length,omitempty"`
	OutputFormats   []string `json:"output_formats,omitempty"`
}

// PromptStep is a single step in a prompt chain.
type PromptStep struct {
	Step   string `json:"step" yaml:"step"`
	Prompt string `json:"prompt" yaml:"prompt"`
}

// PromptProfile describes how a deliverable format is assembled.
type PromptProfile struct {
	Name            string       `json:"name" yaml:"name"`
	Description     string       `json:"description" yaml:"description"`
	PromptChain     []PromptStep `json:"prompt_chain" yaml:"prompt_chain"`
	Tone            string       `json:"tone" yaml:"tone"`
	TargetAudience  string       `json:"target_audience" yaml:"target_audience"`
	EstimatedLength string       `json:"estimated_length,omitempty" yaml:"estimated_length"`
}
