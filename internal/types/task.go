// Package types provides type definitions for the task, source and deliverable
// documents used throughout the research analyst system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// Task statuses accepted by the validator.
const (
	StatusNew        = "New"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
	StatusOnHold     = "On Hold"
	StatusCancelled  = "Cancelled"
)

// Task categories accepted by the validator.
const (
	CategoryCorporateStrategy = "Corporate Strategy"
	CategoryResearchSupport   = "Research Support"
	CategoryContentCuration   = "Content Curation"
	CategoryCommunications    = "Communications"
)

// Risk and urgency levels shared by task context fields.
const (
	LevelLow      = "Low"
	LevelMedium   = "Medium"
	LevelHigh     = "High"
	LevelCritical = "Critical"
)

// DefaultUrgency is assumed when a task carries no urgency at all.
const DefaultUrgency = "medium"

// Task represents a research request tracked by the analyst team.
// Pointer and slice fields stay nil when absent from the source document so
// validation can tell a missing field from an empty one.
type Task struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Category     string       `json:"category"`
	Stakeholders []string     `json:"stakeholders"`
	Urgency      string       `json:"urgency,omitempty"`
	Tags         []string     `json:"tags,omitempty"`
	Sources      []string     `json:"sources"`
	Status       string       `json:"status"`
	DueDate      string       `json:"due_date"`
	Progress     *float64     `json:"progress"`
	Deliverable  string       `json:"deliverable"`
	Objectives   []string     `json:"objectives"`
	OutputType   string       `json:"output_type"`
	Context      *TaskContext `json:"context"`
	Origin       string       `json:"origin,omitempty"`
	CreatedAt    string       `json:"created_at,omitempty"`
	LastUpdated  string       `json:"last_updated,omitempty"`

	// Optional hints for LLM generation
	DeliverableType string   `json:"deliverable_type,omitempty"`
	Format          string   `json:"format,omitempty"`
	Sections        []string `json:"sections,omitempty"`
	Instructions    string   `json:"instructions,omitempty"`
}

// TaskContext carries the planning metadata attached to a task.
type TaskContext struct {
	Region          string   `json:"region,omitempty"`
	RiskLevel       string   `json:"risk_level,omitempty"`
	Urgency         string   `json:"urgency,omitempty"`
	Dependencies    []string `json:"dependencies"`
	EstimatedEffort string   `json:"estimated_effort,omitempty"`
}

// Text returns the title and description joined by a single space.
func (t *Task) Text() string {
	return t.Title + " " + t.Description
}

// EffectiveUrgency returns the task urgency, falling back to the context
// urgency and then to DefaultUrgency.
func (t *Task) EffectiveUrgency() string {
	if u := strings.TrimSpace(t.Urgency); u != "" {
		return u
	}
	if t.Context != nil {
		if u := strings.TrimSpace(t.Context.Urgency); u != "" {
			return u
		}
	}
	return DefaultUrgency
}

// ProgressValue returns the progress percentage or 0 when unset.
func (t *Task) ProgressValue() float64 {
	if t.Progress == nil {
		return 0
	}
	return *t.Progress
}

// Float returns a pointer to v. Used for optional numeric fields.
func Float(v float64) *float64 {
	return &v
}
