// Package validation checks research tasks for completeness, scores their
// quality and repairs common problems.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/research-analyst/internal/types"
)

// Accepted values for enumerated task fields.
var (
	ValidStatuses    = []string{types.StatusNew, types.StatusInProgress, types.StatusCompleted, types.StatusOnHold, types.StatusCancelled}
	ValidCategories  = []string{types.CategoryCorporateStrategy, types.CategoryResearchSupport, types.CategoryContentCuration, types.CategoryCommunications}
	ValidOutputTypes = []string{"market_analysis", "executive_brief", "policy_memo", "regulatory_roadmap"}
	ValidLevels      = []string{types.LevelLow, types.LevelMedium, types.LevelHigh, types.LevelCritical}
)

// RequiredFields lists the task fields every task must carry, in report order.
var RequiredFields = []string{
	"id", "title", "description", "category", "stakeholders",
	"status", "due_date", "progress", "sources", "deliverable",
	"objectives", "output_type", "context",
}

const (
	minTitleLength       = 10
	minDescriptionLength = 50
	minObjectiveLength   = 10
)

// Result is the outcome of validating one task or a task list.
type Result struct {
	Valid    bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// taskFields carries the checks that validator tags can express. Empty
// values are skipped here; missing fields are reported separately.
type taskFields struct {
	ID          string   `validate:"omitempty,startswith=task-"`
	Title       string   `validate:"omitempty,min=10"`
	Description string   `validate:"omitempty,min=50"`
	Status      string   `validate:"omitempty,oneof='New' 'In Progress' 'Completed' 'On Hold' 'Cancelled'"`
	Category    string   `validate:"omitempty,oneof='Corporate Strategy' 'Research Support' 'Content Curation' 'Communications'"`
	Progress    *float64 `validate:"omitempty,gte=0,lte=100"`
	OutputType  string   `validate:"omitempty,oneof=market_analysis executive_brief policy_memo regulatory_roadmap"`
	RiskLevel   string   `validate:"omitempty,oneof=Low Medium High Critical"`
	Urgency     string   `validate:"omitempty,oneof=Low Medium High Critical"`
	DueDate     string   `validate:"omitempty,datetime=2006-01-02"`
	CreatedAt   string   `validate:"omitempty,iso8601"`
	LastUpdated string   `validate:"omitempty,iso8601"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		v, err := newStructValidator()
		if err != nil {
			panic(err)
		}
		validate = v
	})
	return validate
}

// newStructValidator builds a validator with the task-specific tags
// registered.
func newStructValidator() (*validator.Validate, error) {
	v := validator.New()
	err := v.RegisterValidation("iso8601", func(fl validator.FieldLevel) bool {
		return IsISOTimestamp(fl.Field().String())
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register iso8601 validation: %w", err)
	}
	return v, nil
}

// ValidateTask checks a single task. Errors make the task invalid; warnings
// flag data that is allowed but thin.
func ValidateTask(task *types.Task) Result {
	var errs, warnings []string

	for _, field := range missingFields(task) {
		errs = append(errs, "Missing required field: "+field)
	}

	fields := taskFields{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Category:    task.Category,
		Progress:    task.Progress,
		OutputType:  task.OutputType,
		DueDate:     task.DueDate,
		CreatedAt:   task.CreatedAt,
		LastUpdated: task.LastUpdated,
	}
	if task.Context != nil {
		fields.RiskLevel = task.Context.RiskLevel
		fields.Urgency = task.Context.Urgency
	}
	failed := failedFields(structValidator().Struct(fields))

	// Messages follow the field order of the task document.
	if failed["ID"] {
		errs = append(errs, "Task ID must be a string starting with 'task-'")
	}
	if failed["Title"] {
		errs = append(errs, fmt.Sprintf("Title must be a string with at least %d characters", minTitleLength))
	}
	if failed["Description"] {
		errs = append(errs, fmt.Sprintf("Description must be a string with at least %d characters", minDescriptionLength))
	}
	if task.Objectives != nil {
		if len(task.Objectives) == 0 {
			errs = append(errs, "Objectives must be a non-empty list")
		}
		for i, objective := range task.Objectives {
			if utf8.RuneCountInString(objective) < minObjectiveLength {
				errs = append(errs, fmt.Sprintf("Objective %d must be a string with at least %d characters", i+1, minObjectiveLength))
			}
		}
	}
	if task.Stakeholders != nil && len(task.Stakeholders) == 0 {
		errs = append(errs, "Stakeholders must be a non-empty list")
	}
	if failed["Status"] {
		errs = append(errs, fmt.Sprintf("Invalid status: %s. Must be one of %s", task.Status, listRepr(ValidStatuses)))
	}
	if failed["Category"] {
		errs = append(errs, fmt.Sprintf("Invalid category: %s. Must be one of %s", task.Category, listRepr(ValidCategories)))
	}
	if failed["Progress"] {
		errs = append(errs, "Progress must be a number between 0 and 100")
	}
	if task.Sources != nil && len(task.Sources) == 0 {
		warnings = append(warnings, "No sources specified")
	}
	if failed["OutputType"] {
		errs = append(errs, fmt.Sprintf("Invalid output_type: %s. Must be one of %s", task.OutputType, listRepr(ValidOutputTypes)))
	}
	if task.Context != nil {
		if failed["RiskLevel"] {
			errs = append(errs, fmt.Sprintf("Invalid risk_level: %s. Must be one of %s", task.Context.RiskLevel, listRepr(ValidLevels)))
		}
		if failed["Urgency"] {
			errs = append(errs, fmt.Sprintf("Invalid urgency: %s. Must be one of %s", task.Context.Urgency, listRepr(ValidLevels)))
		}
		if task.Context.Dependencies != nil && len(task.Context.Dependencies) == 0 {
			warnings = append(warnings, "No dependencies specified")
		}
	}
	if failed["DueDate"] {
		errs = append(errs, "due_date must be in YYYY-MM-DD format")
	}
	if failed["CreatedAt"] {
		errs = append(errs, "created_at must be in ISO format")
	}
	if failed["LastUpdated"] {
		errs = append(errs, "last_updated must be in ISO format")
	}

	return Result{Valid: len(errs) == 0, Errors: nonNil(errs), Warnings: nonNil(warnings)}
}

// ValidateAll validates every task. Messages are prefixed with the task's
// 1-based position and ID, and duplicate IDs are reported as errors.
func ValidateAll(tasks []types.Task) Result {
	var errs, warnings []string
	seen := make(map[string]int)
	var order []string

	for i := range tasks {
		task := &tasks[i]
		r := ValidateTask(task)
		prefix := fmt.Sprintf("Task %d (%s): ", i+1, orUnknown(task.ID))
		for _, e := range r.Errors {
			errs = append(errs, prefix+e)
		}
		for _, w := range r.Warnings {
			warnings = append(warnings, prefix+w)
		}
		if task.ID != "" {
			if seen[task.ID] == 0 {
				order = append(order, task.ID)
			}
			seen[task.ID]++
		}
	}
	for _, id := range order {
		if seen[id] > 1 {
			errs = append(errs, "Duplicate task ID: "+id)
		}
	}

	return Result{Valid: len(errs) == 0, Errors: nonNil(errs), Warnings: nonNil(warnings)}
}

// IsISOTimestamp reports whether value is an ISO-8601 date or date-time.
func IsISOTimestamp(value string) bool {
	_, ok := types.ParseISOTimestamp(value)
	return ok
}

func missingFields(task *types.Task) []string {
	present := map[string]bool{
		"id":           task.ID != "",
		"title":        task.Title != "",
		"description":  task.Description != "",
		"category":     task.Category != "",
		"stakeholders": task.Stakeholders != nil,
		"status":       task.Status != "",
		"due_date":     task.DueDate != "",
		"progress":     task.Progress != nil,
		"sources":      task.Sources != nil,
		"deliverable":  task.Deliverable != "",
		"objectives":   task.Objectives != nil,
		"output_type":  task.OutputType != "",
		"context":      task.Context != nil,
	}
	var missing []string
	for _, field := range RequiredFields {
		if !present[field] {
			missing = append(missing, field)
		}
	}
	return missing
}

func failedFields(err error) map[string]bool {
	failed := make(map[string]bool)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			failed[fe.Field()] = true
		}
	}
	return failed
}

// listRepr renders values the way the messages have always shown them:
// ['New', 'In Progress'].
func listRepr(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + v + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func orUnknown(id string) string {
	if id == "" {
		return "unknown"
	}
	return id
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
