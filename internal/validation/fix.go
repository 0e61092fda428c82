package validation

import (
	"fmt"
	"slices"

	"github.com/jonathan/research-analyst/internal/types"
)

// Defaults applied by Fix.
var (
	DefaultObjectives = []string{"Complete research objectives", "Analyze findings", "Prepare deliverable"}
	DefaultContext    = types.TaskContext{
		Region:          "Global",
		RiskLevel:       types.LevelMedium,
		Urgency:         types.LevelMedium,
		Dependencies:    []string{},
		EstimatedEffort: "2-3 weeks",
	}
)

const (
	defaultOutputType = "market_analysis"
	defaultStatus     = types.StatusNew
	defaultCategory   = types.CategoryResearchSupport
)

// Fix returns a copy of tasks with common problems repaired, and a line per
// change made. The input slice is not modified.
func Fix(tasks []types.Task) ([]types.Task, []string) {
	fixed := make([]types.Task, len(tasks))
	var changes []string

	for i := range tasks {
		task := tasks[i]
		note := func(format string, args ...any) {
			changes = append(changes, fmt.Sprintf("Task %d (%s): ", i+1, orUnknown(task.ID))+fmt.Sprintf(format, args...))
		}

		if len(task.Objectives) == 0 {
			task.Objectives = slices.Clone(DefaultObjectives)
			note("added default objectives")
		}
		if task.OutputType == "" {
			task.OutputType = defaultOutputType
			note("set output_type to %s", defaultOutputType)
		}
		if task.Context == nil {
			ctx := DefaultContext
			ctx.Dependencies = []string{}
			task.Context = &ctx
			note("added default context")
		}
		if task.Status != "" && !slices.Contains(ValidStatuses, task.Status) {
			note("replaced invalid status %q with %s", task.Status, defaultStatus)
			task.Status = defaultStatus
		}
		if task.Category != "" && !slices.Contains(ValidCategories, task.Category) {
			note("replaced invalid category %q with %s", task.Category, defaultCategory)
			task.Category = defaultCategory
		}
		if task.Progress != nil {
			if p := *task.Progress; p < 0 || p > 100 {
				clamped := min(max(p, 0), 100)
				task.Progress = types.Float(clamped)
				note("clamped progress %g to %g", p, clamped)
			}
		}
		fixed[i] = task
	}
	if changes == nil {
		changes = []string{}
	}
	return fixed, changes
}
