// Package steps provides step definitions and dependency validation for the
// deliverable pipeline.
package steps

import (
	"fmt"
	"sort"
)

// Step names.
const (
	LoadInputs        = "load_inputs"
	AggregateSources  = "aggregate_sources"
	RankSources       = "rank_sources"
	DetectFormat      = "detect_format"
	GenerateContent   = "generate_content"
	RenderDeliverable = "render_deliverable"
	PersistResults    = "persist_results"
)

// Step categories.
const (
	CategorySources    = "sources"
	CategoryAnalysis   = "analysis"
	CategoryGeneration = "generation"
	CategoryStorage    = "storage"
)

// StepDefinition defines metadata for a pipeline step
type StepDefinition struct {
	Name         string
	Category     string
	Order        int
	Dependencies []string
	Optional     []string // Run first when present, never required
}

// StepRegistry holds all step definitions
var StepRegistry = map[string]StepDefinition{
	LoadInputs: {
		Name:     LoadInputs,
		Category: CategorySources,
		Order:    1,
	},
	AggregateSources: {
		Name:         AggregateSources,
		Category:     CategorySources,
		Order:        2,
		Dependencies: []string{LoadInputs},
	},
	RankSources: {
		Name:         RankSources,
		Category:     CategoryAnalysis,
		Order:        3,
		Dependencies: []string{LoadInputs},
		Optional:     []string{AggregateSources},
	},
	DetectFormat: {
		Name:         DetectFormat,
		Category:     CategoryAnalysis,
		Order:        4,
		Dependencies: []string{LoadInputs},
	},
	GenerateContent: {
		Name:         GenerateContent,
		Category:     CategoryGeneration,
		Order:        5,
		Dependencies: []string{DetectFormat},
		Optional:     []string{RankSources},
	},
	RenderDeliverable: {
		Name:         RenderDeliverable,
		Category:     CategoryGeneration,
		Order:        6,
		Dependencies: []string{GenerateContent},
	},
	PersistResults: {
		Name:         PersistResults,
		Category:     CategoryStorage,
		Order:        7,
		Dependencies: []string{GenerateContent},
		Optional:     []string{RenderDeliverable},
	},
}

// DependencyError represents a dependency validation error
type DependencyError struct {
	Step                string
	MissingDependencies []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("step %s: missing dependencies: %v", e.Step, e.MissingDependencies)
}

// ValidateDependencies checks that every required dependency of stepName is
// in completed.
func ValidateDependencies(completed map[string]bool, stepName string) error {
	def, ok := StepRegistry[stepName]
	if !ok {
		return fmt.Errorf("unknown step: %s", stepName)
	}

	var missing []string
	for _, dep := range def.Dependencies {
		if !completed[dep] {
			missing = append(missing, dep)
		}
	}
	if len(missing) > 0 {
		return &DependencyError{Step: stepName, MissingDependencies: missing}
	}
	return nil
}

// AvailableSteps returns the steps not yet completed whose dependencies are
// met, in pipeline order.
func AvailableSteps(completed map[string]bool) []string {
	var available []string
	for _, name := range Ordered() {
		if completed[name] {
			continue
		}
		if ValidateDependencies(completed, name) == nil {
			available = append(available, name)
		}
	}
	return available
}

// BlockedSteps returns the steps whose dependencies are not met, in
// pipeline order.
func BlockedSteps(completed map[string]bool) []string {
	var blocked []string
	for _, name := range Ordered() {
		if completed[name] {
			continue
		}
		if ValidateDependencies(completed, name) != nil {
			blocked = append(blocked, name)
		}
	}
	return blocked
}

// Ordered returns every step name in pipeline order.
func Ordered() []string {
	names := make([]string, 0, len(StepRegistry))
	for name := range StepRegistry {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return StepRegistry[names[i]].Order < StepRegistry[names[j]].Order
	})
	return names
}
