package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/research-analyst/internal/types"
)

func TestFix(t *testing.T) {
	broken := validTask()
	broken.Objectives = nil
	broken.OutputType = ""
	broken.Context = nil
	broken.Status = "Done"
	broken.Category = "Misc"
	broken.Progress = types.Float(140)
	input := []types.Task{broken, validTask()}

	fixed, changes := Fix(input)
	require.Len(t, fixed, 2)

	got := fixed[0]
	assert.Equal(t, DefaultObjectives, got.Objectives)
	assert.Equal(t, "market_analysis", got.OutputType)
	require.NotNil(t, got.Context)
	assert.Equal(t, "Global", got.Context.Region)
	assert.Equal(t, types.LevelMedium, got.Context.RiskLevel)
	assert.Equal(t, "2-3 weeks", got.Context.EstimatedEffort)
	assert.Equal(t, types.StatusNew, got.Status)
	assert.Equal(t, types.CategoryResearchSupport, got.Category)
	assert.InDelta(t, 100, got.ProgressValue(), 1e-9)

	assert.Equal(t, []string{
		"Task 1 (task-001): added default objectives",
		"Task 1 (task-001): set output_type to market_analysis",
		"Task 1 (task-001): added default context",
		`Task 1 (task-001): replaced invalid status "Done" with New`,
		`Task 1 (task-001): replaced invalid category "Misc" with Research Support`,
		"Task 1 (task-001): clamped progress 140 to 100",
	}, changes)

	assert.Equal(t, validTask(), fixed[1])
	assert.Nil(t, input[0].Context, "input must not be modified")
	assert.Equal(t, "Done", input[0].Status)
	assert.True(t, ValidateTask(&got).Valid)
}

func TestFix_NothingToDo(t *testing.T) {
	fixed, changes := Fix([]types.Task{validTask()})
	assert.Equal(t, []types.Task{validTask()}, fixed)
	assert.Empty(t, changes)
}

func TestFix_DefaultContextIsCopied(t *testing.T) {
	fixed, _ := Fix([]types.Task{{ID: "task-1"}, {ID: "task-2"}})
	fixed[0].Context.Region = "US"
	assert.Equal(t, "Global", fixed[1].Context.Region)
	assert.Equal(t, "Global", DefaultContext.Region)
}
