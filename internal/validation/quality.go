package validation

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/jonathan/research-analyst/internal/types"
)

// DefaultQualityThreshold is the score below which a task is reported as
// needing improvement.
const DefaultQualityThreshold = 70.0

// Score weights, out of 100.
const (
	requiredFieldPoints = 40.0
	descriptionPoints   = 15.0
	objectivesPoints    = 15.0
	richSourcesPoints   = 15.0
	someSourcesPoints   = 10.0
	contextPoints       = 15.0

	richDescriptionLength = 100
	richObjectiveCount    = 3
	richSourceCount       = 3
)

// TaskScore is one entry of a quality report.
type TaskScore struct {
	TaskID       string  `json:"task_id"`
	Title        string  `json:"title"`
	QualityScore float64 `json:"quality_score"`
}

// ValidationSummary is the validation section of a quality report.
type ValidationSummary struct {
	Valid        bool     `json:"is_valid"`
	ErrorCount   int      `json:"error_count"`
	WarningCount int      `json:"warning_count"`
	Errors       []string `json:"errors"`
	Warnings     []string `json:"warnings"`
}

// Report summarises validation and quality across a task list.
type Report struct {
	TotalTasks          int               `json:"total_tasks"`
	ValidationResults   ValidationSummary `json:"validation_results"`
	QualityScores       []TaskScore       `json:"quality_scores"`
	AverageQualityScore *float64          `json:"average_quality_score,omitempty"`
	Recommendations     []string          `json:"recommendations"`
}

// QualityScore rates a task from 0 to 100 on field completeness, content
// depth, source coverage and context completeness.
func QualityScore(task *types.Task) float64 {
	score := float64(len(RequiredFields)-len(missingFields(task))-falsyPresent(task)) /
		float64(len(RequiredFields)) * requiredFieldPoints

	if utf8.RuneCountInString(task.Description) >= richDescriptionLength {
		score += descriptionPoints
	}
	if len(task.Objectives) >= richObjectiveCount {
		score += objectivesPoints
	}
	switch {
	case len(task.Sources) >= richSourceCount:
		score += richSourcesPoints
	case len(task.Sources) >= 1:
		score += someSourcesPoints
	}
	if task.Context != nil {
		score += contextCompleteness(task.Context) * contextPoints
	}
	return math.Min(score, 100)
}

// RoundScore rounds a quality score to one decimal place.
func RoundScore(score float64) float64 {
	return math.Round(score*10) / 10
}

// QualityReport validates tasks, scores each one and recommends follow-ups.
// Tasks scoring below threshold are counted in the recommendations.
func QualityReport(tasks []types.Task, threshold float64) Report {
	result := ValidateAll(tasks)
	report := Report{
		TotalTasks:        len(tasks),
		ValidationResults: Summarize(result),
		QualityScores:     make([]TaskScore, 0, len(tasks)),
		Recommendations:   []string{},
	}

	var total float64
	low := 0
	for i := range tasks {
		score := QualityScore(&tasks[i])
		report.QualityScores = append(report.QualityScores, TaskScore{
			TaskID:       tasks[i].ID,
			Title:        tasks[i].Title,
			QualityScore: score,
		})
		total += score
		if score < threshold {
			low++
		}
	}
	if len(tasks) > 0 {
		avg := total / float64(len(tasks))
		report.AverageQualityScore = &avg
	}

	if len(result.Errors) > 0 {
		report.Recommendations = append(report.Recommendations, "Fix validation errors before proceeding")
	}
	if len(result.Warnings) > 0 {
		report.Recommendations = append(report.Recommendations, "Address warnings to improve data quality")
	}
	if low > 0 {
		report.Recommendations = append(report.Recommendations,
			fmt.Sprintf("Improve %d tasks with quality scores below %g", low, threshold))
	}
	return report
}

// falsyPresent counts required fields that are present but carry no value
// (empty lists, zero progress).
func falsyPresent(task *types.Task) int {
	n := 0
	if task.Stakeholders != nil && len(task.Stakeholders) == 0 {
		n++
	}
	if task.Progress != nil && *task.Progress == 0 {
		n++
	}
	if task.Sources != nil && len(task.Sources) == 0 {
		n++
	}
	if task.Objectives != nil && len(task.Objectives) == 0 {
		n++
	}
	return n
}

func contextCompleteness(c *types.TaskContext) float64 {
	filled := 0
	for _, ok := range []bool{
		c.Region != "",
		c.RiskLevel != "",
		c.Urgency != "",
		len(c.Dependencies) > 0,
		c.EstimatedEffort != "",
	} {
		if ok {
			filled++
		}
	}
	return float64(filled) / 5
}

// TaskReport is the validation outcome and quality score of a single task.
type TaskReport struct {
	TaskID       string   `json:"task_id"`
	Valid        bool     `json:"is_valid"`
	QualityScore float64  `json:"quality_score"`
	ErrorCount   int      `json:"error_count"`
	WarningCount int      `json:"warning_count"`
	Errors       []string `json:"errors"`
	Warnings     []string `json:"warnings"`
}

// ReportTask validates and scores task. The score is rounded to one decimal.
func ReportTask(task *types.Task) TaskReport {
	result := ValidateTask(task)
	return TaskReport{
		TaskID:       task.ID,
		Valid:        result.Valid,
		QualityScore: RoundScore(QualityScore(task)),
		ErrorCount:   len(result.Errors),
		WarningCount: len(result.Warnings),
		Errors:       result.Errors,
		Warnings:     result.Warnings,
	}
}

// Summarize adds error and warning counts to result.
func Summarize(result Result) ValidationSummary {
	return ValidationSummary{
		Valid:        result.Valid,
		ErrorCount:   len(result.Errors),
		WarningCount: len(result.Warnings),
		Errors:       result.Errors,
		Warnings:     result.Warnings,
	}
}
