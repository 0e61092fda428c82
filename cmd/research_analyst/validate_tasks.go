package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/research-analyst/internal/observability"
	"github.com/jonathan/research-analyst/internal/schemas"
	"github.com/jonathan/research-analyst/internal/validation"
)

// errTasksInvalid is returned when the task list still fails validation.
var errTasksInvalid = errors.New("task validation failed")

// validateOptions are the validate-tasks command's flags.
type validateOptions struct {
	File   string
	Fix    bool
	Report bool
}

var valOpts validateOptions

var validateTasksCmd = &cobra.Command{
	Use:   "validate-tasks",
	Short: "Validate stored tasks",
	Long: `Check every stored task for required fields, allowed values and duplicate IDs.
--fix repairs what it can and saves the result; --report adds quality scores.
--file checks a tasks JSON file against the task schema instead.`,
	RunE: runValidateTasks,
}

func init() {
	f := validateTasksCmd.Flags()
	f.StringVar(&valOpts.File, "file", "", "Validate a tasks JSON file against the task schema")
	f.BoolVar(&valOpts.Fix, "fix", false, "Repair common problems and save the tasks")
	f.BoolVar(&valOpts.Report, "report", false, "Print the quality report")
	rootCmd.AddCommand(validateTasksCmd)
}

func runValidateTasks(cmd *cobra.Command, _ []string) error {
	if valOpts.File != "" {
		return validateFile(cmd.OutOrStdout(), valOpts.File)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), cfg, appOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	return validateTasks(cmd.Context(), cmd.OutOrStdout(), a, valOpts)
}

// validateFile checks a JSON array of tasks against the task schema.
func validateFile(out io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	err = schemas.ValidateCollection(schemas.KindTask, data)
	var ve *schemas.ValidationError
	if errors.As(err, &ve) {
		for _, msg := range ve.Messages() {
			fmt.Fprintf(out, "  - %s\n", msg)
		}
		return errTasksInvalid
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Validation passed: %s\n", path)
	return nil
}

func validateTasks(ctx context.Context, out io.Writer, a *app, opts validateOptions) error {
	tasks, err := a.store.ListTasks(ctx)
	if err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}
	printer := observability.NewPrinter(out)

	if opts.Fix {
		fixed, changes := validation.Fix(tasks)
		if len(changes) > 0 {
			if err := a.store.ReplaceTasks(ctx, fixed); err != nil {
				return fmt.Errorf("failed to save fixed tasks: %w", err)
			}
		}
		a.logger.Info("tasks fixed", zap.Int("changes", len(changes)))
		for _, change := range changes {
			fmt.Fprintf(out, "fixed: %s\n", change)
		}
		tasks = fixed
	}

	if opts.Report {
		report := validation.QualityReport(tasks, a.cfg.QualityThreshold)
		printer.PrintQualityReport(&report)
	}

	result := validation.ValidateAll(tasks)
	printer.PrintValidation(result)
	if !result.Valid {
		return errTasksInvalid
	}
	return nil
}
