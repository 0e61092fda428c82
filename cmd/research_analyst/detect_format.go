package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonathan/research-analyst/internal/observability"
)

var (
	detectTaskID   string
	detectOverride string
	detectJSON     bool
)

var detectFormatCmd = &cobra.Command{
	Use:   "detect-format",
	Short: "Detect the deliverable format for a task",
	Long:  `Classify a stored task into a deliverable format using the format rules and print the detection with its reasoning.`,
	RunE:  runDetectFormat,
}

func init() {
	detectFormatCmd.Flags().StringVarP(&detectTaskID, "task", "t", "", "Task ID (required)")
	detectFormatCmd.Flags().StringVar(&detectOverride, "override", "", "Force this format instead of detecting one")
	detectFormatCmd.Flags().BoolVar(&detectJSON, "json", false, "Print JSON instead of a table")
	_ = detectFormatCmd.MarkFlagRequired("task")
	rootCmd.AddCommand(detectFormatCmd)
}

func runDetectFormat(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), cfg, appOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	return detectFormat(cmd.Context(), cmd.OutOrStdout(), a, detectTaskID, detectOverride, detectJSON)
}

func detectFormat(ctx context.Context, out io.Writer, a *app, taskID, override string, asJSON bool) error {
	task, err := a.store.GetTask(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to load task: %w", err)
	}
	detection := a.classifier.Detect(task, override)
	if asJSON {
		return writeJSON(out, detection)
	}
	observability.NewPrinter(out).PrintDetection(detection)
	return nil
}
