package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/research-analyst/internal/pipeline"
	"github.com/jonathan/research-analyst/internal/rendering"
)

// generateOptions are the generate command's flags.
type generateOptions struct {
	TaskID       string
	UseLLM       bool
	Enhanced     bool
	Aggregate    bool
	FormatType   string
	OutputPath   string
	ExportFormat string
	Preview      bool
}

var genOpts generateOptions

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a deliverable for a task",
	Long: `Run the generation pipeline for a task: load its sources, optionally aggregate
more, rank them, detect the format and render a Markdown deliverable. The
deliverable is stored and its content written to --out or stdout.`,
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringVarP(&genOpts.TaskID, "task", "t", "", "Task ID (required)")
	f.BoolVar(&genOpts.UseLLM, "llm", false, "Draft the deliverable with the configured LLM")
	f.BoolVar(&genOpts.Enhanced, "enhanced", true, "Rank every stored source and use the full prompt chain")
	f.BoolVar(&genOpts.Aggregate, "aggregate", false, "Aggregate news, RSS and web sources before ranking")
	f.StringVar(&genOpts.FormatType, "format", "", "Force a deliverable format instead of detecting one")
	f.StringVarP(&genOpts.OutputPath, "out", "o", "", "Write the deliverable to this file instead of stdout")
	f.StringVar(&genOpts.ExportFormat, "export", rendering.FormatMarkdown, "Output format: markdown or text")
	f.BoolVar(&genOpts.Preview, "preview", false, "Render the deliverable for the terminal")
	_ = generateCmd.MarkFlagRequired("task")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), cfg, appOptions{llm: genOpts.UseLLM, aggregate: genOpts.Aggregate})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	return generate(cmd.Context(), cmd.OutOrStdout(), a, genOpts)
}

func generate(ctx context.Context, out io.Writer, a *app, opts generateOptions) error {
	result, err := a.pipeline.Run(ctx, pipeline.Options{
		TaskID:            opts.TaskID,
		FormatType:        opts.FormatType,
		UseLLM:            opts.UseLLM,
		UseEnhancedEngine: opts.Enhanced,
		OnProgress: func(event pipeline.ProgressEvent) {
			a.logger.Info(event.Message, zap.String("step", event.Step))
		},
	})
	if err != nil {
		return fmt.Errorf("failed to generate deliverable: %w", err)
	}
	a.logger.Info("deliverable generated",
		zap.String("deliverable_id", result.Deliverable.ID),
		zap.String("format", result.FormatType),
		zap.String("method", result.GenerationMethod))

	if opts.Preview {
		rendered, err := rendering.Export(result.Content, rendering.FormatTerminal)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(out, rendered); err != nil {
			return err
		}
	}

	content, err := rendering.Export(result.Content, opts.ExportFormat)
	if err != nil {
		return err
	}
	if opts.OutputPath == "" {
		if opts.Preview {
			return nil
		}
		_, err := io.WriteString(out, content)
		return err
	}

	if dir := filepath.Dir(opts.OutputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(opts.OutputPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write deliverable: %w", err)
	}
	_, err = fmt.Fprintf(out, "Wrote %s deliverable to %s\n", result.FormatType, opts.OutputPath)
	return err
}
