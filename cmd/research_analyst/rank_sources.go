package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/research-analyst/internal/observability"
)

var (
	rankTaskID string
	rankLimit  int
	rankJSON   bool
)

var rankSourcesCmd = &cobra.Command{
	Use:   "rank-sources",
	Short: "Rank stored sources against a task",
	Long:  `Score every stored source against a task by keyword overlap, recency and credibility and print the best matches.`,
	RunE:  runRankSources,
}

func init() {
	rankSourcesCmd.Flags().StringVarP(&rankTaskID, "task", "t", "", "Task ID (required)")
	rankSourcesCmd.Flags().IntVarP(&rankLimit, "limit", "n", 10, "Number of sources to print")
	rankSourcesCmd.Flags().BoolVar(&rankJSON, "json", false, "Print JSON instead of a table")
	_ = rankSourcesCmd.MarkFlagRequired("task")
	rootCmd.AddCommand(rankSourcesCmd)
}

func runRankSources(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), cfg, appOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	return rankSources(cmd.Context(), cmd.OutOrStdout(), a, rankTaskID, rankLimit, rankJSON)
}

// rankSources prints the top limit sources for taskID.
func rankSources(ctx context.Context, out io.Writer, a *app, taskID string, limit int, asJSON bool) error {
	task, err := a.store.GetTask(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to load task: %w", err)
	}
	sources, err := a.store.ListSources(ctx)
	if err != nil {
		return fmt.Errorf("failed to load sources: %w", err)
	}

	ranked := a.ranker.Rank(task, sources)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	a.logger.Debug("ranked sources",
		zap.String("task_id", task.ID),
		zap.Int("candidates", len(sources)),
		zap.Int("printed", len(ranked)))

	if asJSON {
		return writeJSON(out, ranked)
	}
	observability.NewPrinter(out).PrintRanking(task, ranked)
	return nil
}

// writeJSON writes v as indented JSON followed by a newline.
func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
