package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/research-analyst/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the analyst tools over MCP stdio",
	Long: `Serve detect_format, rank_sources, validate_task and search as MCP tools on
stdin/stdout. Logs go to stderr.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), cfg, appOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	return newMCPServer(a).ServeStdio()
}

func newMCPServer(a *app) *mcpserver.Server {
	return mcpserver.New(mcpserver.Deps{
		Store:      a.store,
		Classifier: a.classifier,
		Ranker:     a.ranker,
		Logger:     a.logger,
	}, version)
}
