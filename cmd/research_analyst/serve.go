package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/research-analyst/internal/config"
	"github.com/jonathan/research-analyst/internal/server"
)

var (
	servePort      int
	serveAggregate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes the task, source and deliverable endpoints,
streaming generation over SSE and the MCP tools under /mcp/.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from config or PORT, 8080)")
	serveCmd.Flags().BoolVar(&serveAggregate, "aggregate", true, "Aggregate news, RSS and web sources for enhanced generation")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return fmt.Errorf("failed to load JWT config: %w", err)
	}

	a, err := newApp(ctx, cfg, appOptions{tryLLM: true, aggregate: serveAggregate})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	srv, err := server.New(server.Config{
		Port:             cfg.Port,
		Store:            a.store,
		Pipeline:         a.pipeline,
		Classifier:       a.classifier,
		QualityThreshold: cfg.QualityThreshold,
		JWT:              jwtConfig,
		Logger:           logger,
		Version:          version,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start(ctx)
}
