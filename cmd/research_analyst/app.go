package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/jonathan/research-analyst/internal/aggregate"
	"github.com/jonathan/research-analyst/internal/config"
	"github.com/jonathan/research-analyst/internal/db"
	"github.com/jonathan/research-analyst/internal/deliverables"
	"github.com/jonathan/research-analyst/internal/formats"
	"github.com/jonathan/research-analyst/internal/llm"
	"github.com/jonathan/research-analyst/internal/pipeline"
	"github.com/jonathan/research-analyst/internal/ranking"
	"github.com/jonathan/research-analyst/internal/store"
	"github.com/jonathan/research-analyst/internal/usage"
)

// errNoAPIKey is returned when LLM generation is requested without a key
// for the configured provider.
var errNoAPIKey = errors.New("no API key configured for the LLM provider")

// app holds the components shared by the commands.
type app struct {
	cfg        config.Config
	store      store.Store
	classifier *formats.Classifier
	ranker     *ranking.Ranker
	pipeline   *pipeline.Pipeline
	llmClient  llm.Client
	logger     *zap.Logger
}

// appOptions selects the optional components a command needs.
type appOptions struct {
	llm       bool // Fail without an LLM client
	tryLLM    bool // Attach an LLM client when a key is configured
	aggregate bool
}

// loadConfig reads --config, applies the environment and --data-dir.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	cfg.Verbose = cfg.Verbose || verbose
	return cfg, nil
}

// newApp wires the store, classifier, ranker and pipeline from cfg.
func newApp(ctx context.Context, cfg config.Config, opts appOptions) (*app, error) {
	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a, err := newAppWithStore(cfg, st)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	if opts.llm || opts.tryLLM {
		client, err := newLLMClient(ctx, cfg)
		switch {
		case errors.Is(err, errNoAPIKey) && !opts.llm:
			logger.Debug("no LLM API key configured, using the template engine")
		case err != nil:
			_ = a.Close()
			return nil, err
		default:
			a.llmClient = client
			ledger := usage.NewLedger(usagePath(cfg), usage.Limits{
				DailyLimitUSD:   cfg.DailyLimitUSD,
				CostPer1KTokens: cfg.CostPer1KTokens,
			}, logger)
			a.pipeline.LLM = deliverables.NewLLMGenerator(client, ledger, logger)
		}
	}
	if opts.aggregate {
		a.pipeline.Aggregator = aggregate.FromConfig(&cfg, a.ranker, logger)
	}
	return a, nil
}

// newAppWithStore builds the components that need no network access.
func newAppWithStore(cfg config.Config, st store.Store) (*app, error) {
	rules := formats.DefaultRules()
	if cfg.RulesFile != "" {
		loaded, err := formats.LoadRules(cfg.RulesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load format rules: %w", err)
		}
		rules = loaded
	}
	classifier := formats.NewClassifier(rules, formats.Weights{
		Trigger:     cfg.Weights.Trigger,
		Stakeholder: cfg.Weights.Stakeholder,
		Urgency:     cfg.Weights.Urgency,
		Category:    cfg.Weights.Category,
		Divisor:     cfg.Weights.Divisor,
	}, logger)
	ranker := ranking.NewRanker(ranking.RecencyConfig{
		RecentDays:  cfg.Recency.RecentDays,
		RecentBoost: cfg.Recency.RecentBoost,
		FreshDays:   cfg.Recency.FreshDays,
		FreshBoost:  cfg.Recency.FreshBoost,
	})
	engine := deliverables.NewEngine(classifier, nil, logger)

	return &app{
		cfg:        cfg,
		store:      st,
		classifier: classifier,
		ranker:     ranker,
		pipeline:   pipeline.New(st, ranker, engine, logger),
		logger:     logger,
	}, nil
}

// Close releases the store and the LLM client.
func (a *app) Close() error {
	var errs []error
	if a.llmClient != nil {
		errs = append(errs, a.llmClient.Close())
	}
	errs = append(errs, a.store.Close())
	return errors.Join(errs...)
}

// openStore connects to PostgreSQL when a database URL is configured and
// falls back to the JSON file store in the data directory.
func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	if cfg.DatabaseURL == "" {
		logger.Debug("using file store", zap.String("data_dir", cfg.DataDir))
		return store.NewFileStore(cfg.DataDir), nil
	}
	ds, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := ds.Migrate(ctx); err != nil {
		_ = ds.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	logger.Debug("using database store")
	return ds, nil
}

// newLLMClient creates the configured provider's client.
func newLLMClient(ctx context.Context, cfg config.Config) (llm.Client, error) {
	llmCfg := llm.ConfigFor(cfg.LLMProvider, cfg.Model)
	apiKey := cfg.OpenAIAPIKey
	if llmCfg.Provider == llm.ProviderGemini {
		apiKey = cfg.APIKey
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s", errNoAPIKey, llmCfg.Provider)
	}
	client, err := llm.NewClient(ctx, llmCfg, apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return client, nil
}

// usagePath resolves the usage file against the data directory.
func usagePath(cfg config.Config) string {
	if filepath.IsAbs(cfg.UsageFile) {
		return cfg.UsageFile
	}
	return filepath.Join(cfg.DataDir, cfg.UsageFile)
}
