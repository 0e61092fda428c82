// Package config provides configuration loading and validation for the CLI
// and the HTTP server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Default values applied by Defaults and MergeWithDefaults.
const (
	DefaultDataDir          = "data"
	DefaultPort             = 8080
	DefaultLLMProvider      = "openai"
	DefaultNewsAPIBaseURL   = "https://newsapi.org/v2"
	DefaultDailyLimitUSD    = 5.0
	DefaultCostPer1KTokens  = 0.03
	DefaultQualityThreshold = 70
	DefaultUsageFile        = "llm_usage.json"
)

// DefaultRSSFeeds are polled when no feeds are configured.
var DefaultRSSFeeds = []string{
	"https://feeds.bbci.co.uk/news/business/rss.xml",
	"https://www.ft.com/rss/home",
	"https://feeds.reuters.com/reuters/businessNews",
}

// InternalSource is an internal note or document offered to every task.
type InternalSource struct {
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Content     string   `json:"content,omitempty" yaml:"content"`
	URL         string   `json:"url,omitempty" yaml:"url"`
	Author      string   `json:"author,omitempty" yaml:"author"`
	Channel     string   `json:"channel,omitempty" yaml:"channel"` // e.g. slack, sharepoint
	PublishedAt string   `json:"published_at,omitempty" yaml:"published_at"`
	Tags        []string `json:"tags,omitempty" yaml:"tags"`
}

// Recency holds the recency boost tunables for source ranking.
type Recency struct {
	RecentDays  int     `json:"recent_days,omitempty" yaml:"recent_days"`
	RecentBoost float64 `json:"recent_boost,omitempty" yaml:"recent_boost"`
	FreshDays   int     `json:"fresh_days,omitempty" yaml:"fresh_days"`
	FreshBoost  float64 `json:"fresh_boost,omitempty" yaml:"fresh_boost"`
}

// ClassifierWeights holds the format classifier scoring weights.
type ClassifierWeights struct {
	Trigger     float64 `json:"trigger,omitempty" yaml:"trigger"`
	Stakeholder float64 `json:"stakeholder,omitempty" yaml:"stakeholder"`
	Urgency     float64 `json:"urgency,omitempty" yaml:"urgency"`
	Category    float64 `json:"category,omitempty" yaml:"category"`
	Divisor     float64 `json:"divisor,omitempty" yaml:"divisor"`
}

// Config represents the application configuration. It can be loaded from a
// YAML or JSON file and overridden from the environment. Zero values are
// filled by MergeWithDefaults.
type Config struct {
	// Storage
	DataDir     string `json:"data_dir,omitempty" yaml:"data_dir"`
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url"` // file store is used when empty

	// Server
	Port int `json:"port,omitempty" yaml:"port"`

	// LLM
	LLMProvider     string  `json:"llm_provider,omitempty" yaml:"llm_provider"` // openai or gemini
	APIKey          string  `json:"api_key,omitempty" yaml:"api_key"`           // Gemini API key
	OpenAIAPIKey    string  `json:"openai_api_key,omitempty" yaml:"openai_api_key"`
	Model           string  `json:"model,omitempty" yaml:"model"`
	DailyLimitUSD   float64 `json:"daily_limit_usd,omitempty" yaml:"daily_limit_usd"`
	CostPer1KTokens float64 `json:"cost_per_1k_tokens,omitempty" yaml:"cost_per_1k_tokens"`
	UsageFile       string  `json:"usage_file,omitempty" yaml:"usage_file"`

	// Aggregation
	NewsAPIKey      string           `json:"news_api_key,omitempty" yaml:"news_api_key"`
	NewsAPIBaseURL  string           `json:"news_api_base_url,omitempty" yaml:"news_api_base_url"`
	RSSFeeds        []string         `json:"rss_feeds,omitempty" yaml:"rss_feeds"`
	SeedURLs        []string         `json:"seed_urls,omitempty" yaml:"seed_urls"`
	UseBrowser      bool             `json:"use_browser,omitempty" yaml:"use_browser"`
	InternalSources []InternalSource `json:"internal_sources,omitempty" yaml:"internal_sources"`

	// Ranking and classification
	RulesFile        string            `json:"rules_file,omitempty" yaml:"rules_file"`
	Recency          Recency           `json:"recency,omitempty" yaml:"recency"`
	Weights          ClassifierWeights `json:"weights,omitempty" yaml:"weights"`
	QualityThreshold float64           `json:"quality_threshold,omitempty" yaml:"quality_threshold"`

	Verbose bool `json:"verbose,omitempty" yaml:"verbose"`
}

// LoadConfig loads configuration from a YAML or JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	// JSON documents are valid YAML, so one decoder serves both.
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		DataDir:         DefaultDataDir,
		Port:            DefaultPort,
		LLMProvider:     DefaultLLMProvider,
		DailyLimitUSD:   DefaultDailyLimitUSD,
		CostPer1KTokens: DefaultCostPer1KTokens,
		UsageFile:       DefaultUsageFile,
		NewsAPIBaseURL:  DefaultNewsAPIBaseURL,
		RSSFeeds:        append([]string(nil), DefaultRSSFeeds...),
		Recency: Recency{
			RecentDays:  7,
			RecentBoost: 1.2,
			FreshDays:   30,
			FreshBoost:  1.1,
		},
		Weights: ClassifierWeights{
			Trigger:     3,
			Stakeholder: 2,
			Urgency:     1,
			Category:    2,
			Divisor:     10,
		},
		QualityThreshold: DefaultQualityThreshold,
	}
}

// ApplyEnv overrides configuration values from environment variables.
// Unset variables leave the current value untouched.
func (c *Config) ApplyEnv() error {
	setString(&c.DataDir, "DATA_DIR")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.LLMProvider, "LLM_PROVIDER")
	setString(&c.APIKey, "GEMINI_API_KEY")
	setString(&c.OpenAIAPIKey, "OPENAI_API_KEY")
	setString(&c.Model, "LLM_MODEL")
	setString(&c.NewsAPIKey, "NEWS_API_KEY")
	setString(&c.NewsAPIBaseURL, "NEWS_API_BASE_URL")
	setString(&c.RulesFile, "FORMAT_RULES_FILE")
	setString(&c.UsageFile, "LLM_USAGE_FILE")

	if v := os.Getenv("RSS_FEEDS"); v != "" {
		c.RSSFeeds = splitList(v)
	}
	if v := os.Getenv("SEED_URLS"); v != "" {
		c.SeedURLs = splitList(v)
	}

	if err := setInt(&c.Port, "PORT"); err != nil {
		return err
	}
	if err := setFloat(&c.DailyLimitUSD, "DAILY_LIMIT_USD"); err != nil {
		return err
	}
	if err := setFloat(&c.CostPer1KTokens, "COST_PER_1K_TOKENS"); err != nil {
		return err
	}
	if err := setFloat(&c.QualityThreshold, "QUALITY_THRESHOLD"); err != nil {
		return err
	}
	return nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	switch strings.ToLower(c.LLMProvider) {
	case "", "openai", "gemini":
	default:
		return fmt.Errorf("config error: unknown 'llm_provider' %q", c.LLMProvider)
	}
	if c.DailyLimitUSD < 0 {
		return fmt.Errorf("config error: 'daily_limit_usd' must be non-negative")
	}
	if c.CostPer1KTokens < 0 {
		return fmt.Errorf("config error: 'cost_per_1k_tokens' must be non-negative")
	}
	if c.QualityThreshold < 0 || c.QualityThreshold > 100 {
		return fmt.Errorf("config error: 'quality_threshold' must be between 0 and 100")
	}
	if c.Recency.RecentDays < 0 || c.Recency.FreshDays < 0 {
		return fmt.Errorf("config error: recency windows must be non-negative")
	}
	if c.Recency.RecentBoost < 0 || c.Recency.FreshBoost < 0 {
		return fmt.Errorf("config error: recency boosts must be non-negative")
	}
	if c.Weights.Divisor < 0 {
		return fmt.Errorf("config error: 'weights.divisor' must be non-negative")
	}

	if c.RulesFile != "" {
		if _, err := os.Stat(c.RulesFile); os.IsNotExist(err) {
			return fmt.Errorf("config error: rules file not found: %s", c.RulesFile)
		}
	}
	return nil
}

// MergeWithDefaults returns a new Config with zero fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.DataDir == "" {
		result.DataDir = defaults.DataDir
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.LLMProvider == "" {
		result.LLMProvider = defaults.LLMProvider
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.OpenAIAPIKey == "" {
		result.OpenAIAPIKey = defaults.OpenAIAPIKey
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.UsageFile == "" {
		result.UsageFile = defaults.UsageFile
	}
	if result.NewsAPIKey == "" {
		result.NewsAPIKey = defaults.NewsAPIKey
	}
	if result.NewsAPIBaseURL == "" {
		result.NewsAPIBaseURL = defaults.NewsAPIBaseURL
	}
	if result.RulesFile == "" {
		result.RulesFile = defaults.RulesFile
	}

	// Lists
	if len(result.RSSFeeds) == 0 {
		result.RSSFeeds = defaults.RSSFeeds
	}
	if len(result.SeedURLs) == 0 {
		result.SeedURLs = defaults.SeedURLs
	}
	if len(result.InternalSources) == 0 {
		result.InternalSources = defaults.InternalSources
	}

	// Numbers: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.DailyLimitUSD == 0 {
		result.DailyLimitUSD = defaults.DailyLimitUSD
	}
	if result.CostPer1KTokens == 0 {
		result.CostPer1KTokens = defaults.CostPer1KTokens
	}
	if result.QualityThreshold == 0 {
		result.QualityThreshold = defaults.QualityThreshold
	}

	if result.Recency.RecentDays == 0 {
		result.Recency.RecentDays = defaults.Recency.RecentDays
	}
	if result.Recency.RecentBoost == 0 {
		result.Recency.RecentBoost = defaults.Recency.RecentBoost
	}
	if result.Recency.FreshDays == 0 {
		result.Recency.FreshDays = defaults.Recency.FreshDays
	}
	if result.Recency.FreshBoost == 0 {
		result.Recency.FreshBoost = defaults.Recency.FreshBoost
	}

	if result.Weights.Trigger == 0 {
		result.Weights.Trigger = defaults.Weights.Trigger
	}
	if result.Weights.Stakeholder == 0 {
		result.Weights.Stakeholder = defaults.Weights.Stakeholder
	}
	if result.Weights.Urgency == 0 {
		result.Weights.Urgency = defaults.Weights.Urgency
	}
	if result.Weights.Category == 0 {
		result.Weights.Category = defaults.Weights.Category
	}
	if result.Weights.Divisor == 0 {
		result.Weights.Divisor = defaults.Weights.Divisor
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// Load reads path (when non-empty), applies environment overrides and
// fills remaining fields from Defaults.
func Load(path string) (Config, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return Config{}, err
	}
	merged := cfg.MergeWithDefaults(Defaults())
	if err := merged.Validate(); err != nil {
		return Config{}, err
	}
	return merged, nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setFloat(dst *float64, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = f
	return nil
}

func setInt(dst *int, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
