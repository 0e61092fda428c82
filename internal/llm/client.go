package llm

import (
	"context"
	"fmt"
)

// Request is a single chat completion request.
type Request struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
	Tier        ModelTier
}

// Response is the text and token usage returned by a provider.
type Response struct {
	Text        string
	TotalTokens int // Zero when the provider did not report usage
	Model       string
}

// Client is an abstraction over LLM providers
type Client interface {
	// GenerateContent generates text content using the specified model tier
	GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// Complete runs a chat completion with a system message and sampling limits
	Complete(ctx context.Context, req Request) (*Response, error)
	// GetModel returns the provider model name for a tier
	GetModel(tier ModelTier) string
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a new LLM client based on configuration
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, config, apiKey)
	case ProviderOpenAI:
		return NewOpenAIClient(config, apiKey)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %q", config.Provider)
	}
}
