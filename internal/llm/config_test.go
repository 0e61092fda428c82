package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ProviderOpenAI, config.Provider)
	assert.Equal(t, "gpt-4o-mini", config.GetModel(TierLite))
	assert.Equal(t, "gpt-4", config.GetModel(TierStandard))
	assert.Equal(t, "gpt-4o", config.GetModel(TierAdvanced))
}

func TestDefaultGeminiConfig(t *testing.T) {
	config := DefaultGeminiConfig()

	assert.Equal(t, ProviderGemini, config.Provider)
	assert.Equal(t, "gemini-2.5-flash", config.GetModel(TierStandard))
}

func TestConfigFor(t *testing.T) {
	tests := []struct {
		name         string
		provider     string
		model        string
		wantProvider Provider
		wantStandard string
	}{
		{name: "gemini", provider: "Gemini", wantProvider: ProviderGemini, wantStandard: "gemini-2.5-flash"},
		{name: "openai with model", provider: "openai", model: "gpt-4o", wantProvider: ProviderOpenAI, wantStandard: "gpt-4o"},
		{name: "empty", provider: "", wantProvider: ProviderOpenAI, wantStandard: "gpt-4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := ConfigFor(tt.provider, tt.model)
			assert.Equal(t, tt.wantProvider, cfg.Provider)
			assert.Equal(t, tt.wantStandard, cfg.GetModel(TierStandard))
		})
	}
}

func TestGetModel_Fallback(t *testing.T) {
	config := &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite: "fallback-model",
		},
	}

	// Unknown tier should fallback to TierStandard, then TierLite
	assert.Equal(t, "fallback-model", config.GetModel("unknown"))
}

func TestGetModel_EmptyConfig(t *testing.T) {
	config := &Config{
		Provider: ProviderGemini,
		Models:   map[ModelTier]string{},
	}

	assert.Equal(t, "", config.GetModel(TierAdvanced))
}

func TestWithModel(t *testing.T) {
	config := DefaultGeminiConfig()
	newConfig := config.WithModel(TierAdvanced, "custom-model")

	// Original should be unchanged
	assert.Equal(t, "gemini-2.5-pro", config.GetModel(TierAdvanced))
	assert.Equal(t, "custom-model", newConfig.GetModel(TierAdvanced))
	assert.Equal(t, "gemini-2.5-flash-lite", newConfig.GetModel(TierLite))
}

func TestNewClient_Errors(t *testing.T) {
	_, err := NewClient(t.Context(), &Config{Provider: "anthropic"}, "key")
	assert.ErrorContains(t, err, "unsupported LLM provider")

	_, err = NewClient(t.Context(), DefaultOpenAIConfig(), "")
	assert.ErrorContains(t, err, "API key is required")

	_, err = NewClient(t.Context(), DefaultGeminiConfig(), "")
	assert.ErrorContains(t, err, "API key is required")
}
