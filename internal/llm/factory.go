package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/savoir/internal/model"
)

// NewProvider builds the configured backend. An empty provider name (or
// "none") disables generation and returns a nil Provider.
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(config.Provider)) {
	case "", "none":
		return nil, nil
	case "openai":
		return NewOpenAIProvider(config)
	case "anthropic", "claude":
		return NewAnthropicProvider(config)
	case "ollama":
		return NewOllamaProvider(config)
	}
	return nil, fmt.Errorf("unknown LLM provider %q (supported: openai, anthropic, ollama)", config.Provider)
}

// ConfigFromModel combines the llm and http sections of the application config
func ConfigFromModel(llmConfig model.LLMConfig, httpConfig model.HTTPConfig) Config {
	return Config{
		Provider:       llmConfig.Provider,
		Model:          llmConfig.Model,
		APIKey:         llmConfig.APIKey,
		BaseURL:        llmConfig.BaseURL,
		Timeout:        llmConfig.Timeout,
		MaxTokens:      llmConfig.MaxTokens,
		MaxInputTokens: llmConfig.MaxInputTokens,
		HTTPProxy:      httpConfig.HTTPProxy,
		HTTPSProxy:     httpConfig.HTTPSProxy,
		NoProxy:        httpConfig.NoProxy,
	}
}
