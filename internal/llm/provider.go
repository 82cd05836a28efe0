// Package llm drives optional generative models that write revision bullets.
//
// Three backends are supported: OpenAI (go-openai), Anthropic Messages and
// local Ollama models. A nil Provider means generation is disabled and the
// synthesis falls back to extractive bullets.
package llm

import (
	"context"
	"net/http"
	"time"

	"github.com/ppiankov/savoir/internal/util"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultMaxTokens = 320
	defaultMaxInput  = 8192
)

// Provider completes a prompt with a single model
type Provider interface {
	// Name returns the backend name
	Name() string

	// Model returns the model used when completing
	Model() string

	// Complete sends a single prompt and returns the generated text
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// Ping verifies credentials and that the model can be used
	Ping(ctx context.Context) error
}

// CompletionRequest is one system + user prompt exchange
type CompletionRequest struct {
	System      string
	Prompt      string
	MaxTokens   int     // Zero uses Config.MaxTokens
	Temperature float64 // Zero uses the backend default
}

// CompletionResponse is the trimmed generated text
type CompletionResponse struct {
	Text       string
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	Provider       string // openai, anthropic, ollama, "" (disabled)
	Model          string
	APIKey         string
	BaseURL        string
	Timeout        int // seconds
	MaxTokens      int
	MaxInputTokens int

	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

func (c Config) timeout() time.Duration {
	if c.Timeout > 0 {
		return time.Duration(c.Timeout) * time.Second
	}
	return defaultTimeout
}

func (c Config) maxTokens(requested int) int {
	switch {
	case requested > 0:
		return requested
	case c.MaxTokens > 0:
		return c.MaxTokens
	}
	return defaultMaxTokens
}

func (c Config) maxInputTokens() int {
	if c.MaxInputTokens > 0 {
		return c.MaxInputTokens
	}
	return defaultMaxInput
}

func (c Config) modelOr(fallback string) string {
	if c.Model != "" {
		return c.Model
	}
	return fallback
}

func (c Config) baseURLOr(fallback string) string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return fallback
}

func (c Config) httpClient() *http.Client {
	return util.NewHTTPClient(c.timeout(), c.HTTPProxy, c.HTTPSProxy, c.NoProxy)
}
