package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const (
	anthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion = "2023-06-01"
	anthropicModel   = "claude-3-5-haiku-latest"
)

// AnthropicProvider calls the Anthropic Messages API
type AnthropicProvider struct {
	baseURL string
	model   string
	header  http.Header
	client  *http.Client
	config  Config
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature float64            `json:"temperature,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func anthropicErrorMessage(body []byte) string {
	var e struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &e) != nil || e.Error.Message == "" {
		return ""
	}
	return e.Error.Type + ": " + e.Error.Message
}

// NewAnthropicProvider creates an Anthropic provider; an API key is required
func NewAnthropicProvider(config Config) (*AnthropicProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	header := http.Header{}
	header.Set("x-api-key", config.APIKey)
	header.Set("anthropic-version", anthropicVersion)

	return &AnthropicProvider{
		baseURL: strings.TrimSuffix(config.baseURLOr(anthropicBaseURL), "/"),
		model:   config.modelOr(anthropicModel),
		header:  header,
		client:  config.httpClient(),
		config:  config,
	}, nil
}

func (p *AnthropicProvider) Name() string  { return "anthropic" }
func (p *AnthropicProvider) Model() string { return p.model }

// Ping fetches the configured model, which checks the key and the model name
func (p *AnthropicProvider) Ping(ctx context.Context) error {
	return p.call(http.MethodGet, "/v1/models/"+p.model, nil).do(ctx, p.client, nil)
}

// Complete sends one user message with an optional system prompt
func (p *AnthropicProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	var resp anthropicResponse
	err := p.call(http.MethodPost, "/v1/messages", anthropicRequest{
		Model:       p.model,
		MaxTokens:   p.config.maxTokens(req.MaxTokens),
		System:      req.System,
		Messages:    []anthropicMessage{{Role: "user", Content: req.Prompt}},
		Temperature: req.Temperature,
	}).do(ctx, p.client, &resp)
	if err != nil {
		return nil, err
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return nil, fmt.Errorf("anthropic returned no text (stop reason %q)", resp.StopReason)
	}

	return &CompletionResponse{
		Text:       strings.TrimSpace(text.String()),
		Model:      resp.Model,
		TokensUsed: resp.Usage.InputTokens + resp.Usage.OutputTokens,
	}, nil
}

func (p *AnthropicProvider) call(method, path string, body any) jsonCall {
	return jsonCall{
		provider:   p.Name(),
		method:     method,
		url:        p.baseURL + path,
		header:     p.header,
		body:       body,
		errMessage: anthropicErrorMessage,
	}
}
