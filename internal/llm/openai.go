package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider uses the Chat Completions API through go-openai. BaseURL
// may point at any compatible server.
type OpenAIProvider struct {
	client *openai.Client
	model  string
	config Config
}

// NewOpenAIProvider creates an OpenAI provider; an API key is required
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	clientConfig.BaseURL = config.baseURLOr(clientConfig.BaseURL)
	clientConfig.HTTPClient = config.httpClient()

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		model:  config.modelOr(openai.GPT4oMini),
		config: config,
	}, nil
}

func (p *OpenAIProvider) Name() string  { return "openai" }
func (p *OpenAIProvider) Model() string { return p.model }

// Ping retrieves the configured model
func (p *OpenAIProvider) Ping(ctx context.Context) error {
	if _, err := p.client.GetModel(ctx, p.model); err != nil {
		return p.wrap(err)
	}
	return nil
}

// Complete sends the system and user messages in one chat completion
func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt})

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    messages,
		MaxTokens:   p.config.maxTokens(req.MaxTokens),
		Temperature: float32(req.Temperature),
	})
	if err != nil {
		return nil, p.wrap(err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return nil, fmt.Errorf("openai returned no content")
	}

	return &CompletionResponse{
		Text:       strings.TrimSpace(resp.Choices[0].Message.Content),
		Model:      resp.Model,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}

// wrap converts go-openai status errors to APIError
func (p *OpenAIProvider) wrap(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &APIError{Provider: p.Name(), StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &APIError{Provider: p.Name(), StatusCode: reqErr.HTTPStatusCode, Message: reqErr.Error()}
	}
	return fmt.Errorf("openai request: %w", err)
}
