package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const ollamaBaseURL = "http://localhost:11434"

// OllamaProvider talks to a local Ollama server through its chat endpoint
type OllamaProvider struct {
	baseURL string
	model   string
	client  *http.Client
	config  Config
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  ollamaOptions   `json:"options"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
	NumCtx      int     `json:"num_ctx,omitempty"`
}

type ollamaChatResponse struct {
	Model           string        `json:"model"`
	Message         ollamaMessage `json:"message"`
	Done            bool          `json:"done"`
	PromptEvalCount int           `json:"prompt_eval_count"`
	EvalCount       int           `json:"eval_count"`
}

type ollamaTags struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

func ollamaErrorMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) != nil {
		return ""
	}
	return e.Error
}

// NewOllamaProvider creates an Ollama provider. The model has no default:
// local installations differ too much.
func NewOllamaProvider(config Config) (*OllamaProvider, error) {
	return &OllamaProvider{
		baseURL: strings.TrimSuffix(config.baseURLOr(ollamaBaseURL), "/"),
		model:   config.Model,
		client:  config.httpClient(),
		config:  config,
	}, nil
}

func (p *OllamaProvider) Name() string  { return "ollama" }
func (p *OllamaProvider) Model() string { return p.model }

// Ping checks that the server answers and that the model has been pulled
func (p *OllamaProvider) Ping(ctx context.Context) error {
	if p.model == "" {
		return errMissingOllamaModel
	}

	var tags ollamaTags
	if err := p.call(http.MethodGet, "/api/tags", nil).do(ctx, p.client, &tags); err != nil {
		return fmt.Errorf("reach ollama at %s: %w", p.baseURL, err)
	}
	for _, m := range tags.Models {
		if m.Name == p.model || m.Name == p.model+":latest" {
			return nil
		}
	}
	return fmt.Errorf("model %q is not pulled (run: ollama pull %s)", p.model, p.model)
}

var errMissingOllamaModel = fmt.Errorf("ollama model must be specified (e.g. llama3.1:8b, mistral)")

// Complete runs a non-streaming chat. The context window is sized from
// MaxInputTokens so long corpora are not silently cut by the server default.
func (p *OllamaProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if p.model == "" {
		return nil, errMissingOllamaModel
	}

	messages := make([]ollamaMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, ollamaMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, ollamaMessage{Role: "user", Content: req.Prompt})

	var resp ollamaChatResponse
	err := p.call(http.MethodPost, "/api/chat", ollamaChatRequest{
		Model:    p.model,
		Messages: messages,
		Options: ollamaOptions{
			Temperature: req.Temperature,
			NumPredict:  p.config.maxTokens(req.MaxTokens),
			NumCtx:      p.config.maxInputTokens(),
		},
	}).do(ctx, p.client, &resp)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(resp.Message.Content)
	if text == "" {
		return nil, fmt.Errorf("ollama returned an empty message")
	}

	// Some models report no counts
	used := resp.PromptEvalCount + resp.EvalCount
	if used == 0 {
		used = EstimateTokens(req.System+" "+req.Prompt) + EstimateTokens(text)
	}

	return &CompletionResponse{Text: text, Model: resp.Model, TokensUsed: used}, nil
}

func (p *OllamaProvider) call(method, path string, body any) jsonCall {
	return jsonCall{
		provider:   p.Name(),
		method:     method,
		url:        p.baseURL + path,
		body:       body,
		errMessage: ollamaErrorMessage,
	}
}
