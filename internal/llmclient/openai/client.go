package openai

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/codegraph-ai/agentic-core/internal/domain"
	"github.com/codegraph-ai/agentic-core/internal/llmclient"
	openailib "github.com/sashabaranov/go-openai"
)

// Client implements llmclient.Client over any OpenAI-compatible
// chat-completions endpoint: one non-streaming call per turn, with a
// bounded retry-with-backoff loop on transient failures. A batch call per
// reason-act turn is the simplest adapter that satisfies the contract;
// nothing downstream depends on streaming.
type Client struct {
	client *openailib.Client
	config *Config
}

// NewClient creates a Client from an explicit Config.
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	clientConfig := openailib.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{Timeout: time.Duration(config.HTTPTimeout) * time.Second}

	return &Client{
		client: openailib.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// NewClientFromEnv creates a Client using environment variables.
func NewClientFromEnv() (*Client, error) {
	cfg, err := NewConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}
	return NewClient(cfg)
}

// Generate implements llmclient.Client.
func (c *Client) Generate(ctx context.Context, system string, history []domain.Message, options llmclient.Options) (llmclient.Result, error) {
	msgs := make([]openailib.ChatCompletionMessage, 0, len(history)+1)
	msgs = append(msgs, openailib.ChatCompletionMessage{Role: openailib.ChatMessageRoleSystem, Content: system})
	for _, m := range history {
		msgs = append(msgs, openailib.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	req := openailib.ChatCompletionRequest{
		Model:       c.config.Model,
		Messages:    msgs,
		Temperature: options.Temperature,
	}
	if options.MaxOutputTokens > 0 {
		req.MaxTokens = options.MaxOutputTokens
	}

	callCtx := ctx
	var cancel context.CancelFunc
	if options.TimeoutMs > 0 {
		callCtx, cancel = context.WithTimeout(ctx, time.Duration(options.TimeoutMs)*time.Millisecond)
		defer cancel()
	}

	var resp openailib.ChatCompletionResponse
	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		resp, lastErr = c.client.CreateChatCompletion(callCtx, req)
		if lastErr == nil {
			break
		}
		if attempt < c.config.MaxRetries {
			wait := time.Duration(attempt+1) * time.Second
			log.Printf("[LLM] Retry %d/%d after %v, error: %v", attempt+1, c.config.MaxRetries, wait, lastErr)
			select {
			case <-time.After(wait):
			case <-callCtx.Done():
				return llmclient.Result{}, callCtx.Err()
			}
		}
	}
	if lastErr != nil {
		return llmclient.Result{}, fmt.Errorf("LLM call failed after %d retries: %w", c.config.MaxRetries, lastErr)
	}
	if len(resp.Choices) == 0 {
		return llmclient.Result{}, fmt.Errorf("no choices returned from LLM")
	}

	return llmclient.Result{
		Text:      resp.Choices[0].Message.Content,
		TokensIn:  resp.Usage.PromptTokens,
		TokensOut: resp.Usage.CompletionTokens,
	}, nil
}

// GetName returns the provider name/identifier, for log lines and progress
// events.
func (c *Client) GetName() string {
	return fmt.Sprintf("openai-compatible (%s)", c.config.Model)
}
