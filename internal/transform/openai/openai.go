// Package openai is a transform backend over the OpenAI chat completions API.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"
)

// Provider completes prompts with one OpenAI model.
type Provider struct {
	client oai.Client
	model  string
}

type config struct {
	baseURL    string
	timeout    time.Duration
	maxRetries int
}

// Option is a functional option for Provider.
type Option func(*config)

// WithBaseURL overrides the API base URL, e.g. for OpenAI-compatible servers.
func WithBaseURL(url string) Option {
	return func(c *config) { c.baseURL = url }
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// WithMaxRetries overrides the SDK retry count.
func WithMaxRetries(n int) Option {
	return func(c *config) { c.maxRetries = n }
}

// New constructs a Provider.
func New(apiKey, model string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: apiKey must not be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("openai: model must not be empty")
	}

	cfg := &config{maxRetries: -1}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{Timeout: cfg.timeout}))
	}
	if cfg.maxRetries >= 0 {
		reqOpts = append(reqOpts, option.WithMaxRetries(cfg.maxRetries))
	}

	return &Provider{client: oai.NewClient(reqOpts...), model: model}, nil
}

func (p *Provider) Name() string { return "openai" }

// Complete sends one system and one user message and returns the first
// choice.
func (p *Provider) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, p.buildParams(system, user))
	if err != nil {
		return "", fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: empty choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *Provider) buildParams(system, user string) oai.ChatCompletionNewParams {
	var messages []oai.ChatCompletionMessageParamUnion
	if system != "" {
		messages = append(messages, oai.SystemMessage(system))
	}
	messages = append(messages, oai.UserMessage(user))

	return oai.ChatCompletionNewParams{
		Model:       shared.ChatModel(p.model),
		Messages:    messages,
		Temperature: param.NewOpt(0.2),
	}
}
