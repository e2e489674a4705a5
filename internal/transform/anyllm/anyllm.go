// Package anyllm is a transform backend over
// github.com/mozilla-ai/any-llm-go, covering Anthropic, Gemini, Ollama,
// DeepSeek, Mistral and Groq (and OpenAI).
package anyllm

import (
	"context"
	"fmt"
	"strings"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/mozilla-ai/any-llm-go/providers/anthropic"
	"github.com/mozilla-ai/any-llm-go/providers/deepseek"
	"github.com/mozilla-ai/any-llm-go/providers/gemini"
	"github.com/mozilla-ai/any-llm-go/providers/groq"
	"github.com/mozilla-ai/any-llm-go/providers/mistral"
	"github.com/mozilla-ai/any-llm-go/providers/ollama"
	anyllmoai "github.com/mozilla-ai/any-llm-go/providers/openai"
)

// Provider completes prompts through an any-llm-go backend.
type Provider struct {
	name    string
	backend anyllmlib.Provider
	model   string
}

// New creates a Provider for providerName. Without an API key option the
// backend reads its usual environment variable (ANTHROPIC_API_KEY, ...).
func New(providerName, model string, opts ...anyllmlib.Option) (*Provider, error) {
	if providerName == "" {
		return nil, fmt.Errorf("anyllm: providerName must not be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("anyllm: model must not be empty")
	}
	backend, err := createBackend(providerName, opts...)
	if err != nil {
		return nil, fmt.Errorf("anyllm: create %q backend: %w", providerName, err)
	}
	return &Provider{name: strings.ToLower(providerName), backend: backend, model: model}, nil
}

func createBackend(providerName string, opts ...anyllmlib.Option) (anyllmlib.Provider, error) {
	switch strings.ToLower(providerName) {
	case "openai":
		return anyllmoai.New(opts...)
	case "anthropic":
		return anthropic.New(opts...)
	case "gemini":
		return gemini.New(opts...)
	case "ollama":
		return ollama.New(opts...)
	case "deepseek":
		return deepseek.New(opts...)
	case "mistral":
		return mistral.New(opts...)
	case "groq":
		return groq.New(opts...)
	default:
		return nil, fmt.Errorf("unsupported provider %q; supported: openai, anthropic, gemini, ollama, deepseek, mistral, groq", providerName)
	}
}

func (p *Provider) Name() string { return p.name }

// Complete sends one system and one user message and returns the first
// choice.
func (p *Provider) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := p.backend.Completion(ctx, p.buildParams(system, user))
	if err != nil {
		return "", fmt.Errorf("anyllm: completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("anyllm: empty choices in response")
	}
	return resp.Choices[0].Message.ContentString(), nil
}

func (p *Provider) buildParams(system, user string) anyllmlib.CompletionParams {
	var messages []anyllmlib.Message
	if system != "" {
		messages = append(messages, anyllmlib.Message{Role: anyllmlib.RoleSystem, Content: system})
	}
	messages = append(messages, anyllmlib.Message{Role: anyllmlib.RoleUser, Content: user})

	temp := 0.2
	return anyllmlib.CompletionParams{
		Model:       p.model,
		Messages:    messages,
		Temperature: &temp,
	}
}
