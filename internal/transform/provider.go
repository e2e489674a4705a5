package transform

import (
	"fmt"
	"os"
	"strings"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/mj1618/composebox/internal/config"
	"github.com/mj1618/composebox/internal/observe"
	"github.com/mj1618/composebox/internal/transform/anyllm"
	"github.com/mj1618/composebox/internal/transform/openai"
)

// NewCompleter builds the backend named by cfg.Provider. "openai" uses the
// OpenAI SDK directly; every other provider goes through any-llm-go.
func NewCompleter(cfg config.LLMConfig) (Completer, error) {
	apiKey := ""
	if cfg.APIKeyEnv != "" {
		apiKey = os.Getenv(cfg.APIKeyEnv)
	}

	switch strings.ToLower(cfg.Provider) {
	case "", "openai":
		if apiKey == "" {
			return nil, fmt.Errorf("transform: openai requires an API key in $%s", cfg.APIKeyEnv)
		}
		var opts []openai.Option
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		if cfg.Timeout > 0 {
			opts = append(opts, openai.WithTimeout(cfg.Timeout))
		}
		return openai.New(apiKey, cfg.Model, opts...)
	default:
		var opts []anyllmlib.Option
		if apiKey != "" {
			opts = append(opts, anyllmlib.WithAPIKey(apiKey))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(cfg.BaseURL))
		}
		return anyllm.New(cfg.Provider, cfg.Model, opts...)
	}
}

// FromConfig builds a Service from the llm section.
func FromConfig(cfg config.LLMConfig, metrics *observe.Metrics) (*Service, error) {
	c, err := NewCompleter(cfg)
	if err != nil {
		return nil, err
	}
	prompts := DefaultPrompts()
	if cfg.Prompts.Grammar != "" {
		prompts.Grammar = cfg.Prompts.Grammar
	}
	if cfg.Prompts.Translate != "" {
		prompts.Translate = cfg.Prompts.Translate
	}
	if cfg.TargetLanguage != "" {
		prompts.Language = cfg.TargetLanguage
	}
	opts := []Option{WithPrompts(prompts), WithTimeout(cfg.Timeout)}
	if metrics != nil {
		opts = append(opts, WithMetrics(metrics))
	}
	return NewService(c, opts...), nil
}
