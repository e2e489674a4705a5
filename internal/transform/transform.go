// Package transform sends captured compose-box text to an LLM for grammar
// correction or translation.
package transform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mj1618/composebox/internal/observe"
)

// Mode selects the built-in instruction.
type Mode string

const (
	ModeGrammar   Mode = "grammar"
	ModeTranslate Mode = "translate"
)

// IsValid reports whether m is a known mode.
func (m Mode) IsValid() bool {
	return m == ModeGrammar || m == ModeTranslate
}

// Request is one transform call. Instruction is the system prompt; when it
// is empty the Service renders one from Mode and Language.
type Request struct {
	Text        string `json:"text"`
	Instruction string `json:"instruction,omitempty"`
	Mode        Mode   `json:"mode,omitempty"`
	Language    string `json:"language,omitempty"`
}

// Change is one edit between the original and processed text. Offset is the
// byte offset of Original in the input.
type Change struct {
	Original    string `yaml:"original"    json:"original"`
	Replacement string `yaml:"replacement" json:"replacement"`
	Offset      int    `yaml:"offset"      json:"offset"`
}

// Result is the transformed text plus diagnostics.
type Result struct {
	ProcessedText string   `yaml:"processed_text"       json:"processed_text"`
	Changes       []Change `yaml:"changes"              json:"changes"`
	Confidence    *float64 `yaml:"confidence,omitempty" json:"confidence,omitempty"`
}

// Transformer is the text-transform service consumed by the CLI and MCP
// surfaces.
type Transformer interface {
	Transform(ctx context.Context, req Request) (Result, error)
}

// Completer is one LLM backend. It receives a system prompt and the user
// text and returns the model's reply.
type Completer interface {
	Name() string
	Complete(ctx context.Context, system, user string) (string, error)
}

// ErrEmptyText is returned for blank input.
var ErrEmptyText = errors.New("transform: text is empty")

// Service implements Transformer over a Completer.
type Service struct {
	completer Completer
	prompts   Prompts
	timeout   time.Duration
	metrics   *observe.Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithPrompts overrides the built-in prompts.
func WithPrompts(p Prompts) Option {
	return func(s *Service) { s.prompts = p }
}

// WithTimeout bounds each completion call.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// WithMetrics records transform metrics.
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService wraps c.
func NewService(c Completer, opts ...Option) *Service {
	s := &Service{completer: c, prompts: DefaultPrompts()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Transform runs req through the completer and diffs the reply against the
// input.
func (s *Service) Transform(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.Text) == "" {
		return Result{}, ErrEmptyText
	}
	system := req.Instruction
	if system == "" {
		var err error
		if system, err = s.prompts.Render(req.Mode, req.Language); err != nil {
			return Result{}, err
		}
	}
	mode := string(req.Mode)
	if mode == "" {
		mode = "custom"
	}

	ctx, span := observe.StartSpan(ctx, "transform")
	defer span.End()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	reply, err := s.completer.Complete(ctx, system, req.Text)
	if s.metrics != nil {
		s.metrics.RecordTransform(ctx, s.completer.Name(), mode, time.Since(start), err)
	}
	if err != nil {
		span.RecordError(err)
		return Result{}, fmt.Errorf("transform via %s: %w", s.completer.Name(), err)
	}

	res := parseReply(reply)
	res.Changes = Changes(req.Text, res.ProcessedText)
	observe.Logger(ctx).Debug("transform complete", "provider", s.completer.Name(), "mode", mode, "changes", len(res.Changes))
	return res, nil
}

// parseReply accepts plain text or a JSON object with "text" and optional
// "confidence" fields.
func parseReply(reply string) Result {
	trimmed := strings.TrimSpace(reply)
	if strings.HasPrefix(trimmed, "{") {
		var structured struct {
			Text       *string  `json:"text"`
			Confidence *float64 `json:"confidence"`
		}
		if err := json.Unmarshal([]byte(trimmed), &structured); err == nil && structured.Text != nil {
			return Result{ProcessedText: *structured.Text, Confidence: structured.Confidence}
		}
	}
	return Result{ProcessedText: trimmed}
}
