package anyllm

import (
	"testing"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
)

func TestNew_Validation(t *testing.T) {
	if _, err := New("", "m"); err == nil {
		t.Error("expected error for empty provider")
	}
	if _, err := New("anthropic", ""); err == nil {
		t.Error("expected error for empty model")
	}
	if _, err := New("fakecloud", "m", anyllmlib.WithAPIKey("dummy")); err == nil {
		t.Error("expected error for unsupported provider")
	}
}

func TestNew_Backends(t *testing.T) {
	tests := []struct {
		provider string
		opts     []anyllmlib.Option
	}{
		{"anthropic", []anyllmlib.Option{anyllmlib.WithAPIKey("sk-ant-test")}},
		{"Mistral", []anyllmlib.Option{anyllmlib.WithAPIKey("test")}},
		{"groq", []anyllmlib.Option{anyllmlib.WithAPIKey("test")}},
		{"deepseek", []anyllmlib.Option{anyllmlib.WithAPIKey("test")}},
		{"ollama", nil},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			p, err := New(tt.provider, "some-model", tt.opts...)
			if err != nil {
				t.Fatalf("New(%q): %v", tt.provider, err)
			}
			if p.backend == nil {
				t.Fatal("backend is nil")
			}
		})
	}
}

func TestName_Lowercase(t *testing.T) {
	p, err := New("Ollama", "llama3")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name() != "ollama" {
		t.Errorf("Name() = %q, want ollama", p.Name())
	}
}

func TestBuildParams(t *testing.T) {
	p := &Provider{model: "claude-3-5-haiku-latest"}

	params := p.buildParams("fix grammar", "i has went")
	if params.Model != "claude-3-5-haiku-latest" {
		t.Errorf("Model = %q", params.Model)
	}
	if len(params.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(params.Messages))
	}
	if params.Messages[0].Role != "system" || params.Messages[0].ContentString() != "fix grammar" {
		t.Errorf("system message = %+v", params.Messages[0])
	}
	if params.Messages[1].Role != "user" || params.Messages[1].ContentString() != "i has went" {
		t.Errorf("user message = %+v", params.Messages[1])
	}
	if params.Temperature == nil || *params.Temperature != 0.2 {
		t.Errorf("Temperature = %v", params.Temperature)
	}

	if got := p.buildParams("", "x"); len(got.Messages) != 1 {
		t.Errorf("messages without system = %d, want 1", len(got.Messages))
	}
}
