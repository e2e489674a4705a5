package transform

import (
	"fmt"
	"strings"
	"text/template"
)

// Prompts are the system prompts per mode. Translate is a text/template
// receiving .Language.
type Prompts struct {
	Grammar   string
	Translate string
	// Language is used when a translate request names none.
	Language string
}

// DefaultPrompts returns the built-in prompts.
func DefaultPrompts() Prompts {
	return Prompts{
		Grammar: "Correct the grammar, spelling and punctuation of the user's text. " +
			"Keep its meaning, tone, language and line breaks. Reply with the corrected text only.",
		Translate: "Translate the user's text into {{.Language}}. " +
			"Keep its tone and line breaks. Reply with the translation only.",
		Language: "English",
	}
}

// Render returns the system prompt for mode.
func (p Prompts) Render(mode Mode, language string) (string, error) {
	switch mode {
	case ModeGrammar, "":
		return p.Grammar, nil
	case ModeTranslate:
		if language == "" {
			language = p.Language
		}
		tmpl, err := template.New("translate").Parse(p.Translate)
		if err != nil {
			return "", fmt.Errorf("translate prompt: %w", err)
		}
		var b strings.Builder
		if err := tmpl.Execute(&b, struct{ Language string }{language}); err != nil {
			return "", fmt.Errorf("translate prompt: %w", err)
		}
		return b.String(), nil
	default:
		return "", fmt.Errorf("unknown transform mode %q (want grammar or translate)", mode)
	}
}
