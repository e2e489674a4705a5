package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mj1618/composebox/internal/observe"
	"github.com/mj1618/composebox/internal/output"
	"github.com/mj1618/composebox/internal/transform"
	"github.com/spf13/cobra"
)

// TransformResult is the output of the `transform` command.
type TransformResult struct {
	App     string `yaml:"app,omitempty"    json:"app,omitempty"`
	Mode    string `yaml:"mode"             json:"mode"`
	Input   string `yaml:"input"            json:"input"`
	Applied bool   `yaml:"applied"          json:"applied"`
	Copied  bool   `yaml:"copied,omitempty" json:"copied,omitempty"`

	transform.Result `yaml:",inline"`
}

var transformCmd = &cobra.Command{
	Use:   "transform [app]",
	Short: "Correct or translate compose box text with an LLM",
	Long: `Send text to the configured LLM provider and print the result with a list of
word-level changes.

The text comes from --text, from stdin with --text -, or is captured from the
application's compose box. With --apply the result is written back into the
compose box; with --copy it is put on the clipboard.

Examples:
  composebox transform teams --apply
  composebox transform --text "i has went" --mode grammar
  echo "guten Morgen" | composebox transform --text - --mode translate --language English`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTransform,
}

func init() {
	rootCmd.AddCommand(transformCmd)
	addAppFlag(transformCmd)
	transformCmd.Flags().String("text", "", "Text to transform (\"-\" reads stdin) instead of capturing it")
	transformCmd.Flags().String("mode", string(transform.ModeGrammar), "Instruction: grammar, translate")
	transformCmd.Flags().String("language", "", "Target language for translate (default: llm.target_language)")
	transformCmd.Flags().String("instruction", "", "Custom system prompt; overrides --mode")
	transformCmd.Flags().Bool("apply", false, "Write the result back into the compose box")
	transformCmd.Flags().Bool("copy", false, "Copy the result to the clipboard")
}

func runTransform(cmd *cobra.Command, args []string) error {
	text, _ := cmd.Flags().GetString("text")
	modeStr, _ := cmd.Flags().GetString("mode")
	language, _ := cmd.Flags().GetString("language")
	instruction, _ := cmd.Flags().GetString("instruction")
	apply, _ := cmd.Flags().GetBool("apply")
	cp, _ := cmd.Flags().GetBool("copy")

	mode := transform.Mode(modeStr)
	if !mode.IsValid() {
		return fmt.Errorf("unsupported mode: %s (use grammar or translate)", modeStr)
	}
	if text == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = strings.TrimRight(string(b), "\n")
	}

	tr, err := newTransformer()
	if err != nil {
		return err
	}

	out := TransformResult{Mode: string(mode)}
	needApp := text == "" || apply
	svc, done, err := newService()
	if err != nil {
		return err
	}
	defer done()
	if needApp {
		app, err := resolveApp(cmd, args, svc)
		if err != nil {
			return describeError(err)
		}
		out.App = app
	}

	ctx := cmd.Context()
	if text == "" {
		c, err := svc.Capture(ctx, out.App)
		if err != nil {
			return describeError(err)
		}
		text = c.Text
	}
	out.Input = text

	res, err := tr.Transform(ctx, transform.Request{
		Text:        text,
		Instruction: instruction,
		Mode:        mode,
		Language:    language,
	})
	if err != nil {
		return err
	}
	out.Result = res

	if apply {
		if err := svc.Apply(ctx, out.App, res.ProcessedText); err != nil {
			return describeError(err)
		}
		out.Applied = true
	}
	if cp {
		if err := copyText(res.ProcessedText); err != nil {
			slog.Warn("copy failed", "err", err)
		} else {
			out.Copied = true
		}
	}
	return output.Print(out)
}

// newTransformer builds the text-transform service from the llm section.
var newTransformer = func() (transform.Transformer, error) {
	svc, err := transform.FromConfig(appConfig.LLM, observe.DefaultMetrics())
	if err != nil {
		return nil, err
	}
	return svc, nil
}
