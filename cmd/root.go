package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mj1618/composebox/internal/config"
	"github.com/mj1618/composebox/internal/output"
	"github.com/mj1618/composebox/internal/version"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "composebox",
	Short: "Find and track the compose box of chat and notes apps",
	Long: `composebox finds the active compose box of a target application through the
macOS accessibility tree, anchors an overlay icon to it, and sends its text to
an LLM for grammar correction or translation.

Target applications are configured in the registry (see 'composebox config show').`,
	SilenceUsage: true,
}

// appConfig is the configuration loaded by the root command before any
// subcommand runs.
var appConfig *config.Config

// Execute runs the root command. SIGINT and SIGTERM cancel the command's
// context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = version.String()
	rootCmd.PersistentFlags().String("format", "yaml", "Output format: yaml, json")
	rootCmd.PersistentFlags().Bool("pretty", false, "Pretty-print JSON output")
	rootCmd.PersistentFlags().String("config", "", "Config file (default: <user config dir>/composebox/config.yaml)")
	rootCmd.PersistentFlags().String("fixture", "", "Use a synthetic accessibility tree: a built-in sample (sample:desktop) or a YAML file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		format, _ := rootCmd.PersistentFlags().GetString("format")
		switch output.Format(format) {
		case output.FormatYAML, output.FormatJSON:
			output.OutputFormat = output.Format(format)
		default:
			return fmt.Errorf("unsupported format: %s (use yaml or json)", format)
		}
		output.PrettyOutput, _ = rootCmd.PersistentFlags().GetBool("pretty")

		cfg, err := config.Load(configPath())
		if err != nil {
			return err
		}
		appConfig = cfg

		level := cfg.LogLevel
		if flag, _ := rootCmd.PersistentFlags().GetString("log-level"); flag != "" {
			level = config.LogLevel(flag)
			if !level.IsValid() {
				return fmt.Errorf("unsupported log level: %s (use debug, info, warn or error)", flag)
			}
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level.Slog()})))
		return nil
	}
}

// configPath returns --config, or the per-user default location.
func configPath() string {
	if p, _ := rootCmd.PersistentFlags().GetString("config"); p != "" {
		return p
	}
	return config.DefaultPath()
}
