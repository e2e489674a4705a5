package cmd

import (
	"fmt"

	"github.com/mj1618/composebox/internal/config"
	"github.com/mj1618/composebox/internal/output"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration (defaults plus config file) as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return config.EncodeYAML(output.Stdout, appConfig)
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprintln(output.Stdout, configPath())
		return err
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a config file and report every problem",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath()
		if len(args) > 0 {
			path = args[0]
		}
		if _, err := config.Load(path); err != nil {
			return err
		}
		_, err := fmt.Fprintf(output.Stdout, "%s: ok\n", path)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configPathCmd, configValidateCmd)
}
