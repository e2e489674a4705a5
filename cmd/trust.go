package cmd

import (
	"time"

	"github.com/mj1618/composebox/internal/output"
	"github.com/spf13/cobra"
)

// TrustResult is the output of the `trust` command.
type TrustResult struct {
	Trusted  bool `yaml:"trusted"            json:"trusted"`
	Prompted bool `yaml:"prompted,omitempty" json:"prompted,omitempty"`
}

var trustCmd = &cobra.Command{
	Use:   "trust",
	Short: "Check or request accessibility permission",
	Long: `Report whether this process holds macOS accessibility permission. When it
does not, ask the OS to show its permission prompt. Grant the permission at
System Settings > Privacy & Security > Accessibility, then restart.`,
	Args: cobra.NoArgs,
	RunE: runTrust,
}

func init() {
	rootCmd.AddCommand(trustCmd)
	trustCmd.Flags().Bool("no-prompt", false, "Only report, never show the prompt")
	trustCmd.Flags().Duration("wait", 0, "After prompting, wait up to this long for the permission to be granted")
}

func runTrust(cmd *cobra.Command, args []string) error {
	host, err := openHost()
	if err != nil {
		return err
	}
	noPrompt, _ := cmd.Flags().GetBool("no-prompt")
	wait, _ := cmd.Flags().GetDuration("wait")

	res := TrustResult{Trusted: host.IsTrusted()}
	if res.Trusted || noPrompt {
		return output.Print(res)
	}

	host.PromptForTrust()
	res.Prompted = true

	deadline := time.Now().Add(wait)
	for !res.Trusted && time.Now().Before(deadline) {
		select {
		case <-cmd.Context().Done():
			return output.Print(res)
		case <-time.After(500 * time.Millisecond):
		}
		res.Trusted = host.IsTrusted()
	}
	return output.Print(res)
}
