package cmd

import (
	"github.com/mj1618/composebox/internal/output"
	"github.com/spf13/cobra"
)

var captureCmd = &cobra.Command{
	Use:   "capture [app]",
	Short: "Print the text of an application's compose box",
	Long: `Locate the compose box and read its current text. When the compose box was
found through the scroll-area fallback, the text comes from the first text
input inside the scroll area.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCapture,
}

func init() {
	rootCmd.AddCommand(captureCmd)
	addAppFlag(captureCmd)
	captureCmd.Flags().Bool("copy", false, "Also copy the text to the clipboard")
}

func runCapture(cmd *cobra.Command, args []string) error {
	svc, done, err := newService()
	if err != nil {
		return err
	}
	defer done()

	app, err := resolveApp(cmd, args, svc)
	if err != nil {
		return describeError(err)
	}
	c, err := svc.Capture(cmd.Context(), app)
	if err != nil {
		return describeError(err)
	}
	if cp, _ := cmd.Flags().GetBool("copy"); cp {
		if err := copyText(c.Text); err != nil {
			return err
		}
	}
	return output.Print(c)
}
