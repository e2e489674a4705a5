package cmd

import (
	"errors"
	"fmt"

	"github.com/mj1618/composebox/internal/output"
	"github.com/mj1618/composebox/internal/platform"
	"github.com/mj1618/composebox/internal/tracker"
	"github.com/spf13/cobra"
)

var positionCmd = &cobra.Command{
	Use:   "position [app]",
	Short: "Compute where the overlay icon goes",
	Long: `Locate the compose box and compute the overlay icon point in bottom-left
origin screen coordinates:

  x = element.x + element.width - icon - padding
  y = screen.height - element.y - icon - padding

The point is saved as the application's placement. When no compose box is
found, the last saved placement is printed with source "saved".`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPosition,
}

func init() {
	rootCmd.AddCommand(positionCmd)
	addAppFlag(positionCmd)
	positionCmd.Flags().Bool("no-saved", false, "Fail instead of falling back to the saved placement")
}

func runPosition(cmd *cobra.Command, args []string) error {
	svc, done, err := newService()
	if err != nil {
		return err
	}
	defer done()

	app, err := resolveApp(cmd, args, svc)
	if err != nil {
		return describeError(err)
	}
	noSaved, _ := cmd.Flags().GetBool("no-saved")
	ctx := cmd.Context()

	res, err := svc.ScanAndLocate(ctx, app)
	if err != nil && !errors.Is(err, platform.ErrTargetNotRunning) {
		return describeError(err)
	}

	out := output.PositionResult{App: app}
	if screen, serr := svc.Host().MainScreenSize(); serr == nil {
		out.Screen = &screen
	}

	if err == nil && res.Found {
		pt, perr := svc.PositionOverlay(ctx, app, res.Located)
		if perr == nil {
			out.Source = string(tracker.SourceScan)
			out.Strategy = res.Located.Strategy
			out.Element = res.Located.Element.ID
			out.Point = pt
			return output.Print(out)
		}
		err = perr
	}
	if err == nil {
		err = fmt.Errorf("%s: %w", app, tracker.ErrNoComposeBox)
	}
	if noSaved {
		return describeError(err)
	}

	pt, ok, lerr := svc.SavedPlacement(ctx, app)
	if lerr != nil {
		return fmt.Errorf("%w (loading saved placement: %v)", err, lerr)
	}
	if !ok {
		return describeError(err)
	}
	out.Source = string(tracker.SourceSaved)
	out.Point = pt
	return output.Print(out)
}
