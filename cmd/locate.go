package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/mj1618/composebox/internal/output"
	"github.com/mj1618/composebox/internal/platform"
	"github.com/mj1618/composebox/internal/tracker"
	"github.com/spf13/cobra"
)

var locateCmd = &cobra.Command{
	Use:   "locate [app]",
	Short: "Locate an application's compose box",
	Long: `Scan a registered application and report the compose box together with the
strategy that found it: keyword, focus, largest-area, fallback-scroll-area or
none.

With --wait, keep polling until a compose box is found or the timeout passes.
A missing application is retried while waiting; a missing accessibility
permission fails immediately.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLocate,
}

func init() {
	rootCmd.AddCommand(locateCmd)
	addAppFlag(locateCmd)
	locateCmd.Flags().Duration("wait", 0, "Keep polling up to this long until a compose box is found (e.g. 10s)")
	locateCmd.Flags().Duration("interval", 500*time.Millisecond, "Polling interval with --wait")
}

func runLocate(cmd *cobra.Command, args []string) error {
	svc, done, err := newService()
	if err != nil {
		return err
	}
	defer done()

	app, err := resolveApp(cmd, args, svc)
	if err != nil {
		return describeError(err)
	}
	wait, _ := cmd.Flags().GetDuration("wait")
	interval, _ := cmd.Flags().GetDuration("interval")

	res, err := locateWithin(cmd, svc, app, wait, interval)
	if err != nil {
		return describeError(err)
	}
	return output.Print(res)
}

// locateWithin polls ScanAndLocate until it finds a compose box or wait has
// elapsed. The last result is returned either way.
func locateWithin(cmd *cobra.Command, svc *tracker.Service, app string, wait, interval time.Duration) (tracker.Result, error) {
	ctx := cmd.Context()
	deadline := time.Now().Add(wait)
	for {
		res, err := svc.ScanAndLocate(ctx, app)
		switch {
		case errors.Is(err, platform.ErrPermissionDenied):
			return res, err
		case err == nil && res.Found:
			return res, nil
		}
		if !time.Now().Add(interval).Before(deadline) {
			if err != nil && wait > 0 {
				return res, fmt.Errorf("timeout after %s (last error: %w)", wait, err)
			}
			return res, err
		}
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		case <-time.After(interval):
		}
	}
}
