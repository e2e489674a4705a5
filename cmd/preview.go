package cmd

import (
	"fmt"
	"os"

	"github.com/mj1618/composebox/internal/model"
	"github.com/mj1618/composebox/internal/preview"
	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview [app]",
	Short: "Render a PNG schematic of the scan and overlay position",
	Long: `Scan an application and draw every element box, the located compose box
(highlighted with the strategy name) and the overlay icon at its computed
position. Useful for checking keyword lists and icon geometry without the
shell running. The placement store is not modified.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)
	addAppFlag(previewCmd)
	previewCmd.Flags().StringP("output", "o", "preview.png", "Output PNG file (\"-\" for stdout)")
	previewCmd.Flags().Float64("scale", preview.DefaultScale, "Image pixels per screen point")
	previewCmd.Flags().String("labels", "ids", "Element labels: none, ids, roles")
}

func runPreview(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("output")
	scale, _ := cmd.Flags().GetFloat64("scale")
	labels, _ := cmd.Flags().GetString("labels")

	var mode preview.LabelMode
	switch labels {
	case "none":
		mode = preview.LabelNone
	case "ids":
		mode = preview.LabelIDs
	case "roles":
		mode = preview.LabelRoles
	default:
		return fmt.Errorf("unsupported labels: %s (use none, ids or roles)", labels)
	}

	svc, done, err := newService()
	if err != nil {
		return err
	}
	defer done()

	app, err := resolveApp(cmd, args, svc)
	if err != nil {
		return describeError(err)
	}
	res, err := svc.ScanAndLocate(cmd.Context(), app)
	if err != nil {
		return describeError(err)
	}
	screen, err := svc.Host().MainScreenSize()
	if err != nil {
		return fmt.Errorf("main screen: %w", err)
	}

	pos := svc.Positioner()
	scene := preview.Scene{
		Screen:   screen,
		Elements: res.Snapshot().Elements,
		Located:  &res.Located,
		IconSize: pos.IconSize,
		Scale:    scale,
		Labels:   mode,
	}
	if res.Found {
		if pt, err := pos.Position(res.Located, screen.Height); err == nil {
			scene.Overlay = &pt
		}
	}

	if path == "-" {
		return preview.Encode(os.Stdout, scene)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := preview.Encode(f, scene); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%s, %s)\n", path, res.App, describeLocated(res.Located))
	return nil
}

func describeLocated(loc model.LocatedElement) string {
	if loc.Strategy == model.StrategyNone {
		return "no compose box"
	}
	return fmt.Sprintf("element %d via %s", loc.Element.ID, loc.Strategy)
}
