package cmd

import (
	"github.com/mj1618/composebox/internal/model"
	"github.com/mj1618/composebox/internal/output"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan [app]",
	Short: "Scan an application's accessibility tree",
	Long: `Scan the accessibility tree of a registered application and print every
element as a flat list in pre-order, together with the located compose box.

Element IDs are only meaningful within one scan.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	addAppFlag(scanCmd)
	scanCmd.Flags().String("roles", "", "Comma-separated role tags to include (e.g. \"text-area,scroll-area\", or \"editable\")")
	scanCmd.Flags().String("text", "", "Only include elements whose title, value, description or identifier contains this text")
	scanCmd.Flags().Bool("focused", false, "Only include the focused element")
	scanCmd.Flags().Int("depth", -1, "Only include elements at or above this depth (-1 = all)")
	scanCmd.Flags().Bool("prune", false, "Drop empty untitled groups")
}

func runScan(cmd *cobra.Command, args []string) error {
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

	roles, _ := cmd.Flags().GetString("roles")
	text, _ := cmd.Flags().GetString("text")
	focused, _ := cmd.Flags().GetBool("focused")
	depth, _ := cmd.Flags().GetInt("depth")
	prune, _ := cmd.Flags().GetBool("prune")

	elements := res.Snapshot().Elements
	if prune {
		elements = model.PruneEmptyGroups(elements)
	}
	if depth >= 0 {
		elements = model.FilterByDepth(elements, depth)
	}
	if r := splitList(roles); len(r) > 0 {
		elements = model.FilterByRoles(elements, r)
	}
	if text != "" {
		elements = model.FilterByText(elements, text)
	}
	if focused {
		elements = model.FilterByFocused(elements)
	}
	if elements == nil {
		elements = []model.ElementDescriptor{}
	}

	out := output.ScanResult{
		App:      res.App,
		BundleID: res.BundleID,
		ScanID:   res.ScanID,
		TS:       res.Snapshot().CapturedAt.Unix(),
		Count:    res.Elements,
		Elements: elements,
	}
	if res.Found {
		out.Located = &res.Located
	}
	return output.Print(out)
}
