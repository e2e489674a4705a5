package cmd

import (
	"fmt"
	"strconv"

	"github.com/mj1618/composebox/internal/model"
	"github.com/mj1618/composebox/internal/output"
	"github.com/spf13/cobra"
)

var placementCmd = &cobra.Command{
	Use:   "placement",
	Short: "Read or write saved overlay placements",
	Long: `Saved placements are the last overlay point per application, used when a
forced rescan cannot find the compose box. They live in the configured
placement backend (memory, file or sqlite).`,
}

var placementGetCmd = &cobra.Command{
	Use:   "get <app>",
	Short: "Print the saved placement for an application",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlacementGet,
}

var placementSetCmd = &cobra.Command{
	Use:   "set <app> <x> <y>",
	Short: "Save a placement (bottom-left origin)",
	Args:  cobra.ExactArgs(3),
	RunE:  runPlacementSet,
}

var placementListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all saved placements",
	Args:  cobra.NoArgs,
	RunE:  runPlacementList,
}

func init() {
	rootCmd.AddCommand(placementCmd)
	placementCmd.AddCommand(placementGetCmd, placementSetCmd, placementListCmd)
}

func runPlacementGet(cmd *cobra.Command, args []string) error {
	store, err := openStore(appConfig)
	if err != nil {
		return err
	}
	defer store.Close()

	pt, ok, err := store.Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no saved placement for %q", args[0])
	}
	return output.Print(output.Placement{App: args[0], Point: pt})
}

func runPlacementSet(cmd *cobra.Command, args []string) error {
	x, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid x %q: %w", args[1], err)
	}
	y, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("invalid y %q: %w", args[2], err)
	}

	store, err := openStore(appConfig)
	if err != nil {
		return err
	}
	defer store.Close()

	pt := model.Point{X: x, Y: y}
	if err := store.Save(cmd.Context(), args[0], pt); err != nil {
		return err
	}
	return output.Print(output.Placement{App: args[0], Point: pt})
}

func runPlacementList(cmd *cobra.Command, args []string) error {
	store, err := openStore(appConfig)
	if err != nil {
		return err
	}
	defer store.Close()

	all, err := store.List(cmd.Context())
	if err != nil {
		return err
	}
	return output.Print(output.NewPlacementList(appConfig.Placement.Backend, all))
}
