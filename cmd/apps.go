package cmd

import (
	"errors"

	"github.com/mj1618/composebox/internal/output"
	"github.com/mj1618/composebox/internal/platform"
	"github.com/spf13/cobra"
)

// appEntry is one registry entry with its live state.
type appEntry struct {
	Name      string   `yaml:"name"                           json:"name"`
	BundleIDs []string `yaml:"bundle_ids"                     json:"bundle_ids"`
	Running   string   `yaml:"running,omitempty"              json:"running,omitempty"` // bundle id of the running instance
	Frontmost bool     `yaml:"frontmost,omitempty"            json:"frontmost,omitempty"`
	Fallback  bool     `yaml:"scroll_area_fallback,omitempty" json:"scroll_area_fallback,omitempty"`
	Keywords  int      `yaml:"keywords"                       json:"keywords"`
}

var appsCmd = &cobra.Command{
	Use:   "apps",
	Short: "List registered target applications",
	Long:  "List the target application registry with each app's bundle ids, whether it is running and whether it is frontmost.",
	Args:  cobra.NoArgs,
	RunE:  runApps,
}

func init() {
	rootCmd.AddCommand(appsCmd)
	appsCmd.Flags().Bool("running", false, "Only list running applications")
}

func runApps(cmd *cobra.Command, args []string) error {
	host, err := openHost()
	if err != nil {
		return err
	}
	onlyRunning, _ := cmd.Flags().GetBool("running")

	front, err := host.FrontmostBundleID()
	if err != nil {
		front = ""
	}

	entries := []appEntry{}
	for _, app := range appConfig.Apps {
		e := appEntry{
			Name:      app.Name,
			BundleIDs: app.BundleIDs,
			Fallback:  app.ScrollAreaFallback,
			Keywords:  len(app.Keywords),
		}
		for _, id := range app.BundleIDs {
			_, err := host.FindRunningApplication(id)
			if err == nil {
				if e.Running == "" {
					e.Running = id
				}
			} else if !errors.Is(err, platform.ErrTargetNotRunning) {
				return err
			}
			if id == front {
				e.Frontmost = true
			}
		}
		if onlyRunning && e.Running == "" {
			continue
		}
		entries = append(entries, e)
	}
	return output.Print(entries)
}
