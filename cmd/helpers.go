package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mj1618/composebox/internal/config"
	"github.com/mj1618/composebox/internal/observe"
	"github.com/mj1618/composebox/internal/overlay"
	"github.com/mj1618/composebox/internal/platform"
	"github.com/mj1618/composebox/internal/platform/fixture"
	"github.com/mj1618/composebox/internal/tracker"
	"github.com/spf13/cobra"
)

// openHost returns the fixture host named by --fixture, or the platform's
// accessibility host.
func openHost() (platform.Host, error) {
	if src, _ := rootCmd.PersistentFlags().GetString("fixture"); src != "" {
		h, err := fixture.Open(src)
		if err != nil {
			return nil, err
		}
		return h, nil
	}
	return platform.NewHost()
}

// openStore opens the configured placement store. Fixture runs keep
// placements in memory so they never touch the user's saved positions.
func openStore(cfg *config.Config) (overlay.Store, error) {
	if src, _ := rootCmd.PersistentFlags().GetString("fixture"); src != "" {
		return overlay.NewMemoryStore(), nil
	}
	return overlay.OpenStore(cfg.Placement.Backend, cfg.PlacementPath())
}

// newService builds the tracker service for one command. The returned
// function closes the placement store.
func newService(opts ...tracker.Option) (*tracker.Service, func(), error) {
	host, err := openHost()
	if err != nil {
		return nil, nil, err
	}
	store, err := openStore(appConfig)
	if err != nil {
		return nil, nil, err
	}
	opts = append([]tracker.Option{tracker.WithMetrics(observe.DefaultMetrics())}, opts...)
	svc := tracker.NewService(host, appConfig, store, opts...)
	return svc, func() { _ = store.Close() }, nil
}

// resolveApp returns the application named by the first argument or --app.
// Without either it picks the frontmost registered application.
func resolveApp(cmd *cobra.Command, args []string, svc *tracker.Service) (string, error) {
	name := ""
	if len(args) > 0 {
		name = args[0]
	} else if f := cmd.Flags().Lookup("app"); f != nil {
		name = f.Value.String()
	}
	if name != "" {
		app, err := svc.App(name)
		if err != nil {
			return "", err
		}
		return app.Name, nil
	}

	front, err := svc.Host().FrontmostBundleID()
	if err != nil {
		return "", fmt.Errorf("no application given and the frontmost application is unknown: %w", err)
	}
	app, ok := svc.Config().AppForBundle(front)
	if !ok {
		return "", fmt.Errorf("frontmost application %s is not registered (known: %s)", front, strings.Join(svc.Config().AppNames(), ", "))
	}
	return app.Name, nil
}

// addAppFlag registers --app as an alternative to the positional argument.
func addAppFlag(cmd *cobra.Command) {
	cmd.Flags().String("app", "", "Registered application name (default: the frontmost registered app)")
}

// describeError adds a hint to errors the user can act on.
func describeError(err error) error {
	switch {
	case errors.Is(err, platform.ErrPermissionDenied):
		return fmt.Errorf("%w\nrun 'composebox trust' to open the permission prompt", err)
	case errors.Is(err, tracker.ErrUnknownApp):
		return fmt.Errorf("%w\nadd it to the apps registry in %s", err, configPath())
	default:
		return err
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
