package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/mj1618/composebox/internal/config"
	"github.com/mj1618/composebox/internal/observe"
	"github.com/mj1618/composebox/internal/output"
	"github.com/mj1618/composebox/internal/tracker"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var watchCmd = &cobra.Command{
	Use:   "watch [app]",
	Short: "Track the compose box and stream overlay updates as JSONL",
	Long: `Run the tracking loop: rescan on a timer, on focus changes and on application
launch/terminate, and emit one JSON object per overlay update to stdout:

  {"kind":"position","app":"teams","reason":"focus","point":{"x":1310,"y":270},"source":"scan","strategy":"keyword",...}
  {"kind":"hide","app":"teams","reason":"terminate",...}

Output is always JSONL regardless of the --format flag.

With --commands, shell requests are read from stdin, one per line:
  capture | close | retry | track <app> | custom <name>

The config file is reloaded while watching, so keyword edits take effect
without a restart. Use Ctrl+C or --duration to stop.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	addAppFlag(watchCmd)
	watchCmd.Flags().Duration("duration", 0, "Stop after this long (0 = until Ctrl+C)")
	watchCmd.Flags().Bool("no-workspace", false, "Do not follow focus, launch and terminate events")
	watchCmd.Flags().Bool("commands", false, "Read shell commands from stdin")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if d, _ := cmd.Flags().GetDuration("duration"); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	noWorkspace, _ := cmd.Flags().GetBool("no-workspace")
	commands, _ := cmd.Flags().GetBool("commands")

	cfgSource := func() *config.Config { return appConfig }
	var cfgWatcher *config.Watcher
	if path := configPath(); fileExists(path) {
		w, err := config.NewWatcher(path)
		if err != nil {
			return err
		}
		cfgWatcher = w
		cfgSource = w.Current
	}

	svc, done, err := newService(tracker.WithConfigSource(cfgSource))
	if err != nil {
		return err
	}
	defer done()

	var opts []tracker.CoordinatorOption
	opts = append(opts, tracker.WithCoordinatorMetrics(observe.DefaultMetrics()))
	if len(args) > 0 || cmd.Flags().Changed("app") {
		app, err := resolveApp(cmd, args, svc)
		if err != nil {
			return describeError(err)
		}
		opts = append(opts, tracker.WithApp(app))
	}
	coord := tracker.NewCoordinator(svc, opts...)

	lw := output.NewLineWriter(output.Stdout)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return coord.Run(gctx)
	})
	if cfgWatcher != nil {
		g.Go(func() error {
			return cfgWatcher.Run(gctx)
		})
	}
	g.Go(func() error {
		for u := range coord.Updates() {
			if err := lw.Write(u); err != nil {
				return err
			}
		}
		return nil
	})
	if !noWorkspace {
		ws := tracker.NewWorkspaceWatcher(svc.Host(), svc.Config().Scan.PollInterval, func() []string {
			return svc.Config().BundleIDs()
		})
		g.Go(func() error {
			return ws.Run(gctx, coord.HandleEvent)
		})
	}
	if commands {
		go readCommands(os.Stdin, coord)
	}

	start := time.Now()
	err = g.Wait()
	slog.Debug("watch finished", "elapsed", time.Since(start).Round(time.Millisecond))
	return err
}

// readCommands feeds stdin lines to the coordinator until EOF. It is not
// tied to the errgroup because a blocked stdin read cannot be cancelled.
func readCommands(r io.Reader, coord *tracker.Coordinator) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if err := applyCommand(coord, sc.Text()); err != nil {
			slog.Warn("ignoring command", "line", sc.Text(), "err", err)
		}
	}
}

// applyCommand parses one command line and routes it to coord.
func applyCommand(coord *tracker.Coordinator, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	switch verb := strings.ToLower(fields[0]); verb {
	case "capture":
		coord.Request(tracker.Command{Kind: tracker.CommandCapture})
	case "close":
		coord.Request(tracker.Command{Kind: tracker.CommandClose})
	case "retry":
		coord.Trigger(tracker.ReasonManual, true)
	case "track":
		if len(fields) != 2 {
			return fmt.Errorf("usage: track <app>")
		}
		coord.Track(fields[1])
	case "custom":
		if len(fields) < 2 {
			return fmt.Errorf("usage: custom <name>")
		}
		coord.Request(tracker.Command{Kind: tracker.CommandCustom, Name: strings.Join(fields[1:], " ")})
	default:
		return fmt.Errorf("unknown command %q", verb)
	}
	return nil
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}
