package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gorewood/longrun/internal/features"
	"github.com/gorewood/longrun/internal/harness"
	"github.com/gorewood/longrun/internal/output"
	"github.com/gorewood/longrun/internal/progress"
	"github.com/gorewood/longrun/internal/watch"
)

// newWatchCmd creates the watch command.
func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <feature>",
		Short: "Follow changes to a feature's tracking directory",
		Long: `Print a line each time a file in a feature's tracking directory changes.

Changes to feature_list.json also print the new pass count. Runs until
interrupted. With --json each change is one JSON object per line.

Examples:
  longrun watch login-flow
  longrun watch login-flow --json | jq .`,
		Args: cobra.ExactArgs(1),
		RunE: runWatch,
	}
}

// runWatch executes the watch command.
func runWatch(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)
	feature := args[0]

	env, err := loadCurrentProject(cmd)
	if err != nil {
		printer.Error(err)
		return err
	}
	if err := env.layout.RequireFeature(feature); err != nil {
		printer.Error(err)
		return err
	}

	w, err := watch.Open(env.layout.FeatureDir(feature), env.logger,
		features.FileName, progress.FileName, harness.InitScriptFile)
	if err != nil {
		printer.Error(err)
		return err
	}
	defer w.Close() //nolint:errcheck // watcher is discarded

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !printer.IsJSON() {
		printer.Stderr("Watching %s (Ctrl-C to stop)\n", env.layout.RelPath(env.layout.FeatureDir(feature)))
	}

	err = w.Run(ctx, func(ev watch.Event) {
		reportWatchEvent(printer, env, feature, ev)
	})
	if err != nil {
		printer.Error(err)
		return err
	}
	return nil
}

// reportWatchEvent prints one change, adding the pass count when the
// feature list was rewritten.
func reportWatchEvent(printer *output.Printer, env *projectEnv, feature string, ev watch.Event) {
	var summary *features.Summary
	if ev.File == features.FileName && ev.Op != watch.OpRemoved {
		if st, err := harness.Status(env.layout, feature); err == nil {
			summary = &st.Summary
		} else {
			env.logger.Warn("feature list unreadable after change", "feature", feature, "error", err)
		}
	}

	if printer.IsJSON() {
		data := map[string]any{"feature": feature, "event": ev}
		if summary != nil {
			data["summary"] = summary
		}
		_ = printer.WriteJSON(data)
		return
	}

	styles := printer.Styles()
	line := fmt.Sprintf("%s %-8s %s", styles.Dim.Render(ev.Time.Format("15:04:05")), ev.Op, ev.File)
	if summary != nil {
		line += " " + styles.Accent.Render(fmt.Sprintf("(%d/%d passing)", summary.Passing, summary.Total))
	}
	printer.Print("%s\n", line)
}
