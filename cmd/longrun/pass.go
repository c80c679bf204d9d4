package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/gorewood/longrun/internal/harness"
)

// newPassCmd creates the pass command.
func newPassCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pass <feature> <id>",
		Short: "Mark a feature list entry as passing",
		Long: `Mark one entry of a feature list as passing.

Only the entry's passes flag changes. Marking an entry that already
passes is a no-op.

Examples:
  longrun pass login-flow 3
  longrun pass login-flow 3 --json`,
		Args: cobra.ExactArgs(2),
		RunE: runPass,
	}
}

// runPass executes the pass command.
func runPass(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)

	id, err := harness.ParseID(args[1])
	if err != nil {
		printer.Error(err)
		return err
	}

	env, err := loadCurrentProject(cmd)
	if err != nil {
		printer.Error(err)
		return err
	}

	changed, entry, err := harness.MarkPassing(env.layout, args[0], id, time.Now())
	if err != nil {
		printer.Error(err)
		return err
	}

	if printer.IsJSON() {
		return printer.WriteJSON(map[string]any{
			"status":  "ok",
			"feature": args[0],
			"changed": changed,
			"entry":   entry,
		})
	}

	styles := printer.Styles()
	if !changed {
		printer.Print("%s #%d already passing\n", styles.Dim.Render("--"), entry.ID)
		return nil
	}
	printer.Print("%s #%d %s\n", styles.Success.Render("Passing"), entry.ID, entry.Description)
	return nil
}
