package main

import (
	"github.com/spf13/cobra"

	"github.com/gorewood/longrun/internal/git"
	"github.com/gorewood/longrun/internal/harness"
	"github.com/gorewood/longrun/internal/output"
)

// newCheckCmd creates the check command.
func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <feature>",
		Short: "Verify a tracking directory only grew since the last commit",
		Long: `Compare a feature's tracking directory with HEAD.

Fails when an entry was removed, a step or description was rewritten, a
passing entry was flipped back to failing, or progress.txt was changed
anywhere but at its end. Suitable for a pre-commit hook.

Examples:
  longrun check login-flow
  longrun check login-flow --json`,
		Args: cobra.ExactArgs(1),
		RunE: runCheck,
	}
}

// runCheck executes the check command.
func runCheck(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)

	env, err := loadCurrentProject(cmd)
	if err != nil {
		printer.Error(err)
		return err
	}

	report, err := harness.Check(cmd.Context(), env.layout, args[0], git.New(env.root))
	if err != nil {
		printer.Error(err)
		return err
	}

	var failure error
	if !report.OK() {
		failure = output.NewUserError("tracking directory for " + args[0] + " rewrites committed history")
	}

	if printer.IsJSON() {
		status := "ok"
		if failure != nil {
			status = "failed"
		}
		if err := printer.WriteJSON(map[string]any{
			"status": status,
			"report": report,
		}); err != nil {
			return err
		}
		return failure
	}

	styles := printer.Styles()
	if report.Baseline == "" {
		printer.Print("%s nothing committed yet for %s\n", styles.Dim.Render("--"), args[0])
		return nil
	}
	if failure == nil {
		printer.Print("%s %s only appended since %s\n", styles.Success.Render("ok"), args[0], report.Baseline[:7])
		return nil
	}

	for _, v := range report.Violations {
		printer.Print("  %s %s\n", styles.Error.Render("XX"), v.String())
	}
	if report.ProgressRewritten {
		printer.Print("  %s progress log was modified before its end\n", styles.Error.Render("XX"))
	}
	printer.Error(failure)
	return failure
}
