package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gorewood/longrun/internal/git"
	"github.com/gorewood/longrun/internal/harness"
	"github.com/gorewood/longrun/internal/output"
)

// statusHistoryLimit is how many commits status shows for one feature.
const statusHistoryLimit = 5

// newStatusCmd creates the status command.
func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [feature]",
		Short: "Show progress of tracked features",
		Long: `Show progress of tracked features.

Without an argument, lists every initialized feature with its pass count
and next failing entry. With a feature name, shows that feature in detail
including its last session and recent commits.

Examples:
  longrun status                 # Table of all features
  longrun status login-flow      # Details for one feature
  longrun status -C ~/src/shop --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runStatus,
	}
}

// runStatus executes the status command.
func runStatus(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)

	env, err := loadCurrentProject(cmd)
	if err != nil {
		printer.Error(err)
		return err
	}

	if len(args) == 1 {
		return runFeatureStatus(cmd, printer, env, args[0])
	}

	statuses, err := harness.StatusAll(env.layout)
	if err != nil {
		printer.Error(err)
		return err
	}

	if printer.IsJSON() {
		return printer.WriteJSON(map[string]any{
			"project":       env.root,
			"tracking_root": env.layout.TrackingRoot,
			"features":      statuses,
		})
	}

	if len(statuses) == 0 {
		printer.Print("No features initialized under %s\n", env.layout.Root())
		printer.Print("Run 'longrun init %s <feature> <description>' to create one.\n", env.root)
		return nil
	}

	rows := make([][]string, 0, len(statuses))
	for _, st := range statuses {
		rows = append(rows, []string{
			st.Feature,
			fmt.Sprintf("%d/%d", st.Summary.Passing, st.Summary.Total),
			nextLabel(st),
			strconv.Itoa(st.Sessions),
		})
	}
	printer.Table([]string{"FEATURE", "PASSING", "NEXT", "SESSIONS"}, rows)
	return nil
}

func runFeatureStatus(cmd *cobra.Command, printer *output.Printer, env *projectEnv, feature string) error {
	st, err := harness.Status(env.layout, feature)
	if err != nil {
		printer.Error(err)
		return err
	}

	history, err := harness.History(cmd.Context(), env.layout, feature, git.New(env.root), statusHistoryLimit)
	if err != nil {
		// History is informational; a broken repository should not hide status.
		env.logger.Warn("could not read feature history", "feature", feature, "error", err)
	}

	if printer.IsJSON() {
		commits := make([]map[string]any, 0, len(history))
		for _, c := range history {
			commits = append(commits, map[string]any{"sha": c.SHA, "subject": c.Subject, "date": c.Date})
		}
		return printer.WriteJSON(map[string]any{
			"status":  st,
			"commits": commits,
		})
	}

	styles := printer.Styles()
	printer.Print("%s\n", styles.Bold.Render(st.Feature))
	printer.KeyValue("Directory", st.Dir)
	printer.KeyValue("Description", st.Project.Description)
	printer.KeyValue("Created", st.Project.Created)
	printer.KeyValue("Passing", fmt.Sprintf("%d of %d", st.Summary.Passing, st.Summary.Total))
	printer.KeyValue("Next", nextLabel(st))
	printer.KeyValue("Sessions", strconv.Itoa(st.Sessions))
	if st.LastSession != nil {
		printer.KeyValue("Last session", st.LastSession.Time+" "+st.LastSession.Title)
	}

	if len(history) > 0 {
		printer.Println()
		printer.Print("%s\n", styles.Bold.Render("Recent commits"))
		for _, c := range history {
			printer.Print("  %s %s\n", styles.Dim.Render(c.Short), c.Subject)
		}
	}
	return nil
}

// nextLabel describes the next failing entry, or that all pass.
func nextLabel(st *harness.FeatureStatus) string {
	if st.Summary.Next == nil {
		if st.Summary.Total == 0 {
			return "-"
		}
		return "all passing"
	}
	return fmt.Sprintf("#%d %s", st.Summary.Next.ID, st.Summary.Next.Description)
}
