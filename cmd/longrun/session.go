package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/gorewood/longrun/internal/harness"
	"github.com/gorewood/longrun/internal/progress"
)

// sessionFlags holds the flags for the session command.
type sessionFlags struct {
	title string
	done  []string
	state []string
	next  []string
}

// newSessionCmd creates the session command.
func newSessionCmd() *cobra.Command {
	flags := &sessionFlags{}

	cmd := &cobra.Command{
		Use:   "session <feature>",
		Short: "Append a session record to the progress log",
		Long: `Append a session record to a feature's progress.txt.

The record is written at the end of the file; earlier sessions are never
rewritten.

Examples:
  longrun session login-flow --title "Login form" \
    --done "Implemented feature 2" --done "Fixed session cookie" \
    --state "Login works, logout missing" \
    --next "Feature 3: logout"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.title, "title", "", "One-line session title (required)")
	cmd.Flags().StringArrayVar(&flags.done, "done", nil, "What was done (repeatable, at least one)")
	cmd.Flags().StringArrayVar(&flags.state, "state", nil, "Current state of the project (repeatable)")
	cmd.Flags().StringArrayVar(&flags.next, "next", nil, "Next step (repeatable)")

	return cmd
}

// runSession executes the session command.
func runSession(cmd *cobra.Command, feature string, flags *sessionFlags) error {
	printer := newPrinter(cmd)

	env, err := loadCurrentProject(cmd)
	if err != nil {
		printer.Error(err)
		return err
	}

	session := progress.Session{
		Time:  time.Now(),
		Title: flags.title,
		Done:  flags.done,
		State: flags.state,
		Next:  flags.next,
	}
	if err := harness.LogSession(env.layout, feature, session); err != nil {
		printer.Error(err)
		return err
	}

	if printer.IsJSON() {
		return printer.WriteJSON(map[string]any{
			"status":  "ok",
			"feature": feature,
			"session": session,
			"path":    env.layout.ProgressPath(feature),
		})
	}
	printer.Print("%s %s %s\n", printer.Styles().Success.Render("Logged session"),
		session.Time.Format(progress.TimeLayout), session.Title)
	return nil
}
