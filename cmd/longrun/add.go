package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/gorewood/longrun/internal/features"
	"github.com/gorewood/longrun/internal/harness"
)

// addFlags holds the flags for the add command.
type addFlags struct {
	category    string
	description string
	steps       []string
	priority    string
}

// newAddCmd creates the add command.
func newAddCmd() *cobra.Command {
	flags := &addFlags{}

	cmd := &cobra.Command{
		Use:   "add <feature>",
		Short: "Append a failing entry to a feature list",
		Long: `Append a new entry to a feature's feature_list.json.

The entry gets the next free id and always starts failing. Existing
entries are left exactly as they are.

Examples:
  longrun add login-flow --category functional \
    --description "User can log out" \
    --step "Click the logout button" --step "Login page is shown"
  longrun add login-flow --category ui --description "Dark mode" --step "Toggle theme" --priority low`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.category, "category", "", "Entry category, e.g. functional or ui (required)")
	cmd.Flags().StringVar(&flags.description, "description", "", "Behaviour the entry verifies (required)")
	cmd.Flags().StringArrayVar(&flags.steps, "step", nil, "Verification step (repeatable, at least one)")
	cmd.Flags().StringVar(&flags.priority, "priority", features.PriorityMedium, "Priority: high, medium or low")

	return cmd
}

// runAdd executes the add command.
func runAdd(cmd *cobra.Command, feature string, flags *addFlags) error {
	printer := newPrinter(cmd)

	env, err := loadCurrentProject(cmd)
	if err != nil {
		printer.Error(err)
		return err
	}

	added, err := harness.AddFeature(env.layout, feature, features.Feature{
		Category:    flags.category,
		Description: flags.description,
		Steps:       flags.steps,
		Priority:    flags.priority,
	}, time.Now())
	if err != nil {
		printer.Error(err)
		return err
	}
	env.logger.Debug("feature entry added", "feature", feature, "id", added.ID)

	if printer.IsJSON() {
		return printer.WriteJSON(map[string]any{
			"status":  "ok",
			"feature": feature,
			"entry":   added,
		})
	}
	printer.Print("%s #%d %s\n", printer.Styles().Success.Render("Added"), added.ID, added.Description)
	return nil
}
