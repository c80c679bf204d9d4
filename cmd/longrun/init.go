package main

import (
	"github.com/spf13/cobra"

	"github.com/gorewood/longrun/internal/harness"
	"github.com/gorewood/longrun/internal/output"
)

// initFlags holds the flags for the init command.
type initFlags struct {
	dryRun   bool
	noCommit bool
	message  string
}

// newInitCmd creates the init command.
func newInitCmd() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init <project_path> <feature_name> <description>",
		Short: "Create and commit the tracking directory for a feature",
		Long: `Create the tracking directory for a feature and commit it.

Writes <project_path>/long_running/<feature_name>/ containing:
  - feature_list.json  seed feature list, every entry failing
  - progress.txt       progress log headed with <description>
  - init.sh            executable session bootstrap script

The project directory is created if needed and initialized as a git
repository if it is not one already. The three files appear together or
not at all. A feature that is already initialized is never touched.

Templates are taken from templates_dir in .longrun.yaml, then
~/.config/longrun/templates/, then the built-in set.

Exit codes: 0 ok, 1 invalid input, 2 templates/write/git unavailable,
3 already initialized, 4 files written but the commit failed.

Examples:
  longrun init . login-flow "Add OAuth login"
  longrun init ~/src/shop billing "Usage-based billing" --no-commit
  longrun init . login-flow "Add OAuth login" --dry-run --json`,
		Args:        cobra.ExactArgs(3),
		Annotations: map[string]string{annotationProjectArg: ""},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, args, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Show what would be done without writing anything")
	cmd.Flags().BoolVar(&flags.noCommit, "no-commit", false, "Write the files but skip git init and commit")
	cmd.Flags().StringVarP(&flags.message, "message", "m", "",
		"Commit message; {{feature_name}} is replaced (default \""+harness.DefaultCommitMessage+"\")")

	return cmd
}

// runInit executes the init command.
func runInit(cmd *cobra.Command, args []string, flags *initFlags) error {
	printer := newPrinter(cmd)

	env, err := loadProjectEnv(cmd, args[0])
	if err != nil {
		printer.Error(err)
		return err
	}

	message := flags.message
	if message == "" {
		message = env.config.CommitMessage
	}

	result, err := harness.Initialize(cmd.Context(), harness.Options{
		ProjectPath:   env.root,
		FeatureName:   args[1],
		Description:   args[2],
		TrackingRoot:  env.config.TrackingRoot,
		CommitMessage: message,
		NoCommit:      flags.noCommit,
		DryRun:        flags.dryRun,
		Resolver:      env.resolver,
		Logger:        env.logger,
	})
	if result == nil {
		printer.Error(err)
		return err
	}

	if printer.IsJSON() {
		return outputInitJSON(printer, result, err)
	}
	outputInitHuman(printer, env, args[1], result, err)
	return err
}

// initStatus names the overall outcome reported in JSON.
func initStatus(result *harness.Result, err error) string {
	switch {
	case err != nil:
		return "partial"
	case result.DryRun:
		return "dry_run"
	default:
		return "ok"
	}
}

// outputInitJSON writes one JSON object. A partial result carries the
// error fields alongside what was done.
func outputInitJSON(printer *output.Printer, result *harness.Result, err error) error {
	data := map[string]any{
		"status":           initStatus(result, err),
		"project_path":     result.ProjectPath,
		"tracking_dir":     result.TrackingDir,
		"files":            result.Files,
		"harness_id":       result.HarnessID,
		"repo_initialized": result.RepoInitialized,
		"committed":        result.Committed,
		"steps":            result.Steps,
	}
	if result.CommitSHA != "" {
		data["commit_sha"] = result.CommitSHA
	}
	if err != nil {
		data["error"] = err.Error()
		data["code"] = output.GetExitCode(err)
		data["kind"] = output.GetKind(err)
	}
	if writeErr := printer.Success(data); writeErr != nil {
		return writeErr
	}
	return err
}
