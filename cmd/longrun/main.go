// Package main provides the entry point for the longrun CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/gorewood/longrun/internal/config"
	"github.com/gorewood/longrun/internal/envfile"
	"github.com/gorewood/longrun/internal/logging"
	"github.com/gorewood/longrun/internal/output"
)

// Build info set via ldflags at build time by goreleaser.
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123 -X main.date=2024-01-01"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// annotationProjectArg marks commands whose first positional argument is
// the project root, taking the place of --project.
const annotationProjectArg = "longrun/project-arg"

// isJSONMode reads the --json persistent flag from the command hierarchy.
func isJSONMode(cmd *cobra.Command) bool {
	return boolFlag(cmd, "json")
}

// isDebug reads the --debug persistent flag.
func isDebug(cmd *cobra.Command) bool {
	return boolFlag(cmd, "debug")
}

func boolFlag(cmd *cobra.Command, name string) bool {
	flag := cmd.Flags().Lookup(name)
	if flag == nil {
		flag = cmd.Root().PersistentFlags().Lookup(name)
	}
	return flag != nil && flag.Value.String() == "true"
}

func stringFlag(cmd *cobra.Command, name string) string {
	flag := cmd.Flags().Lookup(name)
	if flag == nil {
		flag = cmd.Root().PersistentFlags().Lookup(name)
	}
	if flag == nil {
		return ""
	}
	return flag.Value.String()
}

// useColor resolves --color against the command's stdout.
// An invalid value falls back to auto; PersistentPreRunE rejects it first.
func useColor(cmd *cobra.Command) bool {
	mode, err := output.ParseColorMode(stringFlag(cmd, "color"))
	if err != nil {
		mode = output.ColorAuto
	}
	return mode.Enabled(output.IsTTY(cmd.OutOrStdout()))
}

// newPrinter builds the printer every command writes through.
func newPrinter(cmd *cobra.Command) *output.Printer {
	return output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), useColor(cmd)).WithStderr(cmd.ErrOrStderr())
}

// newLogger returns the diagnostics logger: warnings only, or everything
// with --debug. It always writes to stderr so JSON output stays clean.
func newLogger(cmd *cobra.Command) *slog.Logger {
	return logging.New(cmd.ErrOrStderr(), isDebug(cmd))
}

// buildVersion returns the full version string including commit and date.
func buildVersion() string {
	if commit == "none" && date == "unknown" {
		return version
	}
	shortCommit := commit
	if len(commit) > 7 {
		shortCommit = commit[:7]
	}
	return fmt.Sprintf("%s (%s, %s)", version, shortCommit, date)
}

func main() {
	code := run()
	os.Exit(code)
}

func run() int {
	cmd := newRootCmd()
	err := fang.Execute(context.Background(), cmd, fang.WithVersion(buildVersion()))
	return output.GetExitCode(err)
}

// newRootCmd creates the root command for the longrun CLI.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "longrun",
		Short: "Scaffold and track long-running agent harnesses",
		Long: `Longrun - scaffolding for long-running, multi-session agent work.

Each feature gets a tracking directory under long_running/<feature>/ holding:
  - feature_list.json  the features to build, each starting as failing
  - progress.txt       an append-only log of what every session did
  - init.sh            the script a new session runs to get its bearings

longrun init creates and commits that directory; the other commands read
and update it without ever rewriting history.

All commands support --json for structured output.`,
		Version:       buildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if isJSONMode(cmd) {
				printer := output.NewPrinter(cmd.OutOrStdout(), true, false)
				err := output.NewUserError("no command specified. Run 'longrun --help' for usage")
				printer.Error(err)
				return err
			}
			return cmd.Help()
		},
	}

	// Validate --color and load env files before any command runs.
	// Environment variables already set always take precedence over file values.
	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if _, err := output.ParseColorMode(stringFlag(cmd, "color")); err != nil {
			newPrinter(cmd).Error(err)
			return err
		}
		loadEnvFiles(cmd, projectDirArg(cmd, args))
		return nil
	}

	flags := cmd.PersistentFlags()
	flags.Bool("json", false, "Output in JSON format")
	flags.String("color", string(output.ColorAuto), "Colorize output: auto, always or never")
	flags.Bool("debug", false, "Log diagnostics to stderr")
	flags.StringP("project", "C", ".", "Project root")
	flags.String("tracking-root", "", "Directory under the project holding tracking directories (default long_running)")

	lipgloss.SetHasDarkBackground(true)

	addCommandGroups(cmd)
	addCommands(cmd)

	return cmd
}

// projectDirArg returns the project root a command operates on: its first
// argument for commands annotated with annotationProjectArg, else --project.
func projectDirArg(cmd *cobra.Command, args []string) string {
	if _, ok := cmd.Annotations[annotationProjectArg]; ok && len(args) > 0 {
		return args[0]
	}
	return stringFlag(cmd, "project")
}

// loadEnvFiles loads env files in priority order. First match for each
// variable wins; environment variables already set always take precedence.
//
// Resolution order:
//  1. <project>/.env.local   (per-checkout override, gitignored)
//  2. <project>/.env         (per-project)
//  3. ~/.config/longrun/env  (global fallback)
func loadEnvFiles(cmd *cobra.Command, project string) {
	paths := []string{
		filepath.Join(project, ".env.local"),
		filepath.Join(project, ".env"),
	}
	if dir := config.Dir(); dir != "" {
		paths = append(paths, filepath.Join(dir, "env"))
	}

	logger := newLogger(cmd)
	keys, err := envfile.LoadAll(paths...)
	if err != nil {
		logger.Warn("env file not loaded", "error", err)
	}
	if len(keys) > 0 {
		logger.Debug("environment loaded from env files", "keys", keys)
	}
}

// addCommandGroups defines the command groups for help output.
func addCommandGroups(cmd *cobra.Command) {
	cmd.AddGroup(&cobra.Group{ID: "core", Title: "Core Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "track", Title: "Tracking Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "agent", Title: "Agent Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "admin", Title: "Admin Commands:"})
}

// addCommands adds all subcommands with their group assignments.
func addCommands(cmd *cobra.Command) {
	// Core commands: init, status
	addGroupedCommand(cmd, newInitCmd(), "core")
	addGroupedCommand(cmd, newStatusCmd(), "core")

	// Tracking commands: add, pass, session, check
	addGroupedCommand(cmd, newAddCmd(), "track")
	addGroupedCommand(cmd, newPassCmd(), "track")
	addGroupedCommand(cmd, newSessionCmd(), "track")
	addGroupedCommand(cmd, newCheckCmd(), "track")

	// Agent commands: serve, watch, dashboard
	addGroupedCommand(cmd, newServeCmd(), "agent")
	addGroupedCommand(cmd, newWatchCmd(), "agent")
	addGroupedCommand(cmd, newDashboardCmd(), "agent")

	// Admin commands: templates
	addGroupedCommand(cmd, newTemplatesCmd(), "admin")
}

// addGroupedCommand adds a subcommand with a group assignment.
func addGroupedCommand(parent *cobra.Command, child *cobra.Command, groupID string) {
	child.GroupID = groupID
	parent.AddCommand(child)
}
