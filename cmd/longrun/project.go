package main

import (
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gorewood/longrun/internal/config"
	"github.com/gorewood/longrun/internal/harness"
	"github.com/gorewood/longrun/internal/output"
	"github.com/gorewood/longrun/internal/templates"
)

// projectEnv is the resolved context a command works in.
type projectEnv struct {
	root     string
	config   config.Project
	layout   harness.Layout
	resolver *templates.Resolver
	logger   *slog.Logger
}

// loadProjectEnv resolves settings for the project at dir. The settings
// file is read first, then LONGRUN_* variables, then --tracking-root.
func loadProjectEnv(cmd *cobra.Command, dir string) (*projectEnv, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, output.NewUserError("invalid project path: " + err.Error())
	}

	cfg, err := config.LoadProject(root)
	if err != nil {
		return nil, err
	}
	if flagRoot := stringFlag(cmd, "tracking-root"); flagRoot != "" {
		if err := config.ValidateTrackingRoot(flagRoot); err != nil {
			return nil, err
		}
		cfg.TrackingRoot = flagRoot
	}

	logger := newLogger(cmd)
	if cfg.Source != "" {
		logger.Debug("project settings loaded", "path", cfg.Source)
	}

	return &projectEnv{
		root:   root,
		config: cfg,
		layout: harness.NewLayout(root, cfg.TrackingRoot),
		resolver: &templates.Resolver{
			ProjectDir: cfg.TemplatesDir,
			GlobalDir:  config.GlobalTemplatesDir(),
		},
		logger: logger,
	}, nil
}

// loadCurrentProject resolves the project named by --project.
func loadCurrentProject(cmd *cobra.Command) (*projectEnv, error) {
	return loadProjectEnv(cmd, stringFlag(cmd, "project"))
}
