// Package harness scaffolds and inspects the per-feature tracking
// directories a long-running coding agent works from.
package harness

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gorewood/longrun/internal/config"
	"github.com/gorewood/longrun/internal/features"
	"github.com/gorewood/longrun/internal/git"
	"github.com/gorewood/longrun/internal/logging"
	"github.com/gorewood/longrun/internal/templates"
)

// DefaultCommitMessage is used when Options.CommitMessage is empty.
// {{feature_name}} is replaced with the feature name.
const DefaultCommitMessage = "longrun: initialize {{feature_name}} harness"

// Step statuses reported in StepResult.
const (
	StatusOK      = "ok"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
	StatusDryRun  = "dry_run"
)

// Step names reported in StepResult.
const (
	StepTemplates   = "templates"
	StepTrackingDir = "tracking_dir"
	StepGitInit     = "git_init"
	StepGitCommit   = "git_commit"
)

// Options configures Initialize.
type Options struct {
	ProjectPath string
	FeatureName string
	Description string

	// TrackingRoot is relative to the project; empty means long_running.
	TrackingRoot  string
	CommitMessage string
	NoCommit      bool
	DryRun        bool

	// Resolver finds templates; nil means built-ins only.
	Resolver *templates.Resolver
	Logger   logging.Logger
	// Now defaults to time.Now.
	Now func() time.Time

	// GitBinary overrides the git executable; GitEnv is appended to its environment.
	GitBinary string
	GitEnv    []string
}

// StepResult records the outcome of one initialization step.
type StepResult struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Result describes what Initialize did.
type Result struct {
	ProjectPath     string       `json:"project_path"`
	TrackingDir     string       `json:"tracking_dir"`
	Files           []string     `json:"files"`
	HarnessID       string       `json:"harness_id"`
	RepoInitialized bool         `json:"repo_initialized"`
	Committed       bool         `json:"committed"`
	CommitSHA       string       `json:"commit_sha,omitempty"`
	DryRun          bool         `json:"dry_run,omitempty"`
	Steps           []StepResult `json:"steps"`
}

type artifact struct {
	name    string
	content string
	mode    os.FileMode
}

// Initialize creates the tracking directory for a feature, writes the
// feature list, progress log and init script into it, and commits them.
//
// Either all three artifacts appear or none do. A feature that already has
// a feature list is never touched. If git fails after the artifacts are in
// place, the files stay and the returned Result accompanies a VcsFailure
// error.
func Initialize(ctx context.Context, opts Options) (*Result, error) {
	logger := logging.OrDiscard(opts.Logger)
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	if strings.TrimSpace(opts.ProjectPath) == "" {
		return nil, errInvalidInput("project path is required")
	}
	if err := ValidateFeatureName(opts.FeatureName); err != nil {
		return nil, err
	}
	trackingRoot := opts.TrackingRoot
	if trackingRoot == "" {
		trackingRoot = config.DefaultTrackingRoot
	}
	if err := config.ValidateTrackingRoot(trackingRoot); err != nil {
		return nil, errInvalidInput(err.Error())
	}

	projectPath, err := filepath.Abs(opts.ProjectPath)
	if err != nil {
		return nil, errInvalidInput("invalid project path: " + err.Error())
	}
	if err := prepareProjectDir(projectPath, opts.DryRun); err != nil {
		return nil, err
	}

	layout := NewLayout(projectPath, trackingRoot)
	featureDir := layout.FeatureDir(opts.FeatureName)
	result := &Result{
		ProjectPath: projectPath,
		TrackingDir: featureDir,
		HarnessID:   uuid.NewString(),
		DryRun:      opts.DryRun,
	}
	for _, name := range templates.Required {
		result.Files = append(result.Files, filepath.Join(featureDir, artifactFiles[name]))
	}

	if layout.IsInitialized(opts.FeatureName) {
		return nil, errAlreadyInitialized(fmt.Sprintf("feature %q is already initialized: %s exists",
			opts.FeatureName, layout.FeatureListPath(opts.FeatureName)))
	}

	created := now()
	vars := templates.Vars{
		"project_name":    filepath.Base(projectPath),
		"feature_name":    opts.FeatureName,
		"description":     opts.Description,
		"created":         created.UTC().Format(time.RFC3339),
		"created_human":   created.Format("2006-01-02 15:04"),
		"harness_id":      result.HarnessID,
		"tracking_root":   filepath.ToSlash(layout.TrackingRoot),
		"project_relpath": projectRelPath(layout.TrackingRoot),
	}
	artifacts, err := renderArtifacts(opts.Resolver, vars)
	if err != nil {
		return nil, err
	}
	result.Steps = append(result.Steps, StepResult{Name: StepTemplates, Status: StatusOK, Message: "rendered " + joinNames(artifacts)})
	logger.Debug("templates rendered", "feature", opts.FeatureName, "files", len(artifacts))

	var repo *git.Runner
	if !opts.NoCommit {
		repo = &git.Runner{Dir: projectPath, Binary: opts.GitBinary, Env: opts.GitEnv}
		if _, err := repo.LookPath(); err != nil {
			return nil, errVcsUnavailable(err)
		}
	}

	if opts.DryRun {
		result.Steps = append(result.Steps, dryRunSteps(ctx, layout, opts, repo)...)
		return result, nil
	}

	if err := publish(layout, opts.FeatureName, artifacts); err != nil {
		return nil, err
	}
	result.Steps = append(result.Steps, StepResult{Name: StepTrackingDir, Status: StatusOK, Message: layout.RelPath(featureDir)})
	logger.Info("tracking directory created", "path", featureDir)

	if opts.NoCommit {
		result.Steps = append(result.Steps,
			StepResult{Name: StepGitInit, Status: StatusSkipped, Message: "disabled via --no-commit"},
			StepResult{Name: StepGitCommit, Status: StatusSkipped, Message: "disabled via --no-commit"})
		return result, nil
	}

	message := commitMessage(opts.CommitMessage, opts.FeatureName)
	relFiles := make([]string, len(artifacts))
	for i, a := range artifacts {
		relFiles[i] = layout.RelPath(filepath.Join(featureDir, a.name))
	}
	if err := commitArtifacts(ctx, repo, result, relFiles, message, logger); err != nil {
		return result, err
	}
	return result, nil
}

// prepareProjectDir creates the project root unless dryRun is set.
func prepareProjectDir(path string, dryRun bool) error {
	info, err := os.Stat(path)
	switch {
	case err == nil && !info.IsDir():
		return errWriteFailure("project path is not a directory: "+path, nil)
	case err == nil:
		return nil
	case !errors.Is(err, os.ErrNotExist):
		return errWriteFailure("cannot access project path "+path, err)
	case dryRun:
		return nil
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return errWriteFailure("failed to create project directory "+path, err)
	}
	return nil
}

// renderArtifacts loads every required template before rendering any, so a
// missing template is reported before anything touches the disk.
func renderArtifacts(resolver *templates.Resolver, vars templates.Vars) ([]artifact, error) {
	if resolver == nil {
		resolver = &templates.Resolver{}
	}
	loaded, err := resolver.LoadAll(templates.Required...)
	if err != nil {
		return nil, errTemplateMissing("template missing: "+err.Error(), err)
	}

	artifacts := make([]artifact, 0, len(loaded))
	for _, tmpl := range loaded {
		want := artifactFiles[tmpl.Name]
		if tmpl.File != "" && tmpl.File != want {
			return nil, errTemplateMissing(fmt.Sprintf("invalid template %s (%s): writes %q, expected %q",
				tmpl.Name, tmpl.Source, tmpl.File, want), nil)
		}
		mode, err := tmpl.FileMode()
		if err != nil {
			return nil, errTemplateMissing("invalid template: "+err.Error(), err)
		}
		content := templates.Render(tmpl, vars)
		if tmpl.Name == templates.FeatureList {
			if err := checkInitialList(content); err != nil {
				return nil, errTemplateMissing(fmt.Sprintf("invalid template %s (%s): %v", tmpl.Name, tmpl.Source, err), err)
			}
		}
		artifacts = append(artifacts, artifact{name: want, content: content, mode: mode})
	}
	return artifacts, nil
}

// checkInitialList requires a well-formed feature list with nothing passing.
func checkInitialList(content string) error {
	list, err := features.Parse([]byte(content))
	if err != nil {
		return err
	}
	if s := list.Summary(); s.Passing > 0 {
		return fmt.Errorf("%d features already marked passing", s.Passing)
	}
	return nil
}

// publish stages the artifacts in a hidden sibling directory and renames it
// into place. The rename is the only point at which the tracking directory
// becomes visible, so concurrent initializers cannot both succeed.
func publish(layout Layout, feature string, artifacts []artifact) (err error) {
	root := layout.Root()
	if err := os.MkdirAll(root, 0o755); err != nil {
		return errWriteFailure("failed to create "+root, err)
	}

	staging, err := os.MkdirTemp(root, "."+feature+".tmp-*")
	if err != nil {
		return errWriteFailure("failed to create staging directory in "+root, err)
	}
	defer func() {
		if err != nil {
			_ = os.RemoveAll(staging)
		}
	}()

	for _, a := range artifacts {
		if err := writeArtifact(filepath.Join(staging, a.name), a); err != nil {
			return errWriteFailure("failed to write "+a.name, err)
		}
	}
	if err := os.Chmod(staging, 0o755); err != nil {
		return errWriteFailure("failed to set permissions on staging directory", err)
	}

	target := layout.FeatureDir(feature)
	// An empty leftover directory is replaced; anything else blocks the rename.
	if info, statErr := os.Lstat(target); statErr == nil && info.IsDir() {
		_ = os.Remove(target)
	}
	if err := os.Rename(staging, target); err != nil {
		if layout.IsInitialized(feature) {
			return errAlreadyInitialized(fmt.Sprintf("feature %q was initialized concurrently: %s exists",
				feature, layout.FeatureListPath(feature)))
		}
		return errWriteFailure("failed to move tracking directory into place at "+target, err)
	}
	return nil
}

func writeArtifact(path string, a artifact) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, a.mode)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(a.content); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// OpenFile applies the umask; the template mode is authoritative.
	return os.Chmod(path, a.mode)
}

// commitArtifacts makes sure the project is a repository and commits
// everything under it, including files (project-relative) that .gitignore
// would exclude. It fills in result as it goes so a partial outcome is
// still reported.
func commitArtifacts(ctx context.Context, repo *git.Runner, result *Result, files []string, message string, logger logging.Logger) error {
	if repo.IsWorkTree(ctx) {
		result.Steps = append(result.Steps, StepResult{Name: StepGitInit, Status: StatusSkipped, Message: "already a repository"})
	} else {
		if err := repo.Init(ctx); err != nil {
			result.Steps = append(result.Steps, StepResult{Name: StepGitInit, Status: StatusFailed, Message: err.Error()})
			return errVcsFailure("git init failed; artifacts were written but not committed: "+err.Error(), err)
		}
		result.RepoInitialized = true
		result.Steps = append(result.Steps, StepResult{Name: StepGitInit, Status: StatusOK, Message: "initialized repository"})
		logger.Info("git repository initialized", "path", repo.Dir)
	}

	fail := func(msg string, cause error) error {
		result.Steps = append(result.Steps, StepResult{Name: StepGitCommit, Status: StatusFailed, Message: msg})
		return errVcsFailure(msg+"; artifacts were written but not committed", cause)
	}

	if err := repo.AddAll(ctx); err != nil {
		return fail("git add failed: "+err.Error(), err)
	}
	if err := repo.ForceAdd(ctx, files...); err != nil {
		return fail("git add failed: "+err.Error(), err)
	}
	staged, err := repo.StagedFiles(ctx, files...)
	if err != nil {
		return fail("cannot list staged files: "+err.Error(), err)
	}
	if missing := missingFiles(files, staged); len(missing) > 0 {
		return fail("not staged: "+strings.Join(missing, ", "), nil)
	}
	if err := repo.Commit(ctx, message); err != nil {
		return fail("git commit failed: "+err.Error(), err)
	}
	result.Committed = true

	sha, err := repo.HEAD(ctx)
	if err != nil {
		logger.Warn("commit created but HEAD could not be read", "error", err)
	}
	result.CommitSHA = sha
	result.Steps = append(result.Steps, StepResult{Name: StepGitCommit, Status: StatusOK, Message: shortSHA(sha)})
	logger.Info("artifacts committed", "sha", sha)
	return nil
}

func missingFiles(want, have []string) []string {
	staged := make(map[string]bool, len(have))
	for _, f := range have {
		staged[f] = true
	}
	var missing []string
	for _, f := range want {
		if !staged[f] {
			missing = append(missing, f)
		}
	}
	return missing
}

func dryRunSteps(ctx context.Context, layout Layout, opts Options, repo *git.Runner) []StepResult {
	steps := []StepResult{{
		Name:    StepTrackingDir,
		Status:  StatusDryRun,
		Message: "would create " + layout.RelPath(layout.FeatureDir(opts.FeatureName)),
	}}
	if repo == nil {
		return append(steps,
			StepResult{Name: StepGitInit, Status: StatusSkipped, Message: "disabled via --no-commit"},
			StepResult{Name: StepGitCommit, Status: StatusSkipped, Message: "disabled via --no-commit"})
	}

	initStep := StepResult{Name: StepGitInit, Status: StatusDryRun, Message: "would initialize repository"}
	if _, err := os.Stat(layout.ProjectRoot); err == nil && repo.IsWorkTree(ctx) {
		initStep = StepResult{Name: StepGitInit, Status: StatusSkipped, Message: "already a repository"}
	}
	return append(steps, initStep, StepResult{
		Name:    StepGitCommit,
		Status:  StatusDryRun,
		Message: fmt.Sprintf("would commit %q", commitMessage(opts.CommitMessage, opts.FeatureName)),
	})
}

func commitMessage(configured, feature string) string {
	if configured == "" {
		configured = DefaultCommitMessage
	}
	return strings.ReplaceAll(configured, "{{feature_name}}", feature)
}

// projectRelPath is the path from a tracking directory back to the project
// root, e.g. "../.." for long_running/<feature>.
func projectRelPath(trackingRoot string) string {
	depth := len(strings.Split(filepath.ToSlash(filepath.Clean(trackingRoot)), "/")) + 1
	parts := make([]string, depth)
	for i := range parts {
		parts[i] = ".."
	}
	return strings.Join(parts, "/")
}

func joinNames(artifacts []artifact) string {
	names := make([]string, len(artifacts))
	for i, a := range artifacts {
		names[i] = a.name
	}
	return strings.Join(names, ", ")
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
