package harness

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gorewood/longrun/internal/config"
	"github.com/gorewood/longrun/internal/features"
	"github.com/gorewood/longrun/internal/output"
	"github.com/gorewood/longrun/internal/progress"
	"github.com/gorewood/longrun/internal/templates"
)

// InitScriptFile is the environment script inside a tracking directory.
const InitScriptFile = "init.sh"

// artifactFiles maps each required template to the file it produces.
var artifactFiles = map[string]string{
	templates.FeatureList: features.FileName,
	templates.Progress:    progress.FileName,
	templates.InitScript:  InitScriptFile,
}

// Layout locates tracking directories inside a project.
type Layout struct {
	ProjectRoot  string
	TrackingRoot string
}

// NewLayout returns the layout for projectRoot; an empty trackingRoot means
// the default.
func NewLayout(projectRoot, trackingRoot string) Layout {
	if trackingRoot == "" {
		trackingRoot = config.DefaultTrackingRoot
	}
	return Layout{ProjectRoot: projectRoot, TrackingRoot: filepath.Clean(trackingRoot)}
}

// Root returns the directory holding every feature's tracking directory.
func (l Layout) Root() string {
	return filepath.Join(l.ProjectRoot, l.TrackingRoot)
}

// FeatureDir returns the tracking directory for feature.
func (l Layout) FeatureDir(feature string) string {
	return filepath.Join(l.Root(), feature)
}

// FeatureListPath returns the feature list for feature.
func (l Layout) FeatureListPath(feature string) string {
	return filepath.Join(l.FeatureDir(feature), features.FileName)
}

// ProgressPath returns the progress log for feature.
func (l Layout) ProgressPath(feature string) string {
	return filepath.Join(l.FeatureDir(feature), progress.FileName)
}

// InitScriptPath returns the environment script for feature.
func (l Layout) InitScriptPath(feature string) string {
	return filepath.Join(l.FeatureDir(feature), InitScriptFile)
}

// RelPath returns path relative to the project root using forward slashes.
func (l Layout) RelPath(path string) string {
	rel, err := filepath.Rel(l.ProjectRoot, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// IsInitialized reports whether feature already has a feature list.
func (l Layout) IsInitialized(feature string) bool {
	_, err := os.Lstat(l.FeatureListPath(feature))
	return err == nil
}

// Features lists the initialized features in name order. Hidden entries,
// including staging directories, are ignored.
func (l Layout) Features() ([]string, error) {
	entries, err := os.ReadDir(l.Root())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, output.NewSystemErrorWithCause("failed to read "+l.Root(), err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if l.IsInitialized(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

// RequireFeature returns a NotFound error unless feature is initialized.
func (l Layout) RequireFeature(feature string) error {
	if err := ValidateFeatureName(feature); err != nil {
		return err
	}
	if !l.IsInitialized(feature) {
		return errNotFound("no harness for feature "+feature+" in "+l.Root(), nil)
	}
	return nil
}

// ValidateFeatureName accepts any non-empty string usable as a single
// directory name.
func ValidateFeatureName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return errInvalidInput("feature name is required")
	case name == "." || name == "..":
		return errInvalidInput("feature name cannot be " + name)
	case strings.ContainsAny(name, `/\`):
		return errInvalidInput("feature name must be a single path segment: " + name)
	case strings.ContainsRune(name, 0):
		return errInvalidInput("feature name contains a NUL byte")
	case strings.HasPrefix(name, "."):
		return errInvalidInput("feature name cannot start with a dot: " + name)
	}
	return nil
}
