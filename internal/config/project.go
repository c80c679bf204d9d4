package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/gorewood/longrun/internal/output"
)

// DefaultTrackingRoot is the project-relative directory that holds one
// subdirectory per feature harness.
const DefaultTrackingRoot = "long_running"

// Project settings file names, looked up in the project root.
const (
	YAMLFile = ".longrun.yaml"
	TOMLFile = ".longrun.toml"
)

// Environment overrides. They beat the settings file; flags beat both.
const (
	EnvTrackingRoot  = "LONGRUN_TRACKING_ROOT"
	EnvTemplatesDir  = "LONGRUN_TEMPLATES_DIR"
	EnvCommitMessage = "LONGRUN_COMMIT_MESSAGE"
)

// Project holds per-project settings.
type Project struct {
	TrackingRoot  string `yaml:"tracking_root"  toml:"tracking_root"`
	CommitMessage string `yaml:"commit_message" toml:"commit_message"`
	TemplatesDir  string `yaml:"templates_dir"  toml:"templates_dir"`

	// Source is the settings file that was read, or "" for defaults only.
	Source string `yaml:"-" toml:"-"`
}

// Defaults returns the settings used when no file or environment applies.
func Defaults() Project {
	return Project{TrackingRoot: DefaultTrackingRoot}
}

// LoadProject reads settings for the project rooted at root.
// A missing settings file is not an error. Having both a YAML and a TOML
// file is, since neither would clearly win.
func LoadProject(root string) (Project, error) {
	cfg := Defaults()

	yamlPath := filepath.Join(root, YAMLFile)
	tomlPath := filepath.Join(root, TOMLFile)
	hasYAML := fileExists(yamlPath)
	hasTOML := fileExists(tomlPath)

	switch {
	case hasYAML && hasTOML:
		return cfg, output.NewUserError(fmt.Sprintf("both %s and %s exist in %s; keep one", YAMLFile, TOMLFile, root))
	case hasYAML:
		if err := decodeYAML(yamlPath, &cfg); err != nil {
			return cfg, err
		}
	case hasTOML:
		if err := decodeTOML(tomlPath, &cfg); err != nil {
			return cfg, err
		}
	}

	applyEnv(&cfg)

	if cfg.TrackingRoot == "" {
		cfg.TrackingRoot = DefaultTrackingRoot
	}
	if err := ValidateTrackingRoot(cfg.TrackingRoot); err != nil {
		return cfg, err
	}
	if cfg.TemplatesDir != "" && !filepath.IsAbs(cfg.TemplatesDir) {
		cfg.TemplatesDir = filepath.Join(root, cfg.TemplatesDir)
	}
	return cfg, nil
}

// ValidateTrackingRoot requires a relative path that stays inside the project.
func ValidateTrackingRoot(root string) error {
	if filepath.IsAbs(root) {
		return output.NewUserError("tracking_root must be relative to the project: " + root)
	}
	clean := filepath.Clean(root)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return output.NewUserError("tracking_root must name a directory inside the project: " + root)
	}
	return nil
}

func applyEnv(cfg *Project) {
	if v := os.Getenv(EnvTrackingRoot); v != "" {
		cfg.TrackingRoot = v
	}
	if v := os.Getenv(EnvTemplatesDir); v != "" {
		cfg.TemplatesDir = v
	}
	if v := os.Getenv(EnvCommitMessage); v != "" {
		cfg.CommitMessage = v
	}
}

func decodeYAML(path string, cfg *Project) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return output.NewSystemErrorWithCause("failed to read "+path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return output.NewUserError(fmt.Sprintf("invalid %s: %v", YAMLFile, err))
	}
	cfg.Source = path
	return nil
}

func decodeTOML(path string, cfg *Project) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return output.NewUserError(fmt.Sprintf("invalid %s: %v", TOMLFile, err))
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		slices.Sort(keys)
		return output.NewUserError(fmt.Sprintf("invalid %s: unknown keys %s", TOMLFile, strings.Join(keys, ", ")))
	}
	cfg.Source = path
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
