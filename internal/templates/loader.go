// Package templates resolves and renders the artifact templates that make up
// a harness: the feature list, the progress log and the init script.
package templates

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Names of the templates every harness is built from.
const (
	FeatureList = "feature_list"
	Progress    = "progress"
	InitScript  = "init_script"
)

// Required lists the templates Initialize renders, in write order.
var Required = []string{FeatureList, Progress, InitScript}

// Extension is the file extension of template files on disk.
const Extension = ".tmpl"

// Sources reported in Template.Source and Info.Source.
const (
	SourceProject = "project"
	SourceGlobal  = "global"
	SourceBuiltin = "built-in"
)

// ErrNotFound is returned when a template exists in no source.
var ErrNotFound = errors.New("template not found")

// Template is an artifact template with metadata and content.
type Template struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// File is the artifact file name written into the tracking directory.
	File string `yaml:"file"`
	// Mode is the octal file mode, e.g. "0755".
	Mode string `yaml:"mode,omitempty"`
	// Format is "json" or "text"; json values are string-escaped on render.
	Format string `yaml:"format,omitempty"`

	Content string `yaml:"-"`
	Source  string `yaml:"-"`
}

// FileMode parses Mode, defaulting to 0644.
func (t *Template) FileMode() (os.FileMode, error) {
	if t.Mode == "" {
		return 0o644, nil
	}
	mode, err := strconv.ParseUint(t.Mode, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("template %s: invalid mode %q: %w", t.Name, t.Mode, err)
	}
	return os.FileMode(mode), nil
}

// Info describes a template for listing.
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	File        string `json:"file"`
	Source      string `json:"source"`
	Overrides   string `json:"overrides,omitempty"`
}

// Resolver finds templates. Lookup order: ProjectDir, GlobalDir, Builtins.
// Empty directories are skipped.
type Resolver struct {
	ProjectDir string
	GlobalDir  string
	// Builtins defaults to the embedded templates when nil.
	Builtins fs.FS
}

func (r *Resolver) builtins() fs.FS {
	if r.Builtins == nil {
		return builtinFS()
	}
	return r.Builtins
}

// Load finds and parses a template by name.
func (r *Resolver) Load(name string) (*Template, error) {
	for _, src := range r.dirs() {
		tmpl, err := loadFromDir(src.dir, name)
		if err == nil {
			tmpl.Source = src.name
			return tmpl, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	tmpl, err := loadFromFS(r.builtins(), name)
	if err == nil {
		tmpl.Source = SourceBuiltin
		return tmpl, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return nil, err
}

// LoadAll loads every name or fails on the first one that cannot be loaded.
func (r *Resolver) LoadAll(names ...string) ([]*Template, error) {
	loaded := make([]*Template, 0, len(names))
	for _, name := range names {
		tmpl, err := r.Load(name)
		if err != nil {
			return nil, err
		}
		loaded = append(loaded, tmpl)
	}
	return loaded, nil
}

// List returns every available template. Directory templates shadow
// built-ins of the same name; the shadowed built-in is not listed but the
// overriding entry records it in Overrides.
func (r *Resolver) List() []Info {
	seen := make(map[string]int)
	var infos []Info

	for _, src := range r.dirs() {
		for _, info := range listFS(os.DirFS(src.dir), ".", src.name) {
			if _, dup := seen[info.Name]; dup {
				continue
			}
			seen[info.Name] = len(infos)
			infos = append(infos, info)
		}
	}

	for _, info := range listFS(r.builtins(), ".", SourceBuiltin) {
		if idx, ok := seen[info.Name]; ok {
			infos[idx].Overrides = SourceBuiltin
			continue
		}
		infos = append(infos, info)
	}
	return infos
}

type dirSource struct {
	name string
	dir  string
}

func (r *Resolver) dirs() []dirSource {
	var dirs []dirSource
	if r.ProjectDir != "" {
		dirs = append(dirs, dirSource{SourceProject, r.ProjectDir})
	}
	if r.GlobalDir != "" {
		dirs = append(dirs, dirSource{SourceGlobal, r.GlobalDir})
	}
	return dirs
}

func loadFromDir(dir, name string) (*Template, error) {
	return loadFromFS(os.DirFS(dir), name)
}

func loadFromFS(fsys fs.FS, name string) (*Template, error) {
	path := name + Extension
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, err
	}
	tmpl, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", name, err)
	}
	if tmpl.Name == "" {
		tmpl.Name = name
	}
	return tmpl, nil
}

func listFS(fsys fs.FS, dir, source string) []Info {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil
	}

	var infos []Info
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), Extension) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), Extension)
		tmpl, err := loadFromFS(fsys, name)
		if err != nil {
			continue
		}
		infos = append(infos, Info{
			Name:        name,
			Description: tmpl.Description,
			File:        tmpl.File,
			Source:      source,
		})
	}
	return infos
}

// Parse parses a template from raw content with YAML front matter.
// The body keeps its trailing newline.
func Parse(raw string) (*Template, error) {
	frontmatter, content := splitFrontmatter(raw)

	var tmpl Template
	if frontmatter != "" {
		if err := yaml.Unmarshal([]byte(frontmatter), &tmpl); err != nil {
			return nil, fmt.Errorf("invalid frontmatter: %w", err)
		}
	}
	if tmpl.Format != "" && tmpl.Format != "json" && tmpl.Format != "text" {
		return nil, fmt.Errorf("unsupported format %q", tmpl.Format)
	}

	tmpl.Content = content
	return &tmpl, nil
}

// splitFrontmatter separates YAML front matter delimited by --- lines from content.
func splitFrontmatter(raw string) (frontmatter, content string) {
	if !strings.HasPrefix(raw, "---\n") {
		return "", raw
	}

	rest := raw[len("---\n"):]
	before, after, ok := strings.Cut(rest, "\n---\n")
	if !ok {
		return "", raw
	}
	return strings.TrimSpace(before), after
}
