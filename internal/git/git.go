// Package git provides Git operations via exec for the longrun CLI.
package git

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"

	"github.com/gorewood/longrun/internal/output"
)

// ErrNotInstalled is the cause attached to errors raised when the git binary
// cannot be found.
var ErrNotInstalled = errors.New("git not found: ensure git is installed and in PATH")

// Runner runs git commands inside a fixed working directory.
type Runner struct {
	// Dir is the working directory for every command.
	Dir string
	// Binary is the git executable; empty means "git" from PATH.
	Binary string
	// Env holds extra KEY=VALUE pairs appended to the process environment.
	Env []string
}

// New returns a Runner rooted at dir.
func New(dir string) *Runner {
	return &Runner{Dir: dir}
}

func (r *Runner) binary() string {
	if r.Binary == "" {
		return "git"
	}
	return r.Binary
}

// LookPath resolves the git binary. It returns a system error wrapping
// ErrNotInstalled when git is unavailable.
func (r *Runner) LookPath() (string, error) {
	path, err := exec.LookPath(r.binary())
	if err != nil {
		return "", output.NewSystemErrorWithCause(ErrNotInstalled.Error(), errors.Join(ErrNotInstalled, err))
	}
	return path, nil
}

// Run executes a git command in r.Dir and returns trimmed stdout.
// Failures are *output.ExitError values carrying git's stderr.
func (r *Runner) Run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, r.binary(), args...)
	cmd.Dir = r.Dir
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return "", output.NewSystemErrorWithCause(ErrNotInstalled.Error(), errors.Join(ErrNotInstalled, err))
		}

		errMsg := strings.TrimSpace(stderr.String())
		if errMsg == "" {
			errMsg = err.Error()
		}
		return "", output.NewSystemErrorWithCause("git "+args[0]+" failed: "+errMsg, err)
	}

	return strings.TrimSpace(stdout.String()), nil
}

// IsWorkTree reports whether r.Dir is inside a git working tree.
func (r *Runner) IsWorkTree(ctx context.Context) bool {
	out, err := r.Run(ctx, "rev-parse", "--is-inside-work-tree")
	return err == nil && out == "true"
}

// Init creates a new repository in r.Dir.
func (r *Runner) Init(ctx context.Context) error {
	_, err := r.Run(ctx, "init")
	return err
}

// AddAll stages every change under r.Dir.
func (r *Runner) AddAll(ctx context.Context) error {
	_, err := r.Run(ctx, "add", "-A", "--", ".")
	return err
}

// ForceAdd stages paths even when .gitignore excludes them.
func (r *Runner) ForceAdd(ctx context.Context, paths ...string) error {
	args := append([]string{"add", "-f", "--"}, paths...)
	_, err := r.Run(ctx, args...)
	return err
}

// StagedFiles lists files in the index that differ from HEAD, relative to
// r.Dir, optionally limited to paths.
func (r *Runner) StagedFiles(ctx context.Context, paths ...string) ([]string, error) {
	args := []string{"diff", "--cached", "--name-only", "--relative", "--no-renames", "-z"}
	if len(paths) > 0 {
		args = append(args, "--")
		args = append(args, paths...)
	}
	out, err := r.Run(ctx, args...)
	if err != nil {
		return nil, err
	}
	out = strings.TrimRight(out, "\x00")
	if out == "" {
		return []string{}, nil
	}
	return strings.Split(out, "\x00"), nil
}

// Commit records the staged changes with the given message.
func (r *Runner) Commit(ctx context.Context, message string) error {
	_, err := r.Run(ctx, "commit", "-m", message)
	return err
}

// HEAD returns the full SHA of the current HEAD commit.
func (r *Runner) HEAD(ctx context.Context) (string, error) {
	sha, err := r.Run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", output.NewSystemErrorWithCause("failed to get HEAD", err)
	}
	return sha, nil
}

// ShowFile returns the content of relPath (relative to r.Dir) at rev.
func (r *Runner) ShowFile(ctx context.Context, rev, relPath string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, r.binary(), "show", rev+":./"+relPath)
	cmd.Dir = r.Dir
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, output.NewSystemErrorWithCause("git show failed: "+msg, err)
	}
	return out, nil
}
