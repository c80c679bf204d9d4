package main

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorewood/longrun/internal/output"
)

// isolate points global config at an empty directory and pins git
// identity so commands behave the same on every machine.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("LONGRUN_CONFIG_HOME", t.TempDir())
	for _, key := range []string{"LONGRUN_TRACKING_ROOT", "LONGRUN_TEMPLATES_DIR", "LONGRUN_COMMIT_MESSAGE"} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key) //nolint:errcheck
	}
	t.Setenv("GIT_CONFIG_GLOBAL", os.DevNull)
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")
	t.Setenv("GIT_AUTHOR_NAME", "Test User")
	t.Setenv("GIT_AUTHOR_EMAIL", "test@test.com")
	t.Setenv("GIT_COMMITTER_NAME", "Test User")
	t.Setenv("GIT_COMMITTER_EMAIL", "test@test.com")
}

// requireGit skips the test when git is not installed.
func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

// execute runs the CLI with args and returns combined output and the error.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// executeJSON runs the CLI with --json and decodes the single object it prints.
func executeJSON(t *testing.T, args ...string) (map[string]any, error) {
	t.Helper()
	out, err := execute(t, append(args, "--json")...)
	var result map[string]any
	if jsonErr := json.Unmarshal([]byte(out), &result); jsonErr != nil {
		t.Fatalf("output is not a JSON object: %v\nOutput: %s", jsonErr, out)
	}
	return result, err
}

// runGit runs a git command in the given directory.
func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v failed: %v\nOutput: %s", args, err, out)
	}
	return string(out)
}

// initFeature initializes feature in project without committing.
func initFeature(t *testing.T, project, feature string) {
	t.Helper()
	if out, err := execute(t, "init", project, feature, "Describe "+feature, "--no-commit"); err != nil {
		t.Fatalf("init %s failed: %v\nOutput: %s", feature, err, out)
	}
}

func TestRootCommand_Version(t *testing.T) {
	version = "1.2.3"
	t.Cleanup(func() { version = "dev" })

	out, err := execute(t, "--version")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, "1.2.3") {
		t.Errorf("--version output should contain version: %q", out)
	}
	if !strings.Contains(out, "longrun") {
		t.Errorf("--version output should contain 'longrun': %q", out)
	}
}

func TestRootCommand_Help(t *testing.T) {
	out, err := execute(t, "--help")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	expectations := []string{
		"longrun",
		"Usage:",
		"--json",
		"--color",
		"--project",
		"init",
		"session",
	}
	for _, expected := range expectations {
		if !strings.Contains(out, expected) {
			t.Errorf("--help output should contain %q: %q", expected, out)
		}
	}
}

func TestRootCommand_JSONFlag_NoSubcommand(t *testing.T) {
	isolate(t)
	result, err := executeJSON(t)
	if err == nil {
		t.Fatal("Expected error when running with --json but no subcommand")
	}
	if _, ok := result["error"]; !ok {
		t.Errorf("JSON output should contain 'error' field: %v", result)
	}
	if code, _ := result["code"].(float64); int(code) != output.ExitUserError {
		t.Errorf("code = %v, want %d", result["code"], output.ExitUserError)
	}
}

func TestRootCommand_PersistentFlags(t *testing.T) {
	cmd := newRootCmd()
	for _, name := range []string{"json", "color", "debug", "project", "tracking-root"} {
		if cmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("--%s should be a persistent flag", name)
		}
	}
}

func TestRootCommand_InvalidColor(t *testing.T) {
	isolate(t)
	_, err := execute(t, "status", "-C", t.TempDir(), "--color", "sometimes")
	if err == nil {
		t.Fatal("expected error for invalid --color")
	}
	if got := output.GetExitCode(err); got != output.ExitUserError {
		t.Errorf("exit code = %d, want %d", got, output.ExitUserError)
	}
}

func TestLoadEnvFiles_ProjectEnv(t *testing.T) {
	isolate(t)
	project := t.TempDir()
	if err := os.WriteFile(filepath.Join(project, ".env"), []byte("LONGRUN_TRACKING_ROOT=agent_harness\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	initFeature(t, project, "login-flow")

	if _, err := os.Stat(filepath.Join(project, "agent_harness", "login-flow", "feature_list.json")); err != nil {
		t.Errorf("tracking root from .env not applied: %v", err)
	}
}

func TestBuildVersion(t *testing.T) {
	oldVersion, oldCommit, oldDate := version, commit, date
	t.Cleanup(func() { version, commit, date = oldVersion, oldCommit, oldDate })

	version, commit, date = "1.0.0", "none", "unknown"
	if got := buildVersion(); got != "1.0.0" {
		t.Errorf("buildVersion() = %q, want %q", got, "1.0.0")
	}

	commit, date = "0123456789abcdef", "2026-10-18"
	if got := buildVersion(); got != "1.0.0 (0123456, 2026-10-18)" {
		t.Errorf("buildVersion() = %q", got)
	}
}
