package envfile

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func writeEnv(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// unset clears key for the duration of the test.
func unset(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	_ = os.Unsetenv(key) //nolint:errcheck
}

func TestLoad_NonexistentFile(t *testing.T) {
	keys, err := Load("/nonexistent/.env")
	if err != nil {
		t.Fatalf("expected nil for nonexistent file, got %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("keys = %v, want none", keys)
	}
}

func TestLoad_SetsUnsetVars(t *testing.T) {
	path := writeEnv(t, ".env.local", "LONGRUN_TRACKING_ROOT=harness\nexport LONGRUN_TEMPLATES_DIR=\"tmpl dir\"\n")
	unset(t, "LONGRUN_TRACKING_ROOT")
	unset(t, "LONGRUN_TEMPLATES_DIR")

	keys, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if got := os.Getenv("LONGRUN_TRACKING_ROOT"); got != "harness" {
		t.Errorf("LONGRUN_TRACKING_ROOT = %q, want %q", got, "harness")
	}
	if got := os.Getenv("LONGRUN_TEMPLATES_DIR"); got != "tmpl dir" {
		t.Errorf("LONGRUN_TEMPLATES_DIR = %q, want %q", got, "tmpl dir")
	}
	if want := []string{"LONGRUN_TRACKING_ROOT", "LONGRUN_TEMPLATES_DIR"}; !slices.Equal(keys, want) {
		t.Errorf("keys = %v, want %v", keys, want)
	}
}

func TestLoad_IgnoresForeignKeys(t *testing.T) {
	path := writeEnv(t, ".env", "DATABASE_URL=postgres://x\nLONGRUN_COMMIT_MESSAGE=init\n")
	unset(t, "DATABASE_URL")
	unset(t, "LONGRUN_COMMIT_MESSAGE")

	if _, err := Load(path); err != nil {
		t.Fatal(err)
	}

	if _, ok := os.LookupEnv("DATABASE_URL"); ok {
		t.Error("DATABASE_URL should not be loaded")
	}
	if got := os.Getenv("LONGRUN_COMMIT_MESSAGE"); got != "init" {
		t.Errorf("LONGRUN_COMMIT_MESSAGE = %q, want %q", got, "init")
	}
}

func TestLoad_DoesNotOverrideExisting(t *testing.T) {
	path := writeEnv(t, ".env", "LONGRUN_TRACKING_ROOT=from_file\nLONGRUN_TEMPLATES_DIR=from_file\n")
	t.Setenv("LONGRUN_TRACKING_ROOT", "from_env")
	// Set but empty still counts as set.
	t.Setenv("LONGRUN_TEMPLATES_DIR", "")

	keys, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if got := os.Getenv("LONGRUN_TRACKING_ROOT"); got != "from_env" {
		t.Errorf("LONGRUN_TRACKING_ROOT = %q, want %q (env should take precedence)", got, "from_env")
	}
	if got := os.Getenv("LONGRUN_TEMPLATES_DIR"); got != "" {
		t.Errorf("LONGRUN_TEMPLATES_DIR = %q, want empty", got)
	}
	if len(keys) != 0 {
		t.Errorf("keys = %v, want none", keys)
	}
}

func TestLoad_SkipsCommentsAndBlanks(t *testing.T) {
	path := writeEnv(t, ".env", "# This is a comment\n\nLONGRUN_TRACKING_ROOT=yes\n  # indented comment\nnot a pair\n")
	unset(t, "LONGRUN_TRACKING_ROOT")

	if _, err := Load(path); err != nil {
		t.Fatal(err)
	}

	if got := os.Getenv("LONGRUN_TRACKING_ROOT"); got != "yes" {
		t.Errorf("LONGRUN_TRACKING_ROOT = %q, want %q", got, "yes")
	}
}

func TestLoadAll_FirstFileWins(t *testing.T) {
	local := writeEnv(t, ".env.local", "LONGRUN_TRACKING_ROOT=local\n")
	shared := writeEnv(t, ".env", "LONGRUN_TRACKING_ROOT=shared\nLONGRUN_TEMPLATES_DIR=shared\n")
	unset(t, "LONGRUN_TRACKING_ROOT")
	unset(t, "LONGRUN_TEMPLATES_DIR")

	keys, err := LoadAll(local, "/nonexistent/.env", shared)
	if err != nil {
		t.Fatal(err)
	}

	if got := os.Getenv("LONGRUN_TRACKING_ROOT"); got != "local" {
		t.Errorf("LONGRUN_TRACKING_ROOT = %q, want %q", got, "local")
	}
	if want := []string{"LONGRUN_TRACKING_ROOT", "LONGRUN_TEMPLATES_DIR"}; !slices.Equal(keys, want) {
		t.Errorf("keys = %v, want %v", keys, want)
	}
}

func TestParseEnvLine(t *testing.T) {
	tests := []struct {
		line      string
		wantKey   string
		wantValue string
		wantOK    bool
	}{
		{"KEY=value", "KEY", "value", true},
		{"KEY = value ", "KEY", "value", true},
		{"export KEY=value", "KEY", "value", true},
		{`KEY="quoted value"`, "KEY", "quoted value", true},
		{"KEY='single'", "KEY", "single", true},
		{`KEY="mismatched'`, "KEY", `"mismatched'`, true},
		{"KEY=a=b", "KEY", "a=b", true},
		{"KEY=", "KEY", "", true},
		{"=value", "", "", false},
		{"no equals", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			key, value, ok := parseEnvLine(tt.line)
			if key != tt.wantKey || value != tt.wantValue || ok != tt.wantOK {
				t.Errorf("parseEnvLine(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tt.line, key, value, ok, tt.wantKey, tt.wantValue, tt.wantOK)
			}
		})
	}
}
