package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gorewood/longrun/internal/output"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvTrackingRoot, "")
	t.Setenv(EnvTemplatesDir, "")
	t.Setenv(EnvCommitMessage, "")
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoadProject_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadProject(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DefaultTrackingRoot, cfg.TrackingRoot)
	assert.Empty(t, cfg.CommitMessage)
	assert.Empty(t, cfg.TemplatesDir)
	assert.Empty(t, cfg.Source)
}

func TestLoadProject_YAML(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	write(t, filepath.Join(root, YAMLFile), "tracking_root: .harness\ntemplates_dir: tmpl\ncommit_message: \"chore: harness\"\n")

	cfg, err := LoadProject(root)
	require.NoError(t, err)

	assert.Equal(t, ".harness", cfg.TrackingRoot)
	assert.Equal(t, filepath.Join(root, "tmpl"), cfg.TemplatesDir)
	assert.Equal(t, "chore: harness", cfg.CommitMessage)
	assert.Equal(t, filepath.Join(root, YAMLFile), cfg.Source)
}

func TestLoadProject_TOML(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	write(t, filepath.Join(root, TOMLFile), "tracking_root = \"agents\"\n")

	cfg, err := LoadProject(root)
	require.NoError(t, err)
	assert.Equal(t, "agents", cfg.TrackingRoot)
}

func TestLoadProject_UnknownKeys(t *testing.T) {
	clearEnv(t)

	t.Run("yaml", func(t *testing.T) {
		root := t.TempDir()
		write(t, filepath.Join(root, YAMLFile), "trackng_root: typo\n")
		_, err := LoadProject(root)
		require.Error(t, err)
		assert.Equal(t, output.ExitUserError, output.GetExitCode(err))
	})

	t.Run("toml", func(t *testing.T) {
		root := t.TempDir()
		write(t, filepath.Join(root, TOMLFile), "trackng_root = \"typo\"\n")
		_, err := LoadProject(root)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "trackng_root")
	})
}

func TestLoadProject_BothFormats(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	write(t, filepath.Join(root, YAMLFile), "tracking_root: a\n")
	write(t, filepath.Join(root, TOMLFile), "tracking_root = \"b\"\n")

	_, err := LoadProject(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keep one")
}

func TestLoadProject_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	write(t, filepath.Join(root, YAMLFile), "tracking_root: from-file\n")
	t.Setenv(EnvTrackingRoot, "from-env")
	t.Setenv(EnvCommitMessage, "env message")

	cfg, err := LoadProject(root)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.TrackingRoot)
	assert.Equal(t, "env message", cfg.CommitMessage)
}

func TestLoadProject_EmptyYAML(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	write(t, filepath.Join(root, YAMLFile), "")

	cfg, err := LoadProject(root)
	require.NoError(t, err)
	assert.Equal(t, DefaultTrackingRoot, cfg.TrackingRoot)
}

func TestValidateTrackingRoot(t *testing.T) {
	tests := []struct {
		root    string
		wantErr bool
	}{
		{root: "long_running"},
		{root: "tools/harness"},
		{root: "/abs/path", wantErr: true},
		{root: ".", wantErr: true},
		{root: "..", wantErr: true},
		{root: "../outside", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.root, func(t *testing.T) {
			err := ValidateTrackingRoot(tt.root)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
