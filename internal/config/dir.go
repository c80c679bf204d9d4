// Package config resolves longrun configuration: the global configuration
// directory and the optional per-project settings file.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// appName names the directory under the platform config root.
const appName = "longrun"

// Dir returns the longrun configuration directory.
//
// Resolution:
//   - $LONGRUN_CONFIG_HOME if set
//   - $XDG_CONFIG_HOME/longrun if set
//   - %AppData%/longrun on Windows
//   - ~/.config/longrun on macOS and Linux
//
// Returns "" when no home directory can be determined.
func Dir() string {
	if dir := os.Getenv("LONGRUN_CONFIG_HOME"); dir != "" {
		return dir
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}

	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appName)
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// GlobalTemplatesDir returns the directory holding user-wide template
// overrides, or "" when Dir is unknown.
func GlobalTemplatesDir() string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "templates")
}
