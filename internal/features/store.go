package features

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gorewood/longrun/internal/output"
)

// Load reads and parses the feature list at path.
func Load(path string) (*List, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, output.NewKindError(output.ExitUserError, output.KindNotFound, "feature list not found: "+path, err)
		}
		return nil, output.NewSystemErrorWithCause("failed to read feature list: "+path, err)
	}

	list, err := Parse(data)
	if err != nil {
		return nil, output.NewKindError(output.ExitUserError, output.KindInvalidInput, "invalid feature list "+path+": "+err.Error(), err)
	}
	return list, nil
}

// Save recomputes metadata and writes list to path atomically. Permissions
// of an existing file are kept.
func Save(path string, list *List, now time.Time) error {
	if err := list.Validate(); err != nil {
		return output.NewUserError(err.Error())
	}
	list.Touch(now)

	data, err := list.ToJSON()
	if err != nil {
		return output.NewSystemError(err.Error())
	}

	perm := os.FileMode(0o644)
	if info, statErr := os.Stat(path); statErr == nil {
		perm = info.Mode().Perm()
	}
	if err := atomicWrite(path, data, perm); err != nil {
		return output.NewSystemErrorWithCause("failed to write feature list", err)
	}
	return nil
}

// atomicWrite writes data to path using write-to-temp-then-rename.
// The temp file is created in the same directory as path.
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("write data: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
