package fileio

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// NonExecutablePerms are Linux permissions (rw-r--r--) for non-executable files (overlays, archives, etc.)
	NonExecutablePerms os.FileMode = 0o644
	// DirPerms are Linux permissions (rwxr-xr-x) for created directories
	DirPerms os.FileMode = 0o755
)

// WriteJSON serializes v to filename, replacing any previous content. Missing parent
// directories are created.
func WriteJSON(filename string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing contents: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(filename), DirPerms); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}

	if err = os.WriteFile(filename, data, NonExecutablePerms); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}
