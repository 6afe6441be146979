package feature

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Write stores one artefact as indented JSON, creating parent directories.
func Write(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal feature %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create feature dir: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write feature %s: %w", path, err)
	}
	return nil
}
