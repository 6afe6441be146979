package bundle

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Artifact is one output file and its rendered contents.
type Artifact struct {
	Path string
	Data []byte
}

// WriteAll stages every artifact in a temporary file beside its target and
// only renames them into place once all of them were written. On failure no
// target is touched and the temporary files are removed.
func WriteAll(arts ...Artifact) error {
	staged := make([]string, 0, len(arts))
	cleanup := func() {
		for _, p := range staged {
			_ = os.Remove(p)
		}
	}

	for _, a := range arts {
		tmp, err := stage(a)
		if err != nil {
			cleanup()
			return err
		}
		staged = append(staged, tmp)
	}

	for i, a := range arts {
		if err := os.Rename(staged[i], a.Path); err != nil {
			cleanup()
			return fmt.Errorf("publish %s: %w", a.Path, err)
		}
	}
	return nil
}

func stage(a Artifact) (string, error) {
	dir := filepath.Dir(a.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir %s: %w", dir, err)
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(a.Path)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("stage %s: %w", a.Path, err)
	}
	_, werr := f.Write(a.Data)
	serr := f.Sync()
	cerr := f.Close()
	if err := errors.Join(werr, serr, cerr); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("stage %s: %w", a.Path, err)
	}
	if err := os.Chmod(f.Name(), 0o644); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("stage %s: %w", a.Path, err)
	}
	return f.Name(), nil
}
