package build

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Writer stores completed assets.
type Writer interface {
	Write(rel string, data []byte) error
}

// DirWriter writes files below Root, creating directories on demand.
type DirWriter struct {
	Root string
}

// Write stores data at the slash-separated path rel.
func (w DirWriter) Write(rel string, data []byte) error {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("output path %q escapes target", rel)
	}
	p := filepath.Join(w.Root, clean)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
