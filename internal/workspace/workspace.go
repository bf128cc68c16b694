package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/sitekit/internal/logfields"
)

// Manager owns one temporary directory.
type Manager struct {
	baseDir string
	dir     string
}

// NewManager creates a manager placing its directory under baseDir, or under
// the system temp dir when baseDir is empty.
func NewManager(baseDir string) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &Manager{baseDir: baseDir}
}

// Create makes the workspace directory. Calling it again is a no-op.
func (m *Manager) Create() error {
	if m.dir != "" {
		return nil
	}
	if err := os.MkdirAll(m.baseDir, 0o750); err != nil {
		return fmt.Errorf("failed to create workspace base: %w", err)
	}
	dir, err := os.MkdirTemp(m.baseDir, "sitekit-")
	if err != nil {
		return fmt.Errorf("failed to create workspace directory: %w", err)
	}
	m.dir = dir
	slog.Debug("Created workspace", logfields.Path(dir))
	return nil
}

// Path returns the workspace directory, "" before Create.
func (m *Manager) Path() string { return m.dir }

// Subdir returns a fresh, empty subdirectory named name.
func (m *Manager) Subdir(name string) (string, error) {
	if m.dir == "" {
		return "", fmt.Errorf("workspace not created")
	}
	clean := filepath.Clean(string(filepath.Separator) + name)
	if clean == string(filepath.Separator) || strings.Contains(name, "..") {
		return "", fmt.Errorf("invalid workspace subdirectory %q", name)
	}
	sub := filepath.Join(m.dir, clean)
	if err := os.RemoveAll(sub); err != nil {
		return "", fmt.Errorf("failed to reset subdirectory: %w", err)
	}
	if err := os.MkdirAll(sub, 0o750); err != nil {
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}
	return sub, nil
}

// Cleanup removes the workspace directory.
func (m *Manager) Cleanup() error {
	if m.dir == "" {
		return nil
	}
	if err := os.RemoveAll(m.dir); err != nil {
		return fmt.Errorf("failed to cleanup workspace: %w", err)
	}
	slog.Debug("Cleaned up workspace", logfields.Path(m.dir))
	m.dir = ""
	return nil
}
