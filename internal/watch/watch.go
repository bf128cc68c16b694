// Package watch rebuilds a site when files under its source directories
// change.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/sitekit/internal/logfields"
)

// DefaultDebounce is the quiet period after the last change before a rebuild.
const DefaultDebounce = 300 * time.Millisecond

// RebuildFunc performs one build. Errors are logged and watching continues.
type RebuildFunc func(ctx context.Context) error

// Watcher watches directory trees and runs at most one rebuild at a time.
// Changes during a rebuild schedule exactly one follow-up rebuild.
type Watcher struct {
	dirs     []string
	ignored  []string
	debounce time.Duration
	rebuild  RebuildFunc
	logger   *slog.Logger
}

// New creates a watcher over dirs.
func New(dirs []string, rebuild RebuildFunc) *Watcher {
	return &Watcher{
		dirs:     dirs,
		debounce: DefaultDebounce,
		rebuild:  rebuild,
		logger:   slog.Default(),
	}
}

// WithDebounce sets the quiet period.
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	if d > 0 {
		w.debounce = d
	}
	return w
}

// WithIgnore excludes trees, typically the build target when it lives
// inside a watched directory.
func (w *Watcher) WithIgnore(dirs ...string) *Watcher {
	for _, d := range dirs {
		if abs, err := filepath.Abs(d); err == nil {
			w.ignored = append(w.ignored, abs)
		}
	}
	return w
}

// WithLogger sets the logger.
func (w *Watcher) WithLogger(l *slog.Logger) *Watcher {
	if l != nil {
		w.logger = l
	}
	return w
}

// Run watches until ctx is cancelled, then waits for a running rebuild.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = fw.Close() }()

	for _, d := range w.dirs {
		abs, err := filepath.Abs(d)
		if err != nil {
			return fmt.Errorf("resolve watch dir: %w", err)
		}
		if err := w.addRecursive(fw, abs); err != nil {
			return err
		}
	}
	w.logger.Info("Watching for changes", slog.Any("dirs", w.dirs))

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	var done chan struct{}
	pending := false
	start := func() {
		done = make(chan struct{})
		go func(done chan struct{}) {
			defer close(done)
			w.logger.Info("Change detected; rebuilding site")
			if err := w.rebuild(ctx); err != nil {
				w.logger.Warn("Rebuild failed", logfields.Error(err))
			}
		}(done)
	}

	for {
		select {
		case <-ctx.Done():
			if done != nil {
				<-done
			}
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.handle(fw, ev) {
				timer.Reset(w.debounce)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", logfields.Error(err))
		case <-timer.C:
			if done != nil {
				pending = true
				continue
			}
			start()
		case <-done:
			done = nil
			if pending {
				pending = false
				start()
			}
		}
	}
}

// handle reports whether ev should trigger a rebuild. New directories are
// added to the watch list.
func (w *Watcher) handle(fw *fsnotify.Watcher, ev fsnotify.Event) bool {
	if ShouldIgnore(ev.Name) || w.isIgnored(ev.Name) {
		return false
	}
	if ev.Op&fsnotify.Chmod == ev.Op {
		return false
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = w.addRecursive(fw, ev.Name)
		}
	}
	w.logger.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	return true
}

func (w *Watcher) addRecursive(fw *fsnotify.Watcher, root string) error {
	if _, err := os.Stat(root); err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && (strings.HasPrefix(d.Name(), ".") || w.isIgnored(p)) {
			return filepath.SkipDir
		}
		if err := fw.Add(p); err != nil {
			w.logger.Warn("Watch add failed", logfields.Path(p), logfields.Error(err))
		}
		return nil
	})
}

func (w *Watcher) isIgnored(p string) bool {
	for _, ig := range w.ignored {
		if p == ig || strings.HasPrefix(p, ig+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// ShouldIgnore reports whether a changed path is editor or OS noise.
func ShouldIgnore(p string) bool {
	base := filepath.Base(p)
	switch {
	case strings.HasPrefix(base, "."):
		return true
	case strings.HasSuffix(base, "~"), strings.HasSuffix(base, ".swp"), strings.HasSuffix(base, ".swx"):
		return true
	case strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	case base == "Thumbs.db":
		return true
	}
	return false
}
