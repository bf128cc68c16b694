// Package kit resolves kits, external bundles of reusable assets, into local
// directories. A kit source is either a local directory or a git URL.
package kit

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/sitekit/internal/config"
	"git.home.luguber.info/inful/sitekit/internal/foundation/errors"
	"git.home.luguber.info/inful/sitekit/internal/logfields"
	"git.home.luguber.info/inful/sitekit/internal/retry"
	"git.home.luguber.info/inful/sitekit/internal/workspace"
)

// Mounted is a resolved kit.
type Mounted struct {
	Name string
	// Dir is the local directory holding the kit's files.
	Dir string
	// Mount is the slash-separated logical prefix, "" for the root.
	Mount  string
	Remote bool
}

// Cloner fetches a git repository into dir.
type Cloner interface {
	Clone(ctx context.Context, url, ref, dir string) error
}

// Resolver turns kit configuration into local directories.
type Resolver struct {
	ws     *workspace.Manager
	cloner Cloner
	retry  retry.Policy
	logger *slog.Logger
}

// NewResolver creates a resolver cloning remote kits into ws.
func NewResolver(ws *workspace.Manager, cloner Cloner) *Resolver {
	if cloner == nil {
		cloner = GitCloner{}
	}
	return &Resolver{ws: ws, cloner: cloner, retry: retry.DefaultPolicy(), logger: slog.Default()}
}

// WithRetry sets the backoff policy for clones.
func (r *Resolver) WithRetry(p retry.Policy) *Resolver { r.retry = p; return r }

// WithLogger sets the logger.
func (r *Resolver) WithLogger(l *slog.Logger) *Resolver { r.logger = l; return r }

// IsRemote reports whether source names a git repository rather than a
// local directory.
func IsRemote(source string) bool {
	s := strings.TrimSpace(source)
	switch {
	case strings.Contains(s, "://"):
		return true
	case strings.HasPrefix(s, "git@"):
		return true
	case strings.HasSuffix(s, ".git"):
		fi, err := os.Stat(s)
		return err != nil || !fi.IsDir()
	default:
		return false
	}
}

// Resolve resolves kits in order. Local sources are used in place and must
// be directories; remote ones are cloned into the workspace.
func (r *Resolver) Resolve(ctx context.Context, kits []config.Kit) ([]Mounted, error) {
	out := make([]Mounted, 0, len(kits))
	for _, k := range kits {
		m, err := r.resolve(ctx, k)
		if err != nil {
			return nil, err
		}
		r.logger.Info("Kit resolved", logfields.Kit(k.Name), logfields.Path(m.Dir), slog.String("mount", m.Mount))
		out = append(out, m)
	}
	return out, nil
}

func (r *Resolver) resolve(ctx context.Context, k config.Kit) (Mounted, error) {
	m := Mounted{Name: k.Name, Mount: k.Mount}
	if !IsRemote(k.Source) {
		dir, err := filepath.Abs(k.Source)
		if err != nil {
			return m, kitError(err, k, "invalid kit path")
		}
		fi, err := os.Stat(dir)
		if err != nil {
			return m, kitError(err, k, "kit directory not found")
		}
		if !fi.IsDir() {
			return m, kitError(nil, k, "kit source is not a directory")
		}
		m.Dir = dir
		return m, nil
	}

	if r.ws == nil {
		return m, kitError(nil, k, "no workspace for remote kit")
	}
	if err := r.ws.Create(); err != nil {
		return m, kitError(err, k, "failed to create workspace")
	}
	var dir string
	err := r.retry.Do(ctx, func(attempt int) error {
		var err error
		if dir, err = r.ws.Subdir(k.Name); err != nil {
			return err
		}
		if attempt > 0 {
			r.logger.Warn("Retrying kit clone", logfields.Kit(k.Name), slog.Int("attempt", attempt+1))
		}
		r.logger.Debug("Cloning kit", logfields.Kit(k.Name), slog.String("url", k.Source), slog.String("ref", k.Ref))
		return r.cloner.Clone(ctx, k.Source, k.Ref, dir)
	})
	if err != nil {
		return m, kitError(err, k, "failed to clone kit")
	}
	m.Dir = dir
	m.Remote = true
	return m, nil
}

func kitError(cause error, k config.Kit, msg string) error {
	b := errors.KitError(msg).WithContext("kit", k.Name).WithContext("source", k.Source)
	if cause != nil {
		b = b.WithCause(cause)
	}
	return b.Build()
}
