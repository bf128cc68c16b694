package kit

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"git.home.luguber.info/inful/sitekit/internal/logfields"
)

// GitCloner performs shallow single-branch clones with go-git.
type GitCloner struct{}

// Clone fetches the tip of ref (or the default branch) into dir and drops
// the .git metadata so only kit files remain.
func (GitCloner) Clone(ctx context.Context, url, ref, dir string) error {
	opts := &git.CloneOptions{
		URL:          url,
		Depth:        1,
		SingleBranch: true,
		Tags:         git.NoTags,
	}
	if ref != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(ref)
	}
	repo, err := git.PlainCloneContext(ctx, dir, false, opts)
	if err != nil {
		return fmt.Errorf("clone %s: %w", url, err)
	}
	if head, herr := repo.Head(); herr == nil {
		slog.Debug("Kit cloned", slog.String("url", url), slog.String("commit", head.Hash().String()[:8]), logfields.Path(dir))
	}
	if err := os.RemoveAll(filepath.Join(dir, ".git")); err != nil {
		return fmt.Errorf("remove git metadata: %w", err)
	}
	return nil
}
