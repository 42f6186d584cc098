package git

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// ListWorktrees returns the repository's worktrees in porcelain order; the
// first entry is the primary checkout. Entries that fail to parse are
// returned as problems instead of aborting the listing.
func (r *Repo) ListWorktrees(ctx context.Context) ([]WorktreeEntry, []*LineError, error) {
	out, err := r.output(ctx, r.Dir, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list worktrees: %w", err)
	}
	entries, problems := ParseWorktreePorcelain(out)
	return entries, problems, nil
}

// RemoveWorktree force-removes the worktree at path, discarding any
// uncommitted changes in it. Locked worktrees are refused by git.
func (r *Repo) RemoveWorktree(ctx context.Context, path string) error {
	if err := r.run(ctx, r.Dir, "worktree", "remove", "--force", path); err != nil {
		return fmt.Errorf("failed to remove worktree %s: %w", path, err)
	}
	return nil
}

// PruneWorktrees prunes stale worktree administrative files.
func (r *Repo) PruneWorktrees(ctx context.Context) error {
	if err := r.run(ctx, r.Dir, "worktree", "prune"); err != nil {
		return fmt.Errorf("failed to prune worktrees: %w", err)
	}
	return nil
}

// CommonDir returns the absolute git directory shared by all worktrees.
func (r *Repo) CommonDir(ctx context.Context) (string, error) {
	out, err := r.output(ctx, r.Dir, "rev-parse", "--git-common-dir")
	if err != nil {
		return "", fmt.Errorf("failed to resolve git common dir: %w", err)
	}
	dir := strings.TrimSpace(out)
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(r.Dir, dir)
	}
	return dir, nil
}
