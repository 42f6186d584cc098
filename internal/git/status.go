package git

import (
	"context"
	"fmt"
	"strings"
)

// StatusCounts summarises `git status --porcelain` output.
type StatusCounts struct {
	Modified  int // modified, added, deleted, renamed, ... entries
	Untracked int // "??" entries
}

// ParseStatusPorcelain counts changed and untracked entries in
// `git status --porcelain` output.
func ParseStatusPorcelain(out string) StatusCounts {
	var c StatusCounts
	for _, line := range splitLines(out) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, "??") {
			c.Untracked++
			continue
		}
		// "!!" (ignored) only appears with --ignored.
		if strings.HasPrefix(line, "!!") {
			continue
		}
		c.Modified++
	}
	return c
}

// Status returns the uncommitted-change counts of the worktree at path.
func (r *Repo) Status(ctx context.Context, path string) (StatusCounts, error) {
	out, err := r.output(ctx, path, "status", "--porcelain")
	if err != nil {
		return StatusCounts{}, fmt.Errorf("failed to get status of %s: %w", path, err)
	}
	return ParseStatusPorcelain(out), nil
}
