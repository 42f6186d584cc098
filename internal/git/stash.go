package git

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// StashEntry is one line of `git stash list`.
type StashEntry struct {
	Index   int
	Branch  string // "(no branch)" for stashes taken on a detached HEAD
	Message string
}

// Ref returns the stash reference, e.g. "stash@{2}".
func (e StashEntry) Ref() string {
	return StashRef(e.Index)
}

// StashRef returns the reference of the stash at index.
func StashRef(index int) string {
	return fmt.Sprintf("stash@{%d}", index)
}

// stashListFormat is git's default stash list layout, pinned so user
// log configuration can't change it.
const stashListFormat = "--format=%gd: %gs"

// ParseStashList parses `git stash list` lines of the forms
//
//	stash@{<i>}: WIP on <branch>: <message>
//	stash@{<i>}: On <branch>: <message>
func ParseStashList(out string) ([]StashEntry, []*LineError) {
	var (
		entries  []StashEntry
		problems []*LineError
	)
	for i, line := range splitLines(out) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		e, err := parseStashLine(line)
		if err != nil {
			problems = append(problems, &LineError{Line: i + 1, Text: line, Reason: err.Error()})
			continue
		}
		entries = append(entries, e)
	}
	return entries, problems
}

func parseStashLine(line string) (StashEntry, error) {
	var e StashEntry

	ref, rest, ok := strings.Cut(line, ": ")
	if !ok {
		return e, fmt.Errorf("missing ref delimiter")
	}
	idx, ok := strings.CutPrefix(ref, "stash@{")
	if !ok {
		return e, fmt.Errorf("unexpected ref %q", ref)
	}
	idx, ok = strings.CutSuffix(idx, "}")
	if !ok {
		return e, fmt.Errorf("unexpected ref %q", ref)
	}
	n, err := strconv.Atoi(idx)
	if err != nil || n < 0 {
		return e, fmt.Errorf("invalid stash index %q", idx)
	}
	e.Index = n

	switch {
	case strings.HasPrefix(rest, "WIP on "):
		rest = strings.TrimPrefix(rest, "WIP on ")
	case strings.HasPrefix(rest, "On "):
		rest = strings.TrimPrefix(rest, "On ")
	default:
		return e, fmt.Errorf("missing branch marker")
	}
	// Branch names cannot contain ':', so the first ": " ends the branch.
	branch, msg, ok := strings.Cut(rest, ": ")
	if !ok {
		branch, msg = strings.TrimSuffix(rest, ":"), ""
	}
	if branch == "" {
		return e, fmt.Errorf("empty branch")
	}
	e.Branch = branch
	e.Message = msg
	return e, nil
}

// ParseStashStat returns the summary line of `git stash show --stat`,
// or "" when the stash has no diff.
func ParseStashStat(out string) string {
	lines := splitLines(out)
	for i := len(lines) - 1; i >= 0; i-- {
		if s := strings.TrimSpace(lines[i]); s != "" {
			return s
		}
	}
	return ""
}

// StashMeta is the identity and creation time of one stash.
type StashMeta struct {
	Commit    string    // stash commit hash
	CreatedAt time.Time // zero when unparseable
}

// stashMetaFormat lists the stash commit and its unix creation time.
const stashMetaFormat = "--format=%H %ct"

// ParseStashMeta parses `git stash list --format=%H %ct` output, one stash
// per line in list order. A line without a usable timestamp keeps its
// commit and yields the zero time.
func ParseStashMeta(out string) []StashMeta {
	lines := splitLines(out)
	metas := make([]StashMeta, len(lines))
	for i, line := range lines {
		commit, ts, _ := strings.Cut(strings.TrimSpace(line), " ")
		metas[i].Commit = commit
		if sec, err := strconv.ParseInt(ts, 10, 64); err == nil {
			metas[i].CreatedAt = time.Unix(sec, 0)
		}
	}
	return metas
}

// Stashes lists the repository's stashes, most recent first.
func (r *Repo) Stashes(ctx context.Context) ([]StashEntry, []*LineError, error) {
	out, err := r.output(ctx, r.Dir, "stash", "list", stashListFormat)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list stashes: %w", err)
	}
	entries, problems := ParseStashList(out)
	return entries, problems, nil
}

// StashStat returns the diff-stat summary line of one stash, "" if empty.
func (r *Repo) StashStat(ctx context.Context, index int) (string, error) {
	out, err := r.output(ctx, r.Dir, "stash", "show", "--stat", StashRef(index))
	if err != nil {
		return "", fmt.Errorf("failed to show %s: %w", StashRef(index), err)
	}
	return ParseStashStat(out), nil
}

// StashMeta returns the commit and creation time of every stash in list order.
func (r *Repo) StashMeta(ctx context.Context) ([]StashMeta, error) {
	out, err := r.output(ctx, r.Dir, "stash", "list", stashMetaFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to list stash commits: %w", err)
	}
	return ParseStashMeta(out), nil
}

// StashCommit returns the commit hash of the stash at index.
func (r *Repo) StashCommit(ctx context.Context, index int) (string, error) {
	out, err := r.output(ctx, r.Dir, "rev-parse", "--verify", "--quiet", StashRef(index))
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", StashRef(index), err)
	}
	return strings.TrimSpace(out), nil
}

// DropStash drops the stash at index. Lower indices are unaffected;
// higher ones shift down by one.
func (r *Repo) DropStash(ctx context.Context, index int) error {
	if err := r.run(ctx, r.Dir, "stash", "drop", StashRef(index)); err != nil {
		return fmt.Errorf("failed to drop %s: %w", StashRef(index), err)
	}
	return nil
}
