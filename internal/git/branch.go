package git

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// BranchEntry is one line of `git branch -vv`.
type BranchEntry struct {
	Name      string
	Hash      string
	Current   bool   // marked with "*"
	Elsewhere bool   // marked with "+": checked out in another worktree
	Worktree  string // path git prints for branches checked out in a worktree
	Upstream  string // e.g. "origin/main", empty without upstream
	Track     string // annotation after the upstream, e.g. "gone", "ahead 2, behind 1"
	Subject   string
}

// upstreamAnnotation matches "[remote/branch]" and "[remote/branch: ...]".
var upstreamAnnotation = regexp.MustCompile(`^\[([^\s\[\]:]+/[^\s\[\]:]+)(?::\s*([^\]]*))?\]\s?`)

// ParseBranchVV parses `git branch -vv` output. A bracket after the hash is
// taken as the upstream only when it starts with one of remotes, so a
// subject like "[ui/button] tweak" on a local-only branch stays a subject.
// Detached HEAD lines are skipped silently; lines that don't fit the layout
// are reported.
func ParseBranchVV(out string, remotes []string) ([]BranchEntry, []*LineError) {
	var (
		entries  []BranchEntry
		problems []*LineError
	)
	for i, line := range splitLines(out) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		e, ok, reason := parseBranchLine(line, remotes)
		if !ok {
			if reason != "" {
				problems = append(problems, &LineError{Line: i + 1, Text: line, Reason: reason})
			}
			continue
		}
		entries = append(entries, e)
	}
	return entries, problems
}

// parseBranchLine parses "<marker> <name> <hash> [<annotation>] <subject>".
// ok=false with an empty reason means the line is skipped on purpose.
func parseBranchLine(line string, remotes []string) (e BranchEntry, ok bool, reason string) {
	if len(line) < 2 {
		return e, false, "line too short"
	}
	switch line[0] {
	case '*':
		e.Current = true
	case '+':
		e.Elsewhere = true
	case ' ':
	default:
		return e, false, "unexpected marker"
	}
	rest := strings.TrimLeft(line[1:], " ")
	if strings.HasPrefix(rest, "(") {
		// "(HEAD detached at abc123)" or "(no branch, rebasing x)"
		return e, false, ""
	}

	fields := strings.Fields(rest)
	if len(fields) < 2 {
		return e, false, "missing branch name or commit"
	}
	e.Name = fields[0]
	e.Hash = fields[1]

	// Subject is everything after the hash, with original spacing.
	after := strings.TrimPrefix(rest, e.Name)
	after = strings.TrimLeft(after, " ")
	after = strings.TrimPrefix(after, e.Hash)
	after = strings.TrimLeft(after, " ")

	if e.Current || e.Elsewhere {
		if path, tail, ok := cutWorktreePath(after); ok {
			e.Worktree = path
			after = tail
		}
	}

	if m := upstreamAnnotation.FindStringSubmatch(after); m != nil && isRemoteRef(m[1], remotes) {
		e.Upstream = m[1]
		e.Track = strings.TrimSpace(m[2])
		after = after[len(m[0]):]
	}
	e.Subject = after
	return e, true, ""
}

// isRemoteRef reports whether ref is "<remote>/<branch>" for a known remote.
func isRemoteRef(ref string, remotes []string) bool {
	for _, r := range remotes {
		if branch, ok := strings.CutPrefix(ref, r+"/"); ok && branch != "" {
			return true
		}
	}
	return false
}

// cutWorktreePath strips the "(<path>) " git prints after the hash of
// branches checked out in a worktree.
func cutWorktreePath(s string) (path, tail string, ok bool) {
	if !strings.HasPrefix(s, "(/") && !strings.HasPrefix(s, "(~") && !isWindowsPathStart(s) {
		return "", s, false
	}
	end := strings.Index(s, ")")
	if end < 0 {
		return "", s, false
	}
	return s[1:end], strings.TrimLeft(s[end+1:], " "), true
}

func isWindowsPathStart(s string) bool {
	return len(s) > 3 && s[0] == '(' && s[2] == ':' && (s[3] == '/' || s[3] == '\\')
}

// Remotes returns the names of the configured remotes.
func (r *Repo) Remotes(ctx context.Context) ([]string, error) {
	out, err := r.output(ctx, r.Dir, "remote")
	if err != nil {
		return nil, fmt.Errorf("failed to list remotes: %w", err)
	}
	var remotes []string
	for _, line := range splitLines(out) {
		if name := strings.TrimSpace(line); name != "" {
			remotes = append(remotes, name)
		}
	}
	return remotes, nil
}

// Branches lists local branches with their upstream annotations.
func (r *Repo) Branches(ctx context.Context) ([]BranchEntry, []*LineError, error) {
	remotes, err := r.Remotes(ctx)
	if err != nil {
		return nil, nil, err
	}
	out, err := r.output(ctx, r.Dir, "branch", "-vv", "--no-color")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list branches: %w", err)
	}
	entries, problems := ParseBranchVV(out, remotes)
	return entries, problems, nil
}

// UpstreamTrack returns the upstream short name and the raw track
// annotation (e.g. "[gone]", "[ahead 1]", "") of a local branch.
func (r *Repo) UpstreamTrack(ctx context.Context, branch string) (upstream, track string, err error) {
	out, err := r.output(ctx, r.Dir, "for-each-ref",
		"--format=%(upstream:short)%00%(upstream:track)", "refs/heads/"+branch)
	if err != nil {
		return "", "", fmt.Errorf("failed to get upstream of %s: %w", branch, err)
	}
	line := strings.TrimRight(out, "\r\n")
	upstream, track, _ = strings.Cut(line, "\x00")
	return strings.TrimSpace(upstream), strings.TrimSpace(track), nil
}

// DeleteBranch force-deletes a local branch. The forced form is required
// because squash-merged branches are not recognised as merged.
func (r *Repo) DeleteBranch(ctx context.Context, name string) error {
	if err := r.run(ctx, r.Dir, "branch", "-D", name); err != nil {
		return fmt.Errorf("failed to delete branch %s: %w", name, err)
	}
	return nil
}
