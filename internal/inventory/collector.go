package inventory

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/raphi011/wtctl/internal/forge"
	"github.com/raphi011/wtctl/internal/git"
	"github.com/raphi011/wtctl/internal/log"
)

// ErrNoWorktrees is returned when the worktree listing yields no usable entry.
var ErrNoWorktrees = errors.New("no worktrees found")

// Collector gathers worktrees, stashes and branches of one repository.
type Collector struct {
	Repo *git.Repo

	// Forge looks up pull requests; nil disables the lookup.
	Forge forge.Forge
	// RepoURL is the origin URL passed to the forge.
	RepoURL string

	// Cwd decides which worktree is current. Empty means Repo.Dir.
	Cwd string

	// Now stamps the collected state; defaults to time.Now.
	Now func() time.Time

	// Progress, when set, is called after each record with its kind
	// ("worktrees", "stashes" or "branches") and the running count.
	Progress func(kind string, done, total int)
}

// collection holds the per-run state of one Collect call.
type collection struct {
	*Collector
	state    *State
	prs      map[string]PRStatus
	prOff    bool
	branches map[string]git.BranchEntry
}

// Collect runs one collection pass. Only failures that make the whole
// pass meaningless are returned as errors; everything else degrades the
// affected record and is listed in State.Anomalies.
func (c *Collector) Collect(ctx context.Context) (*State, error) {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	run := &collection{
		Collector: c,
		state:     &State{CollectedAt: now()},
		prs:       make(map[string]PRStatus),
		branches:  make(map[string]git.BranchEntry),
	}

	entries, problems, err := c.Repo.ListWorktrees(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range problems {
		run.anomaly(AnomalyWorktreeEntry, fmt.Sprintf("line %d", p.Line), p.Reason+": "+p.Text)
	}
	if len(entries) == 0 {
		return nil, ErrNoWorktrees
	}

	run.checkForge(ctx)
	branchEntries := run.listBranches(ctx)

	for i, e := range entries {
		run.state.Worktrees = append(run.state.Worktrees, run.worktree(ctx, e))
		run.progress("worktrees", i+1, len(entries))
	}
	run.markCurrent()

	run.collectStashes(ctx)
	run.collectBranches(ctx, branchEntries)

	return run.state, nil
}

func (r *collection) progress(kind string, done, total int) {
	if r.Progress != nil {
		r.Progress(kind, done, total)
	}
}

func (r *collection) anomaly(kind, target, reason string) {
	r.state.Anomalies = append(r.state.Anomalies, Anomaly{Kind: kind, Target: target, Reason: reason})
}

// checkForge disables PR lookups for the run when the forge CLI is unusable.
func (r *collection) checkForge(ctx context.Context) {
	if r.Forge == nil || r.RepoURL == "" {
		r.prOff = true
		return
	}
	if err := r.Forge.Check(ctx); err != nil {
		log.FromContext(ctx).Debug("pr lookup disabled", "forge", r.Forge.Name(), "err", err)
		r.anomaly(AnomalyPRLookup, r.Forge.Name(), err.Error())
		r.prOff = true
	}
}

// pr looks up the PR for branch at most once per run.
func (r *collection) pr(ctx context.Context, branch string) PRStatus {
	if r.prOff {
		return PRNone
	}
	if st, ok := r.prs[branch]; ok {
		return st
	}
	info, err := r.Forge.GetPRForBranch(ctx, r.RepoURL, branch)
	if err != nil {
		log.FromContext(ctx).Debug("pr lookup failed", "branch", branch, "err", err)
		r.anomaly(AnomalyPRLookup, branch, err.Error())
	}
	st := PRFromInfo(info)
	r.prs[branch] = st
	return st
}

func (r *collection) listBranches(ctx context.Context) []git.BranchEntry {
	entries, problems, err := r.Repo.Branches(ctx)
	if err != nil {
		r.anomaly(AnomalyBranchList, r.Repo.Dir, err.Error())
		return nil
	}
	for _, p := range problems {
		r.anomaly(AnomalyBranchEntry, fmt.Sprintf("line %d", p.Line), p.Reason+": "+p.Text)
	}
	for _, e := range entries {
		r.branches[e.Name] = e
	}
	return entries
}

func (r *collection) worktree(ctx context.Context, e git.WorktreeEntry) WorktreeRecord {
	rec := WorktreeRecord{
		Path:       e.Path,
		HeadCommit: shortHash(e.Head),
		IsPrimary:  e.Primary,
		Locked:     e.Locked,
		Prunable:   e.Prunable,
	}

	counts, err := r.Repo.Status(ctx, e.Path)
	if err != nil {
		r.anomaly(AnomalyStatus, e.Path, err.Error())
		rec.Dirty = DirtyState{Unknown: true}
	} else {
		rec.Dirty = DirtyState{Modified: counts.Modified, Untracked: counts.Untracked}
	}

	if e.Detached {
		rec.Branch = Detached
		rec.Tracking = TrackingNA
		rec.PR = PRNotApplicable
		return rec
	}

	rec.Branch = e.Branch
	rec.Tracking = r.tracking(ctx, e.Branch)
	rec.PR = r.pr(ctx, e.Branch)
	return rec
}

// tracking reads the upstream relationship of branch, falling back to the
// `git branch -vv` annotation when the direct query fails.
func (r *collection) tracking(ctx context.Context, branch string) Tracking {
	upstream, track, err := r.Repo.UpstreamTrack(ctx, branch)
	if err == nil {
		return TrackingFromAnnotation(upstream, track)
	}
	r.anomaly(AnomalyTracking, branch, err.Error())
	if b, ok := r.branches[branch]; ok {
		return TrackingFromAnnotation(b.Upstream, b.Track)
	}
	return TrackingNoRemote
}

// markCurrent flags the worktree containing Cwd, preferring the deepest
// match. When Cwd lies outside every worktree the primary is current; a
// bare layout has no primary and then no worktree is current.
func (r *collection) markCurrent() {
	cwd := r.Cwd
	if cwd == "" {
		cwd = r.Repo.Dir
	}
	cwd = filepath.Clean(cwd)

	best := -1
	for i, wt := range r.state.Worktrees {
		if !containsPath(wt.Path, cwd) {
			continue
		}
		if best < 0 || len(wt.Path) > len(r.state.Worktrees[best].Path) {
			best = i
		}
	}
	if best < 0 {
		best = slices.IndexFunc(r.state.Worktrees, func(wt WorktreeRecord) bool { return wt.IsPrimary })
	}
	if best >= 0 {
		r.state.Worktrees[best].IsCurrent = true
	}
}

func containsPath(root, path string) bool {
	root = filepath.Clean(root)
	if path == root {
		return true
	}
	return strings.HasPrefix(path, strings.TrimSuffix(root, string(filepath.Separator))+string(filepath.Separator))
}

func (r *collection) collectStashes(ctx context.Context) {
	entries, problems, err := r.Repo.Stashes(ctx)
	if err != nil {
		r.anomaly(AnomalyStashList, r.Repo.Dir, err.Error())
		return
	}
	for _, p := range problems {
		r.anomaly(AnomalyStashEntry, fmt.Sprintf("line %d", p.Line), p.Reason+": "+p.Text)
	}
	if len(entries) == 0 {
		return
	}

	metas, err := r.Repo.StashMeta(ctx)
	if err != nil {
		r.anomaly(AnomalyStashList, "commits", err.Error())
	}

	for i, e := range entries {
		rec := StashRecord{Index: e.Index, Branch: e.Branch, Message: e.Message}
		if e.Index < len(metas) {
			rec.Commit = metas[e.Index].Commit
			rec.CreatedAt = metas[e.Index].CreatedAt
		}
		stat, err := r.Repo.StashStat(ctx, e.Index)
		switch {
		case err != nil:
			r.anomaly(AnomalyStashStat, e.Ref(), err.Error())
			rec.DiffStat = "unavailable"
		case stat == "":
			rec.DiffStat = EmptyStat
		default:
			rec.DiffStat = stat
		}
		r.state.Stashes = append(r.state.Stashes, rec)
		r.progress("stashes", i+1, len(entries))
	}
}

func (r *collection) collectBranches(ctx context.Context, entries []git.BranchEntry) {
	bound := make(map[string]bool)
	currentBranch := ""
	for _, wt := range r.state.Worktrees {
		if wt.IsDetached() {
			continue
		}
		bound[wt.Branch] = true
		if wt.IsCurrent {
			currentBranch = wt.Branch
		}
	}

	for i, e := range entries {
		tracking := TrackingFromAnnotation(e.Upstream, e.Track)
		r.state.Branches = append(r.state.Branches, BranchRecord{
			Name:        e.Name,
			Tracking:    tracking,
			Status:      tracking.Status(),
			HasWorktree: bound[e.Name] || e.Elsewhere,
			IsCurrent:   e.Name == currentBranch,
			Upstream:    e.Upstream,
			PR:          r.pr(ctx, e.Name),
		})
		r.progress("branches", i+1, len(entries))
	}
}

func shortHash(h string) string {
	if len(h) > 7 {
		return h[:7]
	}
	return h
}
