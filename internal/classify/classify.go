package classify

import (
	"fmt"
	"math"
	"time"

	"github.com/raphi011/wtctl/internal/inventory"
	"github.com/raphi011/wtctl/internal/plan"
)

// Classify applies the decision tables to a collected state. Every
// worktree yields one item, plus one for its branch; every stash and every
// remaining branch yields exactly one item. Within a table the first
// matching rule wins.
//
// The current worktree, the primary checkout and the branches they have
// checked out are kept before any table is consulted.
func Classify(state *inventory.State, p Policy) []plan.ActionItem {
	var items []plan.ActionItem
	emitted := make(map[string]bool)

	for _, wt := range state.Worktrees {
		wtIt, brIt := classifyWorktree(wt, p)
		items = append(items, wtIt)
		if brIt != nil {
			items = append(items, *brIt)
			emitted[wt.Branch] = true
		}
	}

	for _, st := range state.Stashes {
		items = append(items, classifyStash(st, state, p))
	}

	for _, b := range state.Branches {
		if emitted[b.Name] {
			continue
		}
		items = append(items, classifyBranch(b, p))
	}
	return items
}

func worktreeItem(wt inventory.WorktreeRecord, action plan.Action, reason string) plan.ActionItem {
	it := plan.ActionItem{Kind: plan.KindWorktree, Target: wt.Path, Action: action, Reason: reason}
	if !wt.IsDetached() {
		it.Branch = wt.Branch
	}
	return it
}

func branchItem(name string, action plan.Action, reason string) *plan.ActionItem {
	return &plan.ActionItem{Kind: plan.KindBranch, Target: name, Branch: name, Action: action, Reason: reason}
}

// classifyWorktree returns the item for wt and, unless wt is detached, the
// item for its branch.
func classifyWorktree(wt inventory.WorktreeRecord, p Policy) (plan.ActionItem, *plan.ActionItem) {
	if wt.IsCurrent || wt.IsPrimary {
		reason := "primary checkout"
		if wt.IsCurrent {
			reason = "current worktree"
		}
		it := worktreeItem(wt, plan.ActionKeep, reason)
		it.Protected = true
		if wt.IsDetached() {
			return it, nil
		}
		b := branchItem(wt.Branch, plan.ActionKeep, "checked out in "+reason)
		b.Protected = true
		return it, b
	}

	if wt.IsDetached() {
		it := worktreeItem(wt, plan.ActionAsk, fmt.Sprintf("detached HEAD at %s, %s; discard recommended", wt.HeadCommit, wt.Dirty))
		it.Default = plan.ActionRemove
		return it, nil
	}

	wtItem, b := worktreeRule(wt)
	if p.isProtected(wt.Branch) && b.Action != plan.ActionKeep {
		b = branchItem(wt.Branch, plan.ActionKeep, "protected branch")
		b.Protected = true
	}
	return wtItem, b
}

// worktreeRule is the worktree table for a non-protected worktree on a branch.
func worktreeRule(wt inventory.WorktreeRecord) (plan.ActionItem, *plan.ActionItem) {
	pr := wt.PR
	switch {
	case wt.Tracking == inventory.TrackingGone && pr.Merged() && wt.Dirty.Clean():
		return worktreeItem(wt, plan.ActionRemove, fmt.Sprintf("PR #%d merged, clean", pr.Number)),
			branchItem(wt.Branch, plan.ActionDelete, fmt.Sprintf("PR #%d merged", pr.Number))

	case wt.Tracking == inventory.TrackingGone && pr.Merged():
		return worktreeItem(wt, plan.ActionAsk, fmt.Sprintf("PR #%d merged but worktree is %s; review the diff", pr.Number, wt.Dirty)),
			branchItem(wt.Branch, plan.ActionAsk, fmt.Sprintf("PR #%d merged; worktree has uncommitted changes", pr.Number))

	case pr.Open() && (wt.Tracking == inventory.TrackingUpToDate || wt.Tracking == inventory.TrackingAhead):
		return worktreeItem(wt, plan.ActionKeep, fmt.Sprintf("PR #%d open", pr.Number)),
			branchItem(wt.Branch, plan.ActionKeep, fmt.Sprintf("PR #%d open", pr.Number))

	case wt.Tracking == inventory.TrackingNoRemote && pr.None():
		it := worktreeItem(wt, plan.ActionAsk, fmt.Sprintf("no remote and no PR, %s", wt.Dirty))
		it.Default = plan.ActionRemove
		b := branchItem(wt.Branch, plan.ActionAsk, "local-only, no PR")
		b.Default = plan.ActionDelete
		return it, b
	}

	reason := fmt.Sprintf("tracking %s, PR %s", wt.Tracking, pr)
	return worktreeItem(wt, plan.ActionKeep, reason), branchItem(wt.Branch, plan.ActionKeep, reason)
}

func stashItem(st inventory.StashRecord, action plan.Action, reason string) plan.ActionItem {
	return plan.ActionItem{Kind: plan.KindStash, Target: st.Ref(), Index: st.Index, Commit: st.Commit, Branch: st.Branch, Action: action, Reason: reason}
}

// classifyStash is the stash table.
func classifyStash(st inventory.StashRecord, state *inventory.State, p Policy) plan.ActionItem {
	br := state.Branch(st.Branch)
	wt := state.WorktreeForBranch(st.Branch)

	pr := inventory.PRNone
	tracking := inventory.TrackingNoRemote
	switch {
	case br != nil:
		pr, tracking = br.PR, br.Tracking
	case wt != nil:
		pr, tracking = wt.PR, wt.Tracking
	}

	switch {
	case tracking == inventory.TrackingGone:
		return stashItem(st, plan.ActionDrop, fmt.Sprintf("branch %s is gone", st.Branch))

	case pr.Merged():
		return stashItem(st, plan.ActionDrop, fmt.Sprintf("branch %s merged in PR #%d", st.Branch, pr.Number))

	case p.isTempStash(st.Message):
		return stashItem(st, plan.ActionDrop, "temporary stash; verify content before dropping")

	case wt != nil && !p.isDefault(st.Branch):
		return stashItem(st, plan.ActionKeep, fmt.Sprintf("branch %s has an active worktree", st.Branch))

	case p.isDefault(st.Branch) && p.isStale(st.CreatedAt):
		return stashItem(st, plan.ActionDrop, fmt.Sprintf("stash on %s is %d days old", st.Branch, ageDays(p.Now, st)))

	case br == nil && wt == nil && st.Branch != "(no branch)":
		it := stashItem(st, plan.ActionAsk, fmt.Sprintf("branch %s no longer exists", st.Branch))
		it.Default = plan.ActionDrop
		return it
	}

	if p.isDefault(st.Branch) {
		if st.CreatedAt.IsZero() {
			return stashItem(st, plan.ActionAsk, fmt.Sprintf("stash on %s of unknown age", st.Branch))
		}
		return stashItem(st, plan.ActionAsk, fmt.Sprintf("stash on %s is %d days old, not yet stale", st.Branch, ageDays(p.Now, st)))
	}
	return stashItem(st, plan.ActionAsk, "no rule matched")
}

func ageDays(now time.Time, st inventory.StashRecord) int {
	return int(math.Floor(now.Sub(st.CreatedAt).Hours() / 24))
}

// classifyBranch is the branch table for branches not bound to a listed worktree.
func classifyBranch(b inventory.BranchRecord, p Policy) plan.ActionItem {
	switch {
	case b.IsCurrent:
		it := branchItem(b.Name, plan.ActionKeep, "current branch")
		it.Protected = true
		return *it

	case p.isProtected(b.Name):
		it := branchItem(b.Name, plan.ActionKeep, "protected branch")
		it.Protected = true
		return *it

	case b.HasWorktree:
		return *branchItem(b.Name, plan.ActionKeep, "checked out in a worktree")

	case b.Tracking == inventory.TrackingGone:
		it := branchItem(b.Name, plan.ActionAsk, "upstream gone")
		it.Default = plan.ActionDelete
		return *it

	case b.Tracking == inventory.TrackingNoRemote && b.PR.None():
		it := branchItem(b.Name, plan.ActionAsk, "local-only, no PR")
		it.Default = plan.ActionDelete
		return *it
	}
	return *branchItem(b.Name, plan.ActionKeep, fmt.Sprintf("%s, PR %s", b.Status, b.PR))
}
