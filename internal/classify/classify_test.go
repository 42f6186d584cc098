package classify

import (
	"reflect"
	"testing"
	"time"

	"github.com/raphi011/wtctl/internal/config"
	"github.com/raphi011/wtctl/internal/inventory"
	"github.com/raphi011/wtctl/internal/plan"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testPolicy() Policy {
	return PolicyFromConfig(config.Default().Cleanup, "", now)
}

func primary() inventory.WorktreeRecord {
	return inventory.WorktreeRecord{
		Path: "/repo", Branch: "main", HeadCommit: "aaaaaaa",
		Tracking: inventory.TrackingUpToDate, IsPrimary: true, IsCurrent: true,
	}
}

func branch(name string, tr inventory.Tracking, pr inventory.PRStatus, hasWT bool) inventory.BranchRecord {
	return inventory.BranchRecord{Name: name, Tracking: tr, Status: tr.Status(), PR: pr, HasWorktree: hasWT}
}

func find(t *testing.T, items []plan.ActionItem, kind plan.Kind, target string) plan.ActionItem {
	t.Helper()
	for _, it := range items {
		if it.Kind == kind && it.Target == target {
			return it
		}
	}
	t.Fatalf("no %s item for %q in %v", kind, target, items)
	return plan.ActionItem{}
}

func TestClassify_MergedCleanWorktree(t *testing.T) {
	t.Parallel()

	merged := inventory.PRStatus{State: "MERGED", Number: 12}
	state := &inventory.State{
		Worktrees: []inventory.WorktreeRecord{
			primary(),
			{Path: "/repo/.worktrees/feat-x", Branch: "feat-x", HeadCommit: "bbbbbbb", Tracking: inventory.TrackingGone, PR: merged},
		},
		Branches: []inventory.BranchRecord{
			branch("main", inventory.TrackingUpToDate, inventory.PRNone, true),
			branch("feat-x", inventory.TrackingGone, merged, true),
		},
	}

	items := Classify(state, testPolicy())

	wt := find(t, items, plan.KindWorktree, "/repo/.worktrees/feat-x")
	if wt.Action != plan.ActionRemove || wt.Reason != "PR #12 merged, clean" {
		t.Errorf("worktree item = %s", wt)
	}
	if wt.Branch != "feat-x" {
		t.Errorf("worktree item Branch = %q, want feat-x", wt.Branch)
	}
	br := find(t, items, plan.KindBranch, "feat-x")
	if br.Action != plan.ActionDelete || br.Reason != "PR #12 merged" {
		t.Errorf("branch item = %s", br)
	}
	if len(items) != 4 {
		t.Errorf("got %d items, want one per worktree and branch: %v", len(items), items)
	}
}

func TestClassify_Worktrees(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		wt            inventory.WorktreeRecord
		wantWT        plan.Action
		wantWTDefault plan.Action
		wantBranch    plan.Action // empty when no branch item is expected
	}{
		{
			name:       "merged but dirty asks without default",
			wt:         inventory.WorktreeRecord{Branch: "b", Tracking: inventory.TrackingGone, PR: inventory.PRStatus{State: "MERGED", Number: 3}, Dirty: inventory.DirtyState{Modified: 1}},
			wantWT:     plan.ActionAsk,
			wantBranch: plan.ActionAsk,
		},
		{
			name:       "unknown dirty state is not clean",
			wt:         inventory.WorktreeRecord{Branch: "b", Tracking: inventory.TrackingGone, PR: inventory.PRStatus{State: "MERGED", Number: 3}, Dirty: inventory.DirtyState{Unknown: true}},
			wantWT:     plan.ActionAsk,
			wantBranch: plan.ActionAsk,
		},
		{
			name:          "detached asks with remove default",
			wt:            inventory.WorktreeRecord{Branch: inventory.Detached, Tracking: inventory.TrackingNA, PR: inventory.PRNotApplicable},
			wantWT:        plan.ActionAsk,
			wantWTDefault: plan.ActionRemove,
		},
		{
			name:       "open PR ahead is kept",
			wt:         inventory.WorktreeRecord{Branch: "b", Tracking: inventory.TrackingAhead, PR: inventory.PRStatus{State: "OPEN", Number: 15}},
			wantWT:     plan.ActionKeep,
			wantBranch: plan.ActionKeep,
		},
		{
			name:       "open PR up to date is kept",
			wt:         inventory.WorktreeRecord{Branch: "b", Tracking: inventory.TrackingUpToDate, PR: inventory.PRStatus{State: "OPEN", Number: 15}},
			wantWT:     plan.ActionKeep,
			wantBranch: plan.ActionKeep,
		},
		{
			name:          "local only without PR asks",
			wt:            inventory.WorktreeRecord{Branch: "b", Tracking: inventory.TrackingNoRemote},
			wantWT:        plan.ActionAsk,
			wantWTDefault: plan.ActionRemove,
			wantBranch:    plan.ActionAsk,
		},
		{
			name:       "behind without PR is kept",
			wt:         inventory.WorktreeRecord{Branch: "b", Tracking: inventory.TrackingBehind},
			wantWT:     plan.ActionKeep,
			wantBranch: plan.ActionKeep,
		},
		{
			name:       "gone without merged PR is kept",
			wt:         inventory.WorktreeRecord{Branch: "b", Tracking: inventory.TrackingGone, PR: inventory.PRStatus{State: "CLOSED", Number: 2}},
			wantWT:     plan.ActionKeep,
			wantBranch: plan.ActionKeep,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tt.wt.Path = "/wt/x"
			state := &inventory.State{Worktrees: []inventory.WorktreeRecord{primary(), tt.wt}}
			items := Classify(state, testPolicy())

			wt := find(t, items, plan.KindWorktree, "/wt/x")
			if wt.Action != tt.wantWT || wt.Default != tt.wantWTDefault {
				t.Errorf("worktree item = %s, want %s default %q", wt, tt.wantWT, tt.wantWTDefault)
			}
			if wt.Reason == "" {
				t.Error("worktree item has no reason")
			}
			if tt.wantBranch == "" {
				for _, it := range items {
					if it.Kind == plan.KindBranch && it.Target == tt.wt.Branch {
						t.Errorf("unexpected branch item %s", it)
					}
				}
				return
			}
			br := find(t, items, plan.KindBranch, tt.wt.Branch)
			if br.Action != tt.wantBranch {
				t.Errorf("branch item = %s, want %s", br, tt.wantBranch)
			}
		})
	}
}

func TestClassify_ProtectsCurrentAndPrimary(t *testing.T) {
	t.Parallel()

	merged := inventory.PRStatus{State: "MERGED", Number: 9}
	state := &inventory.State{
		Worktrees: []inventory.WorktreeRecord{
			{Path: "/repo", Branch: "main", IsPrimary: true, Tracking: inventory.TrackingUpToDate},
			{Path: "/wt/done", Branch: "done", Tracking: inventory.TrackingGone, PR: merged, IsCurrent: true},
		},
		Branches: []inventory.BranchRecord{
			branch("main", inventory.TrackingUpToDate, inventory.PRNone, true),
			branch("done", inventory.TrackingGone, merged, true),
		},
	}

	items := Classify(state, testPolicy())
	for _, key := range []plan.Key{
		{Kind: plan.KindWorktree, Target: "/repo"},
		{Kind: plan.KindBranch, Target: "main"},
		{Kind: plan.KindWorktree, Target: "/wt/done"},
		{Kind: plan.KindBranch, Target: "done"},
	} {
		it := find(t, items, key.Kind, key.Target)
		if it.Action != plan.ActionKeep || !it.Protected {
			t.Errorf("%s = %s protected=%v, want protected KEEP", key, it, it.Protected)
		}
	}
}

func TestClassify_ProtectedBranchNeverDeleted(t *testing.T) {
	t.Parallel()

	merged := inventory.PRStatus{State: "MERGED", Number: 4}
	state := &inventory.State{
		Worktrees: []inventory.WorktreeRecord{
			primary(),
			{Path: "/wt/release", Branch: "release", Tracking: inventory.TrackingGone, PR: merged},
		},
		Branches: []inventory.BranchRecord{
			branch("main", inventory.TrackingUpToDate, inventory.PRNone, true),
			branch("release", inventory.TrackingGone, merged, true),
			branch("master", inventory.TrackingGone, inventory.PRNone, false),
		},
	}
	p := testPolicy()
	p.ProtectedBranches = []string{"release"}

	items := Classify(state, p)
	if wt := find(t, items, plan.KindWorktree, "/wt/release"); wt.Action != plan.ActionRemove {
		t.Errorf("worktree item = %s, want REMOVE", wt)
	}
	for _, name := range []string{"release", "master"} {
		br := find(t, items, plan.KindBranch, name)
		if br.Action != plan.ActionKeep || !br.Protected {
			t.Errorf("branch %s = %s, want protected KEEP", name, br)
		}
	}
}

func TestClassify_Stashes(t *testing.T) {
	t.Parallel()

	state := &inventory.State{
		Worktrees: []inventory.WorktreeRecord{
			primary(),
			{Path: "/wt/feat-y", Branch: "feat-y", Tracking: inventory.TrackingAhead, PR: inventory.PRStatus{State: "OPEN", Number: 15}},
		},
		Stashes: []inventory.StashRecord{
			{Index: 0, Branch: "main", Message: "wip", CreatedAt: now.Add(-2 * 24 * time.Hour)},
			{Index: 1, Branch: "feat-y", Message: "temp stash for branch switch", CreatedAt: now.Add(-time.Hour)},
			{Index: 2, Branch: "main", Message: "old experiment", CreatedAt: now.Add(-45 * 24 * time.Hour)},
			{Index: 3, Branch: "feat-y", Message: "half-done parser", CreatedAt: now.Add(-time.Hour)},
			{Index: 4, Branch: "feat-x", Message: "leftovers", CreatedAt: now.Add(-time.Hour)},
			{Index: 5, Branch: "feat-z", Message: "abandoned", CreatedAt: now.Add(-time.Hour)},
			{Index: 6, Branch: "(no branch)", Message: "bisect notes"},
			{Index: 7, Branch: "main", Message: "undated"},
		},
		Branches: []inventory.BranchRecord{
			branch("main", inventory.TrackingUpToDate, inventory.PRNone, true),
			branch("feat-y", inventory.TrackingAhead, inventory.PRStatus{State: "OPEN", Number: 15}, true),
			branch("feat-x", inventory.TrackingGone, inventory.PRStatus{State: "MERGED", Number: 12}, false),
		},
	}

	tests := []struct {
		ref         string
		wantAction  plan.Action
		wantDefault plan.Action
	}{
		{"stash@{0}", plan.ActionAsk, ""},
		{"stash@{1}", plan.ActionDrop, ""},
		{"stash@{2}", plan.ActionDrop, ""},
		{"stash@{3}", plan.ActionKeep, ""},
		{"stash@{4}", plan.ActionDrop, ""},
		{"stash@{5}", plan.ActionAsk, plan.ActionDrop},
		{"stash@{6}", plan.ActionAsk, ""},
		{"stash@{7}", plan.ActionAsk, ""},
	}

	items := Classify(state, testPolicy())
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			it := find(t, items, plan.KindStash, tt.ref)
			if it.Action != tt.wantAction || it.Default != tt.wantDefault {
				t.Errorf("%s = %s, want %s default %q", tt.ref, it, tt.wantAction, tt.wantDefault)
			}
		})
	}

	if it := find(t, items, plan.KindStash, "stash@{1}"); it.Reason != "temporary stash; verify content before dropping" {
		t.Errorf("stash@{1} reason = %q", it.Reason)
	}
	if it := find(t, items, plan.KindStash, "stash@{2}"); it.Reason != "stash on main is 45 days old" {
		t.Errorf("stash@{2} reason = %q", it.Reason)
	}
	if it := find(t, items, plan.KindStash, "stash@{4}"); it.Index != 4 || it.Branch != "feat-x" {
		t.Errorf("stash@{4} Index/Branch = %d/%q", it.Index, it.Branch)
	}
}

func TestClassify_StaleThresholdFromConfig(t *testing.T) {
	t.Parallel()

	cfg := config.Default().Cleanup
	cfg.StaleStashDays = 1
	state := &inventory.State{
		Worktrees: []inventory.WorktreeRecord{primary()},
		Stashes:   []inventory.StashRecord{{Index: 0, Branch: "main", Message: "wip", CreatedAt: now.Add(-2 * 24 * time.Hour)}},
	}

	items := Classify(state, PolicyFromConfig(cfg, "", now))
	if it := find(t, items, plan.KindStash, "stash@{0}"); it.Action != plan.ActionDrop {
		t.Errorf("stash@{0} = %s, want DROP", it)
	}
}

func TestClassify_Branches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		branch      inventory.BranchRecord
		wantAction  plan.Action
		wantDefault plan.Action
	}{
		{"local only without PR", branch("experiment", inventory.TrackingNoRemote, inventory.PRNone, false), plan.ActionAsk, plan.ActionDelete},
		{"upstream gone", branch("old", inventory.TrackingGone, inventory.PRNone, false), plan.ActionAsk, plan.ActionDelete},
		{"local only with PR", branch("pushed-once", inventory.TrackingNoRemote, inventory.PRStatus{State: "CLOSED", Number: 1}, false), plan.ActionKeep, ""},
		{"up to date", branch("shared", inventory.TrackingUpToDate, inventory.PRNone, false), plan.ActionKeep, ""},
		{"checked out elsewhere", branch("elsewhere", inventory.TrackingGone, inventory.PRNone, true), plan.ActionKeep, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			state := &inventory.State{
				Worktrees: []inventory.WorktreeRecord{primary()},
				Branches:  []inventory.BranchRecord{tt.branch},
			}
			it := find(t, Classify(state, testPolicy()), plan.KindBranch, tt.branch.Name)
			if it.Action != tt.wantAction || it.Default != tt.wantDefault {
				t.Errorf("got %s, want %s default %q", it, tt.wantAction, tt.wantDefault)
			}
			if it.Action == plan.ActionDelete {
				t.Error("branch without a merged PR must never be auto-deleted")
			}
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	t.Parallel()

	state := &inventory.State{
		Worktrees: []inventory.WorktreeRecord{
			primary(),
			{Path: "/wt/a", Branch: "a", Tracking: inventory.TrackingNoRemote},
			{Path: "/wt/d", Branch: inventory.Detached, Tracking: inventory.TrackingNA, PR: inventory.PRNotApplicable},
		},
		Stashes: []inventory.StashRecord{{Index: 0, Branch: "a", Message: "x"}},
		Branches: []inventory.BranchRecord{
			branch("main", inventory.TrackingUpToDate, inventory.PRNone, true),
			branch("a", inventory.TrackingNoRemote, inventory.PRNone, true),
			branch("z", inventory.TrackingGone, inventory.PRNone, false),
		},
	}

	first := Classify(state, testPolicy())
	for range 5 {
		if got := Classify(state, testPolicy()); !reflect.DeepEqual(got, first) {
			t.Fatalf("Classify() not deterministic:\n%v\n%v", first, got)
		}
	}
	// one item per worktree, per stash and per branch
	if len(first) != 3+1+3 {
		t.Errorf("got %d items, want 7: %v", len(first), first)
	}
}

func TestPolicyFromConfig(t *testing.T) {
	t.Parallel()

	cfg := config.CleanupConfig{
		StaleStashDays:    10,
		DefaultBranches:   []string{"main"},
		ProtectedBranches: []string{"release"},
		TempStashPatterns: []string{"^scratch"},
	}
	p := PolicyFromConfig(cfg, "trunk", now)

	if !p.isDefault("trunk") || !p.isDefault("main") {
		t.Errorf("DefaultBranches = %v, want main and trunk", p.DefaultBranches)
	}
	if !p.isProtected("release") || p.isProtected("feature") {
		t.Errorf("isProtected wrong for %v", p.ProtectedBranches)
	}
	if p.StaleAfter != 10*24*time.Hour {
		t.Errorf("StaleAfter = %v", p.StaleAfter)
	}
	if !p.isTempStash("scratch work") || p.isTempStash("real work") {
		t.Error("temp stash matcher wrong")
	}
	if p.isStale(time.Time{}) {
		t.Error("undated stash must not be stale")
	}
	// input slice must not be aliased
	p.DefaultBranches[0] = "x"
	if cfg.DefaultBranches[0] != "main" {
		t.Error("PolicyFromConfig aliased cfg.DefaultBranches")
	}
}
