package plan

import (
	"errors"
	"fmt"

	"github.com/sahilm/fuzzy"
)

// ErrIllegalDecision is returned when a decision names an action the
// target's kind doesn't support, a protected item, or an unknown target.
var ErrIllegalDecision = errors.New("illegal decision")

// ErrStalePlan is returned when a decision's stash no longer exists.
var ErrStalePlan = errors.New("plan is out of date")

// Decision is the caller's verdict on one plan row. ASK means the row was
// seen but left undecided.
type Decision struct {
	Action Action
	// Commit pins a stash decision to the stash it was made for.
	Commit string
}

// Decisions are the caller's verdicts on plan items, keyed by the target
// the row was written with.
type Decisions map[Key]Decision

// ApplyOptions control how a plan is resolved.
type ApplyOptions struct {
	// AcceptDefaults resolves every undecided ASK item to its default;
	// ASK items without a default become KEEP.
	AcceptDefaults bool
	// ListedOnly demotes items that no decision names to KEEP, so nothing
	// the caller has not seen is executed.
	ListedOnly bool
	// Keep holds fuzzy queries; matching targets are demoted to KEEP.
	Keep []string
}

// targetSource implements fuzzy.Source over item targets.
type targetSource []ActionItem

func (s targetSource) String(i int) string { return s[i].Target }
func (s targetSource) Len() int            { return len(s) }

// itemIndex finds the items decisions refer to.
type itemIndex struct {
	byKey    map[Key]int
	byCommit map[string]int
}

func newItemIndex(items []ActionItem) itemIndex {
	ix := itemIndex{byKey: make(map[Key]int, len(items)), byCommit: make(map[string]int)}
	for i, it := range items {
		ix.byKey[it.Key()] = i
		if it.Kind == KindStash && it.Commit != "" {
			ix.byCommit[it.Commit] = i
		}
	}
	return ix
}

// lookup resolves a decision to an item, or -1 when a non-mutating
// decision names something that no longer exists. Stash decisions that
// carry a commit follow the stash to its current index; mutating stash
// decisions without one are refused.
func (ix itemIndex) lookup(key Key, d Decision) (int, error) {
	var (
		i  int
		ok bool
	)
	switch {
	case key.Kind == KindStash && d.Commit != "":
		i, ok = ix.byCommit[d.Commit]
	case key.Kind == KindStash && d.Action.Mutates():
		return 0, fmt.Errorf("%w: %s has no commit to check the stash against", ErrIllegalDecision, key)
	default:
		i, ok = ix.byKey[key]
	}
	switch {
	case ok:
		return i, nil
	case !d.Action.Mutates():
		return -1, nil
	case d.Commit != "":
		return 0, fmt.Errorf("%w: %s (%s) no longer exists", ErrStalePlan, key.Target, shortCommit(d.Commit))
	}
	return 0, fmt.Errorf("%w: %s is not in the plan", ErrIllegalDecision, key)
}

func shortCommit(c string) string {
	if len(c) > 12 {
		return c[:12]
	}
	return c
}

// Apply returns a new plan with decisions and options applied. Decisions
// override proposals, then unlisted items are kept (ListedOnly), then
// defaults are accepted, then Keep queries demote. A branch DELETE whose
// worktree is not being removed is demoted to KEEP. The receiver is not
// modified.
func (p *Plan) Apply(decisions Decisions, opts ApplyOptions) (*Plan, error) {
	items := p.Clone().Items
	ix := newItemIndex(items)
	listed := make([]bool, len(items))

	for key, d := range decisions {
		i, err := ix.lookup(key, d)
		if err != nil {
			return nil, err
		}
		if i < 0 {
			continue
		}
		if listed[i] {
			return nil, fmt.Errorf("%w: %s is decided twice", ErrIllegalDecision, items[i].Key())
		}
		listed[i] = true
		it := &items[i]
		if d.Action == ActionAsk {
			continue
		}
		if !Legal(it.Kind, d.Action) {
			return nil, fmt.Errorf("%w: %s cannot be applied to %s", ErrIllegalDecision, d.Action, key)
		}
		if it.Protected && d.Action != ActionKeep {
			return nil, fmt.Errorf("%w: %s is protected", ErrIllegalDecision, key)
		}
		if it.Action == d.Action {
			continue
		}
		if d.Action == ActionKeep {
			*it = it.Keep("kept by decision")
			continue
		}
		it.Action = d.Action
		it.Default = ""
	}

	if opts.ListedOnly {
		for i := range items {
			if !listed[i] && items[i].Action != ActionKeep {
				items[i] = items[i].Keep("not in the approved plan")
			}
		}
	}

	if opts.AcceptDefaults {
		for i := range items {
			if items[i].Action != ActionAsk {
				continue
			}
			if items[i].Default == "" {
				items[i] = items[i].Keep("no default; kept")
				continue
			}
			items[i].Action = items[i].Default
			items[i].Default = ""
		}
	}

	for _, q := range opts.Keep {
		for _, m := range fuzzy.FindFrom(q, targetSource(items)) {
			if items[m.Index].Action != ActionKeep {
				items[m.Index] = items[m.Index].Keep(fmt.Sprintf("kept by --keep %q", q))
			}
		}
	}

	demoteOrphanDeletes(items)
	return Build(items), nil
}

// demoteOrphanDeletes keeps branches whose worktree stays in place, since
// git refuses to delete a checked-out branch.
func demoteOrphanDeletes(items []ActionItem) {
	kept := make(map[string]string)
	for _, it := range items {
		if it.Kind == KindWorktree && it.Branch != "" && it.Action != ActionRemove {
			kept[it.Branch] = it.Target
		}
	}
	for i, it := range items {
		if it.Kind != KindBranch || it.Action != ActionDelete {
			continue
		}
		if wt, ok := kept[it.Target]; ok {
			items[i] = it.Keep("worktree " + wt + " is not being removed")
		}
	}
}
