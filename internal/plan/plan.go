package plan

import (
	"errors"
	"fmt"
	"slices"
)

// Plan is an ordered list of actions. Mutations come first, in an order
// that keeps every step valid:
//
//  1. stash DROPs, highest index first, so lower indices don't shift
//  2. each worktree REMOVE, directly followed by
//  3. the DELETE of the branch that worktree had checked out
//  4. the remaining branch DELETEs
//
// ASK and KEEP items follow in kind order.
type Plan struct {
	Items []ActionItem `json:"items" yaml:"items"`
}

// ErrInvalidPlan is wrapped by every error Validate returns.
var ErrInvalidPlan = errors.New("invalid plan")

// Build orders items into a plan. The first item for a target wins;
// later duplicates are dropped. Build is idempotent.
func Build(items []ActionItem) *Plan {
	seen := make(map[Key]bool, len(items))
	var drops, removes, deletes, asks, keeps []ActionItem
	for _, it := range items {
		if seen[it.Key()] {
			continue
		}
		seen[it.Key()] = true
		switch {
		case it.Action == ActionDrop:
			drops = append(drops, it)
		case it.Action == ActionRemove:
			removes = append(removes, it)
		case it.Action == ActionDelete:
			deletes = append(deletes, it)
		case it.Action == ActionAsk:
			asks = append(asks, it)
		default:
			keeps = append(keeps, it)
		}
	}

	slices.SortStableFunc(drops, func(a, b ActionItem) int { return b.Index - a.Index })

	ordered := make([]ActionItem, 0, len(seen))
	ordered = append(ordered, drops...)

	paired := make(map[string]bool)
	for _, rm := range removes {
		ordered = append(ordered, rm)
		if rm.Branch == "" || paired[rm.Branch] {
			continue
		}
		if i := slices.IndexFunc(deletes, func(d ActionItem) bool { return d.Target == rm.Branch }); i >= 0 {
			ordered = append(ordered, deletes[i])
			paired[rm.Branch] = true
		}
	}
	for _, del := range deletes {
		if !paired[del.Target] {
			ordered = append(ordered, del)
		}
	}

	sortIndex(asks)
	sortIndex(keeps)
	ordered = append(ordered, asks...)
	ordered = append(ordered, keeps...)
	return &Plan{Items: ordered}
}

// Validate checks the ordering invariants and that every item is
// well-formed. It does not reject ASK items; see Unresolved.
func (p *Plan) Validate() error {
	seen := make(map[Key]bool, len(p.Items))
	removedAt := make(map[string]int)  // branch -> position of the REMOVE of its worktree
	boundTo := make(map[string]string) // branch -> worktree path, for all worktree items
	lastDrop := -1

	for pos, it := range p.Items {
		if seen[it.Key()] {
			return fmt.Errorf("%w: duplicate item for %s", ErrInvalidPlan, it.Key())
		}
		seen[it.Key()] = true

		if it.Action != ActionAsk && !Legal(it.Kind, it.Action) {
			return fmt.Errorf("%w: %s is not a valid action for %s", ErrInvalidPlan, it.Action, it.Key())
		}
		if it.Protected && it.Action != ActionKeep {
			return fmt.Errorf("%w: protected %s must be kept", ErrInvalidPlan, it.Key())
		}

		if it.Kind == KindWorktree && it.Branch != "" {
			boundTo[it.Branch] = it.Target
			if it.Action == ActionRemove {
				removedAt[it.Branch] = pos
			}
		}

		if it.Action == ActionDrop {
			if lastDrop >= 0 && it.Index >= lastDrop {
				return fmt.Errorf("%w: stash@{%d} is dropped after stash@{%d}", ErrInvalidPlan, it.Index, lastDrop)
			}
			lastDrop = it.Index
		}
	}

	for pos, it := range p.Items {
		if it.Action != ActionDelete {
			continue
		}
		wt, bound := boundTo[it.Target]
		if !bound {
			continue
		}
		at, removed := removedAt[it.Target]
		if !removed {
			return fmt.Errorf("%w: branch %s is deleted but worktree %s is kept", ErrInvalidPlan, it.Target, wt)
		}
		if at > pos {
			return fmt.Errorf("%w: branch %s is deleted before worktree %s is removed", ErrInvalidPlan, it.Target, wt)
		}
	}
	return nil
}

// Unresolved returns the ASK items still awaiting a decision.
func (p *Plan) Unresolved() []ActionItem {
	var out []ActionItem
	for _, it := range p.Items {
		if it.Action == ActionAsk {
			out = append(out, it)
		}
	}
	return out
}

// Mutations returns the number of items that change the repository.
func (p *Plan) Mutations() int {
	n := 0
	for _, it := range p.Items {
		if it.Action.Mutates() {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the plan.
func (p *Plan) Clone() *Plan {
	return &Plan{Items: slices.Clone(p.Items)}
}
