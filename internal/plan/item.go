package plan

import (
	"fmt"
	"slices"
	"strings"
)

// Kind is the kind of entity an action targets.
type Kind string

const (
	KindWorktree Kind = "worktree"
	KindStash    Kind = "stash"
	KindBranch   Kind = "branch"
)

// kindOrder is the order non-mutating items are listed in.
var kindOrder = map[Kind]int{KindWorktree: 0, KindStash: 1, KindBranch: 2}

// ParseKind validates a kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(s))
	if _, ok := kindOrder[k]; !ok {
		return "", fmt.Errorf("invalid kind %q", s)
	}
	return k, nil
}

// Action is what the plan proposes to do with an entity.
type Action string

const (
	ActionRemove Action = "REMOVE" // worktree
	ActionDrop   Action = "DROP"   // stash
	ActionDelete Action = "DELETE" // branch
	ActionKeep   Action = "KEEP"
	ActionAsk    Action = "ASK"
)

// ParseAction validates an action.
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToUpper(strings.TrimSpace(s)))
	switch a {
	case ActionRemove, ActionDrop, ActionDelete, ActionKeep, ActionAsk:
		return a, nil
	}
	return "", fmt.Errorf("invalid action %q", s)
}

// Mutates reports whether the action changes the repository.
func (a Action) Mutates() bool {
	return a == ActionRemove || a == ActionDrop || a == ActionDelete
}

// Mutation returns the destructive action for kind.
func Mutation(kind Kind) Action {
	switch kind {
	case KindWorktree:
		return ActionRemove
	case KindStash:
		return ActionDrop
	case KindBranch:
		return ActionDelete
	}
	return ""
}

// Legal reports whether a is a concrete action for kind: its mutation or KEEP.
func Legal(kind Kind, a Action) bool {
	return a == ActionKeep || (a != "" && a == Mutation(kind))
}

// Outcome is the execution result of one item.
type Outcome string

const (
	OutcomePending Outcome = ""
	OutcomeDone    Outcome = "done"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped"
)

// String returns "pending" for items that have not run.
func (o Outcome) String() string {
	if o == OutcomePending {
		return "pending"
	}
	return string(o)
}

// ActionItem is one proposed action.
type ActionItem struct {
	Kind   Kind   `json:"kind" yaml:"kind"`
	Target string `json:"target" yaml:"target"` // worktree path, stash ref or branch name
	Action Action `json:"action" yaml:"action"`
	Reason string `json:"reason" yaml:"reason"`

	// Default is the recommended concrete action of an ASK item; empty when
	// the decision is left entirely to the caller.
	Default Action `json:"default,omitempty" yaml:"default,omitempty"`

	// Branch is the branch a worktree item is bound to, or the branch an
	// item for a branch names.
	Branch string `json:"branch,omitempty" yaml:"branch,omitempty"`
	// Index is the stash index of stash items.
	Index int `json:"index,omitempty" yaml:"index,omitempty"`
	// Commit is the stash commit of stash items. Indices shift when stashes
	// are pushed or dropped; the commit does not.
	Commit string `json:"commit,omitempty" yaml:"commit,omitempty"`
	// Protected items never leave KEEP.
	Protected bool `json:"protected,omitempty" yaml:"protected,omitempty"`

	Outcome Outcome `json:"outcome,omitempty" yaml:"outcome,omitempty"`
	Error   string  `json:"error,omitempty" yaml:"error,omitempty"`
}

// Key identifies the entity an item targets.
type Key struct {
	Kind   Kind
	Target string
}

func (k Key) String() string {
	return string(k.Kind) + " " + k.Target
}

// Key returns the item's identity.
func (i ActionItem) Key() Key {
	return Key{Kind: i.Kind, Target: i.Target}
}

// String formats the item as "<ACTION> <kind> <target> (<reason>)".
func (i ActionItem) String() string {
	s := fmt.Sprintf("%s %s %s", i.Action, i.Kind, i.Target)
	if i.Action == ActionAsk && i.Default != "" {
		s += fmt.Sprintf(" [default: %s]", i.Default)
	}
	if i.Reason != "" {
		s += " (" + i.Reason + ")"
	}
	return s
}

// Keep returns an item with the same target, demoted to KEEP.
func (i ActionItem) Keep(reason string) ActionItem {
	i.Action = ActionKeep
	i.Default = ""
	if reason != "" {
		i.Reason = reason
	}
	return i
}

// sortIndex orders items that share a phase.
func sortIndex(items []ActionItem) {
	slices.SortStableFunc(items, func(a, b ActionItem) int {
		return kindOrder[a.Kind] - kindOrder[b.Kind]
	})
}
