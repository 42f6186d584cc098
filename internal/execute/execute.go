// Package execute applies an approved cleanup plan.
//
// Items run strictly in plan order. A failing item is recorded and the run
// continues with the next one; nothing is rolled back.
package execute

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/raphi011/wtctl/internal/log"
	"github.com/raphi011/wtctl/internal/plan"
)

// ErrUnresolved is returned when the plan still contains ASK items.
var ErrUnresolved = errors.New("plan has unresolved items")

// ErrStashMoved fails a DROP whose index now holds a different stash.
var ErrStashMoved = errors.New("stash moved")

// Operations are the git mutations the executor performs. *git.Repo
// implements it.
type Operations interface {
	RemoveWorktree(ctx context.Context, path string) error
	PruneWorktrees(ctx context.Context) error
	StashCommit(ctx context.Context, index int) (string, error)
	DropStash(ctx context.Context, index int) error
	DeleteBranch(ctx context.Context, name string) error
}

// HookRunner is notified after each successful mutation.
type HookRunner interface {
	AfterAction(ctx context.Context, item plan.ActionItem)
}

// Result is the outcome of one execution run.
type Result struct {
	RunID   string            `json:"run_id" yaml:"run_id"`
	DryRun  bool              `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
	Items   []plan.ActionItem `json:"items" yaml:"items"`
	Done    int               `json:"done" yaml:"done"`
	Failed  int               `json:"failed" yaml:"failed"`
	Skipped int               `json:"skipped" yaml:"skipped"`
}

// Executor runs plans against a repository.
type Executor struct {
	Ops   Operations
	Hooks HookRunner // optional
	// DryRun logs each mutation instead of performing it.
	DryRun bool
	// NewRunID defaults to a random UUID.
	NewRunID func() string
	// Progress, when set, is called twice per item: before it runs, with
	// OutcomePending, and after it settles, with its outcome.
	Progress func(step, total int, item plan.ActionItem)
}

// Execute applies p. It refuses to start when p has unresolved items or
// violates the ordering invariants; in that case nothing runs and the
// returned Result is nil. p itself is not modified.
func (e *Executor) Execute(ctx context.Context, p *plan.Plan) (*Result, error) {
	if open := p.Unresolved(); len(open) > 0 {
		return nil, fmt.Errorf("%w: %d ASK item(s), first %s", ErrUnresolved, len(open), open[0].Key())
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	newID := e.NewRunID
	if newID == nil {
		newID = uuid.NewString
	}
	res := &Result{RunID: newID(), DryRun: e.DryRun, Items: p.Clone().Items}
	l := log.FromContext(ctx)
	l.Debug("execute", "run", res.RunID, "items", len(res.Items), "mutations", p.Mutations(), "dry_run", e.DryRun)

	for i := range res.Items {
		it := &res.Items[i]
		e.progress(i, len(res.Items), *it)
		e.step(ctx, res, it)
		e.progress(i, len(res.Items), *it)
	}
	return res, nil
}

func (e *Executor) progress(step, total int, it plan.ActionItem) {
	if e.Progress != nil {
		e.Progress(step, total, it)
	}
}

// step runs one item and records its outcome in it and res.
func (e *Executor) step(ctx context.Context, res *Result, it *plan.ActionItem) {
	l := log.FromContext(ctx)
	if !it.Action.Mutates() {
		it.Outcome = plan.OutcomeSkipped
		res.Skipped++
		return
	}
	if e.DryRun {
		l.Printf("[dry-run] %s\n", it)
		it.Outcome = plan.OutcomeSkipped
		res.Skipped++
		return
	}

	if err := e.apply(ctx, *it); err != nil {
		it.Outcome = plan.OutcomeFailed
		it.Error = err.Error()
		res.Failed++
		l.Warnf("%s %s %s failed: %v", it.Action, it.Kind, it.Target, err)
		return
	}
	it.Outcome = plan.OutcomeDone
	res.Done++
	l.Debug("done", "run", res.RunID, "action", it.Action, "target", it.Target)

	if it.Action == plan.ActionRemove {
		if err := e.Ops.PruneWorktrees(ctx); err != nil {
			l.Debug("worktree prune failed", "run", res.RunID, "err", err)
		}
	}
	if e.Hooks != nil {
		e.Hooks.AfterAction(ctx, *it)
	}
}

func (e *Executor) apply(ctx context.Context, it plan.ActionItem) error {
	switch it.Action {
	case plan.ActionRemove:
		return e.Ops.RemoveWorktree(ctx, it.Target)
	case plan.ActionDrop:
		if it.Commit != "" {
			got, err := e.Ops.StashCommit(ctx, it.Index)
			if err != nil {
				return err
			}
			if got != it.Commit {
				return fmt.Errorf("%w: %s is no longer the planned stash", ErrStashMoved, it.Target)
			}
		}
		return e.Ops.DropStash(ctx, it.Index)
	case plan.ActionDelete:
		return e.Ops.DeleteBranch(ctx, it.Target)
	}
	return fmt.Errorf("unsupported action %s", it.Action)
}
