package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/raphi011/wtctl/internal/execute"
	"github.com/raphi011/wtctl/internal/hooks"
	"github.com/raphi011/wtctl/internal/log"
	"github.com/raphi011/wtctl/internal/output"
	"github.com/raphi011/wtctl/internal/plan"
	"github.com/raphi011/wtctl/internal/report"
	"github.com/raphi011/wtctl/internal/ui/progress"
	"github.com/raphi011/wtctl/internal/ui/styles"
)

// cleanupOptions are the parsed flags of the cleanup command.
type cleanupOptions struct {
	planFile       string // "-" reads stdin
	acceptDefaults bool
	keep           []string
	yes            bool
	dryRun         bool
	args           []string
	noHook         bool
	format         report.Format
}

func newCleanupCmd() *cobra.Command {
	var (
		opts   cleanupOptions
		format formatFlag
	)

	cmd := &cobra.Command{
		Use:     "cleanup",
		Short:   "Plan and apply a cleanup",
		Aliases: []string{"clean"},
		GroupID: GroupAudit,
		Args:    cobra.NoArgs,
		Long: `Collect state, classify it and resolve the plan with the given decisions.

Without --yes the resolved plan is printed and nothing changes. With --yes the
plan is executed in order: stash drops first (highest index first), then each
worktree removal followed by the deletion of its branch, then the remaining
branch deletions. A failing item is reported and the run continues.

ASK items must be decided before execution, either in an edited plan passed
with --plan or with --accept-defaults. --keep demotes fuzzy-matched targets
to KEEP.`,
		Example: `  wtctl cleanup                          # Show the resolved plan
  wtctl cleanup --accept-defaults --yes  # Apply with default answers
  wtctl cleanup --plan plan.txt --yes    # Apply an edited plan
  wtctl plan | edit | wtctl cleanup --plan - --yes
  wtctl cleanup --keep feat-x --accept-defaults --dry-run --yes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			f, err := format.parse()
			if err != nil {
				return err
			}
			opts.format = f

			if opts.planFile == "-" && isTerminal(os.Stdin) {
				return fmt.Errorf("--plan - requires the plan on stdin")
			}

			s, err := openSession(dirFlag, cfg, noPR)
			if err != nil {
				return err
			}
			return runCleanup(ctx, s, opts, os.Stdin)
		},
	}

	format.register(cmd)
	cmd.Flags().StringVarP(&opts.planFile, "plan", "p", "", "Read decisions from an edited plan `file` (- for stdin)")
	cmd.Flags().BoolVar(&opts.acceptDefaults, "accept-defaults", false, "Resolve undecided ASK items to their default")
	cmd.Flags().StringSliceVarP(&opts.keep, "keep", "k", nil, "Keep targets fuzzy-matching `query` (repeatable)")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Execute the plan")
	cmd.Flags().BoolVarP(&opts.dryRun, "dry-run", "d", false, "Log mutations instead of performing them")
	cmd.Flags().StringSliceVarP(&opts.args, "arg", "a", nil, "Set hook variable KEY=VALUE (repeatable)")
	cmd.Flags().BoolVar(&opts.noHook, "no-hook", false, "Skip hooks")

	return cmd
}

// runCleanup drives one cleanup: collect, classify, resolve, then either
// print the plan or execute it and report the results with the after-state.
func runCleanup(ctx context.Context, s *session, opts cleanupOptions, stdin io.Reader) error {
	l := log.FromContext(ctx)
	out := output.FromContext(ctx)

	env, err := hooks.ParseEnv(opts.args)
	if err != nil {
		return err
	}

	decisions, err := readDecisions(opts.planFile, stdin)
	if err != nil {
		return err
	}

	state, err := s.collect(ctx)
	if err != nil {
		return err
	}
	proposed := s.propose(state)

	resolved, err := proposed.Apply(decisions, plan.ApplyOptions{
		AcceptDefaults: opts.acceptDefaults,
		ListedOnly:     decisions != nil,
		Keep:           opts.keep,
	})
	if err != nil {
		return err
	}
	open := resolved.Unresolved()

	if !opts.yes {
		if err := render(out, opts.format, report.Document{Plan: resolved}); err != nil {
			return err
		}
		switch {
		case len(open) > 0:
			l.Printf("%d item(s) still need a decision; pass --plan or --accept-defaults\n", len(open))
		case resolved.Mutations() > 0:
			l.Printf("Run again with --yes to apply %d change(s)\n", resolved.Mutations())
		default:
			l.Printf("Nothing to clean up\n")
		}
		return nil
	}

	if len(open) > 0 {
		if err := render(out, opts.format, report.Document{Plan: resolved}); err != nil {
			return err
		}
		return fmt.Errorf("%w: %d item(s) need a decision", execute.ErrUnresolved, len(open))
	}

	if !opts.dryRun {
		unlock, err := lockRepo(ctx, s)
		if err != nil {
			return err
		}
		defer unlock()
	}

	ex := &execute.Executor{
		Ops: s.repo,
		Hooks: &hooks.Runner{
			Config: s.cfg.Hooks,
			Exec:   s.runner,
			Repo:   s.info.Root,
			Env:    env,
			NoHook: opts.noHook,
			DryRun: opts.dryRun,
		},
		DryRun: opts.dryRun,
	}

	var bar *progress.ProgressBar
	if s.showProgress && resolved.Mutations() > 0 {
		theme, _ := styles.Preset(s.cfg.UI.Theme)
		bar = progress.NewProgressBar(os.Stderr, theme, len(resolved.Items))
		ex.Progress = bar.Step
		bar.Start()
	}

	result, err := ex.Execute(ctx, resolved)
	if bar != nil {
		bar.Stop()
	}
	if err != nil {
		return err
	}
	l.Debug("cleanup finished", "run", result.RunID, "done", result.Done, "failed", result.Failed, "skipped", result.Skipped)

	doc := report.Document{Result: result}
	if after, err := s.collect(ctx); err != nil {
		l.Warnf("failed to collect state after cleanup: %v", err)
	} else {
		doc.State = after
	}
	return render(out, opts.format, doc)
}

// lockRepo takes the repository's cleanup lock in the git common directory.
// The returned func releases it.
func lockRepo(ctx context.Context, s *session) (func(), error) {
	commonDir, err := s.repo.CommonDir(ctx)
	if err != nil {
		return nil, err
	}
	lock := execute.NewFileLock(filepath.Join(commonDir, execute.LockFileName))
	if err := lock.TryLock(); err != nil {
		return nil, err
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			log.FromContext(ctx).Debug("unlock failed", "err", err)
		}
	}, nil
}

// readDecisions parses an edited plan. An empty path yields no decisions.
func readDecisions(path string, stdin io.Reader) (plan.Decisions, error) {
	if path == "" {
		return nil, nil
	}

	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open plan: %w", err)
		}
		defer f.Close()
		r = f
	}

	decisions, err := report.ParsePlan(r)
	if err != nil {
		return nil, fmt.Errorf("read plan %s: %w", path, err)
	}
	return decisions, nil
}
