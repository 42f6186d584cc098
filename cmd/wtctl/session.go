package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/raphi011/wtctl/internal/classify"
	"github.com/raphi011/wtctl/internal/cmd"
	"github.com/raphi011/wtctl/internal/config"
	"github.com/raphi011/wtctl/internal/forge"
	"github.com/raphi011/wtctl/internal/git"
	"github.com/raphi011/wtctl/internal/inventory"
	"github.com/raphi011/wtctl/internal/log"
	"github.com/raphi011/wtctl/internal/plan"
	"github.com/raphi011/wtctl/internal/ui/progress"
)

// session is the repository a command operates on.
type session struct {
	cfg    config.Config
	info   git.Info
	repo   *git.Repo
	cwd    string
	runner cmd.Runner
	noPR   bool
	now    func() time.Time

	// showProgress draws spinners and bars on stderr.
	showProgress bool
}

// openSession resolves dir (the working directory when empty) to its
// repository and merges the repository's .wtctl.toml over c. Failing here
// is the only fatal setup error.
func openSession(dir string, c config.Config, skipPR bool) (*session, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = wd
	}
	cwd, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if resolved, err := filepath.EvalSymlinks(cwd); err == nil {
		cwd = resolved
	}

	info, err := git.Open(cwd)
	if err != nil {
		return nil, err
	}

	local, err := config.LoadLocal(info.Root)
	if err != nil {
		return nil, err
	}
	c = config.MergeLocal(c, local)

	runner := cmd.Exec{}
	return &session{
		cfg:          c,
		info:         info,
		repo:         git.NewRepo(runner, info.Root),
		cwd:          cwd,
		runner:       runner,
		noPR:         skipPR,
		now:          time.Now,
		showProgress: !quiet && isTerminal(os.Stderr),
	}, nil
}

// forge returns the PR lookup backend, or nil when lookups are off.
func (s *session) forge() forge.Forge {
	if s.noPR || !s.cfg.PR.Lookup {
		return nil
	}
	if s.cfg.PR.Forge != "" {
		return forge.ByName(s.cfg.PR.Forge, s.runner)
	}
	if s.info.OriginURL == "" {
		return nil
	}
	return forge.Detect(s.info.OriginURL, s.cfg.Hosts, s.runner)
}

// collect runs the StateCollector and logs every anomaly it recorded.
func (s *session) collect(ctx context.Context) (*inventory.State, error) {
	l := log.FromContext(ctx)
	c := &inventory.Collector{
		Repo:    s.repo,
		Forge:   s.forge(),
		RepoURL: s.info.OriginURL,
		Cwd:     s.cwd,
		Now:     s.now,
	}
	l.Debug("collecting", "root", s.info.Root, "cwd", s.cwd, "pr", c.Forge != nil)

	var sp *progress.Spinner
	if s.showProgress {
		sp = progress.NewSpinner(os.Stderr, "Collecting")
		c.Progress = sp.Collected
		sp.Start()
	}
	state, err := c.Collect(ctx)
	if sp != nil {
		sp.Stop()
	}
	if err != nil {
		return nil, fmt.Errorf("collect %s: %w", s.info.Root, err)
	}

	for _, a := range state.Anomalies {
		l.Warnf("%v", a)
	}
	return state, nil
}

// propose classifies state and orders the result into a plan.
func (s *session) propose(state *inventory.State) *plan.Plan {
	policy := classify.PolicyFromConfig(s.cfg.Cleanup, s.info.DefaultBranch, s.now())
	return plan.Build(classify.Classify(state, policy))
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
