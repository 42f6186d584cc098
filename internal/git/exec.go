package git

import (
	"context"
	"strings"

	"github.com/raphi011/wtctl/internal/cmd"
)

// Repo runs git commands against one repository checkout.
type Repo struct {
	// Dir is the worktree root the commands run in.
	Dir    string
	runner cmd.Runner
}

// NewRepo returns a Repo for dir that executes git through runner.
func NewRepo(runner cmd.Runner, dir string) *Repo {
	return &Repo{Dir: dir, runner: runner}
}

// gitArgs prepends -C <dir> to args if dir is non-empty.
func gitArgs(dir string, args []string) []string {
	if dir == "" {
		return args
	}
	return append([]string{"-C", dir}, args...)
}

// run executes a git command in dir, discarding stdout.
func (r *Repo) run(ctx context.Context, dir string, args ...string) error {
	return r.runner.Run(ctx, "", "git", gitArgs(dir, args)...)
}

// output executes a git command in dir and returns stdout.
func (r *Repo) output(ctx context.Context, dir string, args ...string) (string, error) {
	out, err := r.runner.Output(ctx, "", "git", gitArgs(dir, args)...)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Key returns the cmd.Fake key of the git command Repo issues for args in dir.
func Key(dir string, args ...string) string {
	return cmd.Key("", "git", gitArgs(dir, args)...)
}

// splitLines splits command output into lines, dropping a trailing newline
// and carriage returns.
func splitLines(out string) []string {
	out = strings.TrimRight(out, "\n")
	if out == "" {
		return nil
	}
	lines := strings.Split(out, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
