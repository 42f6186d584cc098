package git

import (
	"errors"
	"os/exec"
)

// ErrGitNotFound indicates git is not installed or not in PATH
var ErrGitNotFound = errors.New("git not found: please install git (https://git-scm.com)")

// ErrNotRepository indicates the directory is not inside a git working tree
var ErrNotRepository = errors.New("not a git repository")

// ErrBareRepository indicates the directory is a bare repository, which has
// no worktree of its own to audit from
var ErrBareRepository = errors.New("bare repository has no working tree")

// CheckGit verifies that git is available in PATH
func CheckGit() error {
	if _, err := exec.LookPath("git"); err != nil {
		return ErrGitNotFound
	}
	return nil
}
