package git

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Info describes the repository a directory belongs to.
type Info struct {
	Root          string // root of the worktree containing the directory
	OriginURL     string // empty when there is no origin remote
	DefaultBranch string // from refs/remotes/origin/HEAD, empty if unknown
}

// Open locates the repository containing dir without shelling out.
// Linked worktrees resolve to their own root; refs and remotes come from
// the shared common directory.
func Open(dir string) (Info, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Info{}, err
	}

	repo, err := gogit.PlainOpenWithOptions(abs, &gogit.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return Info{}, fmt.Errorf("%s: %w", abs, ErrNotRepository)
		}
		return Info{}, fmt.Errorf("failed to open repository at %s: %w", abs, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		if errors.Is(err, gogit.ErrIsBareRepository) {
			return Info{}, fmt.Errorf("%s: %w", abs, ErrBareRepository)
		}
		return Info{}, fmt.Errorf("failed to open worktree at %s: %w", abs, err)
	}

	info := Info{Root: wt.Filesystem.Root()}
	if remote, err := repo.Remote("origin"); err == nil {
		if urls := remote.Config().URLs; len(urls) > 0 {
			info.OriginURL = strings.TrimSpace(urls[0])
		}
	}
	info.DefaultBranch = defaultBranch(repo)
	return info, nil
}

// defaultBranch reads the branch refs/remotes/origin/HEAD points to.
func defaultBranch(repo *gogit.Repository) string {
	ref, err := repo.Reference(plumbing.NewRemoteHEADReferenceName("origin"), false)
	if err != nil || ref.Type() != plumbing.SymbolicReference {
		return ""
	}
	return strings.TrimPrefix(ref.Target().Short(), "origin/")
}
