package forge

import (
	"context"
	"fmt"
)

// PR states, normalized across forges.
const (
	PRStateOpen   = "OPEN"
	PRStateMerged = "MERGED"
	PRStateClosed = "CLOSED"
)

// PRInfo is the pull/merge request found for a branch.
type PRInfo struct {
	Number  int
	State   string // PRStateOpen, PRStateMerged or PRStateClosed
	IsDraft bool
	URL     string
}

// String formats the PR as "<STATE>#<number>".
func (p PRInfo) String() string {
	return fmt.Sprintf("%s#%d", p.State, p.Number)
}

// Forge represents a git hosting service (GitHub, GitLab)
type Forge interface {
	// Name returns the forge name ("github" or "gitlab")
	Name() string

	// Check verifies the CLI is installed and authenticated
	Check(ctx context.Context) error

	// GetPRForBranch returns the most recent PR whose head is branch, in any
	// state. It returns nil without error when the branch has no PR.
	GetPRForBranch(ctx context.Context, repoURL, branch string) (*PRInfo, error)
}
