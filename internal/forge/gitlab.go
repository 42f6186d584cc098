package forge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/raphi011/wtctl/internal/cmd"
)

// GitLab implements Forge for GitLab repositories using the glab CLI.
type GitLab struct {
	Runner cmd.Runner
}

// Name returns "gitlab"
func (g *GitLab) Name() string {
	return "gitlab"
}

// Check verifies that glab CLI is available and authenticated
func (g *GitLab) Check(ctx context.Context) error {
	err := g.Runner.Run(ctx, "", "glab", "auth", "status")
	if err == nil {
		return nil
	}
	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("glab not found: please install GitLab CLI (https://gitlab.com/gitlab-org/cli)")
	}
	errMsg := err.Error()
	if strings.Contains(errMsg, "not logged") || strings.Contains(errMsg, "no token") {
		return fmt.Errorf("glab not authenticated: please run 'glab auth login'")
	}
	return fmt.Errorf("glab auth check failed: %s", errMsg)
}

// GetPRForBranch fetches MR info for a branch using glab CLI
func (g *GitLab) GetPRForBranch(ctx context.Context, repoURL, branch string) (*PRInfo, error) {
	// glab uses -R for repo like gh, but needs project path format
	output, err := g.Runner.Output(ctx, "", "glab", "mr", "list",
		"-R", extractRepoPath(repoURL),
		"--source-branch", branch,
		"--all",
		"-F", "json",
		"-P", "1")
	if err != nil {
		return nil, fmt.Errorf("glab command failed: %w", err)
	}

	var mrs []struct {
		IID    int    `json:"iid"`
		State  string `json:"state"` // opened, merged, closed
		Draft  bool   `json:"draft"`
		WebURL string `json:"web_url"`
	}
	if err := json.Unmarshal(output, &mrs); err != nil {
		return nil, fmt.Errorf("failed to parse glab output: %w", err)
	}
	if len(mrs) == 0 {
		return nil, nil
	}

	return &PRInfo{
		Number:  mrs[0].IID,
		State:   normalizeGitLabState(mrs[0].State),
		IsDraft: mrs[0].Draft,
		URL:     mrs[0].WebURL,
	}, nil
}

// normalizeGitLabState converts GitLab state to normalized format
func normalizeGitLabState(state string) string {
	switch strings.ToLower(state) {
	case "opened":
		return PRStateOpen
	case "merged":
		return PRStateMerged
	case "closed":
		return PRStateClosed
	default:
		return strings.ToUpper(state)
	}
}
