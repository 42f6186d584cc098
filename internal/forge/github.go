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

// GitHub implements Forge for GitHub repositories using the gh CLI.
type GitHub struct {
	Runner cmd.Runner
}

// Name returns "github"
func (g *GitHub) Name() string {
	return "github"
}

// Check verifies that gh CLI is available and authenticated
func (g *GitHub) Check(ctx context.Context) error {
	err := g.Runner.Run(ctx, "", "gh", "auth", "status")
	if err == nil {
		return nil
	}
	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("gh not found: please install GitHub CLI (https://cli.github.com)")
	}
	errMsg := err.Error()
	if strings.Contains(errMsg, "not logged") || strings.Contains(errMsg, "no accounts") {
		return fmt.Errorf("gh not authenticated: please run 'gh auth login'")
	}
	return fmt.Errorf("gh auth check failed: %s", errMsg)
}

// GetPRForBranch fetches PR info for a branch using gh CLI
func (g *GitHub) GetPRForBranch(ctx context.Context, repoURL, branch string) (*PRInfo, error) {
	output, err := g.Runner.Output(ctx, "", "gh", "pr", "list",
		"-R", githubRepoSpec(repoURL),
		"--head", branch,
		"--state", "all",
		"--json", "number,state,isDraft,url",
		"--limit", "1")
	if err != nil {
		return nil, fmt.Errorf("gh command failed: %w", err)
	}

	var prs []struct {
		Number  int    `json:"number"`
		State   string `json:"state"`
		IsDraft bool   `json:"isDraft"`
		URL     string `json:"url"`
	}
	if err := json.Unmarshal(output, &prs); err != nil {
		return nil, fmt.Errorf("failed to parse gh output: %w", err)
	}
	if len(prs) == 0 {
		return nil, nil
	}

	pr := prs[0]
	return &PRInfo{
		Number:  pr.Number,
		State:   strings.ToUpper(pr.State), // GitHub already uses OPEN, MERGED, CLOSED
		IsDraft: pr.IsDraft,
		URL:     pr.URL,
	}, nil
}

// githubRepoSpec turns a remote URL into gh's [HOST/]OWNER/REPO form.
func githubRepoSpec(remoteURL string) string {
	path := extractRepoPath(remoteURL)
	host := extractHost(remoteURL)
	if host == "" || host == "github.com" {
		return path
	}
	return host + "/" + path
}
