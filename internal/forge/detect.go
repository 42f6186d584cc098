package forge

import (
	"net/url"
	"strings"

	"github.com/raphi011/wtctl/internal/cmd"
)

// Detect returns the appropriate Forge implementation based on the remote URL.
// If hostMap is provided, checks for exact domain matches first.
// Falls back to pattern matching, then defaults to GitHub.
// A nil runner uses cmd.Exec.
func Detect(remoteURL string, hostMap map[string]string, runner cmd.Runner) Forge {
	if len(hostMap) > 0 {
		host := extractHost(remoteURL)
		if forgeType, ok := hostMap[host]; ok {
			return ByName(forgeType, runner)
		}
	}

	if isGitLab(remoteURL) {
		return ByName("gitlab", runner)
	}
	// Default to GitHub (most common)
	return ByName("github", runner)
}

// ByName returns a Forge implementation by name.
// Supported names: "github", "gitlab"
// Returns GitHub as default for unknown names.
func ByName(name string, runner cmd.Runner) Forge {
	if runner == nil {
		runner = cmd.Exec{}
	}
	switch strings.ToLower(name) {
	case "gitlab":
		return &GitLab{Runner: runner}
	default:
		return &GitHub{Runner: runner}
	}
}

// extractHost parses the hostname from a git remote URL.
// Handles SSH format (git@host:path) and HTTPS format (https://host/path).
func extractHost(remoteURL string) string {
	// SSH format: git@github.com:user/repo.git
	if strings.HasPrefix(remoteURL, "git@") {
		withoutPrefix := strings.TrimPrefix(remoteURL, "git@")
		if idx := strings.Index(withoutPrefix, ":"); idx > 0 {
			return withoutPrefix[:idx]
		}
	}

	// https://host/path and ssh://git@host/path
	for _, scheme := range []string{"http://", "https://", "ssh://"} {
		if strings.HasPrefix(remoteURL, scheme) {
			if parsed, err := url.Parse(remoteURL); err == nil {
				return parsed.Hostname()
			}
		}
	}

	return ""
}

// extractRepoPath extracts the repository path from a remote URL
// e.g., "git@gitlab.com:group/project.git" -> "group/project"
// e.g., "https://gitlab.com/group/subgroup/project.git" -> "group/subgroup/project"
func extractRepoPath(remoteURL string) string {
	s := strings.TrimSuffix(remoteURL, ".git")

	if strings.Contains(s, "://") {
		if parsed, err := url.Parse(s); err == nil {
			return strings.Trim(parsed.Path, "/")
		}
	}

	// scp-like SSH: git@host-alias:owner/repo
	if _, path, ok := strings.Cut(s, ":"); ok {
		return strings.Trim(path, "/")
	}

	return s
}

// isGitLab checks if a URL points to a GitLab instance
func isGitLab(url string) bool {
	url = strings.ToLower(url)

	// gitlab.com and common self-hosted gitlab.* hosts
	if strings.Contains(url, "gitlab.") {
		return true
	}

	// Check for "/gitlab/" in path (some orgs host at company.com/gitlab/)
	return strings.Contains(url, "/gitlab/")
}
