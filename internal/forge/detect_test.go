package forge

import (
	"testing"
)

func TestExtractHost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		want string
	}{
		{"git@github.com:user/repo.git", "github.com"},
		{"git@github.mycompany.com:org/repo.git", "github.mycompany.com"},
		{"https://gitlab.com/user/repo.git", "gitlab.com"},
		{"https://code.company.com:8443/org/repo.git", "code.company.com"},
		{"http://github.mycompany.com/org/repo.git", "github.mycompany.com"},
		{"ssh://git@gitlab.internal.corp:2222/org/repo.git", "gitlab.internal.corp"},
		{"", ""},
		{"not-a-url", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			t.Parallel()
			if got := extractHost(tt.url); got != tt.want {
				t.Errorf("extractHost(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestExtractRepoPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		want string
	}{
		{"git@github.com:user/repo.git", "user/repo"},
		{"git@github.com-work:myorg/myrepo.git", "myorg/myrepo"},
		{"https://github.com/user/repo", "user/repo"},
		{"https://gitlab.com/group/subgroup/repo.git", "group/subgroup/repo"},
		{"ssh://git@gitlab.internal.corp:2222/org/repo.git", "org/repo"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			t.Parallel()
			if got := extractRepoPath(tt.url); got != tt.want {
				t.Errorf("extractRepoPath(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestGithubRepoSpec(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		want string
	}{
		{"git@github.com:acme/widgets.git", "acme/widgets"},
		{"https://github.enterprise.corp/acme/widgets.git", "github.enterprise.corp/acme/widgets"},
	}
	for _, tt := range tests {
		if got := githubRepoSpec(tt.url); got != tt.want {
			t.Errorf("githubRepoSpec(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		url     string
		hostMap map[string]string
		want    string
	}{
		{"github.com", "git@github.com:user/repo.git", nil, "github"},
		{"gitlab.com", "git@gitlab.com:user/repo.git", nil, "gitlab"},
		{"host map to gitlab", "git@code.internal.corp:org/repo.git", map[string]string{"code.internal.corp": "gitlab"}, "gitlab"},
		{"host map wins over pattern", "git@gitlab.mycompany.com:org/repo.git", map[string]string{"gitlab.mycompany.com": "github"}, "github"},
		{"gitlab in path", "https://company.com/gitlab/org/repo.git", nil, "gitlab"},
		{"unknown host defaults to github", "git@unknown.example.com:org/repo.git", nil, "github"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Detect(tt.url, tt.hostMap, nil)
			if got.Name() != tt.want {
				t.Errorf("Detect(%q, %v) = %s, want %s", tt.url, tt.hostMap, got.Name(), tt.want)
			}
		})
	}
}
