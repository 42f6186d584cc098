package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeLocal(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, LocalConfigFileName), []byte(content), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return dir
}

func TestLoadLocal_NoFile(t *testing.T) {
	t.Parallel()

	local, err := LoadLocal(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if local != nil {
		t.Fatalf("expected nil, got %+v", local)
	}
}

func TestLoadLocal_EmptyFile(t *testing.T) {
	t.Parallel()

	local, err := LoadLocal(writeLocal(t, ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if local == nil {
		t.Fatal("expected non-nil local config for empty file")
	}
}

func TestLoadLocal_AllFields(t *testing.T) {
	t.Parallel()

	dir := writeLocal(t, `
[cleanup]
stale_stash_days = 14
default_branches = ["develop"]
protected_branches = ["release"]
temp_stash_patterns = ["^scratch"]

[pr]
lookup = false
forge = "gitlab"

[hooks.reindex]
command = "make index"
description = "Rebuild index"
on = ["remove"]

[hooks.notify]
enabled = false
`)

	local, err := LoadLocal(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if local.Cleanup.StaleStashDays == nil || *local.Cleanup.StaleStashDays != 14 {
		t.Errorf("StaleStashDays = %v, want 14", local.Cleanup.StaleStashDays)
	}
	if len(local.Cleanup.DefaultBranches) != 1 || local.Cleanup.DefaultBranches[0] != "develop" {
		t.Errorf("DefaultBranches = %v", local.Cleanup.DefaultBranches)
	}
	if len(local.Cleanup.ProtectedBranches) != 1 || len(local.Cleanup.TempStashPatterns) != 1 {
		t.Errorf("Cleanup = %+v", local.Cleanup)
	}
	if local.PR.Lookup == nil || *local.PR.Lookup {
		t.Errorf("PR.Lookup = %v, want false", local.PR.Lookup)
	}
	if local.PR.Forge != "gitlab" {
		t.Errorf("PR.Forge = %q", local.PR.Forge)
	}

	reindex, ok := local.Hooks.Hooks["reindex"]
	if !ok || reindex.Command != "make index" || !reindex.IsEnabled() {
		t.Errorf("hooks.reindex = %+v", reindex)
	}
	notify, ok := local.Hooks.Hooks["notify"]
	if !ok || notify.IsEnabled() {
		t.Errorf("hooks.notify = %+v, want disabled", notify)
	}
}

func TestLoadLocal_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"malformed toml", "[cleanup\n", "failed to parse local config"},
		{"negative stale days", "[cleanup]\nstale_stash_days = -3\n", "stale_stash_days"},
		{"zero stale days", "[cleanup]\nstale_stash_days = 0\n", "must be at least 1"},
		{"bad pattern", "[cleanup]\ntemp_stash_patterns = ['(']\n", "temp_stash_patterns[0]"},
		{"bad forge", "[pr]\nforge = \"gitea\"\n", "pr.forge"},
		{"hook without command", "[hooks.x]\non = [\"drop\"]\n", "no command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := LoadLocal(writeLocal(t, tt.content))
			if err == nil {
				t.Fatalf("LoadLocal() error = nil, want containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadLocal() error = %q, want containing %q", err, tt.wantErr)
			}
			if !strings.Contains(err.Error(), LocalConfigFileName) {
				t.Errorf("LoadLocal() error = %q, should name the file", err)
			}
		})
	}
}

func TestInitLocal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path, err := InitLocal(dir, false)
	if err != nil {
		t.Fatalf("InitLocal() error = %v", err)
	}
	if path != filepath.Join(dir, LocalConfigFileName) {
		t.Errorf("InitLocal() = %q", path)
	}
	if _, err := InitLocal(dir, false); err == nil {
		t.Error("second InitLocal() without force should fail")
	}

	// The template is entirely commented out and must load as an empty config.
	local, err := LoadLocal(dir)
	if err != nil {
		t.Fatalf("LoadLocal(template) error = %v", err)
	}
	if local.Cleanup.StaleStashDays != nil || len(local.Hooks.Hooks) != 0 {
		t.Errorf("template config = %+v", local)
	}
}
