package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/raphi011/wtctl/internal/cmd"
	"github.com/raphi011/wtctl/internal/config"
	"github.com/raphi011/wtctl/internal/execute"
	"github.com/raphi011/wtctl/internal/git"
	"github.com/raphi011/wtctl/internal/output"
	"github.com/raphi011/wtctl/internal/plan"
	"github.com/raphi011/wtctl/internal/report"
)

func TestReadDecisions(t *testing.T) {
	t.Parallel()

	const edited = "=== PLAN ===\n" +
		"ORDER | ACTION | KIND | TARGET | COMMIT | DEFAULT | REASON\n" +
		"1 | KEEP | worktree | /repo/wt/feat-x | - | REMOVE | no remote and no PR, clean\n" +
		"2 | DELETE | branch | feat-x | - | DELETE | local-only, no PR\n" +
		"3 | ASK | stash | stash@{0} | 0123abc | - | no rule matched\n"

	planFile := filepath.Join(t.TempDir(), "plan.txt")
	if err := os.WriteFile(planFile, []byte(edited), 0o644); err != nil {
		t.Fatal(err)
	}

	want := plan.Decisions{
		{Kind: plan.KindWorktree, Target: "/repo/wt/feat-x"}: {Action: plan.ActionKeep},
		{Kind: plan.KindBranch, Target: "feat-x"}:            {Action: plan.ActionDelete},
		{Kind: plan.KindStash, Target: "stash@{0}"}:          {Action: plan.ActionAsk, Commit: "0123abc"},
	}

	tests := []struct {
		name    string
		path    string
		stdin   string
		want    plan.Decisions
		wantErr bool
	}{
		{name: "no plan", path: "", want: nil},
		{name: "file", path: planFile, want: want},
		{name: "stdin", path: "-", stdin: edited, want: want},
		{name: "missing file", path: filepath.Join(t.TempDir(), "nope.txt"), wantErr: true},
		{name: "no plan section", path: "-", stdin: "=== WORKTREES ===\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := readDecisions(tt.path, strings.NewReader(tt.stdin))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("readDecisions() = %v, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("readDecisions() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("readDecisions() = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("decision %s = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestSkipsSetup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args []string
		want bool
	}{
		{[]string{"config", "init"}, true},
		{[]string{"completion", "bash"}, true},
		{[]string{"version"}, true},
		{[]string{"consolidate"}, false},
		{[]string{"cleanup"}, false},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			t.Parallel()
			c, _, err := rootCmd.Find(tt.args)
			if err != nil {
				t.Fatalf("Find(%v) error = %v", tt.args, err)
			}
			if got := skipsSetup(c); got != tt.want {
				t.Errorf("skipsSetup(%s) = %v, want %v", c.CommandPath(), got, tt.want)
			}
		})
	}
}

// setupCleanupRepo creates a repository on main with a linked worktree on
// feat-x and a temporary stash. It returns the repo and worktree paths.
func setupCleanupRepo(t *testing.T) (string, string) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	repoDir := filepath.Join(dir, "repo")
	wtDir := filepath.Join(dir, "feat-x")
	if err := os.MkdirAll(repoDir, 0o755); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	runGit := func(args ...string) {
		t.Helper()
		if _, err := cmd.OutputContext(ctx, repoDir, "git", args...); err != nil {
			t.Fatalf("git %v: %v", args, err)
		}
	}
	runGit("init", "-b", "main")
	runGit("config", "user.email", "test@example.com")
	runGit("config", "user.name", "Test")
	runGit("config", "commit.gpgsign", "false")
	if err := os.WriteFile(filepath.Join(repoDir, "a.txt"), []byte("a\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	runGit("add", ".")
	runGit("commit", "-m", "initial")
	runGit("worktree", "add", "-b", "feat-x", wtDir)
	if err := os.WriteFile(filepath.Join(repoDir, "a.txt"), []byte("b\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	runGit("stash", "push", "-m", "temp stash for branch switch")

	return repoDir, wtDir
}

func testSession(t *testing.T, repoDir string) *session {
	t.Helper()
	s, err := openSession(repoDir, config.Default(), true)
	if err != nil {
		t.Fatalf("openSession() error = %v", err)
	}
	s.showProgress = false
	return s
}

func TestRunCleanup_PrintsPlanWithoutYes(t *testing.T) {
	t.Parallel()
	repoDir, wtDir := setupCleanupRepo(t)

	var buf bytes.Buffer
	ctx := output.WithPrinter(context.Background(), &buf)
	opts := cleanupOptions{acceptDefaults: true, format: report.FormatText}
	if err := runCleanup(ctx, testSession(t, repoDir), opts, nil); err != nil {
		t.Fatalf("runCleanup() error = %v", err)
	}

	got := buf.String()
	for _, want := range []string{
		report.PlanHeader,
		"| DROP | stash | stash@{0} |",
		"| REMOVE | worktree | " + wtDir + " |",
		"| DELETE | branch | feat-x |",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("plan output missing %q:\n%s", want, got)
		}
	}
	if _, err := os.Stat(wtDir); err != nil {
		t.Errorf("worktree touched without --yes: %v", err)
	}
}

func TestRunCleanup_RefusesUnresolved(t *testing.T) {
	t.Parallel()
	repoDir, wtDir := setupCleanupRepo(t)

	var buf bytes.Buffer
	ctx := output.WithPrinter(context.Background(), &buf)
	opts := cleanupOptions{yes: true, format: report.FormatText}
	err := runCleanup(ctx, testSession(t, repoDir), opts, nil)
	if !errors.Is(err, execute.ErrUnresolved) {
		t.Fatalf("runCleanup() error = %v, want ErrUnresolved", err)
	}
	if !strings.Contains(buf.String(), "| ASK | worktree | "+wtDir+" |") {
		t.Errorf("unresolved plan not printed:\n%s", buf.String())
	}
	if _, err := os.Stat(wtDir); err != nil {
		t.Errorf("worktree removed despite unresolved plan: %v", err)
	}
}

func TestRunCleanup_Applies(t *testing.T) {
	t.Parallel()
	repoDir, wtDir := setupCleanupRepo(t)

	var buf bytes.Buffer
	ctx := output.WithPrinter(context.Background(), &buf)
	opts := cleanupOptions{acceptDefaults: true, yes: true, format: report.FormatText}
	if err := runCleanup(ctx, testSession(t, repoDir), opts, nil); err != nil {
		t.Fatalf("runCleanup() error = %v", err)
	}

	got := buf.String()
	for _, want := range []string{
		report.ResultsHeader,
		"| REMOVE | worktree | " + wtDir + " | done |",
		"| DELETE | branch | feat-x | done |",
		"| DROP | stash | stash@{0} | done |",
		report.WorktreesHeader,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}

	if _, err := os.Stat(wtDir); !os.IsNotExist(err) {
		t.Errorf("worktree dir still exists: %v", err)
	}
	repo := git.NewRepo(cmd.Exec{}, repoDir)
	stashes, _, err := repo.Stashes(context.Background())
	if err != nil || len(stashes) != 0 {
		t.Errorf("stashes after cleanup = %v, %v", stashes, err)
	}
	branches, _, err := repo.Branches(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for _, b := range branches {
		if b.Name == "feat-x" {
			t.Error("branch feat-x still exists")
		}
	}
}

func TestRunCleanup_KeepQuery(t *testing.T) {
	t.Parallel()
	repoDir, wtDir := setupCleanupRepo(t)

	var buf bytes.Buffer
	ctx := output.WithPrinter(context.Background(), &buf)
	opts := cleanupOptions{acceptDefaults: true, keep: []string{"feat-x"}, yes: true, format: report.FormatText}
	if err := runCleanup(ctx, testSession(t, repoDir), opts, nil); err != nil {
		t.Fatalf("runCleanup() error = %v", err)
	}

	if _, err := os.Stat(wtDir); err != nil {
		t.Errorf("kept worktree was removed: %v", err)
	}
	if !strings.Contains(buf.String(), "| DROP | stash | stash@{0} | done |") {
		t.Errorf("stash not dropped:\n%s", buf.String())
	}
}

func TestOpenSession_MergesLocalConfig(t *testing.T) {
	t.Parallel()
	repoDir, _ := setupCleanupRepo(t)

	content := "[cleanup]\nprotected_branches = [\"feat-x\"]\n\n[pr]\nlookup = false\n"
	if err := os.WriteFile(filepath.Join(repoDir, config.LocalConfigFileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s := testSession(t, repoDir)
	if s.cfg.PR.Lookup {
		t.Error("PR.Lookup = true, want false from local config")
	}
	if s.forge() != nil {
		t.Error("forge() should be nil when lookups are off")
	}

	var buf bytes.Buffer
	ctx := output.WithPrinter(context.Background(), &buf)
	opts := cleanupOptions{acceptDefaults: true, format: report.FormatText}
	if err := runCleanup(ctx, s, opts, nil); err != nil {
		t.Fatalf("runCleanup() error = %v", err)
	}
	if !strings.Contains(buf.String(), "| KEEP | branch | feat-x |") {
		t.Errorf("protected branch not kept:\n%s", buf.String())
	}
}

func TestOpenSession_NotARepository(t *testing.T) {
	t.Parallel()

	_, err := openSession(t.TempDir(), config.Default(), true)
	if !errors.Is(err, git.ErrNotRepository) {
		t.Errorf("openSession() error = %v, want ErrNotRepository", err)
	}
}

func TestRunCleanup_RefusesWhileLocked(t *testing.T) {
	t.Parallel()
	repoDir, wtDir := setupCleanupRepo(t)

	held := execute.NewFileLock(filepath.Join(repoDir, ".git", execute.LockFileName))
	if err := held.TryLock(); err != nil {
		t.Fatal(err)
	}
	defer held.Unlock()

	ctx := output.WithPrinter(context.Background(), &bytes.Buffer{})
	opts := cleanupOptions{acceptDefaults: true, yes: true, format: report.FormatText}
	err := runCleanup(ctx, testSession(t, repoDir), opts, nil)
	if !errors.Is(err, execute.ErrLocked) {
		t.Fatalf("runCleanup() error = %v, want ErrLocked", err)
	}
	if _, err := os.Stat(wtDir); err != nil {
		t.Errorf("worktree removed while locked: %v", err)
	}
}

func TestRunCleanup_ApprovedPlanFollowsStashes(t *testing.T) {
	t.Parallel()
	repoDir, wtDir := setupCleanupRepo(t)
	ctx := context.Background()

	var planned bytes.Buffer
	opts := cleanupOptions{format: report.FormatText}
	if err := runCleanup(output.WithPrinter(ctx, &planned), testSession(t, repoDir), opts, nil); err != nil {
		t.Fatalf("runCleanup(plan) error = %v", err)
	}
	if !strings.Contains(planned.String(), "| DROP | stash | stash@{0} |") {
		t.Fatalf("temporary stash not proposed for DROP:\n%s", planned.String())
	}
	approved := strings.ReplaceAll(planned.String(), "| ASK |", "| KEEP |")
	planFile := filepath.Join(t.TempDir(), "plan.txt")
	if err := os.WriteFile(planFile, []byte(approved), 0o644); err != nil {
		t.Fatal(err)
	}

	// New work is stashed after the plan was approved and takes stash@{0}.
	if err := os.WriteFile(filepath.Join(repoDir, "a.txt"), []byte("c\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := cmd.OutputContext(ctx, repoDir, "git", "stash", "push", "-m", "important new work"); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	opts = cleanupOptions{planFile: planFile, yes: true, format: report.FormatText}
	if err := runCleanup(output.WithPrinter(ctx, &buf), testSession(t, repoDir), opts, nil); err != nil {
		t.Fatalf("runCleanup(apply) error = %v", err)
	}
	if !strings.Contains(buf.String(), "| DROP | stash | stash@{1} | done |") {
		t.Errorf("approved stash not dropped at its new index:\n%s", buf.String())
	}

	stashes, _, err := git.NewRepo(cmd.Exec{}, repoDir).Stashes(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(stashes) != 1 || stashes[0].Message != "important new work" {
		t.Errorf("stashes after cleanup = %+v, want only the new one", stashes)
	}
	if _, err := os.Stat(wtDir); err != nil {
		t.Errorf("kept worktree was removed: %v", err)
	}
}

func TestRunCleanup_StalePlanIsRefused(t *testing.T) {
	t.Parallel()
	repoDir, _ := setupCleanupRepo(t)
	ctx := context.Background()

	var planned bytes.Buffer
	opts := cleanupOptions{format: report.FormatText}
	if err := runCleanup(output.WithPrinter(ctx, &planned), testSession(t, repoDir), opts, nil); err != nil {
		t.Fatalf("runCleanup(plan) error = %v", err)
	}
	if _, err := cmd.OutputContext(ctx, repoDir, "git", "stash", "drop"); err != nil {
		t.Fatal(err)
	}

	opts = cleanupOptions{planFile: "-", yes: true, format: report.FormatText}
	err := runCleanup(output.WithPrinter(ctx, &bytes.Buffer{}), testSession(t, repoDir), opts, strings.NewReader(planned.String()))
	if !errors.Is(err, plan.ErrStalePlan) {
		t.Errorf("runCleanup() error = %v, want ErrStalePlan", err)
	}
}
