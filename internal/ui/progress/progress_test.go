package progress

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/raphi011/wtctl/internal/plan"
	"github.com/raphi011/wtctl/internal/ui/styles"
)

func TestBarModel_CountsOutcomes(t *testing.T) {
	t.Parallel()

	drop := plan.ActionItem{Kind: plan.KindStash, Target: "stash@{1}", Index: 1, Action: plan.ActionDrop}
	remove := plan.ActionItem{Kind: plan.KindWorktree, Target: "/wt/feat-x", Action: plan.ActionRemove}
	keep := plan.ActionItem{Kind: plan.KindBranch, Target: "main", Action: plan.ActionKeep}

	settle := func(it plan.ActionItem, o plan.Outcome) plan.ActionItem {
		it.Outcome = o
		return it
	}

	tests := []struct {
		name  string
		steps []plan.ActionItem
		want  []string
		not   []string
	}{
		{
			name: "nothing run yet",
			want: []string{"0/3"},
			not:  []string{"failed"},
		},
		{
			name:  "item in flight",
			steps: []plan.ActionItem{drop},
			want:  []string{"0/3", drop.String()},
		},
		{
			name:  "settled item clears the running label",
			steps: []plan.ActionItem{drop, settle(drop, plan.OutcomeDone)},
			want:  []string{"1/3"},
			not:   []string{drop.String()},
		},
		{
			name: "failures are counted",
			steps: []plan.ActionItem{
				drop, settle(drop, plan.OutcomeDone),
				remove, settle(remove, plan.OutcomeFailed),
				keep,
			},
			want: []string{"2/3", "1 failed", keep.String()},
		},
		{
			name: "all settled",
			steps: []plan.ActionItem{
				settle(drop, plan.OutcomeDone),
				settle(remove, plan.OutcomeDone),
				settle(keep, plan.OutcomeSkipped),
			},
			want: []string{"3/3"},
			not:  []string{"failed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := newBarModel(styles.DefaultTheme, 3)
			for _, it := range tt.steps {
				next, _ := m.Update(stepMsg(it))
				m = next.(barModel)
			}
			line := ansi.Strip(m.line())
			for _, w := range tt.want {
				if !strings.Contains(line, w) {
					t.Errorf("line %q missing %q", line, w)
				}
			}
			for _, n := range tt.not {
				if strings.Contains(line, n) {
					t.Errorf("line %q should not contain %q", line, n)
				}
			}
		})
	}
}

func TestSpinnerModel_ShowsLastCount(t *testing.T) {
	t.Parallel()

	m := newSpinnerModel("Collecting")
	if line := m.line(); !strings.HasSuffix(line, " Collecting") {
		t.Errorf("initial line = %q", line)
	}

	for _, msg := range []collectedMsg{{"worktrees", 1, 2}, {"worktrees", 2, 2}, {"stashes", 1, 4}} {
		next, _ := m.Update(msg)
		m = next.(spinnerModel)
	}
	if line := m.line(); !strings.HasSuffix(line, "Collecting stashes 1/4") {
		t.Errorf("line = %q, want stashes 1/4", line)
	}
}

func TestIdleComponentsWriteNothing(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	bar := NewProgressBar(&out, styles.DefaultTheme, 2)
	bar.Step(0, 2, plan.ActionItem{Kind: plan.KindBranch, Target: "old", Action: plan.ActionDelete})
	bar.Stop()

	sp := NewSpinner(&out, "Collecting")
	sp.Collected("branches", 1, 1)
	sp.Stop()

	if out.Len() != 0 {
		t.Errorf("idle components wrote %q", out.String())
	}
}
