// Package static renders non-interactive tables for the pretty report.
package static

import (
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/charmbracelet/x/ansi"

	"github.com/raphi011/wtctl/internal/execute"
	"github.com/raphi011/wtctl/internal/inventory"
	"github.com/raphi011/wtctl/internal/plan"
	"github.com/raphi011/wtctl/internal/ui/styles"
)

// MaxTextWidth caps free-text columns (messages, reasons, errors).
const MaxTextWidth = 60

// Column headers of the pretty tables.
var (
	WorktreeHeaders = []string{"PATH", "BRANCH", "COMMIT", "DIRTY", "TRACKING", "PR"}
	StashHeaders    = []string{"STASH", "BRANCH", "MESSAGE", "STAT"}
	BranchHeaders   = []string{"NAME", "TRACKING", "STATUS", "WORKTREE"}
	PlanHeaders     = []string{"#", "ACTION", "KIND", "TARGET", "DEFAULT", "REASON"}
	ResultHeaders   = []string{"#", "ACTION", "KIND", "TARGET", "OUTCOME", "ERROR"}
)

// RenderTable creates a formatted table with proper column alignment.
// Headers and rows are rendered using lipgloss/table which automatically
// calculates column widths based on content. No borders are rendered.
func RenderTable(headers []string, rows [][]string, header lipgloss.Style) string {
	if len(rows) == 0 {
		return ""
	}

	var output strings.Builder

	t := table.New().
		Headers(headers...).
		Rows(rows...).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		BorderRow(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header.PaddingRight(2)
			}
			return lipgloss.NewStyle().PaddingRight(2)
		})

	output.WriteString(t.String())
	output.WriteString("\n")

	return output.String()
}

// truncate shortens s to MaxTextWidth cells and flattens newlines.
func truncate(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return ansi.Truncate(s, MaxTextWidth, "…")
}

// WorktreeRow formats a worktree record. The current worktree is marked
// with "*".
func WorktreeRow(wt inventory.WorktreeRecord, st styles.Styles) []string {
	path := wt.Path
	if wt.IsCurrent {
		path = "* " + path
	}
	dirty := st.Success.Render(wt.Dirty.String())
	if !wt.Dirty.Clean() {
		dirty = st.Warning.Render(wt.Dirty.String())
	}
	branch := wt.Branch
	if wt.IsDetached() {
		branch = st.Muted.Render(branch)
	}
	return []string{
		path,
		branch,
		wt.HeadCommit,
		dirty,
		st.Tracking(string(wt.Tracking)).Render(string(wt.Tracking)),
		st.FormatPR(wt.PR.State, wt.PR.Number, wt.PR.String(), ""),
	}
}

// StashRow formats a stash record.
func StashRow(s inventory.StashRecord, st styles.Styles) []string {
	return []string{s.Ref(), s.Branch, truncate(s.Message), st.Muted.Render(s.DiffStat)}
}

// BranchRow formats a branch record.
func BranchRow(b inventory.BranchRecord, st styles.Styles) []string {
	worktree := st.Muted.Render("no")
	if b.HasWorktree {
		worktree = "yes"
	}
	name := b.Name
	if b.IsCurrent {
		name = "* " + name
	}
	return []string{
		name,
		string(b.Tracking),
		st.Tracking(string(b.Status)).Render(string(b.Status)),
		worktree,
	}
}

// PlanRow formats the i-th plan item (0-based).
func PlanRow(i int, it plan.ActionItem, st styles.Styles) []string {
	def := ""
	if it.Default != "" {
		def = st.Action(string(it.Default)).Render(string(it.Default))
	}
	return []string{
		strconv.Itoa(i + 1),
		st.Action(string(it.Action)).Render(string(it.Action)),
		string(it.Kind),
		it.Target,
		def,
		st.Reason.Render(truncate(it.Reason)),
	}
}

// ResultRow formats the i-th executed item (0-based).
func ResultRow(i int, it plan.ActionItem, st styles.Styles) []string {
	outcome := it.Outcome.String()
	return []string{
		strconv.Itoa(i + 1),
		st.Action(string(it.Action)).Render(string(it.Action)),
		string(it.Kind),
		it.Target,
		st.Outcome(outcome).Render(outcome),
		st.Error.Render(truncate(it.Error)),
	}
}

// Summary renders the counters of an execution run.
func Summary(r *execute.Result, st styles.Styles) string {
	parts := []string{
		st.Success.Render(strconv.Itoa(r.Done) + " done"),
		st.Error.Render(strconv.Itoa(r.Failed) + " failed"),
		st.Muted.Render(strconv.Itoa(r.Skipped) + " skipped"),
	}
	s := strings.Join(parts, ", ")
	if r.DryRun {
		s += st.Muted.Render(" (dry run)")
	}
	return s
}
