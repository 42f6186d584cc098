package progress

import (
	"fmt"
	"io"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/raphi011/wtctl/internal/plan"
	"github.com/raphi011/wtctl/internal/ui/styles"
)

// stepMsg carries one executor notification.
type stepMsg plan.ActionItem

type barModel struct {
	bar     progress.Model
	failure lipgloss.Style
	total   int
	running string // item in flight, empty between items

	done, failed, skipped int
}

func newBarModel(theme styles.Theme, total int) barModel {
	return barModel{
		bar: progress.New(
			progress.WithWidth(30),
			progress.WithoutPercentage(),
			progress.WithColors(theme.Primary, theme.Accent),
		),
		failure: lipgloss.NewStyle().Foreground(theme.Error),
		total:   total,
	}
}

func (m barModel) Init() tea.Cmd {
	return nil
}

func (m barModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	step, ok := msg.(stepMsg)
	if !ok {
		var cmd tea.Cmd
		m.bar, cmd = m.bar.Update(msg)
		return m, cmd
	}

	switch step.Outcome {
	case plan.OutcomePending:
		m.running = plan.ActionItem(step).String()
		return m, nil
	case plan.OutcomeDone:
		m.done++
	case plan.OutcomeFailed:
		m.failed++
	case plan.OutcomeSkipped:
		m.skipped++
	}
	m.running = ""
	return m, nil
}

func (m barModel) settled() int {
	return m.done + m.failed + m.skipped
}

// line renders e.g. "[███░░░] 3/7 1 failed DROP stash stash@{1}".
func (m barModel) line() string {
	percent := 0.0
	if m.total > 0 {
		percent = float64(m.settled()) / float64(m.total)
	}
	s := fmt.Sprintf("%s %d/%d", m.bar.ViewAs(percent), m.settled(), m.total)
	if m.failed > 0 {
		s += " " + m.failure.Render(fmt.Sprintf("%d failed", m.failed))
	}
	if m.running != "" {
		s += " " + m.running
	}
	return s
}

func (m barModel) View() tea.View {
	return tea.NewView(m.line())
}

// ProgressBar follows a plan execution: how many items settled, how many
// failed and which item runs now.
type ProgressBar struct {
	out    io.Writer
	theme  styles.Theme
	total  int
	screen screen
}

// NewProgressBar creates a bar for a plan of total items drawing to out.
func NewProgressBar(out io.Writer, theme styles.Theme, total int) *ProgressBar {
	return &ProgressBar{out: out, theme: theme, total: total}
}

// Start begins drawing.
func (p *ProgressBar) Start() {
	p.screen.start(p.out, newBarModel(p.theme, p.total))
}

// Step matches execute.Executor's Progress callback.
func (p *ProgressBar) Step(_, _ int, item plan.ActionItem) {
	p.screen.send(stepMsg(item))
}

// Stop ends drawing and clears the line.
func (p *ProgressBar) Stop() {
	p.screen.stop(p.out)
}
