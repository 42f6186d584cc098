// Package progress shows activity on the diagnostic stream while state is
// collected and while a plan executes. Callers only start these components
// when that stream is a terminal.
package progress

import (
	"fmt"
	"io"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
)

// collectedMsg reports that done of total records of kind are collected.
type collectedMsg struct {
	kind        string
	done, total int
}

type spinnerModel struct {
	spinner spinner.Model
	title   string
	last    collectedMsg
}

func newSpinnerModel(title string) spinnerModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return spinnerModel{spinner: sp, title: title}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if c, ok := msg.(collectedMsg); ok {
		m.last = c
		return m, nil
	}
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

// line renders e.g. "⣾ Collecting stashes 2/5".
func (m spinnerModel) line() string {
	if m.last.kind == "" {
		return m.spinner.View() + " " + m.title
	}
	return fmt.Sprintf("%s %s %s %d/%d", m.spinner.View(), m.title, m.last.kind, m.last.done, m.last.total)
}

func (m spinnerModel) View() tea.View {
	return tea.NewView(m.line())
}

// Spinner animates while the repository state is collected and counts the
// records seen so far.
type Spinner struct {
	out    io.Writer
	title  string
	screen screen
}

// NewSpinner creates a spinner drawing to out.
func NewSpinner(out io.Writer, title string) *Spinner {
	return &Spinner{out: out, title: title}
}

// Start begins the animation.
func (s *Spinner) Start() {
	s.screen.start(s.out, newSpinnerModel(s.title))
}

// Collected matches inventory.Collector's Progress callback. Calls before
// Start or after Stop are dropped.
func (s *Spinner) Collected(kind string, done, total int) {
	s.screen.send(collectedMsg{kind: kind, done: done, total: total})
}

// Stop ends the animation and clears the line.
func (s *Spinner) Stop() {
	s.screen.stop(s.out)
}
