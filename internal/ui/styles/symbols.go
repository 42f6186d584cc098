package styles

import (
	"fmt"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/raphi011/wtctl/internal/forge"
)

// Symbols for pull request states.
const (
	PRMerged = "●"
	PROpen   = "○"
	PRClosed = "✕"
)

// PRStateSymbol returns the symbol for a PR state, or "" when unknown.
func PRStateSymbol(state string) string {
	switch state {
	case forge.PRStateMerged:
		return PRMerged
	case forge.PRStateOpen:
		return PROpen
	case forge.PRStateClosed:
		return PRClosed
	}
	return ""
}

// FormatPR renders a PR status as "<symbol> #<n>", colored by state and
// hyperlinked when url is set. Statuses without a number render label as is.
func (s Styles) FormatPR(state string, number int, label, url string) string {
	if number == 0 {
		return s.Muted.Render(label)
	}

	var style lipgloss.Style
	switch state {
	case forge.PRStateOpen:
		style = s.Success
	case forge.PRStateMerged:
		style = s.Accent
	case forge.PRStateClosed:
		style = s.Error
	default:
		style = s.Cell
	}

	text := fmt.Sprintf("%s #%d", PRStateSymbol(state), number)
	if url != "" {
		return ansi.SetHyperlink(url) + style.Underline(true).Render(text) + ansi.ResetHyperlink()
	}
	return style.Render(text)
}
