// Package styles provides the lipgloss palette used by the pretty renderer.
package styles

import (
	"image/color"
	"slices"

	"charm.land/lipgloss/v2"
)

// Theme defines the color palette for UI components
type Theme struct {
	Primary color.Color // main accent color (section titles)
	Accent  color.Color // highlight color (ASK items)
	Success color.Color // kept items, done outcomes
	Error   color.Color // destructive actions, failed outcomes
	Muted   color.Color // headers, skipped outcomes
	Normal  color.Color // standard text
	Info    color.Color // reasons
	Warning color.Color // dirty and gone states
}

var (
	// DefaultTheme is the default color scheme
	DefaultTheme = Theme{
		Primary: lipgloss.Color("62"),  // cyan/teal
		Accent:  lipgloss.Color("212"), // pink/magenta
		Success: lipgloss.Color("82"),  // green
		Error:   lipgloss.Color("196"), // red
		Muted:   lipgloss.Color("240"), // dark gray
		Normal:  lipgloss.Color("252"), // light gray
		Info:    lipgloss.Color("244"), // gray
		Warning: lipgloss.Color("214"), // orange
	}

	// DraculaTheme is based on the Dracula color scheme
	DraculaTheme = Theme{
		Primary: lipgloss.Color("#bd93f9"), // purple
		Accent:  lipgloss.Color("#ff79c6"), // pink
		Success: lipgloss.Color("#50fa7b"), // green
		Error:   lipgloss.Color("#ff5555"), // red
		Muted:   lipgloss.Color("#6272a4"), // comment
		Normal:  lipgloss.Color("#f8f8f2"), // foreground
		Info:    lipgloss.Color("#8be9fd"), // cyan
		Warning: lipgloss.Color("#ffb86c"), // orange
	}

	// NordTheme is based on the Nord color scheme
	NordTheme = Theme{
		Primary: lipgloss.Color("#88c0d0"), // nord8
		Accent:  lipgloss.Color("#b48ead"), // nord15
		Success: lipgloss.Color("#a3be8c"), // nord14
		Error:   lipgloss.Color("#bf616a"), // nord11
		Muted:   lipgloss.Color("#4c566a"), // nord3
		Normal:  lipgloss.Color("#eceff4"), // nord6
		Info:    lipgloss.Color("#81a1c1"), // nord9
		Warning: lipgloss.Color("#ebcb8b"), // nord13
	}

	// GruvboxTheme is based on the Gruvbox color scheme
	GruvboxTheme = Theme{
		Primary: lipgloss.Color("#83a598"), // blue
		Accent:  lipgloss.Color("#d3869b"), // purple
		Success: lipgloss.Color("#b8bb26"), // green
		Error:   lipgloss.Color("#fb4934"), // red
		Muted:   lipgloss.Color("#665c54"), // gray
		Normal:  lipgloss.Color("#ebdbb2"), // foreground
		Info:    lipgloss.Color("#8ec07c"), // aqua
		Warning: lipgloss.Color("#fabd2f"), // yellow
	}

	// NoneTheme renders without any colors.
	// Formatting (bold/italic/underline) is preserved
	NoneTheme = Theme{
		Primary: lipgloss.NoColor{},
		Accent:  lipgloss.NoColor{},
		Success: lipgloss.NoColor{},
		Error:   lipgloss.NoColor{},
		Muted:   lipgloss.NoColor{},
		Normal:  lipgloss.NoColor{},
		Info:    lipgloss.NoColor{},
		Warning: lipgloss.NoColor{},
	}
)

var presets = map[string]Theme{
	"default": DefaultTheme,
	"dracula": DraculaTheme,
	"nord":    NordTheme,
	"gruvbox": GruvboxTheme,
	"none":    NoneTheme,
}

// PresetNames returns the available theme names, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Preset returns the theme called name.
func Preset(name string) (Theme, bool) {
	t, ok := presets[name]
	return t, ok
}

// Styles are the rendered styles derived from a Theme.
type Styles struct {
	Title   lipgloss.Style
	Header  lipgloss.Style
	Cell    lipgloss.Style
	Reason  lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Accent  lipgloss.Style
}

// New builds Styles for t.
func New(t Theme) Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		Header:  lipgloss.NewStyle().Foreground(t.Muted).Bold(true),
		Cell:    lipgloss.NewStyle().Foreground(t.Normal),
		Reason:  lipgloss.NewStyle().Foreground(t.Info).Italic(true),
		Muted:   lipgloss.NewStyle().Foreground(t.Muted),
		Success: lipgloss.NewStyle().Foreground(t.Success),
		Error:   lipgloss.NewStyle().Foreground(t.Error).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(t.Warning),
		Accent:  lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
	}
}

// ForName returns Styles for the named preset, falling back to the default theme.
func ForName(name string) Styles {
	t, ok := Preset(name)
	if !ok {
		t = DefaultTheme
	}
	return New(t)
}

// Action returns the style for a plan action.
func (s Styles) Action(action string) lipgloss.Style {
	switch action {
	case "REMOVE", "DROP", "DELETE":
		return s.Error
	case "ASK":
		return s.Accent
	case "KEEP":
		return s.Success
	}
	return s.Cell
}

// Outcome returns the style for an execution outcome.
func (s Styles) Outcome(outcome string) lipgloss.Style {
	switch outcome {
	case "done":
		return s.Success
	case "failed":
		return s.Error
	}
	return s.Muted
}

// Tracking returns the style for a tracking or branch status value.
func (s Styles) Tracking(tracking string) lipgloss.Style {
	switch tracking {
	case "gone":
		return s.Warning
	case "ahead", "behind":
		return s.Accent
	case "up-to-date":
		return s.Success
	}
	return s.Muted
}
