// Package tui provides Bubble Tea views for the relay CLI.
//
// TUI mode is opt-in (--tui) and limited to the read-only inspect and depth
// commands. Views render the same payloads as the json/yaml/table output.
package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// tone is a semantic color used across views.
type tone lipgloss.Color

const (
	toneAccent tone = "#14B8A6" // teal
	toneOK     tone = "#22C55E"
	toneWarn   tone = "#EAB308"
	toneBad    tone = "#F43F5E"
	toneDim    tone = "#94A3B8"
	toneText   tone = "#F8FAFC"
)

func (t tone) fg() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t))
}

var (
	TitleStyle = toneAccent.fg().Bold(true).Underline(true).MarginBottom(1)
	LabelStyle = toneDim.fg().Width(14)
	ValueStyle = toneText.fg()
	HelpStyle  = toneDim.fg().Italic(true).MarginTop(1)

	// BoxStyle frames the phrase panel in the inspect view.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color(toneDim)).
			Padding(0, 1)

	okStyle   = toneOK.fg()
	warnStyle = toneWarn.fg()
	badStyle  = toneBad.fg().Strikethrough(true)
)

// ValidityStyle styles a fragment row by whether it takes part in
// reassembly.
func ValidityStyle(valid bool) lipgloss.Style {
	if valid {
		return ValueStyle
	}
	return badStyle
}

// CountStyle highlights a count that should be zero.
func CountStyle(n int) lipgloss.Style {
	if n == 0 {
		return okStyle
	}
	return warnStyle
}

// statTile renders a bordered number with a caption beneath it.
func statTile(caption string, n int, t tone) string {
	c := lipgloss.Color(t)
	body := lipgloss.JoinVertical(lipgloss.Center,
		t.fg().Bold(true).Render(fmt.Sprint(n)),
		toneDim.fg().Render(caption),
	)
	return lipgloss.NewStyle().
		Border(lipgloss.ThickBorder()).
		BorderForeground(c).
		Width(16).
		Align(lipgloss.Center).
		Render(body)
}
