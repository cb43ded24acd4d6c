package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/leadsheet/pkg/sheet"
)

var (
	ColorText    = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}
	ColorBorder  = lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"}
	ColorDanger  = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}

	// Sheet line colours: sections cyan, chords pink, lyrics yellow.
	ColorSection = lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"}
	ColorChords  = lipgloss.AdaptiveColor{Light: "#B0306F", Dark: "#FF79C6"}
	ColorLyrics  = lipgloss.AdaptiveColor{Light: "#806600", Dark: "#F1FA8C"}
)

// Theme holds the pre-built styles used by the viewer.
type Theme struct {
	Renderer *lipgloss.Renderer

	Base       lipgloss.Style
	Header     lipgloss.Style
	Muted      lipgloss.Style
	Error      lipgloss.Style
	Success    lipgloss.Style
	LineNumber lipgloss.Style
	Modal      lipgloss.Style

	Section lipgloss.Style
	Chords  lipgloss.Style
	Lyrics  lipgloss.Style
}

// DefaultTheme builds the theme for renderer r.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	return Theme{
		Renderer:   r,
		Base:       r.NewStyle().Foreground(ColorText),
		Header:     r.NewStyle().Bold(true).Foreground(ColorPrimary),
		Muted:      r.NewStyle().Foreground(ColorMuted),
		Error:      r.NewStyle().Bold(true).Foreground(ColorDanger),
		Success:    r.NewStyle().Foreground(ColorSuccess),
		LineNumber: r.NewStyle().Foreground(ColorMuted).Width(4).Align(lipgloss.Right).MarginRight(1),
		Modal: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1),
		Section: r.NewStyle().Bold(true).Foreground(ColorSection),
		Chords:  r.NewStyle().Bold(true).Foreground(ColorChords),
		Lyrics:  r.NewStyle().Foreground(ColorLyrics),
	}
}

// LineStyle returns the style for a presentation bucket.
func (t Theme) LineStyle(b sheet.Bucket) lipgloss.Style {
	switch b {
	case sheet.BucketSection:
		return t.Section
	case sheet.BucketChords:
		return t.Chords
	case sheet.BucketLyrics:
		return t.Lyrics
	default:
		return t.Base
	}
}
