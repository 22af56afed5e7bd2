package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds all lipgloss styles for the TUI.
type Styles struct {
	App                lipgloss.Style
	Pane               lipgloss.Style
	PaneActive         lipgloss.Style
	Title              lipgloss.Style
	Tab                lipgloss.Style
	TabActive          lipgloss.Style
	Item               lipgloss.Style
	ItemSelected       lipgloss.Style
	Match              lipgloss.Style // Highlighted characters of a local filter match
	Marker             lipgloss.Style // Library/favorite markers next to names
	Suggestion         lipgloss.Style
	SuggestionSelected lipgloss.Style
	Label              lipgloss.Style // Field labels in the detail pane
	Value              lipgloss.Style
	URL                lipgloss.Style
	Empty              lipgloss.Style
	HintKey            lipgloss.Style
	HintDesc           lipgloss.Style
	HintLabel          lipgloss.Style
}

// DefaultStyles returns the default style configuration.
// Industrial design: grayscale with single desaturated teal accent.
func DefaultStyles() Styles {
	primary := lipgloss.AdaptiveColor{Light: "#505050", Dark: "#A0A0A0"} // main text
	subtle := lipgloss.AdaptiveColor{Light: "#888888", Dark: "#606060"}  // secondary text
	accent := lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"}  // desaturated teal
	border := lipgloss.AdaptiveColor{Light: "#888888", Dark: "#505050"}  // inactive borders

	return Styles{
		App: lipgloss.NewStyle().
			PaddingTop(1).
			PaddingLeft(2).
			PaddingRight(2),

		Pane: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(border).
			Padding(0, 1),

		PaneActive: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(accent).
			Padding(0, 1),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),

		Tab: lipgloss.NewStyle().
			Foreground(subtle).
			Padding(0, 1),

		TabActive: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Underline(true).
			Padding(0, 1),

		Item: lipgloss.NewStyle().
			Foreground(primary).
			PaddingLeft(1),

		ItemSelected: lipgloss.NewStyle().
			PaddingLeft(1).
			Background(accent).
			Foreground(lipgloss.Color("#1A1A1A")),

		Match: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),

		Marker: lipgloss.NewStyle().
			Foreground(accent),

		Suggestion: lipgloss.NewStyle().
			Foreground(subtle).
			PaddingLeft(2),

		SuggestionSelected: lipgloss.NewStyle().
			Foreground(accent).
			PaddingLeft(2),

		Label: lipgloss.NewStyle().
			Foreground(subtle).
			Width(10),

		Value: lipgloss.NewStyle().
			Foreground(primary),

		URL: lipgloss.NewStyle().
			Foreground(subtle),

		Empty: lipgloss.NewStyle().
			Foreground(subtle),

		HintKey: lipgloss.NewStyle().
			Foreground(subtle),

		HintDesc: lipgloss.NewStyle().
			Foreground(subtle),

		HintLabel: lipgloss.NewStyle().
			Foreground(subtle).
			Bold(true),
	}
}
