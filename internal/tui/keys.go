package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the application.
type KeyMap struct {
	Up             key.Binding
	Down           key.Binding
	Top            key.Binding
	Bottom         key.Binding
	NextTab        key.Binding
	PrevTab        key.Binding
	SearchTab      key.Binding
	LibraryTab     key.Binding
	FavoritesTab   key.Binding
	Focus          key.Binding
	Blur           key.Binding
	Submit         key.Binding
	SuggestNext    key.Binding
	SuggestPrev    key.Binding
	ToggleLibrary  key.Binding
	ToggleFavorite key.Binding
	YankURL        key.Binding
	Detail         key.Binding
	Hide           key.Binding
	Reload         key.Binding
	Quit           key.Binding
}

// DefaultKeyMap returns the default vim-style key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("gg", "go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G"),
			key.WithHelp("G", "go to bottom"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("S-tab", "previous tab"),
		),
		SearchTab: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "search"),
		),
		LibraryTab: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "library"),
		),
		FavoritesTab: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "favorites"),
		),
		Focus: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Blur: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "search now"),
		),
		SuggestNext: key.NewBinding(
			key.WithKeys("down", "ctrl+n"),
			key.WithHelp("C-n", "next suggestion"),
		),
		SuggestPrev: key.NewBinding(
			key.WithKeys("up", "ctrl+p"),
			key.WithHelp("C-p", "previous suggestion"),
		),
		ToggleLibrary: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "library"),
		),
		ToggleFavorite: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "favorite"),
		),
		YankURL: key.NewBinding(
			key.WithKeys("Y"),
			key.WithHelp("Y", "yank API URL"),
		),
		Detail: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "detail"),
		),
		Hide: key.NewBinding(
			key.WithKeys("H"),
			key.WithHelp("H", "hide (admin)"),
		),
		Reload: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("C-r", "reload"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
