package layout

// LayoutConfig holds all layout-related configuration values.
type LayoutConfig struct {
	Pane    PaneConfig
	Input   InputConfig
	Text    TextConfig
	Suggest SuggestConfig
}

// PaneConfig holds pane dimension configuration.
type PaneConfig struct {
	// HeightReduction is subtracted from terminal height for pane content.
	// Accounts for: app padding (1) + tab bar (1) + search line (1) + pane borders (2) + help bar (3) = 8
	HeightReduction int

	// MinHeight is the minimum pane height.
	MinHeight int

	// ListWidthPercent is the share of the usable width given to the list pane.
	ListWidthPercent int

	// SplitWidthOffset is subtracted before splitting. Covers app padding and both pane borders.
	SplitWidthOffset int

	// MinListWidth and MinDetailWidth clamp the two panes.
	MinListWidth   int
	MinDetailWidth int

	// ContentPadding is subtracted from pane width for item rendering.
	ContentPadding int

	// ListHeaderLines is the number of lines above the first list item.
	ListHeaderLines int
}

// InputConfig holds text input configuration.
type InputConfig struct {
	SearchCharLimit int
	FilterCharLimit int
	StandardWidth   int
}

// TextConfig holds text truncation configuration.
type TextConfig struct {
	// Ellipsis is the string used to indicate truncation.
	Ellipsis string
}

// SuggestConfig holds the suggestion dropdown configuration.
type SuggestConfig struct {
	// MaxVisible caps the rows shown under the search input.
	MaxVisible int
}

// DefaultConfig returns the default layout configuration.
func DefaultConfig() LayoutConfig {
	return LayoutConfig{
		Pane: PaneConfig{
			HeightReduction:  8, // app padding (1) + tabs (1) + input (1) + pane borders (2) + help bar (3)
			MinHeight:        5,
			ListWidthPercent: 45,
			SplitWidthOffset: 8,
			MinListWidth:     24,
			MinDetailWidth:   24,
			ContentPadding:   4,
			ListHeaderLines:  2,
		},
		Input: InputConfig{
			SearchCharLimit: 100,
			FilterCharLimit: 50,
			StandardWidth:   40,
		},
		Text: TextConfig{
			Ellipsis: "...",
		},
		Suggest: SuggestConfig{
			MaxVisible: 8,
		},
	}
}
