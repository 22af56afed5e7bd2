package layout

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestCalculatePaneHeight(t *testing.T) {
	cfg := DefaultConfig().Pane

	tests := []struct {
		name           string
		terminalHeight int
		want           int
	}{
		{"normal terminal", 24, 16},               // 24 - 8
		{"large terminal", 50, 42},                // 50 - 8
		{"small terminal enforces min", 9, 5},     // 1, min is 5
		{"terminal smaller than reduction", 4, 5}, // negative clamps to min
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, CalculatePaneHeight(tt.terminalHeight, cfg), tt.want)
		})
	}
}

func TestCalculateSplit(t *testing.T) {
	cfg := DefaultConfig().Pane

	tests := []struct {
		name          string
		terminalWidth int
		want          SplitLayout
	}{
		{"normal width", 80, SplitLayout{ListWidth: 32, DetailWidth: 40}},       // 72 * 45% = 32
		{"wide", 128, SplitLayout{ListWidth: 54, DetailWidth: 66}},              // 120 * 45% = 54
		{"narrow clamps both", 40, SplitLayout{ListWidth: 24, DetailWidth: 24}}, // 32 usable
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.DeepEqual(t, CalculateSplit(tt.terminalWidth, cfg), tt.want)
		})
	}
}

func TestCalculateItemWidth(t *testing.T) {
	cfg := DefaultConfig().Pane
	assert.Equal(t, CalculateItemWidth(32, cfg), 28)
	assert.Equal(t, CalculateItemWidth(24, cfg), 20)
}

func TestCalculateVisibleHeight(t *testing.T) {
	tests := []struct {
		name        string
		paneHeight  int
		headerLines int
		want        int
	}{
		{"normal with header", 16, 2, 14},
		{"no header", 16, 0, 16},
		{"header equals height", 10, 10, 1},
		{"header exceeds height", 5, 10, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, CalculateVisibleHeight(tt.paneHeight, tt.headerLines), tt.want)
		})
	}
}

func TestCalculateViewportOffset(t *testing.T) {
	tests := []struct {
		name           string
		selected       int
		total          int
		viewportHeight int
		want           int
	}{
		{"no scroll needed", 2, 5, 10, 0},
		{"selection near start", 1, 20, 10, 0},
		{"selection in middle", 10, 20, 10, 5},
		{"selection at end", 19, 20, 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, CalculateViewportOffset(tt.selected, tt.total, tt.viewportHeight), tt.want)
		})
	}
}

func TestCalculateVisibleListItems(t *testing.T) {
	tests := []struct {
		name                 string
		maxVisible, selected int
		total                int
		wantStart, wantEnd   int
	}{
		{"fewer than max", 8, 2, 5, 0, 5},
		{"selection inside first page", 8, 7, 12, 0, 8},
		{"selection past first page", 8, 9, 12, 2, 10},
		{"selection at last", 8, 11, 12, 4, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := CalculateVisibleListItems(tt.maxVisible, tt.selected, tt.total)
			assert.Equal(t, start, tt.wantStart)
			assert.Equal(t, end, tt.wantEnd)
		})
	}
}
