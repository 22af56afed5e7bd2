package layout

import (
	"strings"
	"testing"

	"gotest.tools/v3/assert"
)

func TestStripANSI(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no ANSI", "pikachu", "pikachu"},
		{"bold", "\x1b[1mpikachu\x1b[0m", "pikachu"},
		{"highlighted runs", "\x1b[1;36mpi\x1b[0mkachu", "pikachu"},
		{"empty", "", ""},
		{"only ANSI", "\x1b[1m\x1b[0m", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, StripANSI(tt.input), tt.want)
		})
	}
}

func TestVisibleLength(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"plain text", "eevee", 5},
		{"with ANSI bold", "\x1b[1meevee\x1b[0m", 5},
		{"accented", "Pokémon", 7},
		{"empty", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, VisibleLength(tt.input), tt.want)
		})
	}
}

func TestTruncateText(t *testing.T) {
	cfg := DefaultConfig().Text

	tests := []struct {
		name      string
		text      string
		maxWidth  int
		want      string
		truncated bool
	}{
		{"no truncation needed", "onix", 10, "onix", false},
		{"exact length", "onix", 4, "onix", false},
		{"needs truncation", "charmander", 8, "charm...", true},
		{"max equals ellipsis", "charmander", 3, "...", true},
		{"max below ellipsis", "charmander", 2, "..", true},
		{"max is 0", "charmander", 0, "", true},
		{"empty string", "", 10, "", false},
		{"multibyte", "Pokémon Trainer", 6, "Pok...", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, truncated := TruncateText(tt.text, tt.maxWidth, cfg)
			assert.Equal(t, got, tt.want)
			assert.Equal(t, truncated, tt.truncated)
		})
	}
}

func TestTruncateANSIAware(t *testing.T) {
	cfg := DefaultConfig().Text

	tests := []struct {
		name     string
		input    string
		maxWidth int
		wantText string
	}{
		{"fits plain", "mew", 10, "mew"},
		{"fits styled", "\x1b[1mmew\x1b[0m", 10, "mew"},
		{"truncates plain", "bulbasaur", 8, "bulba..."},
		{"truncates styled", "\x1b[1mbulba\x1b[0msaur", 8, "bulba..."},
		{"zero width", "bulbasaur", 0, ""},
		{"negative width", "bulbasaur", -1, ""},
		{"only ANSI", "\x1b[1m\x1b[0m", 10, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateANSIAware(tt.input, tt.maxWidth, cfg)
			assert.Equal(t, StripANSI(got), tt.wantText)
			if VisibleLength(tt.input) > tt.maxWidth && tt.maxWidth > 0 {
				assert.Assert(t, strings.HasSuffix(got, "\x1b[0m"), "missing reset in %q", got)
			}
		})
	}
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, PadRight("abc", 5), "abc  ")
	assert.Equal(t, PadRight("abcdef", 5), "abcdef")
	assert.Equal(t, VisibleLength(PadRight("\x1b[1mab\x1b[0m", 4)), 4)
}
