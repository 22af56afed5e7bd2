package layout

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// ansiRegex matches SGR escape sequences emitted by lipgloss.
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

const ansiReset = "\x1b[0m"

// StripANSI removes ANSI escape codes from a string.
func StripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// VisibleLength returns the visible length of a string (excluding ANSI codes).
func VisibleLength(s string) int {
	return utf8.RuneCountInString(StripANSI(s))
}

// TruncateText shortens text to maxWidth runes, ending in the configured ellipsis.
// Returns the truncated text and whether truncation occurred.
func TruncateText(text string, maxWidth int, cfg TextConfig) (string, bool) {
	if maxWidth <= 0 {
		return "", true
	}

	runes := []rune(text)
	if len(runes) <= maxWidth {
		return text, false
	}

	ellipsis := []rune(cfg.Ellipsis)
	if maxWidth <= len(ellipsis) {
		return string(ellipsis[:maxWidth]), true
	}

	return string(runes[:maxWidth-len(ellipsis)]) + cfg.Ellipsis, true
}

// TruncateANSIAware truncates styled text (highlighted match positions) without
// cutting through escape sequences. A reset code is appended after the ellipsis so
// an open style never bleeds into the next column.
func TruncateANSIAware(styledText string, maxWidth int, cfg TextConfig) string {
	if maxWidth <= 0 {
		return ""
	}
	if VisibleLength(styledText) <= maxWidth {
		return styledText
	}

	target := maxWidth - utf8.RuneCountInString(cfg.Ellipsis)
	if target < 0 {
		target = 0
	}

	var b strings.Builder
	visible := 0
	rest := styledText
	for len(rest) > 0 && visible < target {
		if loc := ansiRegex.FindStringIndex(rest); loc != nil && loc[0] == 0 {
			b.WriteString(rest[:loc[1]])
			rest = rest[loc[1]:]
			continue
		}
		r, size := utf8.DecodeRuneInString(rest)
		if r != utf8.RuneError {
			b.WriteRune(r)
			visible++
		}
		rest = rest[size:]
	}

	b.WriteString(cfg.Ellipsis)
	b.WriteString(ansiReset)
	return b.String()
}

// PadRight pads s with spaces up to width visible columns.
func PadRight(s string, width int) string {
	n := VisibleLength(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
