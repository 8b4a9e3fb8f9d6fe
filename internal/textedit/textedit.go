// Package textedit implements indentation-aware cursor helpers for a
// single line of text. Columns are rune offsets.
package textedit

import (
	"strings"
	"unicode"
)

// DefaultTabWidth is used when a non-positive tab width is given
const DefaultTabWidth = 4

// LeadingWhitespace returns the whitespace prefix of line
func LeadingWhitespace(line string) string {
	trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
	return line[:len(line)-len(trimmed)]
}

// SmartHome returns the column the home key should move to: the first
// non-whitespace column when the cursor sits after the indentation of an
// indented line, column 0 otherwise.
func SmartHome(line string, col int) int {
	before := beforeCursor(line, col)
	indent := LeadingWhitespace(before)
	if strings.TrimSpace(before) != "" && indent != "" {
		return len([]rune(indent))
	}
	return 0
}

// SmartTab replaces whitespace-only text before the cursor with spaces up
// to the next tab stop. ok is false when there is non-whitespace before the
// cursor, in which case the caller should insert a plain tab.
func SmartTab(line string, col, tabWidth int) (string, int, bool) {
	before := beforeCursor(line, col)
	if !isBlank(before) {
		return line, col, false
	}
	tw := normalizeTabWidth(tabWidth)
	n := len([]rune(expandTabs(before, tw)))
	width := n - n%tw + tw
	return replaceBefore(line, col, width), width, true
}

// SmartBackspace removes indentation back to the previous tab stop when the
// text before the cursor is non-empty whitespace. ok is false otherwise.
func SmartBackspace(line string, col, tabWidth int) (string, int, bool) {
	before := beforeCursor(line, col)
	if before == "" || !isBlank(before) {
		return line, col, false
	}
	tw := normalizeTabWidth(tabWidth)
	n := len([]rune(expandTabs(before, tw)))
	width := max(0, n-n%tw-tw)
	return replaceBefore(line, col, width), width, true
}

func beforeCursor(line string, col int) string {
	r := []rune(line)
	col = clamp(col, len(r))
	return string(r[:col])
}

func replaceBefore(line string, col, width int) string {
	r := []rune(line)
	col = clamp(col, len(r))
	return strings.Repeat(" ", width) + string(r[col:])
}

func expandTabs(s string, tw int) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tw))
}

func isBlank(s string) bool {
	return strings.TrimLeftFunc(s, unicode.IsSpace) == ""
}

func normalizeTabWidth(tw int) int {
	if tw <= 0 {
		return DefaultTabWidth
	}
	return tw
}

func clamp(col, n int) int {
	if col < 0 {
		return 0
	}
	if col > n {
		return n
	}
	return col
}
