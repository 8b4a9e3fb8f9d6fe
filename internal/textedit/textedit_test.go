package textedit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLeadingWhitespace(t *testing.T) {
	assert.Equal(t, "  \t", LeadingWhitespace("  \tfoo bar"))
	assert.Equal(t, "", LeadingWhitespace("foo"))
	assert.Equal(t, "   ", LeadingWhitespace("   "))
	assert.Equal(t, "", LeadingWhitespace(""))
}

func TestSmartHome(t *testing.T) {
	tests := []struct {
		name string
		line string
		col  int
		want int
	}{
		{"indented line, cursor in text", "    return x", 10, 4},
		{"indented line, cursor in indent", "    return x", 2, 0},
		{"indented line, cursor at indent end", "    return x", 4, 0},
		{"unindented line", "return x", 5, 0},
		{"tab indent", "\t\tfoo", 4, 2},
		{"cursor past end", "  ab", 99, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SmartHome(tt.line, tt.col))
		})
	}
}

func TestSmartTab(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		col      int
		tw       int
		wantLine string
		wantCol  int
		wantOK   bool
	}{
		{"empty line", "", 0, 4, "    ", 4, true},
		{"partial indent", "  foo", 2, 4, "    foo", 4, true},
		{"full indent", "    foo", 4, 4, "        foo", 8, true},
		{"tab expanded", "\tfoo", 1, 4, "        foo", 8, true},
		{"text before cursor", "  foo", 4, 4, "  foo", 4, false},
		{"default tab width", " x", 1, 0, "    x", 4, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, col, ok := SmartTab(tt.line, tt.col, tt.tw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantLine, line)
			assert.Equal(t, tt.wantCol, col)
		})
	}
}

func TestSmartBackspace(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		col      int
		wantLine string
		wantCol  int
		wantOK   bool
	}{
		{"one level", "    foo", 4, "foo", 0, true},
		{"two levels", "        foo", 8, "    foo", 4, true},
		{"between stops", "      foo", 6, "foo", 0, true},
		{"tab indent", "\t\tfoo", 2, "    foo", 4, true},
		{"nothing before cursor", "foo", 0, "foo", 0, false},
		{"text before cursor", "  foo", 3, "  foo", 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, col, ok := SmartBackspace(tt.line, tt.col, 4)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantLine, line)
			assert.Equal(t, tt.wantCol, col)
		})
	}
}
