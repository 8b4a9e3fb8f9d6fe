package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Format is an upper-case document format name (e.g., "EPUB")
type Format string

const (
	FormatEPUB Format = "EPUB"
	FormatAZW3 Format = "AZW3"
)

// EditableFormatSet lists the formats the external editor can work on
var EditableFormatSet = []Format{FormatAZW3, FormatEPUB}

// ParseFormat normalizes a format name or file extension ("epub", ".epub", "EPUB")
func ParseFormat(s string) (Format, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), ".")
	if s == "" {
		return "", fmt.Errorf("empty format")
	}
	return Format(strings.ToUpper(s)), nil
}

// FormatFromPath returns the format implied by a file's extension
func FormatFromPath(path string) (Format, error) {
	idx := strings.LastIndex(path, ".")
	if idx < 0 || idx == len(path)-1 {
		return "", fmt.Errorf("no extension in %q", path)
	}
	return ParseFormat(path[idx+1:])
}

// IsEditable reports whether the format belongs to EditableFormatSet
func (f Format) IsEditable() bool {
	return slices.Contains(EditableFormatSet, f)
}

// Ext returns the lowercase file extension, without the dot
func (f Format) Ext() string {
	return strings.ToLower(string(f))
}

func (f Format) String() string {
	return string(f)
}

// EditableFormats returns the sorted, de-duplicated editable subset of formats
func EditableFormats(formats []Format) []Format {
	var out []Format
	for _, f := range formats {
		if f.IsEditable() && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	slices.Sort(out)
	return out
}

// JoinFormats renders formats as "AZW3 or EPUB"
func JoinFormats(formats []Format, sep string) string {
	parts := make([]string, len(formats))
	for i, f := range formats {
		parts[i] = string(f)
	}
	slices.Sort(parts)
	return strings.Join(parts, sep)
}
