package domain

import (
	"fmt"
	"strings"
	"time"
)

// Book is a library record together with the formats stored for it
type Book struct {
	ID      int64
	Title   string
	Author  string
	Path    string // Directory relative to the library root
	Formats []Format
	AddedAt time.Time
}

// HasFormat reports whether the book has a stored file in the given format
func (b Book) HasFormat(f Format) bool {
	for _, have := range b.Formats {
		if have == f {
			return true
		}
	}
	return false
}

// JobTitle returns the display label of an edit job, e.g. "Dune [EPUB]"
func JobTitle(title string, f Format) string {
	return fmt.Sprintf("%s [%s]", title, f)
}

// BookDir returns the directory a book's files live in, relative to the
// library root: "Author/Title (id)"
func BookDir(author, title string, id int64) string {
	if strings.TrimSpace(author) == "" {
		author = "Unknown"
	}
	return SafeName(author) + "/" + fmt.Sprintf("%s (%d)", SafeName(title), id)
}

// FormatFileName returns the stored file name for one format of a book
func FormatFileName(title string, f Format) string {
	return SafeName(title) + "." + f.Ext()
}

// SafeName replaces characters that are not portable in file names
func SafeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Untitled"
	}
	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
		"\"", "_", "<", "_", ">", "_", "|", "_",
	)
	name = replacer.Replace(name)
	// Leading dots would hide the directory
	name = strings.TrimLeft(name, ".")
	if name == "" {
		return "Untitled"
	}
	return name
}
