package application

import (
	"fmt"
	"strings"

	"libredit/internal/domain"
)

// ValidateRequired checks if a string field is non-empty (after trimming whitespace).
// Returns a ValidationError if the field is empty.
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s is required", formatFieldName(fieldName)),
		}
	}
	return nil
}

// formatFieldName converts camelCase field names to space-separated words
// for more readable error messages (e.g., "bookID" -> "book ID")
func formatFieldName(fieldName string) string {
	replacements := map[string]string{
		"bookID":      "book ID",
		"title":       "title",
		"author":      "author",
		"workingPath": "working path",
		"libraryID":   "library ID",
		"files":       "files",
	}

	if formatted, ok := replacements[fieldName]; ok {
		return formatted
	}
	return fieldName
}

// ValidateBookID checks that a book ID is positive
func ValidateBookID(id int64) error {
	if id <= 0 {
		return &ValidationError{
			Field:   "bookID",
			Message: fmt.Sprintf("invalid book ID: %d", id),
		}
	}
	return nil
}

// ValidateEditableFormat checks that the editor can work on a format
func ValidateEditableFormat(f domain.Format) error {
	if !f.IsEditable() {
		return fmt.Errorf("%w: %s (supported: %s)", ErrUnsupportedFormat, f,
			domain.JoinFormats(domain.EditableFormatSet, ", "))
	}
	return nil
}
