package application

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	ErrNotFound          = errors.New("not found")
	ErrNoBooksSelected   = errors.New("no books selected")
	ErrNoEditableFormat  = errors.New("no editable format")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrLibraryChanged    = errors.New("library changed")
	ErrJobExists         = errors.New("job already tracked")
)

// ValidationError represents a validation failure with details
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// UserInputError is a problem with what the user asked for. It is reported
// to the user before any job is created.
type UserInputError struct {
	Title   string
	Message string
	Err     error
}

func (e *UserInputError) Error() string {
	return fmt.Sprintf("%s: %s", e.Title, e.Message)
}

func (e *UserInputError) Unwrap() error {
	return e.Err
}

// LibraryChangedError reports an edit that finished after the active
// library was switched. The edit is discarded.
type LibraryChangedError struct {
	Title  string
	BookID int64
	Want   string // Library the job was launched against
	Got    string // Library active at completion
}

func (e *LibraryChangedError) Error() string {
	return fmt.Sprintf("cannot save changes made to %s: the library has changed", e.Title)
}

func (e *LibraryChangedError) Is(target error) bool {
	return target == ErrLibraryChanged
}
