package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"libredit/internal/application"
	"libredit/internal/domain"
	"libredit/internal/ports"
)

// BatchConfirmThreshold is the number of books above which the user is
// asked to confirm before editors are launched
const BatchConfirmThreshold = 5

// Candidate is a book that can be edited, with its editable formats
type Candidate struct {
	BookID  int64
	Title   string
	Formats []domain.Format
}

// Selection is the formats the user chose to edit for one book
type Selection struct {
	BookID  int64
	Formats []domain.Format
}

// LaunchedJob describes an editor launched for one book format
type LaunchedJob struct {
	BookID      int64
	Format      domain.Format
	WorkingPath string
	Title       string
	LibraryID   string
}

// EditResult contains the result of launching edit jobs
type EditResult struct {
	Jobs    []LaunchedJob
	Handles []ports.JobHandle
	Message string
}

// EditBooksCommand launches the external editor on books and hands the
// jobs to a tracker that imports the edited files when the editor exits
type EditBooksCommand struct {
	provider ports.LibraryProvider
	launcher ports.JobLauncher
	tracker  ports.JobTracker
	BookIDs  []int64
}

// NewEditBooksCommand creates a new EditBooksCommand
func NewEditBooksCommand(provider ports.LibraryProvider, launcher ports.JobLauncher, tracker ports.JobTracker, bookIDs []int64) *EditBooksCommand {
	return &EditBooksCommand{
		provider: provider,
		launcher: launcher,
		tracker:  tracker,
		BookIDs:  bookIDs,
	}
}

// Validate checks that at least one book was selected
func (c *EditBooksCommand) Validate() error {
	if len(c.BookIDs) == 0 {
		return &application.UserInputError{
			Title:   "Cannot edit book",
			Message: "No books selected",
			Err:     application.ErrNoBooksSelected,
		}
	}
	for _, id := range c.BookIDs {
		if err := application.ValidateBookID(id); err != nil {
			return err
		}
	}
	return nil
}

// Candidates returns the selected books that have at least one editable
// format, in selection order
func (c *EditBooksCommand) Candidates(ctx context.Context) ([]Candidate, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	lib := c.provider.Current()
	var out []Candidate
	for _, id := range c.BookIDs {
		if slices.ContainsFunc(out, func(cand Candidate) bool { return cand.BookID == id }) {
			continue
		}
		formats, err := lib.Formats(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to read formats of book %d: %w", id, err)
		}
		editable := domain.EditableFormats(formats)
		if len(editable) == 0 {
			continue
		}
		title, err := lib.Title(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to read title of book %d: %w", id, err)
		}
		out = append(out, Candidate{BookID: id, Title: title, Formats: editable})
	}

	if len(out) == 0 {
		return nil, &application.UserInputError{
			Title: "Cannot edit book",
			Message: fmt.Sprintf("Editing is only supported for books in the %s formats. Convert to one of those formats first.",
				domain.JoinFormats(domain.EditableFormatSet, " or ")),
			Err: application.ErrNoEditableFormat,
		}
	}
	return out, nil
}

// NeedsConfirmation reports whether editing n books at once should be confirmed
func NeedsConfirmation(n int) bool {
	return n > BatchConfirmThreshold
}

// ConfirmationPrompt is the question asked before editing many books
func ConfirmationPrompt(n int) string {
	return fmt.Sprintf("You have chosen to edit %d books at once. Doing so will likely slow your computer to a crawl. Are you sure?", n)
}

// ChooseFormats picks the formats to edit when the user is not asked: the
// only format, else the preferred ones the book has, else the first one
func ChooseFormats(available, preferred []domain.Format) []domain.Format {
	if len(available) <= 1 {
		return slices.Clone(available)
	}
	var out []domain.Format
	for _, f := range available {
		if slices.Contains(preferred, f) {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		out = available[:1:1]
	}
	return out
}

// DefaultSelections applies ChooseFormats to every candidate
func DefaultSelections(candidates []Candidate, preferred []domain.Format) []Selection {
	out := make([]Selection, 0, len(candidates))
	for _, cand := range candidates {
		out = append(out, Selection{BookID: cand.BookID, Formats: ChooseFormats(cand.Formats, preferred)})
	}
	return out
}

// PreferredFormats returns the formats last chosen in the library, or EPUB
func PreferredFormats(ctx context.Context, lib ports.Library) []domain.Format {
	if prefs, ok := lib.(ports.Preferences); ok {
		if formats, err := prefs.LastSelectedFormats(ctx); err == nil && len(formats) > 0 {
			return formats
		}
	}
	return []domain.Format{domain.FormatEPUB}
}

// RememberFormats stores a format choice for PreferredFormats. Libraries
// without preferences ignore it.
func RememberFormats(ctx context.Context, lib ports.Library, formats []domain.Format) error {
	if prefs, ok := lib.(ports.Preferences); ok {
		return prefs.SetLastSelectedFormats(ctx, formats)
	}
	return nil
}

// LaunchOne copies a book format to a working file and starts the editor
// on it. The job is not tracked yet.
func (c *EditBooksCommand) LaunchOne(ctx context.Context, bookID int64, format domain.Format) (*LaunchedJob, error) {
	if err := application.ValidateEditableFormat(format); err != nil {
		return nil, err
	}

	lib := c.provider.Current()
	title, err := lib.Title(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to read title of book %d: %w", bookID, err)
	}
	path, err := lib.FormatPath(ctx, bookID, format)
	if err != nil {
		return nil, fmt.Errorf("failed to copy %s of book %d: %w", format, bookID, err)
	}

	job := &LaunchedJob{
		BookID:      bookID,
		Format:      format,
		WorkingPath: path,
		Title:       domain.JobTitle(title, format),
		LibraryID:   lib.ID(),
	}

	params := map[string]string{
		ports.ParamPath:  job.WorkingPath,
		ports.ParamTitle: job.Title,
	}
	if err := c.launcher.Launch(ctx, domain.JobKindEditor, params); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to launch editor for %s: %w", job.Title, err)
	}
	return job, nil
}

// Execute launches and tracks one job per selected book format. A failure
// for one format does not stop the others; all failures are returned.
func (c *EditBooksCommand) Execute(ctx context.Context, selections []Selection) (*EditResult, error) {
	if len(selections) == 0 {
		return nil, &application.UserInputError{
			Title:   "Cannot edit book",
			Message: "No books selected",
			Err:     application.ErrNoBooksSelected,
		}
	}

	result := &EditResult{}
	var errs []error
	for _, sel := range selections {
		for _, format := range sel.Formats {
			job, err := c.LaunchOne(ctx, sel.BookID, format)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			h, err := c.tracker.Submit(ctx, job.BookID, job.Format, job.WorkingPath, job.Title, job.LibraryID)
			if err != nil {
				errs = append(errs, fmt.Errorf("failed to track %s: %w", job.Title, err))
				continue
			}
			result.Jobs = append(result.Jobs, *job)
			result.Handles = append(result.Handles, h)
		}
	}

	result.Message = fmt.Sprintf("Launched %d edit job(s)", len(result.Jobs))
	return result, errors.Join(errs...)
}
