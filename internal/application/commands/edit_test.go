package commands

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libredit/internal/application"
	"libredit/internal/application/watcher"
	"libredit/internal/domain"
	"libredit/internal/ports"
	"libredit/internal/testutil"
)

type editFixture struct {
	lib      *testutil.FakeLibrary
	session  *application.Session
	launcher *testutil.FakeLauncher
	watcher  *watcher.Watcher
}

func newEditFixture(t *testing.T) *editFixture {
	t.Helper()
	lib := testutil.NewFakeLibrary("lib-1", t.TempDir())
	session := application.NewSession(lib)
	return &editFixture{
		lib:      lib,
		session:  session,
		launcher: &testutil.FakeLauncher{},
		watcher:  watcher.New(session),
	}
}

func (f *editFixture) command(ids ...int64) *EditBooksCommand {
	return NewEditBooksCommand(f.session, f.launcher, f.watcher, ids)
}

func TestEditBooksCommand_Candidates(t *testing.T) {
	f := newEditFixture(t)
	dune := f.lib.Seed("Dune", domain.FormatEPUB, "PDF")
	both := f.lib.Seed("Emma", domain.FormatEPUB, domain.FormatAZW3)
	pdf := f.lib.Seed("Scan", "PDF")

	cands, err := f.command(dune, pdf, both, dune).Candidates(context.Background())
	require.NoError(t, err)
	require.Len(t, cands, 2)

	assert.Equal(t, Candidate{BookID: dune, Title: "Dune", Formats: []domain.Format{domain.FormatEPUB}}, cands[0])
	assert.Equal(t, both, cands[1].BookID)
	assert.Equal(t, []domain.Format{domain.FormatAZW3, domain.FormatEPUB}, cands[1].Formats)
}

func TestEditBooksCommand_UserInputErrors(t *testing.T) {
	f := newEditFixture(t)
	pdf := f.lib.Seed("Scan", "PDF")

	tests := []struct {
		name    string
		ids     []int64
		wantErr error
		wantMsg string
	}{
		{
			name:    "no books selected",
			ids:     nil,
			wantErr: application.ErrNoBooksSelected,
			wantMsg: "No books selected",
		},
		{
			name:    "no editable format",
			ids:     []int64{pdf},
			wantErr: application.ErrNoEditableFormat,
			wantMsg: "only supported for books in the AZW3 or EPUB formats",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.command(tt.ids...).Candidates(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			var uie *application.UserInputError
			require.True(t, errors.As(err, &uie))
			assert.Contains(t, uie.Message, tt.wantMsg)
			assert.Empty(t, f.launcher.Launches())
			assert.Equal(t, 0, f.watcher.Active())
		})
	}
}

func TestEditBooksCommand_Execute(t *testing.T) {
	f := newEditFixture(t)
	ctx := context.Background()
	dune := f.lib.Seed("Dune", domain.FormatEPUB)
	emma := f.lib.Seed("Emma", domain.FormatEPUB, domain.FormatAZW3)

	result, err := f.command(dune, emma).Execute(ctx, []Selection{
		{BookID: dune, Formats: []domain.Format{domain.FormatEPUB}},
		{BookID: emma, Formats: []domain.Format{domain.FormatAZW3, domain.FormatEPUB}},
	})
	require.NoError(t, err)
	require.Len(t, result.Jobs, 3)
	assert.Equal(t, "Launched 3 edit job(s)", result.Message)

	launches := f.launcher.Launches()
	require.Len(t, launches, 3)
	assert.Equal(t, domain.JobKindEditor, launches[0].Kind)
	assert.Equal(t, "Dune [EPUB]", launches[0].Params[ports.ParamTitle])
	assert.Equal(t, result.Jobs[0].WorkingPath, launches[0].Params[ports.ParamPath])
	assert.Equal(t, "Emma [AZW3]", launches[1].Params[ports.ParamTitle])

	jobs := f.watcher.Jobs()
	require.Len(t, jobs, 3)
	for i, job := range jobs {
		assert.Equal(t, result.Jobs[i].WorkingPath, job.WorkingPath)
		assert.Equal(t, "lib-1", job.LibraryID)
		assert.False(t, job.Started)
		assert.Equal(t, ports.JobHandle(job.WorkingPath), result.Handles[i])
	}

	// Working copies carry the stored content
	data, err := os.ReadFile(result.Jobs[0].WorkingPath)
	require.NoError(t, err)
	assert.Equal(t, "Dune EPUB", string(data))
}

func TestEditBooksCommand_ExecuteIsolatesFailures(t *testing.T) {
	f := newEditFixture(t)
	ctx := context.Background()
	dune := f.lib.Seed("Dune", domain.FormatEPUB)
	emma := f.lib.Seed("Emma", domain.FormatEPUB)
	f.launcher.Err = errors.New("no editor")
	f.launcher.FailTitles = []string{"Dune [EPUB]"}

	result, err := f.command(dune, emma).Execute(ctx, []Selection{
		{BookID: dune, Formats: []domain.Format{domain.FormatEPUB}},
		{BookID: emma, Formats: []domain.Format{domain.FormatEPUB}},
		{BookID: emma, Formats: []domain.Format{"PDF"}},
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, "no editor")
	assert.ErrorIs(t, err, application.ErrUnsupportedFormat)

	require.Len(t, result.Jobs, 1)
	assert.Equal(t, emma, result.Jobs[0].BookID)
	assert.Equal(t, 1, f.watcher.Active())
}

func TestChooseFormats(t *testing.T) {
	epub := domain.FormatEPUB
	azw3 := domain.FormatAZW3

	tests := []struct {
		name      string
		available []domain.Format
		preferred []domain.Format
		want      []domain.Format
	}{
		{"single format", []domain.Format{azw3}, []domain.Format{epub}, []domain.Format{azw3}},
		{"preferred present", []domain.Format{azw3, epub}, []domain.Format{epub}, []domain.Format{epub}},
		{"all preferred", []domain.Format{azw3, epub}, []domain.Format{epub, azw3}, []domain.Format{azw3, epub}},
		{"nothing preferred", []domain.Format{azw3, epub}, nil, []domain.Format{azw3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ChooseFormats(tt.available, tt.preferred))
		})
	}
}

func TestPreferredFormats_RoundTrip(t *testing.T) {
	f := newEditFixture(t)
	ctx := context.Background()

	assert.Equal(t, []domain.Format{domain.FormatEPUB}, PreferredFormats(ctx, f.lib))
	require.NoError(t, RememberFormats(ctx, f.lib, []domain.Format{domain.FormatAZW3}))
	assert.Equal(t, []domain.Format{domain.FormatAZW3}, PreferredFormats(ctx, f.lib))
}

func TestNeedsConfirmation(t *testing.T) {
	assert.False(t, NeedsConfirmation(5))
	assert.True(t, NeedsConfirmation(6))
	assert.Contains(t, ConfirmationPrompt(6), "edit 6 books at once")
}
