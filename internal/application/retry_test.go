package application

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastRetry = RetryPolicy{
	Attempts:        3,
	InitialInterval: time.Millisecond,
	MaxInterval:     time.Millisecond,
}

func TestRetryOnFail_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := fastRetry.RetryOnFail(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("busy")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryOnFail_ExhaustsAttempts(t *testing.T) {
	calls := 0
	boom := errors.New("busy")
	err := fastRetry.RetryOnFail(context.Background(), func() error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
}

func TestReadExitCode(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		want    int
		wantErr bool
	}{
		{name: "success", content: "0", want: 0},
		{name: "failure with newline", content: "1\n", want: 1},
		{name: "negative", content: " -2 ", want: -2},
		{name: "garbage", content: "ok", want: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".result")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			got, err := fastRetry.ReadExitCode(context.Background(), path)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadExitCode_MissingFileIsNotRetried(t *testing.T) {
	_, err := DefaultRetryPolicy.ReadExitCode(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRemoveFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.started")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	require.NoError(t, fastRetry.RemoveFile(context.Background(), path))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Already gone
	assert.NoError(t, fastRetry.RemoveFile(context.Background(), path))
}
