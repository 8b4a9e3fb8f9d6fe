package testutil

import (
	"context"
	"maps"
	"slices"
	"sync"

	"libredit/internal/domain"
	"libredit/internal/ports"
)

// Launch records one Launch call
type Launch struct {
	Kind   domain.JobKind
	Params map[string]string
}

// FakeLauncher records launches instead of spawning processes
type FakeLauncher struct {
	mu       sync.Mutex
	launches []Launch

	// Err, when set, is returned for launches whose title is in FailTitles,
	// or for every launch when FailTitles is empty
	Err        error
	FailTitles []string
}

// Ensure FakeLauncher implements JobLauncher
var _ ports.JobLauncher = (*FakeLauncher)(nil)

func (l *FakeLauncher) Launch(_ context.Context, kind domain.JobKind, params map[string]string) error {
	if l.Err != nil && (len(l.FailTitles) == 0 || slices.Contains(l.FailTitles, params[ports.ParamTitle])) {
		return l.Err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.launches = append(l.launches, Launch{Kind: kind, Params: maps.Clone(params)})
	return nil
}

// Launches returns the recorded launches
func (l *FakeLauncher) Launches() []Launch {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.launches)
}
