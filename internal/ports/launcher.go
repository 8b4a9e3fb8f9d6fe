package ports

import (
	"context"

	"libredit/internal/domain"
)

// Launch parameter keys understood by every JobLauncher
const (
	ParamPath  = "path"
	ParamTitle = "title"
)

// JobLauncher spawns an external job and returns without waiting for it
type JobLauncher interface {
	Launch(ctx context.Context, kind domain.JobKind, params map[string]string) error
}

// JobHandle identifies a tracked job; it is the job's working path
type JobHandle string

// JobTracker accepts launched jobs for completion tracking
type JobTracker interface {
	Submit(ctx context.Context, bookID int64, format domain.Format, workingPath, title, libraryID string) (JobHandle, error)
}
