package domain

import "time"

// JobKind names a kind of externally launched job
type JobKind string

// JobKindEditor launches the external book editor
const JobKindEditor JobKind = "editor"

// Sentinel file suffixes of the editor handshake
const (
	StartedSuffix = ".started"
	ResultSuffix  = ".result"
)

// JobState is the position of an edit job in its lifecycle
type JobState int

const (
	JobPendingStart JobState = iota
	JobRunning
	JobCompleted
	JobTimedOut
)

func (s JobState) String() string {
	switch s {
	case JobPendingStart:
		return "pending"
	case JobRunning:
		return "running"
	case JobCompleted:
		return "completed"
	case JobTimedOut:
		return "timed out"
	default:
		return "unknown"
	}
}

// Job is one outstanding external edit of a book format
type Job struct {
	WorkingPath string // File handed to the editor; unique among active jobs
	Title       string
	BookID      int64
	Format      Format
	LibraryID   string // Library identity at launch
	Started     bool
	StartTime   time.Time
}

// State returns PendingStart or Running; terminal states are never stored
func (j Job) State() JobState {
	if j.Started {
		return JobRunning
	}
	return JobPendingStart
}

// StartedPath is the sentinel the editor creates once it is running
func (j Job) StartedPath() string {
	return StartedSentinel(j.WorkingPath)
}

// ResultPath is the sentinel holding the editor's exit code
func (j Job) ResultPath() string {
	return ResultSentinel(j.WorkingPath)
}

// StartedSentinel returns workingPath + ".started"
func StartedSentinel(workingPath string) string {
	return workingPath + StartedSuffix
}

// ResultSentinel returns workingPath + ".result"
func ResultSentinel(workingPath string) string {
	return workingPath + ResultSuffix
}
