package domain

import "testing"

func TestJob_State(t *testing.T) {
	j := Job{WorkingPath: "/tmp/dune.epub"}
	if j.State() != JobPendingStart {
		t.Errorf("expected pending, got %s", j.State())
	}
	j.Started = true
	if j.State() != JobRunning {
		t.Errorf("expected running, got %s", j.State())
	}
}

func TestJob_SentinelPaths(t *testing.T) {
	j := Job{WorkingPath: "/tmp/x/dune.epub"}
	if got := j.StartedPath(); got != "/tmp/x/dune.epub.started" {
		t.Errorf("StartedPath() = %q", got)
	}
	if got := j.ResultPath(); got != "/tmp/x/dune.epub.result" {
		t.Errorf("ResultPath() = %q", got)
	}
}

func TestJobState_String(t *testing.T) {
	tests := map[JobState]string{
		JobPendingStart: "pending",
		JobRunning:      "running",
		JobCompleted:    "completed",
		JobTimedOut:     "timed out",
		JobState(42):    "unknown",
	}
	for s, want := range tests {
		if s.String() != want {
			t.Errorf("%d.String() = %q, want %q", s, s.String(), want)
		}
	}
}
