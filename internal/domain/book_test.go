package domain

import "testing"

func TestBookDir(t *testing.T) {
	tests := []struct {
		name   string
		author string
		title  string
		id     int64
		want   string
	}{
		{"simple", "Frank Herbert", "Dune", 1, "Frank Herbert/Dune (1)"},
		{"missing author", "", "Dune", 2, "Unknown/Dune (2)"},
		{"unsafe characters", "A/B", "What? Now: Yes", 3, "A_B/What_ Now_ Yes (3)"},
		{"hidden title", "X", "..secret", 4, "X/secret (4)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BookDir(tt.author, tt.title, tt.id); got != tt.want {
				t.Errorf("BookDir() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestJobTitle(t *testing.T) {
	if got := JobTitle("Dune", FormatEPUB); got != "Dune [EPUB]" {
		t.Errorf("JobTitle = %q", got)
	}
}

func TestJobSentinels(t *testing.T) {
	j := Job{WorkingPath: "/tmp/b.epub"}
	if j.StartedPath() != "/tmp/b.epub.started" {
		t.Errorf("StartedPath = %q", j.StartedPath())
	}
	if j.ResultPath() != "/tmp/b.epub.result" {
		t.Errorf("ResultPath = %q", j.ResultPath())
	}
	if j.State() != JobPendingStart {
		t.Errorf("new job state = %s", j.State())
	}
	j.Started = true
	if j.State() != JobRunning {
		t.Errorf("started job state = %s", j.State())
	}
}
