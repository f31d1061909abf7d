package journal

import (
	"path/filepath"
	"testing"
	"time"
)

func openTemp(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), ".hostbridge", "journal.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestRecordAndList(t *testing.T) {
	j := openTemp(t)

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	entries := []Entry{
		{RunID: "a", Host: "/usr/bin/blender", Call: "m.f()", ExitCode: 0,
			Passed: true, StartedAt: base, Duration: 1200 * time.Millisecond},
		{RunID: "b", Host: "/usr/bin/blender", Call: "m.g()", ExitCode: 1,
			Passed: false, Output: "Error in host process!", StartedAt: base.Add(time.Minute),
			Duration: 300 * time.Millisecond},
	}
	for _, e := range entries {
		if err := j.Record(e); err != nil {
			t.Fatalf("Record(%s) failed: %v", e.RunID, err)
		}
	}

	got, err := j.List(10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("List returned %d entries", len(got))
	}

	// Newest first.
	if got[0].RunID != "b" || got[1].RunID != "a" {
		t.Errorf("order = %s, %s", got[0].RunID, got[1].RunID)
	}
	if got[0].Passed || !got[1].Passed {
		t.Errorf("passed flags = %v, %v", got[0].Passed, got[1].Passed)
	}
	if got[0].Output != "Error in host process!" {
		t.Errorf("Output = %q", got[0].Output)
	}
	if got[1].Duration != 1200*time.Millisecond {
		t.Errorf("Duration = %v", got[1].Duration)
	}
}

func TestListHonorsLimit(t *testing.T) {
	j := openTemp(t)

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"r1", "r2", "r3"} {
		e := Entry{RunID: id, Host: "h", Call: "m.f()", Passed: true,
			StartedAt: base.Add(time.Duration(i) * time.Second)}
		if err := j.Record(e); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	got, err := j.List(2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 2 || got[0].RunID != "r3" {
		t.Errorf("List(2) = %v", got)
	}
}

func TestRecordRejectsDuplicateRunID(t *testing.T) {
	j := openTemp(t)

	e := Entry{RunID: "same", Host: "h", Call: "m.f()", StartedAt: time.Now()}
	if err := j.Record(e); err != nil {
		t.Fatalf("first Record failed: %v", err)
	}
	if err := j.Record(e); err == nil {
		t.Error("duplicate run_id accepted")
	}
}

func TestOpenCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "journal.db")
	j, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	j.Close()
}
