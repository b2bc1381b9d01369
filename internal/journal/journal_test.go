package journal

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestSessionLifecycle(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	j, err := New(true, dir, 0)
	if err != nil {
		t.Fatal(err)
	}

	j.StartSession("event-replay")
	j.Record(OpRename, "/a/old.mkv", "/a/new.mkv", true, false, nil)
	j.Record(OpMove, "/a/x.mkv", "/b/x.mkv", false, false, errors.New("destination already exists"))
	j.Record(OpRename, "/a/y.mkv", "/a/z.mkv", true, true, nil)
	if err := j.Flush(); err != nil {
		t.Fatal(err)
	}

	sessions, err := j.ReadSessions(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 {
		t.Fatalf("ReadSessions returned %d sessions, want 1", len(sessions))
	}
	meta := sessions[0].Metadata
	if meta.Trigger != "event-replay" {
		t.Errorf("Trigger = %q, want event-replay", meta.Trigger)
	}
	if meta.TotalOps != 3 || meta.SuccessfulOps != 1 || meta.FailedOps != 1 || meta.DryRunOps != 1 {
		t.Errorf("stats = %+v, want 3 total, 1 ok, 1 failed, 1 dry-run", meta)
	}
	if got := sessions[0].Operations[1].Error; got != "destination already exists" {
		t.Errorf("recorded error = %q", got)
	}
}

func TestEmptySessionDropped(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	j, err := New(true, dir, 0)
	if err != nil {
		t.Fatal(err)
	}
	j.StartSession("sweep")
	if err := j.Flush(); err != nil {
		t.Fatal(err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 0 {
		t.Errorf("empty session wrote %d files, want 0", len(files))
	}
}

func TestDisabledJournalDropsRecords(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	j, err := New(false, dir, 0)
	if err != nil {
		t.Fatal(err)
	}
	j.StartSession("sweep")
	j.Record(OpRename, "/a", "/b", true, false, nil)
	if err := j.Flush(); err != nil {
		t.Fatal(err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 0 {
		t.Errorf("disabled journal wrote %d files, want 0", len(files))
	}
}

func TestRecordWithoutSessionIgnored(t *testing.T) {
	t.Parallel()
	j, err := New(true, t.TempDir(), 0)
	if err != nil {
		t.Fatal(err)
	}
	// No StartSession; must not panic or persist anything.
	j.Record(OpRename, "/a", "/b", true, false, nil)
	if err := j.Flush(); err != nil {
		t.Fatal(err)
	}
}
