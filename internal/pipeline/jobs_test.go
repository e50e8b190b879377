package pipeline

import (
	"errors"
	"testing"
	"time"
)

func TestJob_StateTransitions(t *testing.T) {
	job := NewJob("test-1", "deck-1")
	if job.Status != StatusQueued {
		t.Fatalf("new job status = %q", job.Status)
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusFetching, "fetching"},
		{StatusParsing, "parsing"},
		{StatusSegmenting, "segmenting"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
	if !job.Snapshot().Done() {
		t.Error("completed job should be done")
	}
}

func TestJob_Fail(t *testing.T) {
	job := NewJob("test-fail", "deck")
	job.Fail("parsing", errors.New("bad pdf"))

	snap := job.Snapshot()
	if snap.Status != StatusFailed || snap.Phase != "parsing" {
		t.Errorf("unexpected state %q/%q", snap.Status, snap.Phase)
	}
	if len(snap.Progress.Errors) != 1 || snap.Progress.Errors[0] != "bad pdf" {
		t.Errorf("unexpected errors %v", snap.Progress.Errors)
	}
	if !snap.Done() {
		t.Error("failed job should be done")
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("fetch timed out")
	job.AddError("retry failed")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "fetch timed out" {
		t.Errorf("expected first error %q, got %q", "fetch timed out", snap.Progress.Errors[0])
	}

	// Snapshots are copies.
	snap.Progress.Errors[0] = "changed"
	if job.Snapshot().Progress.Errors[0] != "fetch timed out" {
		t.Error("snapshot shares the error slice with the job")
	}
}

func TestJob_SetResult(t *testing.T) {
	job := &Job{ID: "result-test", Title: "Given"}
	job.SetResult("Derived", "abc", 3, 11)

	snap := job.Snapshot()
	if snap.Title != "Given" {
		t.Errorf("explicit title should win, got %q", snap.Title)
	}
	if snap.Progress.Slides != 3 || snap.Progress.Segments != 11 || snap.ContentHash != "abc" {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}

func TestJob_FileData(t *testing.T) {
	job := &Job{ID: "data-test"}
	data := []byte("file content here")
	job.SetFile("notes.txt", data)
	if string(job.FileData()) != string(data) {
		t.Errorf("expected file data %q, got %q", data, job.FileData())
	}
	if job.Snapshot().Progress.Bytes != len(data) {
		t.Errorf("bytes = %d", job.Snapshot().Progress.Bytes)
	}
	job.releaseFile()
	if job.FileData() != nil {
		t.Error("released job should drop its bytes")
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	// Snapshot should always return non-nil errors slice.
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	if len(snap.Progress.Errors) != 0 {
		t.Errorf("expected empty errors, got %d", len(snap.Progress.Errors))
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewJobStore(time.Hour)
	store.now = func() time.Time { return now }

	old := now.Add(-2 * time.Hour)
	store.Put(&Job{ID: "done-old", Status: StatusCompleted, UpdatedAt: old})
	store.Put(&Job{ID: "failed-old", Status: StatusFailed, UpdatedAt: old})
	store.Put(&Job{ID: "running-old", Status: StatusParsing, UpdatedAt: old})
	store.Put(&Job{ID: "done-fresh", Status: StatusCompleted, UpdatedAt: now.Add(-time.Minute)})

	if n := store.Cleanup(); n != 2 {
		t.Errorf("Cleanup removed %d, want 2", n)
	}
	for _, id := range []string{"done-old", "failed-old"} {
		if store.Get(id) != nil {
			t.Errorf("expected %s to be evicted", id)
		}
	}
	for _, id := range []string{"running-old", "done-fresh"} {
		if store.Get(id) == nil {
			t.Errorf("expected %s to survive", id)
		}
	}
	if store.Len() != 2 {
		t.Errorf("Len = %d, want 2", store.Len())
	}
}
