package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dgallion1/stepdeck/internal/config"
	"github.com/dgallion1/stepdeck/internal/fetch"
	"github.com/dgallion1/stepdeck/internal/loader"
	"github.com/dgallion1/stepdeck/internal/presenter"
	"github.com/dgallion1/stepdeck/internal/session"
)

type stubFetcher struct {
	result *fetch.Result
	err    error
	calls  int
}

func (f *stubFetcher) Fetch(ctx context.Context, rawURL string) (*fetch.Result, error) {
	f.calls++
	return f.result, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newDeck(t *testing.T, store *session.Store) *session.Session {
	t.Helper()
	p, err := presenter.New(presenter.Options{})
	if err != nil {
		t.Fatalf("presenter.New: %v", err)
	}
	s := session.New(p)
	store.Put(s)
	return s
}

func TestWorker_UploadedFile(t *testing.T) {
	sessions := session.NewStore(time.Hour)
	deck := newDeck(t, sessions)

	job := NewJob("job-1", deck.ID)
	job.SetFile("talk.md", []byte("# Intro\n\nhello\n\n# End\n\nbye"))

	NewWorker(sessions, nil, testLogger(), loader.Options{}).Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("status = %q, errors %v", snap.Status, snap.Progress.Errors)
	}
	if snap.Progress.Slides != 2 || snap.Progress.Segments != 4 {
		t.Errorf("unexpected progress %+v", snap.Progress)
	}
	if snap.Title != "Intro" {
		t.Errorf("title = %q", snap.Title)
	}
	if info := deck.Info(); info.Source != "talk.md" || info.ContentHash != snap.ContentHash {
		t.Errorf("deck info not updated: %+v", info)
	}
	if job.FileData() != nil {
		t.Error("file bytes should be released after processing")
	}
}

func TestWorker_FetchedURL(t *testing.T) {
	sessions := session.NewStore(time.Hour)
	deck := newDeck(t, sessions)
	f := &stubFetcher{result: &fetch.Result{Filename: "notes.txt", Data: []byte("one\n\ntwo")}}

	job := NewJob("job-2", deck.ID)
	job.URL = "https://example.com/notes.txt"
	NewWorker(sessions, f, testLogger(), loader.Options{}).Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("status = %q, errors %v", snap.Status, snap.Progress.Errors)
	}
	if f.calls != 1 {
		t.Errorf("fetch calls = %d", f.calls)
	}
	if deck.Info().Source != job.URL {
		t.Errorf("source = %q", deck.Info().Source)
	}
}

func TestWorker_Failures(t *testing.T) {
	sessions := session.NewStore(time.Hour)
	deck := newDeck(t, sessions)

	tests := []struct {
		name    string
		setup   func(*Job)
		fetcher Fetcher
		phase   string
	}{
		{
			name:    "fetch error",
			setup:   func(j *Job) { j.URL = "https://example.com/x.md" },
			fetcher: &stubFetcher{err: errors.New("connection refused")},
			phase:   "fetching",
		},
		{
			name:  "unsupported format",
			setup: func(j *Job) { j.SetFile("binary.exe", []byte{0}) },
			phase: "parsing",
		},
		{
			name: "deck deleted",
			setup: func(j *Job) {
				j.DeckID = "missing"
				j.SetFile("a.md", []byte("x"))
			},
			phase: "segmenting",
		},
	}
	for _, tt := range tests {
		job := NewJob("job", deck.ID)
		tt.setup(job)
		NewWorker(sessions, tt.fetcher, testLogger(), loader.Options{}).Process(context.Background(), job)
		snap := job.Snapshot()
		if snap.Status != StatusFailed || snap.Phase != tt.phase {
			t.Errorf("%s: got %q/%q, want failed/%s", tt.name, snap.Status, snap.Phase, tt.phase)
		}
		if len(snap.Progress.Errors) == 0 {
			t.Errorf("%s: expected an error to be recorded", tt.name)
		}
	}
}

func TestOrchestrator_SubmitAndQueueFull(t *testing.T) {
	cfg := config.Default()
	cfg.MaxQueueSize = 1
	cfg.WorkerCount = 1
	sessions := session.NewStore(time.Hour)
	deck := newDeck(t, sessions)

	o := NewOrchestrator(cfg, sessions, nil, testLogger())
	// Not started: the queue fills without draining.
	first := NewJob("a", deck.ID)
	if err := o.Submit(first); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	second := NewJob("b", deck.ID)
	if err := o.Submit(second); err == nil {
		t.Fatal("expected queue full error")
	}
	if second.Snapshot().Status != StatusFailed {
		t.Error("rejected job should be failed")
	}
	if o.GetJob("b") == nil || o.QueueDepth() != 1 {
		t.Error("rejected job should still be queryable")
	}
}

func TestOrchestrator_ProcessesJobs(t *testing.T) {
	cfg := config.Default()
	cfg.WorkerCount = 2
	sessions := session.NewStore(time.Hour)
	deck := newDeck(t, sessions)

	o := NewOrchestrator(cfg, sessions, nil, testLogger())
	o.Start(context.Background())
	defer o.Stop()

	job := NewJob("run", deck.ID)
	job.SetFile("deck.md", []byte("# Only"))
	if err := o.Submit(job); err != nil {
		t.Fatalf("submit: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for !job.Snapshot().Done() {
		if time.Now().After(deadline) {
			t.Fatal("job did not finish")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if job.Snapshot().Status != StatusCompleted {
		t.Fatalf("status = %q", job.Snapshot().Status)
	}
}

func TestOrchestrator_StopRejectsSubmit(t *testing.T) {
	sessions := session.NewStore(time.Hour)
	deck := newDeck(t, sessions)

	o := NewOrchestrator(config.Default(), sessions, nil, testLogger())
	o.Start(context.Background())
	o.Stop()
	o.Stop()

	job := NewJob("late", deck.ID)
	if err := o.Submit(job); !errors.Is(err, ErrStopped) {
		t.Fatalf("Submit after Stop = %v, want ErrStopped", err)
	}
	if job.Snapshot().Status != StatusFailed {
		t.Error("rejected job should be failed")
	}
	if got := o.Stats().Rejected; got != 1 {
		t.Errorf("rejected = %d, want 1", got)
	}
}

func TestOrchestrator_StatsCountOutcomes(t *testing.T) {
	cfg := config.Default()
	cfg.WorkerCount = 1
	sessions := session.NewStore(time.Hour)
	deck := newDeck(t, sessions)

	o := NewOrchestrator(cfg, sessions, nil, testLogger())
	o.Start(context.Background())
	defer o.Stop()

	good := NewJob("good", deck.ID)
	good.SetFile("deck.md", []byte("# Fine"))
	bad := NewJob("bad", deck.ID)
	bad.SetFile("deck.exe", []byte("MZ"))
	for _, j := range []*Job{good, bad} {
		if err := o.Submit(j); err != nil {
			t.Fatalf("submit %s: %v", j.ID, err)
		}
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		st := o.Stats()
		if st.Completed+st.Failed == 2 && st.Active == 0 {
			if st.Completed != 1 || st.Failed != 1 {
				t.Fatalf("stats = %+v, want 1 completed and 1 failed", st)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("jobs did not finish: %+v", st)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
