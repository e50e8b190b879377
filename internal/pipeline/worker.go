package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/stepdeck/internal/fetch"
	"github.com/dgallion1/stepdeck/internal/loader"
	"github.com/dgallion1/stepdeck/internal/session"
)

// Fetcher downloads remote documents.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*fetch.Result, error)
}

// Worker processes a single load job.
type Worker struct {
	sessions *session.Store
	fetcher  Fetcher
	log      *slog.Logger
	opts     loader.Options
}

func NewWorker(sessions *session.Store, fetcher Fetcher, log *slog.Logger, opts loader.Options) *Worker {
	return &Worker{
		sessions: sessions,
		fetcher:  fetcher,
		log:      log,
		opts:     opts,
	}
}

// Process runs fetch, convert and segment for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "deck_id", job.DeckID)
	defer job.releaseFile()

	// Phase 1: Fetch
	if job.URL != "" {
		job.SetStatus(StatusFetching, "fetching")
		if w.fetcher == nil {
			job.Fail("fetching", fmt.Errorf("remote documents are disabled"))
			return
		}
		res, err := w.fetcher.Fetch(ctx, job.URL)
		if err != nil {
			log.Error("fetch failed", "url", job.URL, "error", err)
			job.Fail("fetching", err)
			return
		}
		job.SetFile(res.Filename, res.Data)
		log.Info("fetched document", "filename", res.Filename, "bytes", len(res.Data))
	}

	// Phase 2: Convert
	job.SetStatus(StatusParsing, "parsing")
	doc, err := loader.Load(job.FileData(), job.Filename, w.opts)
	if err != nil {
		log.Error("convert failed", "error", err)
		job.Fail("parsing", err)
		return
	}

	// Phase 3: Segment into the deck.
	job.SetStatus(StatusSegmenting, "segmenting")
	sess := w.sessions.Get(job.DeckID)
	if sess == nil {
		job.Fail("segmenting", fmt.Errorf("deck %s no longer exists", job.DeckID))
		return
	}
	source := job.Filename
	if job.URL != "" {
		source = job.URL
	}
	title := doc.Title
	if job.Title != "" {
		title = job.Title
	}
	snap := sess.Load(doc.Text, source, title)

	slides, segments := 0, 0
	for _, s := range snap.Slides {
		slides++
		segments += len(s.Segments)
	}
	job.SetResult(title, session.ContentHashHex([]byte(doc.Text)), slides, segments)
	if slides == 0 {
		log.Warn("document produced no slides")
	}
	log.Info("deck loaded", "slides", slides, "segments", segments)
	job.SetStatus(StatusCompleted, "done")
}
