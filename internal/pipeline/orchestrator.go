package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgallion1/stepdeck/internal/config"
	"github.com/dgallion1/stepdeck/internal/session"
)

// ErrStopped is returned by Submit once the orchestrator has been stopped.
var ErrStopped = errors.New("pipeline stopped")

// Stats counts jobs by outcome since start.
type Stats struct {
	Queued    int   `json:"queued"`
	Active    int64 `json:"active"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
	Rejected  int64 `json:"rejected"`
}

// Orchestrator runs document loads on a bounded worker pool.
type Orchestrator struct {
	jobs     *JobStore
	queue    chan *Job
	sessions *session.Store
	fetcher  Fetcher
	log      *slog.Logger
	cfg      config.Config

	// cleanupEvery is how often finished jobs and idle decks are expired.
	cleanupEvery time.Duration

	mu      sync.RWMutex // guards stopped against close(queue)
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	active, completed, failed, rejected atomic.Int64
}

// NewOrchestrator creates the pipeline. Call Start to launch workers.
func NewOrchestrator(cfg config.Config, sessions *session.Store, fetcher Fetcher, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:         NewJobStore(cfg.JobTTL),
		queue:        make(chan *Job, cfg.MaxQueueSize),
		sessions:     sessions,
		fetcher:      fetcher,
		log:          log,
		cfg:          cfg,
		cleanupEvery: time.Minute,
	}
}

// Start launches the workers and the expiry loop.
func (o *Orchestrator) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	w := NewWorker(o.sessions, o.fetcher, o.log, o.cfg.Loader())
	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			for {
				select {
				case <-runCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					o.run(runCtx, w, job)
				}
			}
		}()
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(o.cleanupEvery)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				o.expire()
			}
		}
	}()
}

func (o *Orchestrator) run(ctx context.Context, w *Worker, job *Job) {
	o.active.Add(1)
	defer o.active.Add(-1)

	w.Process(ctx, job)
	if job.Snapshot().Status == StatusCompleted {
		o.completed.Add(1)
	} else {
		o.failed.Add(1)
	}
}

func (o *Orchestrator) expire() {
	jobs := o.jobs.Cleanup()
	decks := o.sessions.Cleanup()
	if jobs+decks > 0 {
		o.log.Info("expired idle state", "jobs", jobs, "decks", decks)
	}
}

// Stop cancels in-flight work and waits for the workers. It is safe to call
// more than once.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	close(o.queue)
	o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()
}

// Submit queues a job. It fails fast when the queue is full or the
// orchestrator is stopped; the job is marked failed either way.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)

	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.stopped {
		job.Fail("queued", ErrStopped)
		o.rejected.Add(1)
		return ErrStopped
	}
	select {
	case o.queue <- job:
		return nil
	default:
		err := fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
		job.Fail("queue_full", err)
		o.rejected.Add(1)
		return err
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns the number of jobs waiting for a worker.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Stats returns job counters.
func (o *Orchestrator) Stats() Stats {
	return Stats{
		Queued:    len(o.queue),
		Active:    o.active.Load(),
		Completed: o.completed.Load(),
		Failed:    o.failed.Load(),
		Rejected:  o.rejected.Load(),
	}
}
