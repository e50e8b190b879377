package pipeline

import (
	"sync"
	"time"
)

// JobStatus represents the state of a document load job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusFetching   JobStatus = "fetching"
	StatusParsing    JobStatus = "parsing"
	StatusSegmenting JobStatus = "segmenting"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Job tracks one asynchronous document load into a deck.
type Job struct {
	mu sync.Mutex

	ID     string `json:"job_id"`
	DeckID string `json:"deck_id"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	URL      string    `json:"url,omitempty"`
	Filename string    `json:"filename"`
	Title    string    `json:"title"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	errors   []string
}

// Progress reports what the load produced.
type Progress struct {
	Slides   int      `json:"slides"`
	Segments int      `json:"segments"`
	Bytes    int      `json:"bytes"`
	Errors   []string `json:"errors"`
}

// NewJob creates a queued job loading into deckID.
func NewJob(id, deckID string) *Job {
	now := time.Now()
	return &Job{
		ID:        id,
		DeckID:    deckID,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// JobStore is an in-memory job registry. Finished jobs are evicted once
// they have been idle for the TTL; running jobs are never evicted.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]*Job
	ttl  time.Duration
	now  func() time.Time
}

// NewJobStore creates an empty store.
func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Put registers job, replacing any job with the same ID.
func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

// Get returns the job with id, or nil.
func (s *JobStore) Get(id string) *Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jobs[id]
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// Cleanup evicts finished jobs idle for longer than the TTL and returns how
// many were removed.
func (s *JobStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for id, job := range s.jobs {
		snap := job.Snapshot()
		if snap.Done() && snap.UpdatedAt.Before(cutoff) {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// Fail records err and marks the job failed in phase.
func (j *Job) Fail(phase string, err error) {
	j.AddError(err.Error())
	j.SetStatus(StatusFailed, phase)
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetResult records the segmentation outcome.
func (j *Job) SetResult(title, contentHash string, slides, segments int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Title == "" {
		j.Title = title
	}
	j.ContentHash = contentHash
	j.Progress.Slides = slides
	j.Progress.Segments = segments
	j.UpdatedAt = time.Now()
}

// SetFile sets the raw document and its name.
func (j *Job) SetFile(filename string, data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Filename = filename
	j.fileData = data
	j.Progress.Bytes = len(data)
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// releaseFile drops the raw bytes once they are no longer needed.
func (j *Job) releaseFile() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = nil
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string    `json:"job_id"`
	DeckID      string    `json:"deck_id"`
	Status      JobStatus `json:"status"`
	Phase       string    `json:"phase"`
	URL         string    `json:"url,omitempty"`
	Filename    string    `json:"filename"`
	Title       string    `json:"title"`
	ContentHash string    `json:"content_hash,omitempty"`
	Progress    Progress  `json:"progress"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := make([]string, len(j.errors))
	copy(errs, j.errors)
	return JobSnapshot{
		ID:          j.ID,
		DeckID:      j.DeckID,
		Status:      j.Status,
		Phase:       j.Phase,
		URL:         j.URL,
		Filename:    j.Filename,
		Title:       j.Title,
		ContentHash: j.ContentHash,
		Progress: Progress{
			Slides:   j.Progress.Slides,
			Segments: j.Progress.Segments,
			Bytes:    j.Progress.Bytes,
			Errors:   errs,
		},
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}

// Done reports whether the job reached a terminal state.
func (s JobSnapshot) Done() bool {
	return s.Status == StatusCompleted || s.Status == StatusFailed
}
