// Package session keeps live decks addressable by ID.
package session

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/dgallion1/stepdeck/internal/presenter"
)

// Session is one live deck.
type Session struct {
	mu sync.Mutex

	ID          string
	source      string
	title       string
	contentHash string
	createdAt   time.Time
	updatedAt   time.Time
	streams     int

	presenter *presenter.Presenter
}

// Info is a JSON-safe description of a session.
type Info struct {
	ID          string    `json:"deck_id"`
	Source      string    `json:"source"`
	Title       string    `json:"title"`
	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// New wraps p in a session with a fresh ID.
func New(p *presenter.Presenter) *Session {
	now := time.Now()
	return &Session{
		ID:        NewID(),
		createdAt: now,
		updatedAt: now,
		presenter: p,
	}
}

// Do runs fn with exclusive access to the presenter.
func (s *Session) Do(fn func(p *presenter.Presenter)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.presenter)
	s.updatedAt = time.Now()
}

// Load replaces the deck's document.
func (s *Session) Load(text, source, title string) presenter.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presenter.LoadDocument(text)
	s.source = source
	s.title = title
	s.contentHash = ContentHashHex([]byte(text))
	s.updatedAt = time.Now()
	return s.presenter.Snapshot()
}

// Info describes the session.
func (s *Session) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Info{
		ID:          s.ID,
		Source:      s.source,
		Title:       s.title,
		ContentHash: s.contentHash,
		CreatedAt:   s.createdAt,
		UpdatedAt:   s.updatedAt,
	}
}

// Attach marks the session as watched by a live stream until release is
// called. Watched sessions never expire.
func (s *Session) Attach() (release func()) {
	s.mu.Lock()
	s.streams++
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.streams--
			s.updatedAt = time.Now()
			s.mu.Unlock()
		})
	}
}

// idleSince reports when the session was last used, or false while a stream
// is attached.
func (s *Session) idleSince() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt, s.streams == 0
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}

// Store is a thread-safe in-memory session registry with TTL eviction.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

func (st *Store) Put(s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.ID] = s
}

func (st *Store) Get(id string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.sessions[id]
}

// Delete removes a session and reports whether it existed.
func (st *Store) Delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	_, ok := st.sessions[id]
	delete(st.sessions, id)
	return ok
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Cleanup removes sessions idle for longer than the TTL and returns how many
// were removed. Sessions with an attached stream are kept.
func (st *Store) Cleanup() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	now := time.Now()
	removed := 0
	for id, s := range st.sessions {
		if last, idle := s.idleSince(); idle && now.Sub(last) > st.ttl {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}
