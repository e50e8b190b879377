package render

import (
	"slices"
	"sync"
	"time"
)

// maxSamples bounds memory on busy servers; the oldest samples go first.
const maxSamples = 4096

// StatsSnapshot aggregates the render samples inside the window. Durations
// are fractional milliseconds since most segments render in well under one.
type StatsSnapshot struct {
	Window    string  `json:"window"`
	Count     int     `json:"count"`
	CacheHits int64   `json:"cache_hits"`
	Fallbacks int64   `json:"fallbacks"`
	MinMs     float64 `json:"min_ms"`
	MaxMs     float64 `json:"max_ms"`
	AvgMs     float64 `json:"avg_ms"`
	P50Ms     float64 `json:"p50_ms"`
	P95Ms     float64 `json:"p95_ms"`
	P99Ms     float64 `json:"p99_ms"`
}

type renderSample struct {
	at time.Time
	d  time.Duration
}

// Stats tracks render latencies, cache hits and fallbacks. A nil *Stats
// records nothing.
type Stats struct {
	mu        sync.Mutex
	window    time.Duration
	now       func() time.Time
	samples   []renderSample
	cacheHits int64
	fallbacks int64
}

// NewStats keeps samples for window (an hour when unset).
func NewStats(window time.Duration) *Stats {
	if window <= 0 {
		window = time.Hour
	}
	return &Stats{window: window, now: time.Now}
}

// Record adds one render duration.
func (s *Stats) Record(d time.Duration) {
	if s == nil {
		return
	}
	d = max(d, 0)

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.expireLocked(now)
	if len(s.samples) == maxSamples {
		s.samples = slices.Delete(s.samples, 0, 1)
	}
	s.samples = append(s.samples, renderSample{at: now, d: d})
}

// RecordCacheHit counts a render served from cache.
func (s *Stats) RecordCacheHit() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.cacheHits++
	s.mu.Unlock()
}

// RecordFallback counts a render replaced by the literal fallback.
func (s *Stats) RecordFallback() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.fallbacks++
	s.mu.Unlock()
}

// Snapshot aggregates the current window. Counters are lifetime totals.
func (s *Stats) Snapshot() StatsSnapshot {
	if s == nil {
		return StatsSnapshot{}
	}
	s.mu.Lock()
	s.expireLocked(s.now())
	ms := make([]float64, len(s.samples))
	for i, sm := range s.samples {
		ms[i] = float64(sm.d) / float64(time.Millisecond)
	}
	snap := StatsSnapshot{
		Window:    s.window.String(),
		Count:     len(ms),
		CacheHits: s.cacheHits,
		Fallbacks: s.fallbacks,
	}
	s.mu.Unlock()

	if len(ms) == 0 {
		return snap
	}
	slices.Sort(ms)
	var sum float64
	for _, v := range ms {
		sum += v
	}
	snap.MinMs = ms[0]
	snap.MaxMs = ms[len(ms)-1]
	snap.AvgMs = sum / float64(len(ms))
	snap.P50Ms = percentile(ms, 50)
	snap.P95Ms = percentile(ms, 95)
	snap.P99Ms = percentile(ms, 99)
	return snap
}

// expireLocked drops samples older than the window. Samples are appended in
// time order, so the expired ones form a prefix.
func (s *Stats) expireLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	i := 0
	for i < len(s.samples) && s.samples[i].at.Before(cutoff) {
		i++
	}
	if i > 0 {
		s.samples = slices.Delete(s.samples, 0, i)
	}
}

// percentile interpolates linearly between the closest ranks of sorted.
func percentile(sorted []float64, pct float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case pct <= 0:
		return sorted[0]
	case pct >= 100:
		return sorted[len(sorted)-1]
	}
	pos := float64(len(sorted)-1) * pct / 100
	lo := int(pos)
	if lo+1 >= len(sorted) {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[lo+1]-sorted[lo])*frac
}
