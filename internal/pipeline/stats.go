package pipeline

import (
	"slices"
	"sync"
	"time"
)

type parseSample struct {
	at         time.Time
	durationMs int64
	pages      int
	cached     bool
	failed     bool
}

// StatsSnapshot aggregates the parse samples inside the rolling window.
// Latency figures cover successful, uncached parses only.
type StatsSnapshot struct {
	Count     int     `json:"count"`
	Failures  int     `json:"failures"`
	CacheHits int     `json:"cache_hits"`
	Pages     int     `json:"pages"`
	MinMs     int64   `json:"min_ms"`
	MaxMs     int64   `json:"max_ms"`
	AvgMs     float64 `json:"avg_ms"`
	P50Ms     float64 `json:"p50_ms"`
	P95Ms     float64 `json:"p95_ms"`
	P99Ms     float64 `json:"p99_ms"`
}

// ParseStats tracks recent document parses within a rolling window. It is
// safe for concurrent use.
type ParseStats struct {
	mu      sync.Mutex
	samples []parseSample
	window  time.Duration
	now     func() time.Time
}

func NewParseStats(window time.Duration) *ParseStats {
	if window <= 0 {
		window = time.Hour
	}
	return &ParseStats{
		samples: make([]parseSample, 0, 256),
		window:  window,
		now:     time.Now,
	}
}

// Record adds a successful parse.
func (s *ParseStats) Record(d time.Duration, pages int, cached bool) {
	ms := d.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	s.add(parseSample{durationMs: ms, pages: pages, cached: cached})
}

// RecordFailure adds a failed parse.
func (s *ParseStats) RecordFailure() {
	s.add(parseSample{failed: true})
}

func (s *ParseStats) add(sm parseSample) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sm.at = s.now()
	s.pruneLocked(sm.at)
	s.samples = append(s.samples, sm)
}

func (s *ParseStats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(s.now())

	var snap StatsSnapshot
	var values []int64
	var sum int64
	for _, sm := range s.samples {
		snap.Count++
		switch {
		case sm.failed:
			snap.Failures++
			continue
		case sm.cached:
			snap.CacheHits++
			continue
		}
		snap.Pages += sm.pages
		values = append(values, sm.durationMs)
		sum += sm.durationMs
	}
	if len(values) == 0 {
		return snap
	}

	slices.Sort(values)
	snap.MinMs = values[0]
	snap.MaxMs = values[len(values)-1]
	snap.AvgMs = float64(sum) / float64(len(values))
	snap.P50Ms = percentile(values, 50)
	snap.P95Ms = percentile(values, 95)
	snap.P99Ms = percentile(values, 99)
	return snap
}

func (s *ParseStats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	keep := s.samples[:0]
	for _, sm := range s.samples {
		if !sm.at.Before(cutoff) {
			keep = append(keep, sm)
		}
	}
	s.samples = keep
}

// percentile interpolates linearly between the closest ranks.
func percentile(sorted []int64, pct float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sorted[0])
	}
	if pct >= 100 {
		return float64(sorted[len(sorted)-1])
	}

	index := float64(len(sorted)-1) * pct / 100.0
	lower := int(index)
	if lower+1 >= len(sorted) {
		return float64(sorted[lower])
	}
	weight := index - float64(lower)
	lo, hi := float64(sorted[lower]), float64(sorted[lower+1])
	return lo + (hi-lo)*weight
}
