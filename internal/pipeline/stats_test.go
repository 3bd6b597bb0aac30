package pipeline

import (
	"testing"
	"time"
)

func TestParseStatsSnapshotPercentiles(t *testing.T) {
	stats := NewParseStats(time.Hour)
	for _, ms := range []int64{100, 200, 300, 400, 500} {
		stats.Record(time.Duration(ms)*time.Millisecond, 2, false)
	}

	snap := stats.Snapshot()
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	if snap.Pages != 10 {
		t.Fatalf("expected pages=10, got %d", snap.Pages)
	}
	if snap.MinMs != 100 || snap.MaxMs != 500 {
		t.Fatalf("expected min=100 max=500, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
	if snap.AvgMs != 300 {
		t.Fatalf("expected avg=300, got %f", snap.AvgMs)
	}
	if snap.P50Ms != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50Ms)
	}
	if snap.P95Ms != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Ms)
	}
	if snap.P99Ms != 496 {
		t.Fatalf("expected p99=496, got %f", snap.P99Ms)
	}
}

func TestParseStatsCountsCacheHitsAndFailures(t *testing.T) {
	stats := NewParseStats(time.Hour)
	stats.Record(50*time.Millisecond, 1, false)
	stats.Record(0, 1, true)
	stats.RecordFailure()

	snap := stats.Snapshot()
	if snap.Count != 3 || snap.CacheHits != 1 || snap.Failures != 1 {
		t.Fatalf("unexpected counts %+v", snap)
	}
	if snap.MinMs != 50 || snap.MaxMs != 50 {
		t.Fatalf("expected latency from the uncached parse only, got %+v", snap)
	}
}

func TestParseStatsPrunesExpiredSamples(t *testing.T) {
	now := time.Now()
	stats := NewParseStats(time.Minute)
	stats.now = func() time.Time { return now }
	stats.Record(100*time.Millisecond, 1, false)

	now = now.Add(2 * time.Minute)
	if snap := stats.Snapshot(); snap.Count != 0 {
		t.Fatalf("expected count=0 after prune, got %d", snap.Count)
	}

	stats.Record(200*time.Millisecond, 1, false)
	snap := stats.Snapshot()
	if snap.Count != 1 || snap.MinMs != 200 {
		t.Fatalf("expected one fresh sample of 200ms, got %+v", snap)
	}
}

func TestParseStatsRecordClampsNegativeDuration(t *testing.T) {
	stats := NewParseStats(time.Hour)
	stats.Record(-10*time.Millisecond, 1, false)
	snap := stats.Snapshot()
	if snap.Count != 1 || snap.MinMs != 0 {
		t.Fatalf("expected clamped duration=0, got %+v", snap)
	}
}
