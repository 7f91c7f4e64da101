package llm

import (
	"context"
	"sort"
	"sync"
	"time"
)

type sample struct {
	timestamp  time.Time
	durationMs int64
}

// LatencySnapshot is a point-in-time aggregate of latency samples.
type LatencySnapshot struct {
	Count int     `json:"count"`
	MinMs int64   `json:"min_ms"`
	MaxMs int64   `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
	P99Ms float64 `json:"p99_ms"`
}

// StatsSnapshot reports both latency series plus outcome counters.
type StatsSnapshot struct {
	Total      LatencySnapshot `json:"total"`
	FirstDelta LatencySnapshot `json:"first_delta"`
	Failures   int             `json:"failures"`
}

// window holds samples no older than maxAge.
type window struct {
	samples []sample
	maxAge  time.Duration
}

func (w *window) add(now time.Time, d time.Duration) {
	ms := d.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	w.prune(now)
	w.samples = append(w.samples, sample{timestamp: now, durationMs: ms})
}

func (w *window) prune(now time.Time) {
	cutoff := now.Add(-w.maxAge)
	writeIdx := 0
	for _, sm := range w.samples {
		if !sm.timestamp.Before(cutoff) {
			w.samples[writeIdx] = sm
			writeIdx++
		}
	}
	w.samples = w.samples[:writeIdx]
}

func (w *window) snapshot(now time.Time) LatencySnapshot {
	w.prune(now)
	if len(w.samples) == 0 {
		return LatencySnapshot{}
	}

	values := make([]int64, 0, len(w.samples))
	var sum int64
	for _, sm := range w.samples {
		values = append(values, sm.durationMs)
		sum += sm.durationMs
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	return LatencySnapshot{
		Count: len(values),
		MinMs: values[0],
		MaxMs: values[len(values)-1],
		AvgMs: float64(sum) / float64(len(values)),
		P50Ms: percentile(values, 50),
		P95Ms: percentile(values, 95),
		P99Ms: percentile(values, 99),
	}
}

// LLMStats tracks recent stream latencies within a rolling window: the full
// stream duration and the time until the first delta arrived.
type LLMStats struct {
	mu         sync.Mutex
	total      window
	firstDelta window
	failures   int
}

func NewLLMStats(maxAge time.Duration) *LLMStats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &LLMStats{
		total:      window{samples: make([]sample, 0, 256), maxAge: maxAge},
		firstDelta: window{samples: make([]sample, 0, 256), maxAge: maxAge},
	}
}

// Record adds one finished stream. A zero firstDelta means no delta arrived
// and only the total is recorded.
func (s *LLMStats) Record(total, firstDelta time.Duration) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.total.add(now, total)
	if firstDelta > 0 {
		s.firstDelta.add(now, firstDelta)
	}
}

// RecordFailure counts a stream that ended in an error.
func (s *LLMStats) RecordFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures++
}

func (s *LLMStats) Snapshot() StatsSnapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	return StatsSnapshot{
		Total:      s.total.snapshot(now),
		FirstDelta: s.firstDelta.snapshot(now),
		Failures:   s.failures,
	}
}

func percentile(sortedValues []int64, pct float64) float64 {
	if len(sortedValues) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sortedValues[0])
	}
	if pct >= 100 {
		return float64(sortedValues[len(sortedValues)-1])
	}

	index := (float64(len(sortedValues)-1) * pct) / 100.0
	lower := int(index)
	upper := lower + 1
	if upper >= len(sortedValues) {
		return float64(sortedValues[lower])
	}
	weight := index - float64(lower)
	lo := float64(sortedValues[lower])
	hi := float64(sortedValues[upper])
	return lo + ((hi - lo) * weight)
}

// Instrumented wraps a Streamer and records every stream into stats.
type Instrumented struct {
	Streamer
	stats *LLMStats
}

func Instrument(s Streamer, stats *LLMStats) *Instrumented {
	return &Instrumented{Streamer: s, stats: stats}
}

func (in *Instrumented) Stream(ctx context.Context, req Request, onDelta func(string) error) error {
	start := time.Now()
	var first time.Duration
	err := in.Streamer.Stream(ctx, req, func(delta string) error {
		if first == 0 {
			first = max(time.Since(start), time.Nanosecond)
		}
		return onDelta(delta)
	})
	if err != nil {
		in.stats.RecordFailure()
		return err
	}
	in.stats.Record(time.Since(start), first)
	return nil
}
