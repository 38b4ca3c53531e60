// Package metrics accumulates per-request outcomes from concurrent
// simulated users and derives the end-of-run summary.
//
// The record store is the only mutable state shared between user timelines;
// every mutation goes through Append, which is safe for concurrent use.
// Raw records are kept per request name so the summary statistics are exact;
// HDR histograms are maintained alongside for cheap percentile reads.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// SuccessCode is the one status code reported as success. Classification is
// exact: other 2xx codes count as error-class outcomes.
const SuccessCode = 200

// Histogram range: 1ms to 10 minutes, 3 significant figures.
const (
	histMinMs     = 1
	histMaxMs     = 600_000
	histSigFigs   = 3
	snapshotNames = 64
)

// Record is one request outcome within one collection run. Records are
// immutable once appended.
type Record struct {
	Name      string
	Code      int
	LatencyMs int64
}

// entry is the stored form of a record; the name lives in the map key.
type entry struct {
	code      int
	latencyMs int64
}

// Aggregator accumulates records across all users for the lifetime of a run.
type Aggregator struct {
	mu      sync.Mutex
	records map[string][]entry
	order   []string
	hists   map[string]*hdrhistogram.Histogram
	global  *hdrhistogram.Histogram

	total   atomic.Int64
	success atomic.Int64
	failed  atomic.Int64

	startTime time.Time
}

// New creates an empty aggregator.
func New() *Aggregator {
	return &Aggregator{
		records:   make(map[string][]entry),
		hists:     make(map[string]*hdrhistogram.Histogram),
		global:    hdrhistogram.New(histMinMs, histMaxMs, histSigFigs),
		startTime: time.Now(),
	}
}

// Append adds one record to the sequence for its request name, creating the
// sequence on first use. Safe for concurrent use; no record is dropped,
// duplicated, or attributed to the wrong name.
func (a *Aggregator) Append(rec Record) {
	clamped := rec.LatencyMs
	if clamped < histMinMs {
		clamped = histMinMs
	}
	if clamped > histMaxMs {
		clamped = histMaxMs
	}

	a.mu.Lock()
	seq, exists := a.records[rec.Name]
	if !exists {
		a.order = append(a.order, rec.Name)
		a.hists[rec.Name] = hdrhistogram.New(histMinMs, histMaxMs, histSigFigs)
	}
	a.records[rec.Name] = append(seq, entry{code: rec.Code, latencyMs: rec.LatencyMs})
	a.hists[rec.Name].RecordValue(clamped)
	a.global.RecordValue(clamped)
	a.mu.Unlock()

	a.total.Add(1)
	if rec.Code == SuccessCode {
		a.success.Add(1)
	} else {
		a.failed.Add(1)
	}
}

// Total returns the number of records appended so far.
func (a *Aggregator) Total() int64 {
	return a.total.Load()
}

// Snapshot is a point-in-time view of the aggregate counters, cheap enough
// to take on every progress refresh.
type Snapshot struct {
	Total     int64
	Success   int64
	Failed    int64
	ErrorRate float64
	Elapsed   time.Duration

	P50Ms int64
	P95Ms int64
	P99Ms int64
	MaxMs int64

	Names []NameCount
}

// NameCount pairs a request name with its record count, in first-seen order.
type NameCount struct {
	Name  string
	Count int64
}

// Snapshot returns the current counters and global latency percentiles.
func (a *Aggregator) Snapshot() Snapshot {
	s := Snapshot{
		Total:   a.total.Load(),
		Success: a.success.Load(),
		Failed:  a.failed.Load(),
		Elapsed: time.Since(a.startTime),
	}
	if s.Total > 0 {
		s.ErrorRate = float64(s.Failed) / float64(s.Total)
	}

	a.mu.Lock()
	if a.global.TotalCount() > 0 {
		s.P50Ms = a.global.ValueAtQuantile(50)
		s.P95Ms = a.global.ValueAtQuantile(95)
		s.P99Ms = a.global.ValueAtQuantile(99)
		s.MaxMs = a.global.Max()
	}
	names := a.order
	if len(names) > snapshotNames {
		names = names[:snapshotNames]
	}
	s.Names = make([]NameCount, 0, len(names))
	for _, name := range names {
		s.Names = append(s.Names, NameCount{Name: name, Count: int64(len(a.records[name]))})
	}
	a.mu.Unlock()

	return s
}
