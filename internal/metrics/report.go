package metrics

import (
	"math"
	"sort"
	"time"
)

// Report is the end-of-run summary, derived on demand from the record
// store. Request sections appear in first-seen order; a report with zero
// sections is valid output for a run that produced no records.
type Report struct {
	GeneratedAt time.Time        `json:"generatedAt"`
	DurationMs  int64            `json:"durationMs"`
	Requests    []RequestSummary `json:"requests"`
}

// RequestSummary aggregates every record observed for one request name.
type RequestSummary struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`

	// AvgMs is the mean latency rounded half-up to the nearest millisecond.
	AvgMs int64 `json:"avgMs"`
	MinMs int64 `json:"minMs"`
	MaxMs int64 `json:"maxMs"`

	P50Ms int64 `json:"p50Ms"`
	P90Ms int64 `json:"p90Ms"`
	P95Ms int64 `json:"p95Ms"`
	P99Ms int64 `json:"p99Ms"`

	Codes []CodeCount `json:"codes"`
}

// CodeCount is one row of a status-code histogram.
type CodeCount struct {
	Code    int   `json:"code"`
	Count   int64 `json:"count"`
	Success bool  `json:"success"`
}

// TotalCount returns the number of records across all request sections.
func (r *Report) TotalCount() int64 {
	var n int64
	for _, req := range r.Requests {
		n += req.Count
	}
	return n
}

// Summarize derives the report from everything appended so far. Min, max,
// and average come from the raw records and are exact; percentiles come
// from the HDR histograms.
func (a *Aggregator) Summarize() *Report {
	a.mu.Lock()
	defer a.mu.Unlock()

	report := &Report{
		GeneratedAt: time.Now(),
		DurationMs:  time.Since(a.startTime).Milliseconds(),
		Requests:    make([]RequestSummary, 0, len(a.order)),
	}

	for _, name := range a.order {
		seq := a.records[name]
		if len(seq) == 0 {
			continue
		}

		var sum int64
		min := seq[0].latencyMs
		max := seq[0].latencyMs
		codes := make(map[int]int64)

		for _, e := range seq {
			sum += e.latencyMs
			if e.latencyMs < min {
				min = e.latencyMs
			}
			if e.latencyMs > max {
				max = e.latencyMs
			}
			codes[e.code]++
		}

		hist := a.hists[name]
		summary := RequestSummary{
			Name:  name,
			Count: int64(len(seq)),
			AvgMs: roundHalfUp(float64(sum) / float64(len(seq))),
			MinMs: min,
			MaxMs: max,
			P50Ms: hist.ValueAtQuantile(50),
			P90Ms: hist.ValueAtQuantile(90),
			P95Ms: hist.ValueAtQuantile(95),
			P99Ms: hist.ValueAtQuantile(99),
			Codes: codeCounts(codes),
		}
		report.Requests = append(report.Requests, summary)
	}

	return report
}

func codeCounts(codes map[int]int64) []CodeCount {
	out := make([]CodeCount, 0, len(codes))
	for code, count := range codes {
		out = append(out, CodeCount{
			Code:    code,
			Count:   count,
			Success: code == SuccessCode,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func roundHalfUp(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}
