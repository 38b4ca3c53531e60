package metrics

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"
)

func TestNewAggregator(t *testing.T) {
	agg := New()
	if agg == nil {
		t.Fatal("New() returned nil")
	}

	if agg.Total() != 0 {
		t.Errorf("Initial Total() = %d, want 0", agg.Total())
	}

	report := agg.Summarize()
	if len(report.Requests) != 0 {
		t.Errorf("Empty aggregator produced %d sections, want 0", len(report.Requests))
	}
	if report.TotalCount() != 0 {
		t.Errorf("Empty report TotalCount = %d, want 0", report.TotalCount())
	}
}

func TestAggregator_SummarizeLatencies(t *testing.T) {
	tests := []struct {
		name      string
		latencies []int64
		wantAvg   int64
		wantMin   int64
		wantMax   int64
	}{
		{
			name:      "exact average",
			latencies: []int64{10, 20, 30},
			wantAvg:   20,
			wantMin:   10,
			wantMax:   30,
		},
		{
			name:      "half rounds up",
			latencies: []int64{10, 11},
			wantAvg:   11,
			wantMin:   10,
			wantMax:   11,
		},
		{
			name:      "single record",
			latencies: []int64{42},
			wantAvg:   42,
			wantMin:   42,
			wantMax:   42,
		},
		{
			name:      "zero latency stays exact",
			latencies: []int64{0, 2},
			wantAvg:   1,
			wantMin:   0,
			wantMax:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := New()
			for _, lat := range tt.latencies {
				agg.Append(Record{Name: "Checkout", Code: 200, LatencyMs: lat})
			}

			report := agg.Summarize()
			if len(report.Requests) != 1 {
				t.Fatalf("Expected 1 section, got %d", len(report.Requests))
			}

			s := report.Requests[0]
			if s.AvgMs != tt.wantAvg {
				t.Errorf("AvgMs = %d, want %d", s.AvgMs, tt.wantAvg)
			}
			if s.MinMs != tt.wantMin {
				t.Errorf("MinMs = %d, want %d", s.MinMs, tt.wantMin)
			}
			if s.MaxMs != tt.wantMax {
				t.Errorf("MaxMs = %d, want %d", s.MaxMs, tt.wantMax)
			}
			if s.Count != int64(len(tt.latencies)) {
				t.Errorf("Count = %d, want %d", s.Count, len(tt.latencies))
			}
		})
	}
}

func TestAggregator_StatusCodeHistogram(t *testing.T) {
	agg := New()
	for _, code := range []int{200, 200, 404, 200, 500} {
		agg.Append(Record{Name: "Fetch", Code: code, LatencyMs: 5})
	}

	report := agg.Summarize()
	if len(report.Requests) != 1 {
		t.Fatalf("Expected 1 section, got %d", len(report.Requests))
	}

	codes := report.Requests[0].Codes
	want := []CodeCount{
		{Code: 200, Count: 3, Success: true},
		{Code: 404, Count: 1, Success: false},
		{Code: 500, Count: 1, Success: false},
	}

	if len(codes) != len(want) {
		t.Fatalf("Expected %d code rows, got %d: %+v", len(want), len(codes), codes)
	}
	for i, w := range want {
		if codes[i] != w {
			t.Errorf("Code row %d = %+v, want %+v", i, codes[i], w)
		}
	}
}

func TestAggregator_Only200IsSuccess(t *testing.T) {
	agg := New()
	// 201 and 204 are successful HTTP responses but are still error-class
	// here: the classification is exactly 200.
	for _, code := range []int{200, 201, 204, 302} {
		agg.Append(Record{Name: "Create", Code: code, LatencyMs: 5})
	}

	report := agg.Summarize()
	for _, cc := range report.Requests[0].Codes {
		wantSuccess := cc.Code == 200
		if cc.Success != wantSuccess {
			t.Errorf("Code %d Success = %v, want %v", cc.Code, cc.Success, wantSuccess)
		}
	}

	snap := agg.Snapshot()
	if snap.Success != 1 {
		t.Errorf("Snapshot Success = %d, want 1", snap.Success)
	}
	if snap.Failed != 3 {
		t.Errorf("Snapshot Failed = %d, want 3", snap.Failed)
	}
}

func TestAggregator_FirstSeenOrder(t *testing.T) {
	agg := New()
	sequence := []string{"Login", "Browse", "Checkout", "Browse", "Login"}
	for _, name := range sequence {
		agg.Append(Record{Name: name, Code: 200, LatencyMs: 1})
	}

	report := agg.Summarize()
	wantOrder := []string{"Login", "Browse", "Checkout"}
	if len(report.Requests) != len(wantOrder) {
		t.Fatalf("Expected %d sections, got %d", len(wantOrder), len(report.Requests))
	}
	for i, want := range wantOrder {
		if report.Requests[i].Name != want {
			t.Errorf("Section %d = %q, want %q", i, report.Requests[i].Name, want)
		}
	}
}

func TestAggregator_ConcurrentAppend(t *testing.T) {
	agg := New()

	const (
		goroutines        = 16
		appendsPerRoutine = 500
	)
	names := []string{"Login", "Browse", "Checkout", "Logout"}

	// Tally expected per-name counts while appending from many goroutines
	// in randomized order.
	var mu sync.Mutex
	expected := make(map[string]int64)

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))

			local := make(map[string]int64)
			for i := 0; i < appendsPerRoutine; i++ {
				name := names[rng.Intn(len(names))]
				agg.Append(Record{Name: name, Code: 200, LatencyMs: int64(rng.Intn(100))})
				local[name]++
			}

			mu.Lock()
			for name, n := range local {
				expected[name] += n
			}
			mu.Unlock()
		}(int64(g))
	}
	wg.Wait()

	if agg.Total() != goroutines*appendsPerRoutine {
		t.Errorf("Total() = %d, want %d", agg.Total(), goroutines*appendsPerRoutine)
	}

	report := agg.Summarize()
	got := make(map[string]int64)
	for _, s := range report.Requests {
		got[s.Name] = s.Count
	}

	for name, want := range expected {
		if got[name] != want {
			t.Errorf("Count for %q = %d, want %d", name, got[name], want)
		}
	}
	if report.TotalCount() != goroutines*appendsPerRoutine {
		t.Errorf("Report TotalCount = %d, want %d", report.TotalCount(), goroutines*appendsPerRoutine)
	}
}

func TestAggregator_Percentiles(t *testing.T) {
	agg := New()
	for i := 1; i <= 100; i++ {
		agg.Append(Record{Name: "Sweep", Code: 200, LatencyMs: int64(i)})
	}

	report := agg.Summarize()
	s := report.Requests[0]

	// HDR histograms are approximate within their significant figures;
	// allow a small tolerance around the exact quantiles.
	approx := func(got, want int64) bool {
		diff := got - want
		if diff < 0 {
			diff = -diff
		}
		return diff <= 2
	}

	if !approx(s.P50Ms, 50) {
		t.Errorf("P50Ms = %d, want ~50", s.P50Ms)
	}
	if !approx(s.P90Ms, 90) {
		t.Errorf("P90Ms = %d, want ~90", s.P90Ms)
	}
	if !approx(s.P99Ms, 99) {
		t.Errorf("P99Ms = %d, want ~99", s.P99Ms)
	}
}

func TestAggregator_Snapshot(t *testing.T) {
	agg := New()

	snap := agg.Snapshot()
	if snap.Total != 0 || snap.ErrorRate != 0 {
		t.Errorf("Empty snapshot = %+v, want zero counters", snap)
	}

	for i := 0; i < 8; i++ {
		code := 200
		if i%4 == 3 {
			code = 503
		}
		agg.Append(Record{Name: fmt.Sprintf("Step %d", i%2), Code: code, LatencyMs: 10})
	}

	snap = agg.Snapshot()
	if snap.Total != 8 {
		t.Errorf("Snapshot Total = %d, want 8", snap.Total)
	}
	if snap.Success != 6 {
		t.Errorf("Snapshot Success = %d, want 6", snap.Success)
	}
	if snap.Failed != 2 {
		t.Errorf("Snapshot Failed = %d, want 2", snap.Failed)
	}
	if snap.ErrorRate != 0.25 {
		t.Errorf("Snapshot ErrorRate = %v, want 0.25", snap.ErrorRate)
	}
	if len(snap.Names) != 2 {
		t.Errorf("Snapshot Names = %+v, want 2 entries", snap.Names)
	}
}

func TestRoundHalfUp(t *testing.T) {
	tests := []struct {
		in   float64
		want int64
	}{
		{in: 10.0, want: 10},
		{in: 10.4, want: 10},
		{in: 10.5, want: 11},
		{in: 10.6, want: 11},
		{in: 0.5, want: 1},
	}
	for _, tt := range tests {
		if got := roundHalfUp(tt.in); got != tt.want {
			t.Errorf("roundHalfUp(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
