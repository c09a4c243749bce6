package monitor

import (
	"sort"
	"sync"
	"time"
)

const latencyWindowSize = 512

// LatencyStats summarizes the recent event-handling latency distribution.
type LatencyStats struct {
	Count int     `json:"count"`
	P50Ms float64 `json:"p50Ms"`
	P95Ms float64 `json:"p95Ms"`
	P99Ms float64 `json:"p99Ms"`
}

// LatencyWindow is a fixed-size ring of recent latency observations. It
// trades exactness for constant memory; percentiles are computed over just
// the window, which is what the dashboard wants anyway.
type LatencyWindow struct {
	mu      sync.Mutex
	samples [latencyWindowSize]time.Duration
	next    int
	filled  int
}

// NewLatencyWindow creates an empty window.
func NewLatencyWindow() *LatencyWindow {
	return &LatencyWindow{}
}

// Observe records one latency sample.
func (w *LatencyWindow) Observe(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.samples[w.next] = d
	w.next = (w.next + 1) % latencyWindowSize
	if w.filled < latencyWindowSize {
		w.filled++
	}
}

// Stats computes p50/p95/p99 over the current window.
func (w *LatencyWindow) Stats() LatencyStats {
	w.mu.Lock()
	n := w.filled
	buf := make([]time.Duration, n)
	copy(buf, w.samples[:n])
	w.mu.Unlock()

	if n == 0 {
		return LatencyStats{}
	}

	sort.Slice(buf, func(i, j int) bool { return buf[i] < buf[j] })

	ms := func(d time.Duration) float64 {
		return float64(d) / float64(time.Millisecond)
	}
	idx := func(p float64) int {
		i := int(p * float64(n-1))
		if i >= n {
			i = n - 1
		}
		return i
	}

	return LatencyStats{
		Count: n,
		P50Ms: ms(buf[idx(0.50)]),
		P95Ms: ms(buf[idx(0.95)]),
		P99Ms: ms(buf[idx(0.99)]),
	}
}
