package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clocktesting "k8s.io/utils/clock/testing"
)

func TestLatencyWindow_Empty(t *testing.T) {
	w := NewLatencyWindow()
	assert.Equal(t, LatencyStats{}, w.Stats())
}

func TestLatencyWindow_Percentiles(t *testing.T) {
	w := NewLatencyWindow()
	for i := 1; i <= 100; i++ {
		w.Observe(time.Duration(i) * time.Millisecond)
	}

	stats := w.Stats()
	assert.Equal(t, 100, stats.Count)
	assert.InDelta(t, 50, stats.P50Ms, 1)
	assert.InDelta(t, 95, stats.P95Ms, 1)
	assert.InDelta(t, 99, stats.P99Ms, 1)
}

func TestLatencyWindow_RingEviction(t *testing.T) {
	w := NewLatencyWindow()

	// Fill the ring with slow samples, then overwrite every slot with fast
	// ones. The slow tail must be gone from the stats.
	for range latencyWindowSize {
		w.Observe(time.Second)
	}
	for range latencyWindowSize {
		w.Observe(time.Millisecond)
	}

	stats := w.Stats()
	assert.Equal(t, latencyWindowSize, stats.Count)
	assert.InDelta(t, 1, stats.P99Ms, 0.01)
}

func TestSamplerSample(t *testing.T) {
	clk := clocktesting.NewFakeClock(time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC))
	s := New(func() (int, int, int) { return 4, 2, 7 }, nil, clk, 0)
	s.Latency().Observe(8 * time.Millisecond)

	snap := s.Sample()
	assert.Equal(t, 4, snap.Rooms)
	assert.Equal(t, 2, snap.ActiveGames)
	assert.Equal(t, 7, snap.Players)
	assert.Equal(t, "2026-03-14T09:26:53Z", snap.Timestamp)
	assert.Equal(t, 1, snap.EventLatency.Count)
	assert.Positive(t, snap.GoroutineCount)
}

func TestSamplerRunBroadcasts(t *testing.T) {
	clk := clocktesting.NewFakeClock(time.Now())
	got := make(chan any, 4)
	s := New(func() (int, int, int) { return 1, 0, 1 }, func(payload any) { got <- payload }, clk, time.Second)

	s.Run()
	defer s.Shutdown()

	require.Eventually(t, func() bool {
		clk.Step(time.Second)
		select {
		case payload := <-got:
			snap, ok := payload.(Snapshot)
			return ok && snap.Rooms == 1
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}
