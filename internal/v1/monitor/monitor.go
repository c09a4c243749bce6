// Package monitor samples engine and process health on a fixed cadence and
// publishes the snapshot to connected clients. Process stats come from
// procfs and degrade gracefully on platforms without /proc.
package monitor

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/procfs"
	"go.uber.org/zap"
	"k8s.io/utils/clock"

	"github.com/TheZedxD/HomeGameServer/internal/v1/logging"
)

const defaultInterval = 3 * time.Second

// Snapshot is the serverMetrics payload.
type Snapshot struct {
	Rooms          int          `json:"rooms"`
	ActiveGames    int          `json:"activeGames"`
	Players        int          `json:"players"`
	GoroutineCount int          `json:"goroutines,omitempty"`
	MemoryRSSBytes uint64       `json:"memoryRssBytes,omitempty"`
	Load1          float64      `json:"load1,omitempty"`
	EventLatency   LatencyStats `json:"eventLatency"`
	Timestamp      string       `json:"timestamp"`
}

// Sampler periodically collects a Snapshot and hands it to the broadcast
// callback.
type Sampler struct {
	counts    func() (rooms, activeGames, players int)
	broadcast func(payload any)
	clock     clock.WithTicker
	interval  time.Duration
	latency   *LatencyWindow

	proc   procfs.Proc
	fs     procfs.FS
	procOK bool
	fsOK   bool
	warned bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a sampler. counts reads the engine's live totals; broadcast
// delivers each snapshot to clients.
func New(counts func() (int, int, int), broadcast func(payload any), clk clock.WithTicker, interval time.Duration) *Sampler {
	if clk == nil {
		clk = clock.RealClock{}
	}
	if interval <= 0 {
		interval = defaultInterval
	}

	s := &Sampler{
		counts:    counts,
		broadcast: broadcast,
		clock:     clk,
		interval:  interval,
		latency:   NewLatencyWindow(),
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	if proc, err := procfs.Self(); err == nil {
		s.proc = proc
		s.procOK = true
	}
	if fs, err := procfs.NewDefaultFS(); err == nil {
		s.fs = fs
		s.fsOK = true
	}
	return s
}

// Latency returns the window the gateway feeds with per-event durations.
func (s *Sampler) Latency() *LatencyWindow {
	return s.latency
}

// Run starts the sampling loop.
func (s *Sampler) Run() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := s.clock.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C():
				s.broadcast(s.Sample())
			}
		}
	}()
}

// Shutdown stops the sampling loop.
func (s *Sampler) Shutdown() {
	s.cancel()
	s.wg.Wait()
}

// Sample collects one snapshot. Process-level readings that fail are left
// zero rather than failing the sample.
func (s *Sampler) Sample() Snapshot {
	rooms, games, players := s.counts()
	snap := Snapshot{
		Rooms:          rooms,
		ActiveGames:    games,
		Players:        players,
		GoroutineCount: runtime.NumGoroutine(),
		EventLatency:   s.latency.Stats(),
		Timestamp:      s.clock.Now().UTC().Format(time.RFC3339),
	}

	if s.procOK {
		if stat, err := s.proc.Stat(); err == nil {
			snap.MemoryRSSBytes = uint64(stat.ResidentMemory())
		} else {
			s.warnOnce(err)
		}
	}
	if s.fsOK {
		if load, err := s.fs.LoadAvg(); err == nil {
			snap.Load1 = load.Load1
		} else {
			s.warnOnce(err)
		}
	}
	return snap
}

func (s *Sampler) warnOnce(err error) {
	if s.warned {
		return
	}
	s.warned = true
	logging.Warn(context.Background(), "Process stats unavailable, reporting engine counts only", zap.Error(err))
}
