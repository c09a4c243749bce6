package transport

import (
	"context"
	"sync"
	"time"

	"k8s.io/utils/clock"

	"github.com/TheZedxD/HomeGameServer/internal/v1/metrics"
	"github.com/TheZedxD/HomeGameServer/internal/v1/room"
)

// listCoalesceWindow batches bursts of room churn into one updateRoomList
// frame.
const listCoalesceWindow = 50 * time.Millisecond

type roomListPayload struct {
	Version   uint64           `json:"version"`
	Rooms     []room.ListEntry `json:"rooms"`
	Timestamp string           `json:"timestamp"`
}

// listBroadcaster maintains the process-wide room list version and pushes
// coalesced updateRoomList frames. The version is monotonic: every broadcast
// carries a strictly greater version than the one before, so clients drop
// stale frames by comparing versions.
type listBroadcaster struct {
	clock     clock.Clock
	snapshot  func() []room.ListEntry
	broadcast func(event string, payload any)

	dirty chan struct{}

	mu      sync.Mutex
	version uint64
}

func newListBroadcaster(clk clock.Clock, snapshot func() []room.ListEntry, broadcast func(string, any)) *listBroadcaster {
	return &listBroadcaster{
		clock:     clk,
		snapshot:  snapshot,
		broadcast: broadcast,
		dirty:     make(chan struct{}, 1),
	}
}

// Current returns the list at the current version without bumping it. Sent
// to clients on connect.
func (b *listBroadcaster) Current() roomListPayload {
	b.mu.Lock()
	version := b.version
	b.mu.Unlock()
	return roomListPayload{Version: version, Rooms: b.snapshot(), Timestamp: b.timestamp()}
}

// MarkDirty schedules a broadcast. Calls landing inside the coalescing
// window fold into the already-scheduled one.
func (b *listBroadcaster) MarkDirty() {
	select {
	case b.dirty <- struct{}{}:
	default:
	}
}

// run flushes dirty marks one at a time. Serializing the flushes keeps a
// slow snapshot or broadcast from letting a lower-versioned frame overtake
// a higher one.
func (b *listBroadcaster) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-b.dirty:
		}

		select {
		case <-ctx.Done():
			return
		case <-b.clock.After(listCoalesceWindow):
		}

		// Fold marks that arrived during the window into this flush.
		select {
		case <-b.dirty:
		default:
		}

		b.mu.Lock()
		b.version++
		version := b.version
		b.mu.Unlock()

		metrics.RoomListVersion.Set(float64(version))
		b.broadcast(EvtUpdateRoomList, roomListPayload{Version: version, Rooms: b.snapshot(), Timestamp: b.timestamp()})
	}
}

func (b *listBroadcaster) timestamp() string {
	return b.clock.Now().UTC().Format(time.RFC3339)
}
