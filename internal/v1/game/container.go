package game

import (
	"context"
	"sync"

	"github.com/TheZedxD/HomeGameServer/internal/v1/logging"
	"go.uber.org/zap"
)

// StateChange is published after every successful Replace. Version is
// strictly monotonic for the lifetime of the container; subscribers use it to
// discard stale snapshots.
type StateChange struct {
	State   State
	Version uint64
	Context map[string]any
}

// RoundEnd is a non-state event a strategy can surface through the container
// (scoreboards, winner names for multi-round series) without widening the
// state blob.
type RoundEnd struct {
	Payload any
}

// StateContainer holds the authoritative state for one active game together
// with its version counter. Replacement is atomic with respect to observers:
// Snapshot never sees a version without its matching state.
//
// Event channels have a single consumer, the room manager's forwarding
// goroutine. Sends are non-blocking; a full channel drops the event with a
// log line rather than stalling a dispatch.
type StateContainer struct {
	mu      sync.Mutex
	state   State
	version uint64
	closed  bool

	stateCh chan StateChange
	roundCh chan RoundEnd
}

// NewStateContainer seeds a container with a plugin's initial state at
// version zero.
func NewStateContainer(initial State) *StateContainer {
	return &StateContainer{
		state:   initial,
		stateCh: make(chan StateChange, 64),
		roundCh: make(chan RoundEnd, 16),
	}
}

// Snapshot returns the current state and version.
func (c *StateContainer) Snapshot() (State, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.version
}

// Version returns the current version.
func (c *StateContainer) Version() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// Replace atomically increments the version, swaps the state, and publishes a
// StateChange. The caller (the command bus, under the room lock) guarantees
// next was produced from the current state.
func (c *StateContainer) Replace(next State, changeCtx map[string]any) StateChange {
	c.mu.Lock()
	c.version++
	c.state = next
	change := StateChange{State: next, Version: c.version, Context: changeCtx}
	closed := c.closed
	c.mu.Unlock()

	if closed {
		return change
	}
	select {
	case c.stateCh <- change:
	default:
		logging.Warn(context.Background(), "State change channel full, dropping event", zap.Uint64("version", change.Version))
	}
	return change
}

// EmitRoundEnd publishes a round-end event. The command bus calls this when
// a dispatch drives the state terminal; forwarded verbatim to subscribers.
func (c *StateContainer) EmitRoundEnd(payload any) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return
	}
	select {
	case c.roundCh <- RoundEnd{Payload: payload}:
	default:
		logging.Warn(context.Background(), "Round end channel full, dropping event")
	}
}

// StateChanges returns the state-change stream.
func (c *StateContainer) StateChanges() <-chan StateChange {
	return c.stateCh
}

// RoundEnds returns the round-end stream.
func (c *StateContainer) RoundEnds() <-chan RoundEnd {
	return c.roundCh
}

// Close tears down the event streams. Called by the room manager when the
// game is detached; Replace and EmitRoundEnd become no-op publishers after.
func (c *StateContainer) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()
	close(c.stateCh)
	close(c.roundCh)
}
