// Package store provides the snapshot repository: a best-effort sink for the
// latest game state of each room. The authoritative state always lives in
// memory; repository failures are logged and never fail a dispatch.
package store

import (
	"context"
	"errors"
	"sync"

	"github.com/TheZedxD/HomeGameServer/internal/v1/types"
)

// ErrNotFound is returned by Load when no snapshot exists for the room.
var ErrNotFound = errors.New("store: no snapshot for room")

// Repository persists (room_id -> latest game state) as opaque blobs. No
// format is mandated beyond round-trip equality under the plugin's
// serialization.
type Repository interface {
	Save(ctx context.Context, roomID types.RoomID, state []byte) error
	Load(ctx context.Context, roomID types.RoomID) ([]byte, error)
	Remove(ctx context.Context, roomID types.RoomID) error
	Close() error
}

// Memory is the default in-process repository.
type Memory struct {
	mu    sync.RWMutex
	blobs map[types.RoomID][]byte
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{blobs: make(map[types.RoomID][]byte)}
}

func (m *Memory) Save(_ context.Context, roomID types.RoomID, state []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	blob := make([]byte, len(state))
	copy(blob, state)
	m.blobs[roomID] = blob
	return nil
}

func (m *Memory) Load(_ context.Context, roomID types.RoomID) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	blob, ok := m.blobs[roomID]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(blob))
	copy(out, blob)
	return out, nil
}

func (m *Memory) Remove(_ context.Context, roomID types.RoomID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, roomID)
	return nil
}

func (m *Memory) Close() error { return nil }

// Len reports how many snapshots are held. Used by tests and the readiness
// probe.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}
