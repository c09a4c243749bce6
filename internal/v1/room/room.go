package room

import (
	"sync"
	"time"

	"github.com/TheZedxD/HomeGameServer/internal/v1/game"
	"github.com/TheZedxD/HomeGameServer/internal/v1/types"
)

// Room aggregates one player set, an optional live game (state container +
// command bus), the host identity, and the disconnect-grace table. All
// mutating operations run under mu, which serializes work per room while
// leaving other rooms free to proceed in parallel.
type Room struct {
	id       types.RoomID
	gameID   types.GameID
	mode     string
	metadata map[string]string

	mu           sync.Mutex
	hostID       types.PlayerID
	players      *PlayerSet
	plugin       game.PluginDefinition
	bus          *game.CommandBus // nil when no game is running
	closing      bool
	createdAt    time.Time
	lastActivity time.Time

	// disconnectGrace maps a disconnected player's id to the instant the
	// socket dropped. Entries older than the grace window are purged by the
	// sweep with a synthetic leave.
	disconnectGrace map[types.PlayerID]time.Time

	// startDeadline implements the start single-flight window.
	startDeadline time.Time

	// stopForward cancels the state-forwarding goroutine for a live game.
	stopForward func()
}

func newRoom(id types.RoomID, plugin game.PluginDefinition, mode string, min, max int, metadata map[string]string, now time.Time) *Room {
	if metadata == nil {
		metadata = map[string]string{}
	}
	return &Room{
		id:              id,
		gameID:          plugin.ID,
		mode:            mode,
		metadata:        metadata,
		plugin:          plugin,
		players:         NewPlayerSet(min, max),
		createdAt:       now,
		lastActivity:    now,
		disconnectGrace: make(map[types.PlayerID]time.Time),
	}
}

// ID returns the room id.
func (r *Room) ID() types.RoomID { return r.id }

// snapshotLocked builds an immutable view. Caller must hold r.mu.
func (r *Room) snapshotLocked() *Snapshot {
	records := r.players.List()
	views := make([]PlayerView, 0, len(records))
	for _, rec := range records {
		views = append(views, PlayerView{
			ID:          rec.ID,
			DisplayName: rec.DisplayName,
			Ready:       rec.Ready,
			Role:        rec.Role,
			JoinedAt:    rec.JoinedAt,
		})
	}
	return &Snapshot{
		ID:           r.id,
		GameID:       r.gameID,
		Mode:         r.mode,
		HostID:       r.hostID,
		Players:      views,
		MinPlayers:   r.players.Min(),
		MaxPlayers:   r.players.Max(),
		Playing:      r.bus != nil,
		CreatedAt:    r.createdAt,
		LastActivity: r.lastActivity,
	}
}

// Snapshot returns an immutable view of the room.
func (r *Room) Snapshot() *Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// listEntryLocked builds a lobby row. Caller must hold r.mu.
func (r *Room) listEntryLocked() ListEntry {
	return ListEntry{
		RoomID:      r.id,
		GameType:    r.gameID,
		Mode:        r.mode,
		PlayerCount: r.players.Len(),
		MaxPlayers:  r.players.Max(),
		HostID:      r.hostID,
	}
}

// playersInfoLocked converts records to the engine's PlayerInfo slice.
// Caller must hold r.mu.
func (r *Room) playersInfoLocked() []game.PlayerInfo {
	records := r.players.List()
	out := make([]game.PlayerInfo, 0, len(records))
	for _, rec := range records {
		out = append(out, game.PlayerInfo{
			ID:          rec.ID,
			DisplayName: rec.DisplayName,
			Role:        rec.Role,
		})
	}
	return out
}

// detachGameLocked tears down the live game: cancels the forwarding
// goroutine and closes the container streams. Caller must hold r.mu.
func (r *Room) detachGameLocked() {
	if r.bus == nil {
		return
	}
	if r.stopForward != nil {
		r.stopForward()
		r.stopForward = nil
	}
	r.bus.Container().Close()
	r.bus = nil
}

// roomRollback captures enough room state to compensate a failed mutator.
type roomRollback struct {
	hostID        types.PlayerID
	players       *PlayerSet
	closing       bool
	lastActivity  time.Time
	startDeadline time.Time
}

// saveLocked snapshots mutable room state. Caller must hold r.mu.
func (r *Room) saveLocked() roomRollback {
	return roomRollback{
		hostID:        r.hostID,
		players:       r.players.clone(),
		closing:       r.closing,
		lastActivity:  r.lastActivity,
		startDeadline: r.startDeadline,
	}
}

// restoreLocked reinstates a saved snapshot after a partial mutation failed.
// Caller must hold r.mu.
func (r *Room) restoreLocked(saved roomRollback) {
	r.hostID = saved.hostID
	r.players = saved.players
	r.closing = saved.closing
	r.lastActivity = saved.lastActivity
	r.startDeadline = saved.startDeadline
}
