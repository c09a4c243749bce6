package room

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"k8s.io/utils/clock"

	"github.com/TheZedxD/HomeGameServer/internal/v1/game"
	"github.com/TheZedxD/HomeGameServer/internal/v1/logging"
	"github.com/TheZedxD/HomeGameServer/internal/v1/metrics"
	"github.com/TheZedxD/HomeGameServer/internal/v1/store"
	"github.com/TheZedxD/HomeGameServer/internal/v1/types"
)

// Config tunes the manager's lifecycle windows. Zero values take the
// defaults below.
type Config struct {
	GraceWindow   time.Duration // disconnected seat hold, default 5m
	IdleWindow    time.Duration // empty-room reap threshold, default 30m
	SweepInterval time.Duration // janitor cadence, default 60s
	StartWindow   time.Duration // start single-flight window, default 2s
	CloseDelay    time.Duration // roomClosing -> roomClosed lead, default 1s
	Clock         clock.WithTicker
}

func (c *Config) applyDefaults() {
	if c.GraceWindow <= 0 {
		c.GraceWindow = 5 * time.Minute
	}
	if c.IdleWindow <= 0 {
		c.IdleWindow = 30 * time.Minute
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = 60 * time.Second
	}
	if c.StartWindow <= 0 {
		c.StartWindow = 2 * time.Second
	}
	if c.CloseDelay <= 0 {
		c.CloseDelay = 1 * time.Second
	}
	if c.Clock == nil {
		c.Clock = clock.RealClock{}
	}
}

// Manager owns all rooms and routes every mutating operation through the
// owning room's lock. It is the single source of truth for player -> room
// membership; the gateway never tracks a connection's room itself.
//
// Lock ordering: the rooms map lock (m.mu) and a room lock (r.mu) are never
// held while acquiring the other in reverse. Mutators fetch the room under
// m.mu, release, then take r.mu; map mutations happen after r.mu is
// released. Read-only iteration (lobby listing, sweeps) may take r.mu while
// holding m.mu read-locked because no path acquires m.mu while holding r.mu.
type Manager struct {
	registry *game.Registry
	repo     store.Repository
	clock    clock.WithTicker
	cfg      Config

	mu       sync.RWMutex
	rooms    map[types.RoomID]*Room
	byPlayer map[types.PlayerID]types.RoomID

	events chan Event

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewManager creates a manager. Call Run to start the sweep loop and
// Shutdown to stop all background work.
func NewManager(registry *game.Registry, repo store.Repository, cfg Config) *Manager {
	cfg.applyDefaults()
	m := &Manager{
		registry: registry,
		repo:     repo,
		clock:    cfg.Clock,
		cfg:      cfg,
		rooms:    make(map[types.RoomID]*Room),
		byPlayer: make(map[types.PlayerID]types.RoomID),
		events:   make(chan Event, 1024),
	}
	m.ctx, m.cancel = context.WithCancel(context.Background())
	return m
}

// Events returns the manager's notification stream. A single consumer (the
// transport gateway) drains it; per-room event order follows emit order.
func (m *Manager) Events() <-chan Event {
	return m.events
}

// Run starts the periodic sweep.
func (m *Manager) Run() {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := m.clock.NewTicker(m.cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-m.ctx.Done():
				return
			case <-ticker.C():
				m.Sweep()
			}
		}
	}()
}

// Shutdown cancels background work and waits for it to drain.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.wg.Wait()
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) room(roomID types.RoomID) *Room {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rooms[roomID]
}

// GameState returns the live game state of a room, if one is running. Used
// by the gateway to resync reconnecting clients.
func (m *Manager) GameState(roomID types.RoomID) (game.State, uint64, bool) {
	r := m.room(roomID)
	if r == nil {
		return nil, 0, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bus == nil {
		return nil, 0, false
	}
	state, version := r.bus.Container().Snapshot()
	return state, version, true
}

// RoomOf returns the room a player currently occupies.
func (m *Manager) RoomOf(playerID types.PlayerID) (types.RoomID, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byPlayer[playerID]
	return id, ok
}

// Snapshot returns an immutable view of a room.
func (m *Manager) Snapshot(roomID types.RoomID) (*Snapshot, error) {
	r := m.room(roomID)
	if r == nil {
		return nil, types.ErrRoomNotFound
	}
	return r.Snapshot(), nil
}

// ListLobby returns the publicly listed rooms: LAN mode with a free seat.
// Invite-only p2p rooms never appear.
func (m *Manager) ListLobby() []ListEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ListEntry, 0, len(m.rooms))
	for _, r := range m.rooms {
		r.mu.Lock()
		if r.mode == types.ModeLAN && !r.closing && r.players.Len() < r.players.Max() {
			out = append(out, r.listEntryLocked())
		}
		r.mu.Unlock()
	}
	return out
}

// Counts reports rooms, rooms with a live game, and total seated players.
// Used by the resource monitor.
func (m *Manager) Counts() (rooms, activeGames, players int) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.rooms {
		r.mu.Lock()
		rooms++
		if r.bus != nil {
			activeGames++
		}
		players += r.players.Len()
		r.mu.Unlock()
	}
	return rooms, activeGames, players
}

// CreateParams carries everything needed to allocate a room.
type CreateParams struct {
	HostID          types.PlayerID
	HostName        string
	GameID          types.GameID
	Mode            string
	PreferredRoomID types.RoomID // normalized invite code, p2p only
	MinPlayers      int          // 0 = plugin default
	MaxPlayers      int          // 0 = plugin default
	Metadata        map[string]string
}

// CreateRoom allocates a room and seats the host as ready. In p2p mode a
// preferred room id that already exists routes to JoinRoom instead of
// failing; in lan mode a preferred id is ignored and a server id is
// generated.
func (m *Manager) CreateRoom(p CreateParams) (*Snapshot, error) {
	def, ok := m.registry.Lookup(p.GameID)
	if !ok {
		return nil, types.ErrUnknownGame
	}
	if p.Mode == "" {
		p.Mode = types.ModeLAN
	}
	if p.Mode != types.ModeLAN && p.Mode != types.ModeP2P {
		return nil, types.E(types.KindValidation, "invalid_mode", "mode must be lan or p2p")
	}
	if p.HostID == "" {
		return nil, types.E(types.KindValidation, "missing_player_id", "host id is required")
	}

	// Duplicate invite code routes to join rather than conflicting.
	if p.Mode == types.ModeP2P && p.PreferredRoomID != "" {
		if existing := m.room(p.PreferredRoomID); existing != nil {
			return m.JoinRoom(p.PreferredRoomID, p.HostID, p.HostName, p.Metadata)
		}
	}

	// A player occupies at most one room; creating implies leaving.
	if current, ok := m.RoomOf(p.HostID); ok {
		_ = m.LeaveRoom(current, p.HostID, "joined another room")
	}

	min, max := def.MinPlayers, def.MaxPlayers
	if p.MinPlayers > 0 {
		min = p.MinPlayers
	}
	if p.MaxPlayers > 0 {
		max = p.MaxPlayers
	}
	if min < 1 || max < min {
		return nil, types.E(types.KindValidation, "invalid_player_limits", "player limits are inconsistent")
	}

	now := m.clock.Now()

	var r *Room
	m.mu.Lock()
	for {
		id := p.PreferredRoomID
		if p.Mode == types.ModeLAN || id == "" {
			id = types.NewServerRoomID()
		}
		if _, exists := m.rooms[id]; exists {
			if p.Mode == types.ModeP2P {
				// Lost a race against another create with the same code.
				m.mu.Unlock()
				return m.JoinRoom(id, p.HostID, p.HostName, p.Metadata)
			}
			continue // regenerate
		}
		r = newRoom(id, def, p.Mode, min, max, p.Metadata, now)
		r.hostID = p.HostID
		if _, err := r.players.Add(PlayerRecord{
			ID:          p.HostID,
			DisplayName: p.HostName,
			Ready:       true,
			JoinedAt:    now,
		}); err != nil {
			m.mu.Unlock()
			return nil, err
		}
		m.rooms[id] = r
		m.byPlayer[p.HostID] = id
		break
	}
	m.mu.Unlock()

	metrics.ActiveRooms.Inc()
	metrics.RoomPlayers.WithLabelValues(string(r.id)).Set(1)

	snap := r.Snapshot()
	logging.Info(logging.WithRoom(context.Background(), string(r.id)), "Room created",
		zap.String("gameId", string(p.GameID)), zap.String("mode", p.Mode), zap.String("hostId", string(p.HostID)))
	m.emit(Event{Kind: EventRoomCreated, RoomID: r.id, Room: snap})
	return snap, nil
}

// JoinRoom seats a player in an existing room.
func (m *Manager) JoinRoom(roomID types.RoomID, playerID types.PlayerID, displayName string, metadata map[string]string) (*Snapshot, error) {
	if current, ok := m.RoomOf(playerID); ok && current != roomID {
		_ = m.LeaveRoom(current, playerID, "joined another room")
	}

	var snap *Snapshot
	err := m.withRoom(roomID, playerID, "joinGame", func(r *Room) error {
		if r.closing {
			return types.ErrRoomClosing
		}
		if _, err := r.players.Add(PlayerRecord{
			ID:          playerID,
			DisplayName: displayName,
			Metadata:    metadata,
			JoinedAt:    m.clock.Now(),
		}); err != nil {
			return err
		}
		delete(r.disconnectGrace, playerID)
		r.lastActivity = m.clock.Now()
		snap = r.snapshotLocked()
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.byPlayer[playerID] = roomID
	m.mu.Unlock()

	metrics.RoomPlayers.WithLabelValues(string(roomID)).Set(float64(len(snap.Players)))
	m.emit(Event{Kind: EventRoomUpdated, RoomID: roomID, Room: snap})
	return snap, nil
}

// LeaveRoom removes a player. The last leave deletes the room immediately;
// a departing host hands the room to the earliest-joined survivor. Leaving
// mid-game below the plugin's minimum closes the room.
func (m *Manager) LeaveRoom(roomID types.RoomID, playerID types.PlayerID, reason string) error {
	var (
		snap       *Snapshot
		leaverName string
		empty      bool
		belowMin   bool
	)
	err := m.withRoom(roomID, playerID, "leaveGame", func(r *Room) error {
		delete(r.disconnectGrace, playerID)
		rec := r.players.Remove(playerID)
		if rec == nil {
			return types.ErrUnknownPlayer
		}
		leaverName = rec.DisplayName

		empty = r.players.Len() == 0
		if empty {
			r.closing = true
		} else {
			if r.hostID == playerID {
				first, _ := r.players.First()
				r.hostID = first
			}
			if r.bus != nil && r.players.Len() < r.players.Min() {
				belowMin = true
				r.closing = true
			}
		}
		r.lastActivity = m.clock.Now()
		snap = r.snapshotLocked()
		return nil
	})
	if err != nil {
		return err
	}

	m.mu.Lock()
	if m.byPlayer[playerID] == roomID {
		delete(m.byPlayer, playerID)
	}
	m.mu.Unlock()

	m.emit(Event{Kind: EventPlayerLeft, RoomID: roomID, PlayerID: playerID, PlayerName: leaverName, Reason: reason})

	switch {
	case empty:
		return m.deleteRoom(roomID, "room empty")
	case belowMin:
		return m.deleteRoom(roomID, "not enough players to continue")
	default:
		metrics.RoomPlayers.WithLabelValues(string(roomID)).Set(float64(len(snap.Players)))
		m.emit(Event{Kind: EventRoomUpdated, RoomID: roomID, Room: snap})
		return nil
	}
}

// SetReady sets a player's ready flag. Ready changes are ignored while a
// game is running.
func (m *Manager) SetReady(roomID types.RoomID, playerID types.PlayerID, ready bool) (*Snapshot, error) {
	return m.readyOp(roomID, playerID, "playerReady", func(s *PlayerSet) error {
		_, err := s.SetReady(playerID, ready)
		return err
	})
}

// ToggleReady flips a player's ready flag. Ignored while a game is running.
func (m *Manager) ToggleReady(roomID types.RoomID, playerID types.PlayerID) (*Snapshot, error) {
	return m.readyOp(roomID, playerID, "playerReady", func(s *PlayerSet) error {
		_, err := s.ToggleReady(playerID)
		return err
	})
}

func (m *Manager) readyOp(roomID types.RoomID, playerID types.PlayerID, action string, mutate func(*PlayerSet) error) (*Snapshot, error) {
	var snap *Snapshot
	var changed bool
	err := m.withRoom(roomID, playerID, action, func(r *Room) error {
		if r.bus != nil {
			snap = r.snapshotLocked()
			return nil
		}
		if err := mutate(r.players); err != nil {
			return err
		}
		changed = true
		r.lastActivity = m.clock.Now()
		snap = r.snapshotLocked()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		m.emit(Event{Kind: EventRoomUpdated, RoomID: roomID, Room: snap})
	}
	return snap, nil
}

// StartGame instantiates the room's rules plugin, wires the command bus, and
// begins forwarding state changes. Host-only; guarded by a short
// single-flight window against double starts.
func (m *Manager) StartGame(roomID types.RoomID, playerID types.PlayerID, options map[string]any) error {
	var (
		container *game.StateContainer
		snap      *Snapshot
		state     game.State
		version   uint64
	)
	err := m.withRoom(roomID, playerID, "startGame", func(r *Room) error {
		if r.hostID != playerID {
			return types.ErrNotHost
		}
		if r.bus != nil {
			return types.ErrGameInProgress
		}
		now := m.clock.Now()
		if now.Before(r.startDeadline) {
			return types.ErrAlreadyStarting
		}
		if !r.players.ReadyToStart() {
			return types.ErrNotEnoughPlayers
		}
		r.startDeadline = now.Add(m.cfg.StartWindow)

		instance, err := r.plugin.Create(game.RoomContext{
			RoomID:   r.id,
			Players:  r.playersInfoLocked(),
			Metadata: r.metadata,
			Options:  options,
		})
		if err != nil {
			r.startDeadline = time.Time{}
			return types.Wrap(types.KindFatal, "plugin_create_failed", "rules plugin failed to create a game", err)
		}

		for id, role := range instance.Roles {
			if rec, ok := r.players.Get(id); ok {
				rec.Role = role
			}
		}

		container = instance.Container
		r.bus = game.NewCommandBus(r.gameID, container, instance.Strategies)

		fwdCtx, cancel := context.WithCancel(m.ctx)
		r.stopForward = cancel
		m.wg.Add(1)
		go m.forwardGameEvents(fwdCtx, r.id, container)

		state, version = container.Snapshot()
		r.lastActivity = now
		snap = r.snapshotLocked()
		return nil
	})
	if err != nil {
		return err
	}

	metrics.ActiveGames.Inc()
	m.persistSnapshot(roomID, state)

	logging.Info(logging.WithRoom(context.Background(), string(roomID)), "Game started",
		zap.String("gameId", string(snap.GameID)), zap.Int("players", len(snap.Players)))
	m.emit(Event{Kind: EventGameStarted, RoomID: roomID, Room: snap, State: state, Version: version})
	return nil
}

// SubmitCommand dispatches a command against the room's live game.
func (m *Manager) SubmitCommand(roomID types.RoomID, desc game.CommandDescriptor) (game.StateChange, error) {
	var change game.StateChange
	var snap *Snapshot
	err := m.withRoom(roomID, desc.PlayerID, "submitMove", func(r *Room) error {
		if r.bus == nil {
			return types.ErrGameNotActive
		}
		var err error
		change, err = r.bus.Dispatch(desc, r.playersInfoLocked())
		if err != nil {
			return err
		}
		r.lastActivity = m.clock.Now()
		snap = r.snapshotLocked()
		return nil
	})
	if err != nil {
		return game.StateChange{}, err
	}
	m.emit(Event{Kind: EventRoomUpdated, RoomID: roomID, Room: snap})
	return change, nil
}

// UndoLast reverses the most recent undoable command in the room.
func (m *Manager) UndoLast(roomID types.RoomID, playerID types.PlayerID) error {
	return m.withRoom(roomID, playerID, "undoMove", func(r *Room) error {
		if r.bus == nil {
			return types.ErrGameNotActive
		}
		if _, err := r.bus.UndoLast(playerID); err != nil {
			return err
		}
		r.lastActivity = m.clock.Now()
		return nil
	})
}

// Disconnect records a dropped connection. Mid-game the seat is held in the
// grace table for the grace window; in the lobby it is an immediate leave.
func (m *Manager) Disconnect(playerID types.PlayerID) {
	roomID, ok := m.RoomOf(playerID)
	if !ok {
		return
	}
	r := m.room(roomID)
	if r == nil {
		return
	}

	r.mu.Lock()
	if r.bus != nil && !r.closing {
		if _, seated := r.players.Get(playerID); seated {
			r.disconnectGrace[playerID] = m.clock.Now()
			r.mu.Unlock()
			logging.Info(logging.WithRoom(logging.WithPlayer(context.Background(), string(playerID)), string(roomID)),
				"Player disconnected mid-game, seat held")
			return
		}
	}
	r.mu.Unlock()

	_ = m.LeaveRoom(roomID, playerID, "player disconnected")
}

// Reconnect resumes a player's membership after a reconnect within the grace
// window, returning the room to re-subscribe to.
func (m *Manager) Reconnect(playerID types.PlayerID) (types.RoomID, bool) {
	roomID, ok := m.RoomOf(playerID)
	if !ok {
		return "", false
	}
	r := m.room(roomID)
	if r == nil {
		return "", false
	}
	r.mu.Lock()
	delete(r.disconnectGrace, playerID)
	r.mu.Unlock()
	return roomID, true
}

// DeleteRoom tears a room down on host decision or server shutdown.
func (m *Manager) DeleteRoom(roomID types.RoomID, reason string) error {
	return m.deleteRoom(roomID, reason)
}

// Sweep purges expired disconnect-grace entries (synthetic leave) and reaps
// empty rooms that have been idle past the idle window.
func (m *Manager) Sweep() {
	now := m.clock.Now()

	m.mu.RLock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.mu.RUnlock()

	for _, r := range rooms {
		var expired []types.PlayerID
		r.mu.Lock()
		for pid, droppedAt := range r.disconnectGrace {
			if now.Sub(droppedAt) >= m.cfg.GraceWindow {
				delete(r.disconnectGrace, pid)
				expired = append(expired, pid)
			}
		}
		idle := r.players.Len() == 0 && now.Sub(r.lastActivity) >= m.cfg.IdleWindow
		r.mu.Unlock()

		for _, pid := range expired {
			if err := m.LeaveRoom(r.id, pid, "disconnect grace expired"); err != nil {
				logging.Warn(logging.WithRoom(context.Background(), string(r.id)), "Sweep leave failed",
					zap.String("playerId", string(pid)), zap.Error(err))
			}
		}
		if idle {
			_ = m.deleteRoom(r.id, "room idle")
		}
	}
}

// withRoom runs fn under the room lock with compensating rollback: if fn
// panics partway through a mutation, the room's pre-call state is restored
// and the failure is surfaced as a fatal error instead of crashing the
// process.
func (m *Manager) withRoom(roomID types.RoomID, playerID types.PlayerID, action string, fn func(r *Room) error) error {
	r := m.room(roomID)
	if r == nil {
		return types.ErrRoomNotFound.WithAction(action)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	saved := r.saveLocked()
	var err error
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				r.restoreLocked(saved)
				logging.Error(logging.WithRoom(logging.WithPlayer(context.Background(), string(playerID)), string(roomID)),
					"Room operation panicked, rolled back",
					zap.String("action", action), zap.Any("panic", rec))
				err = types.Wrap(types.KindFatal, "internal_error", "operation failed and was rolled back",
					fmt.Errorf("panic: %v", rec))
			}
		}()
		err = fn(r)
	}()
	var appErr *types.Error
	if errors.As(err, &appErr) && appErr.Action == "" {
		return appErr.WithAction(action)
	}
	return err
}

// deleteRoom removes the room from the map, detaches the game, notifies the
// repository, and emits roomClosing (when members remain) followed by
// roomRemoved after the close delay.
func (m *Manager) deleteRoom(roomID types.RoomID, reason string) error {
	m.mu.Lock()
	r, ok := m.rooms[roomID]
	if !ok {
		m.mu.Unlock()
		return types.ErrRoomNotFound
	}
	delete(m.rooms, roomID)
	for pid, rid := range m.byPlayer {
		if rid == roomID {
			delete(m.byPlayer, pid)
		}
	}
	m.mu.Unlock()

	r.mu.Lock()
	r.closing = true
	hadGame := r.bus != nil
	hadMembers := r.players.Len() > 0
	r.detachGameLocked()
	r.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := m.repo.Remove(ctx, roomID); err != nil {
		logging.Warn(logging.WithRoom(context.Background(), string(roomID)), "Repository remove failed", zap.Error(err))
	}
	cancel()

	metrics.ActiveRooms.Dec()
	metrics.RoomPlayers.DeleteLabelValues(string(roomID))
	if hadGame {
		metrics.ActiveGames.Dec()
	}

	logging.Info(logging.WithRoom(context.Background(), string(roomID)), "Room deleted", zap.String("reason", reason))

	if hadMembers {
		m.emit(Event{Kind: EventRoomClosing, RoomID: roomID, Reason: reason, SecondsRemaining: int(m.cfg.CloseDelay / time.Second)})
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			select {
			case <-m.clock.After(m.cfg.CloseDelay):
			case <-m.ctx.Done():
			}
			m.emit(Event{Kind: EventRoomRemoved, RoomID: roomID, Reason: reason})
		}()
	} else {
		m.emit(Event{Kind: EventRoomRemoved, RoomID: roomID, Reason: reason})
	}
	return nil
}

// forwardGameEvents drains one game's container streams: every state change
// is persisted best-effort and re-emitted; round ends are forwarded verbatim.
func (m *Manager) forwardGameEvents(ctx context.Context, roomID types.RoomID, container *game.StateContainer) {
	defer m.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-container.StateChanges():
			if !ok {
				return
			}
			m.persistSnapshot(roomID, change.State)
			m.emit(Event{Kind: EventGameState, RoomID: roomID, State: change.State, Version: change.Version, Context: change.Context})
		case re, ok := <-container.RoundEnds():
			if !ok {
				return
			}
			m.emit(Event{Kind: EventRoundEnd, RoomID: roomID, Payload: re.Payload})
		}
	}
}

// persistSnapshot saves the latest state blob. Failures are transient by
// policy: logged, never surfaced.
func (m *Manager) persistSnapshot(roomID types.RoomID, state game.State) {
	blob, err := json.Marshal(state)
	if err != nil {
		logging.Warn(logging.WithRoom(context.Background(), string(roomID)), "State snapshot marshal failed", zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := m.repo.Save(ctx, roomID, blob); err != nil {
		logging.Warn(logging.WithRoom(context.Background(), string(roomID)), "Repository save failed", zap.Error(err))
	}
}

func (m *Manager) emit(ev Event) {
	select {
	case m.events <- ev:
	default:
		logging.Warn(context.Background(), "Manager event channel full, dropping event",
			zap.String("kind", string(ev.Kind)), zap.String("roomId", string(ev.RoomID)))
	}
}
