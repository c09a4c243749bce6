package room

import (
	"time"

	"github.com/TheZedxD/HomeGameServer/internal/v1/game"
	"github.com/TheZedxD/HomeGameServer/internal/v1/types"
)

// EventKind names a room-lifecycle event emitted by the Manager.
type EventKind string

const (
	EventRoomCreated EventKind = "roomCreated"
	EventRoomUpdated EventKind = "roomUpdated"
	EventRoomClosing EventKind = "roomClosing"
	EventRoomRemoved EventKind = "roomRemoved"
	EventPlayerLeft  EventKind = "playerLeft"
	EventGameStarted EventKind = "gameStarted"
	EventGameState   EventKind = "gameState"
	EventRoundEnd    EventKind = "roundEnd"
)

// Event is the manager's typed notification to subscribers (the transport
// gateway). Per-room ordering follows emit order on a single channel.
type Event struct {
	Kind   EventKind
	RoomID types.RoomID

	// Room is a snapshot for created/updated/started events.
	Room *Snapshot

	// Game state fields for gameStarted/gameState.
	State   game.State
	Version uint64
	Context map[string]any

	// Payload carries plugin-defined roundEnd data.
	Payload any

	// PlayerID and Reason describe playerLeft and closing events.
	PlayerID         types.PlayerID
	PlayerName       string
	Reason           string
	SecondsRemaining int
}

// PlayerView is the wire shape of one seated player.
type PlayerView struct {
	ID          types.PlayerID `json:"id"`
	DisplayName string         `json:"displayName"`
	Ready       bool           `json:"ready"`
	Role        string         `json:"role,omitempty"`
	JoinedAt    time.Time      `json:"joinedAt"`
}

// Snapshot is an immutable view of a room, produced under the room lock and
// safe to read concurrently afterwards.
type Snapshot struct {
	ID           types.RoomID   `json:"roomId"`
	GameID       types.GameID   `json:"gameType"`
	Mode         string         `json:"mode"`
	HostID       types.PlayerID `json:"hostId"`
	Players      []PlayerView   `json:"players"`
	MinPlayers   int            `json:"minPlayers"`
	MaxPlayers   int            `json:"maxPlayers"`
	Playing      bool           `json:"playing"`
	CreatedAt    time.Time      `json:"createdAt"`
	LastActivity time.Time      `json:"lastActivity"`
}

// ListEntry is one row of the lobby's updateRoomList broadcast.
type ListEntry struct {
	RoomID      types.RoomID   `json:"roomId"`
	GameType    types.GameID   `json:"gameType"`
	Mode        string         `json:"mode"`
	PlayerCount int            `json:"playerCount"`
	MaxPlayers  int            `json:"maxPlayers"`
	HostID      types.PlayerID `json:"hostId"`
}
