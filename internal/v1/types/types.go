package types

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/TheZedxD/HomeGameServer/internal/v1/auth"
)

// --- Core Domain Types ---

// PlayerID is the stable identity of a connected participant. It is assigned
// by the authentication boundary (JWT subject, or a client-supplied guest id)
// and survives socket reconnects.
type PlayerID string

// RoomID identifies a room. Two forms exist: server-generated
// ("room_" + 8 hex) and client-supplied invite codes (3-10 chars of [A-Z0-9]).
type RoomID string

// GameID is the stable identifier of a registered rules plugin.
type GameID string

// DisplayName is the human-readable name shown to other players.
type DisplayName string

// Room modes. LAN rooms are listed in the public lobby; P2P rooms are
// invite-code only and never appear in updateRoomList.
const (
	ModeLAN = "lan"
	ModeP2P = "p2p"
)

// NewServerRoomID generates a room id of the form "room_xxxxxxxx".
func NewServerRoomID() RoomID {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms; panicking here
		// would take the whole manager down for no recoverable reason.
		return RoomID(fmt.Sprintf("room_%08x", timeFallbackSeed()))
	}
	return RoomID("room_" + hex.EncodeToString(buf))
}

func timeFallbackSeed() uint32 {
	return uint32(time.Now().UnixNano())
}

// TokenValidator defines the interface for token authentication services.
// Implemented by auth.Validator in production and auth.MockValidator in
// development mode and tests.
type TokenValidator interface {
	ValidateToken(tokenString string) (*auth.Claims, error)
}
