// Package game defines the rules-plugin boundary and the per-room engine
// primitives: the plugin registry, the versioned state container, and the
// command bus that applies plugin strategies atomically.
//
// A rules plugin supplies an initial state and a table of strategies keyed by
// command type. Strategies are pure: they never mutate the input state, they
// return an explicit next state, and identical inputs produce identical
// outputs. All state transitions flow through CommandBus.Dispatch under the
// owning room's lock.
package game

import (
	"fmt"

	"github.com/TheZedxD/HomeGameServer/internal/v1/types"
)

// State is the authoritative game state produced by a rules plugin. The
// engine treats it as opaque beyond turn and termination inspection; the
// concrete type must marshal to JSON for broadcast and persistence.
type State interface {
	// CurrentPlayer reports whose turn it is.
	CurrentPlayer() types.PlayerID
	// IsTerminal reports whether the game has ended.
	IsTerminal() bool
	// Winner reports the winning player, if any.
	Winner() (id types.PlayerID, name string, ok bool)
}

// PlayerInfo is the engine's view of a seated player, handed to plugins at
// create time and to strategies on every dispatch. Order follows join order.
type PlayerInfo struct {
	ID          types.PlayerID `json:"id"`
	DisplayName string         `json:"displayName"`
	Role        string         `json:"role,omitempty"`
}

// RoomContext is everything a plugin may inspect when creating a game.
type RoomContext struct {
	RoomID   types.RoomID
	Players  []PlayerInfo
	Metadata map[string]string
	Options  map[string]any
}

// CommandDescriptor is a client-submitted command after gateway validation.
type CommandDescriptor struct {
	Type     string         `json:"type"`
	Payload  map[string]any `json:"payload"`
	PlayerID types.PlayerID `json:"playerId"`
}

// StrategyInput carries the immutable inputs to a strategy evaluation.
type StrategyInput struct {
	State    State
	Players  []PlayerInfo
	PlayerID types.PlayerID
	Payload  map[string]any
}

// CommandOutcome is the tagged result of a strategy evaluation: either a
// rejection (Reject non-empty, no state change) or a pre-computed next state
// with an optional undo closure.
type CommandOutcome struct {
	Reject string
	Next   State
	Undo   func() State
}

// Strategy evaluates one command type. It must not mutate input.State.
type Strategy func(input StrategyInput) CommandOutcome

// Instance is a live game produced by PluginDefinition.Create: the state
// container seeded with the initial state, the strategy table, and the role
// assigned to each seat (e.g. checkers colors by join order).
type Instance struct {
	Container  *StateContainer
	Strategies map[string]Strategy
	Roles      map[types.PlayerID]string
}

// PluginDefinition describes a rules plugin in the registry.
type PluginDefinition struct {
	ID         types.GameID
	Name       string
	MinPlayers int
	MaxPlayers int
	Category   string
	Create     func(ctx RoomContext) (*Instance, error)
}

// Descriptor is the wire shape of a plugin listing (availableGames payload).
type Descriptor struct {
	ID         types.GameID `json:"gameId"`
	Name       string       `json:"name"`
	MinPlayers int          `json:"minPlayers"`
	MaxPlayers int          `json:"maxPlayers"`
	Category   string       `json:"category"`
}

func (d PluginDefinition) descriptor() Descriptor {
	return Descriptor{
		ID:         d.ID,
		Name:       d.Name,
		MinPlayers: d.MinPlayers,
		MaxPlayers: d.MaxPlayers,
		Category:   d.Category,
	}
}

func (d PluginDefinition) validate() error {
	if err := types.ValidateGameType(d.ID); err != nil {
		return err
	}
	if d.Create == nil {
		return fmt.Errorf("plugin %q has no Create function", d.ID)
	}
	if d.MinPlayers < 1 || d.MaxPlayers < d.MinPlayers {
		return fmt.Errorf("plugin %q has invalid player limits [%d, %d]", d.ID, d.MinPlayers, d.MaxPlayers)
	}
	return nil
}
