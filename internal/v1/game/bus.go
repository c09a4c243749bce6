package game

import (
	"github.com/TheZedxD/HomeGameServer/internal/v1/metrics"
	"github.com/TheZedxD/HomeGameServer/internal/v1/types"
)

type undoRecord struct {
	descriptor CommandDescriptor
	undo       func() State
}

// CommandBus applies client commands to one room's state container through
// the plugin's strategy table. It is owned by the room and is only touched
// under the room lock, so it carries no locking of its own.
type CommandBus struct {
	gameID     types.GameID
	container  *StateContainer
	strategies map[string]Strategy
	undoStack  []undoRecord
}

// NewCommandBus wires a bus to a container and a plugin's strategies.
func NewCommandBus(gameID types.GameID, container *StateContainer, strategies map[string]Strategy) *CommandBus {
	return &CommandBus{
		gameID:     gameID,
		container:  container,
		strategies: strategies,
	}
}

// Container returns the bus's state container.
func (b *CommandBus) Container() *StateContainer {
	return b.container
}

// Dispatch runs the command pipeline: normalize, resolve strategy, evaluate,
// replace state, record undo. A strategy rejection leaves state and version
// untouched.
func (b *CommandBus) Dispatch(desc CommandDescriptor, players []PlayerInfo) (StateChange, error) {
	if desc.Type == "" {
		return StateChange{}, types.E(types.KindValidation, "missing_command_type", "command type is required")
	}
	if desc.PlayerID == "" {
		return StateChange{}, types.E(types.KindValidation, "missing_player_id", "command player id is required")
	}
	if desc.Payload == nil {
		desc.Payload = map[string]any{}
	}

	strategy, ok := b.strategies[desc.Type]
	if !ok {
		metrics.CommandsDispatched.WithLabelValues(string(b.gameID), "unknown").Inc()
		return StateChange{}, types.ErrUnknownCommand
	}

	snapshot, _ := b.container.Snapshot()
	if snapshot.IsTerminal() {
		metrics.CommandsDispatched.WithLabelValues(string(b.gameID), "rejected").Inc()
		return StateChange{}, types.ErrGameAlreadyOver
	}

	outcome := strategy(StrategyInput{
		State:    snapshot,
		Players:  players,
		PlayerID: desc.PlayerID,
		Payload:  desc.Payload,
	})

	if outcome.Reject != "" {
		metrics.CommandsDispatched.WithLabelValues(string(b.gameID), "rejected").Inc()
		return StateChange{}, types.E(types.KindRulesRejection, "rules_rejection", outcome.Reject)
	}
	if outcome.Next == nil {
		metrics.CommandsDispatched.WithLabelValues(string(b.gameID), "error").Inc()
		return StateChange{}, types.E(types.KindFatal, "internal_error", "strategy returned neither rejection nor next state")
	}

	change := b.container.Replace(outcome.Next, map[string]any{"command": desc})

	if outcome.Next.IsTerminal() {
		winnerID, winnerName, decided := outcome.Next.Winner()
		b.container.EmitRoundEnd(map[string]any{
			"winnerId":     winnerID,
			"winnerName":   winnerName,
			"draw":         !decided,
			"finalVersion": change.Version,
		})
		b.undoStack = nil
	} else if outcome.Undo != nil {
		b.undoStack = append(b.undoStack, undoRecord{descriptor: desc, undo: outcome.Undo})
	}

	metrics.CommandsDispatched.WithLabelValues(string(b.gameID), "applied").Inc()
	return change, nil
}

// UndoLast reverses the most recent undoable command. Undo is not a version
// rewind: it replaces state forward with the reversing state, so the version
// still increases. A non-empty playerID must match the popped command's
// issuer or the record is pushed back untouched.
func (b *CommandBus) UndoLast(playerID types.PlayerID) (StateChange, error) {
	if len(b.undoStack) == 0 {
		return StateChange{}, types.ErrNothingToUndo
	}

	top := b.undoStack[len(b.undoStack)-1]
	if playerID != "" && top.descriptor.PlayerID != playerID {
		return StateChange{}, types.ErrUndoNotOwner
	}
	b.undoStack = b.undoStack[:len(b.undoStack)-1]

	next := top.undo()
	change := b.container.Replace(next, map[string]any{"undo": top.descriptor})

	metrics.CommandsDispatched.WithLabelValues(string(b.gameID), "undone").Inc()
	return change, nil
}

// UndoDepth reports how many commands can currently be undone.
func (b *CommandBus) UndoDepth() int {
	return len(b.undoStack)
}
