package game

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheZedxD/HomeGameServer/internal/v1/types"
)

// counterStrategy increments Value and flips the turn. Rejections and
// terminal transitions are driven through the payload for test control.
func counterStrategy(in StrategyInput) CommandOutcome {
	cur := in.State.(fakeState)
	if in.PlayerID != cur.Turn {
		return CommandOutcome{Reject: "not your turn"}
	}
	if reason, ok := in.Payload["reject"].(string); ok {
		return CommandOutcome{Reject: reason}
	}

	next := cur
	next.Value++
	if cur.Turn == "p1" {
		next.Turn = "p2"
	} else {
		next.Turn = "p1"
	}
	if win, ok := in.Payload["winner"].(string); ok {
		next.Terminal = true
		next.WinID = types.PlayerID(win)
		next.WinName = "Winner"
	}

	prev := cur
	return CommandOutcome{Next: next, Undo: func() State { return prev }}
}

func newTestBus() *CommandBus {
	container := NewStateContainer(fakeState{Turn: "p1"})
	return NewCommandBus("testgame", container, map[string]Strategy{
		"increment": counterStrategy,
	})
}

func TestDispatch_AppliesAndIncrementsVersion(t *testing.T) {
	bus := newTestBus()

	change, err := bus.Dispatch(CommandDescriptor{Type: "increment", PlayerID: "p1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), change.Version)
	assert.Equal(t, 1, change.State.(fakeState).Value)
	assert.Equal(t, types.PlayerID("p2"), change.State.CurrentPlayer())
	assert.Equal(t, 1, bus.UndoDepth())
}

func TestDispatch_UnknownCommand(t *testing.T) {
	bus := newTestBus()

	_, err := bus.Dispatch(CommandDescriptor{Type: "teleport", PlayerID: "p1"}, nil)
	assert.True(t, errors.Is(err, types.ErrUnknownCommand))
}

func TestDispatch_MissingFields(t *testing.T) {
	bus := newTestBus()

	_, err := bus.Dispatch(CommandDescriptor{PlayerID: "p1"}, nil)
	require.Error(t, err)
	assert.Equal(t, types.KindValidation, types.KindOf(err))

	_, err = bus.Dispatch(CommandDescriptor{Type: "increment"}, nil)
	require.Error(t, err)
	assert.Equal(t, types.KindValidation, types.KindOf(err))
}

func TestDispatch_RejectionLeavesStateUntouched(t *testing.T) {
	bus := newTestBus()

	_, err := bus.Dispatch(CommandDescriptor{
		Type:     "increment",
		PlayerID: "p1",
		Payload:  map[string]any{"reject": "illegal move"},
	}, nil)
	require.Error(t, err)
	assert.Equal(t, types.KindRulesRejection, types.KindOf(err))

	state, version := bus.Container().Snapshot()
	assert.Equal(t, uint64(0), version)
	assert.Equal(t, 0, state.(fakeState).Value)
	assert.Equal(t, 0, bus.UndoDepth())
}

func TestDispatch_TurnEnforcement(t *testing.T) {
	bus := newTestBus()

	_, err := bus.Dispatch(CommandDescriptor{Type: "increment", PlayerID: "p2"}, nil)
	require.Error(t, err)
	assert.Equal(t, types.KindRulesRejection, types.KindOf(err))
}

func TestDispatch_TerminalStateBlocksFurtherCommands(t *testing.T) {
	bus := newTestBus()

	_, err := bus.Dispatch(CommandDescriptor{
		Type:     "increment",
		PlayerID: "p1",
		Payload:  map[string]any{"winner": "p1"},
	}, nil)
	require.NoError(t, err)

	_, err = bus.Dispatch(CommandDescriptor{Type: "increment", PlayerID: "p2"}, nil)
	assert.True(t, errors.Is(err, types.ErrGameAlreadyOver))
}

func TestDispatch_TerminalEmitsRoundEnd(t *testing.T) {
	bus := newTestBus()

	change, err := bus.Dispatch(CommandDescriptor{
		Type:     "increment",
		PlayerID: "p1",
		Payload:  map[string]any{"winner": "p1"},
	}, nil)
	require.NoError(t, err)

	re := <-bus.Container().RoundEnds()
	payload := re.Payload.(map[string]any)
	assert.Equal(t, types.PlayerID("p1"), payload["winnerId"])
	assert.Equal(t, false, payload["draw"])
	assert.Equal(t, change.Version, payload["finalVersion"])

	// Undo history does not survive the end of a game.
	assert.Equal(t, 0, bus.UndoDepth())
}

func TestUndoLast_RoundTrip(t *testing.T) {
	bus := newTestBus()

	_, err := bus.Dispatch(CommandDescriptor{Type: "increment", PlayerID: "p1"}, nil)
	require.NoError(t, err)

	change, err := bus.UndoLast("p1")
	require.NoError(t, err)

	// Undo is a forward replacement: the version advances while the state
	// matches the pre-command snapshot.
	assert.Equal(t, uint64(2), change.Version)
	assert.Equal(t, 0, change.State.(fakeState).Value)
	assert.Equal(t, types.PlayerID("p1"), change.State.CurrentPlayer())
	assert.Equal(t, 0, bus.UndoDepth())
}

func TestUndoLast_OwnerOnly(t *testing.T) {
	bus := newTestBus()

	_, err := bus.Dispatch(CommandDescriptor{Type: "increment", PlayerID: "p1"}, nil)
	require.NoError(t, err)

	_, err = bus.UndoLast("p2")
	assert.True(t, errors.Is(err, types.ErrUndoNotOwner))
	assert.Equal(t, 1, bus.UndoDepth())
}

func TestUndoLast_EmptyStack(t *testing.T) {
	bus := newTestBus()

	_, err := bus.UndoLast("p1")
	assert.True(t, errors.Is(err, types.ErrNothingToUndo))
}
