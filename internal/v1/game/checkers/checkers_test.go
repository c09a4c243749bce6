package checkers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheZedxD/HomeGameServer/internal/v1/game"
	"github.com/TheZedxD/HomeGameServer/internal/v1/types"
)

const (
	redID   types.PlayerID = "player-red"
	blackID types.PlayerID = "player-black"
)

func newGame(t *testing.T) *game.Instance {
	t.Helper()
	inst, err := Plugin().Create(game.RoomContext{
		RoomID: "room_deadbeef",
		Players: []game.PlayerInfo{
			{ID: redID, DisplayName: "Rose"},
			{ID: blackID, DisplayName: "Blake"},
		},
	})
	require.NoError(t, err)
	return inst
}

func currentPosition(t *testing.T, inst *game.Instance) position {
	t.Helper()
	state, _ := inst.Container.Snapshot()
	pos, ok := state.(position)
	require.True(t, ok)
	return pos
}

func move(from, to square) map[string]any {
	return map[string]any{
		"from": map[string]any{"row": from.Row, "col": from.Col},
		"to":   map[string]any{"row": to.Row, "col": to.Col},
	}
}

func apply(t *testing.T, inst *game.Instance, player types.PlayerID, payload map[string]any) game.CommandOutcome {
	t.Helper()
	state, _ := inst.Container.Snapshot()
	return inst.Strategies["movePiece"](game.StrategyInput{
		State:    state,
		PlayerID: player,
		Payload:  payload,
	})
}

func applyOK(t *testing.T, inst *game.Instance, player types.PlayerID, payload map[string]any) position {
	t.Helper()
	outcome := apply(t, inst, player, payload)
	require.Empty(t, outcome.Reject)
	require.NotNil(t, outcome.Next)
	inst.Container.Replace(outcome.Next, nil)
	return outcome.Next.(position)
}

func TestCreate_InitialSetup(t *testing.T) {
	inst := newGame(t)
	pos := currentPosition(t, inst)

	// Earliest joiner is red and moves first.
	assert.Equal(t, redID, pos.Red.ID)
	assert.Equal(t, blackID, pos.Black.ID)
	assert.Equal(t, redID, pos.Turn)
	assert.False(t, pos.IsTerminal())

	assert.Equal(t, RoleRed, inst.Roles[redID])
	assert.Equal(t, RoleBlack, inst.Roles[blackID])

	var reds, blacks int
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			switch pos.Board[r][c] {
			case redMan:
				reds++
				assert.GreaterOrEqual(t, r, 5)
			case blackMan:
				blacks++
				assert.Less(t, r, 3)
			}
			if pos.Board[r][c] != empty {
				assert.Equal(t, 1, (r+c)%2, "pieces start on dark squares")
			}
		}
	}
	assert.Equal(t, 12, reds)
	assert.Equal(t, 12, blacks)
}

func TestCreate_RequiresTwoPlayers(t *testing.T) {
	_, err := Plugin().Create(game.RoomContext{
		Players: []game.PlayerInfo{{ID: redID, DisplayName: "Solo"}},
	})
	assert.Error(t, err)
}

func TestMove_SimpleStepAndTurnSwitch(t *testing.T) {
	inst := newGame(t)

	pos := applyOK(t, inst, redID, move(square{5, 0}, square{4, 1}))

	assert.Equal(t, empty, pos.Board[5][0])
	assert.Equal(t, redMan, pos.Board[4][1])
	assert.Equal(t, blackID, pos.Turn)
	assert.Equal(t, 1, pos.MoveCount)
}

func TestMove_NotYourTurn(t *testing.T) {
	inst := newGame(t)

	outcome := apply(t, inst, blackID, move(square{2, 1}, square{3, 0}))
	assert.Equal(t, "not your turn", outcome.Reject)
}

func TestMove_Rejections(t *testing.T) {
	inst := newGame(t)

	cases := []struct {
		name    string
		payload map[string]any
	}{
		{"off the board", move(square{5, 0}, square{4, -1})},
		{"not diagonal", move(square{5, 0}, square{4, 0})},
		{"backwards man", move(square{5, 0}, square{6, 1})},
		{"occupied destination", move(square{6, 1}, square{5, 0})},
		{"empty source", move(square{4, 1}, square{3, 0})},
		{"opponent piece", move(square{2, 1}, square{3, 0})},
		{"jump without victim", move(square{5, 0}, square{3, 2})},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			outcome := apply(t, inst, redID, tc.payload)
			assert.NotEmpty(t, outcome.Reject)
		})
	}

	// All rejections left the container untouched.
	assert.Equal(t, uint64(0), inst.Container.Version())
}

func TestMove_CaptureRemovesVictim(t *testing.T) {
	inst := newGame(t)

	// Red 5,2 -> 4,3; black 2,5 -> 3,4; red jumps 4,3 -> 2,5 taking 3,4.
	applyOK(t, inst, redID, move(square{5, 2}, square{4, 3}))
	applyOK(t, inst, blackID, move(square{2, 5}, square{3, 4}))
	pos := applyOK(t, inst, redID, move(square{4, 3}, square{2, 5}))

	assert.Equal(t, empty, pos.Board[4][3])
	assert.Equal(t, empty, pos.Board[3][4], "captured piece removed")
	assert.Equal(t, redMan, pos.Board[2][5])
}

func TestMove_Kinging(t *testing.T) {
	inst := newGame(t)
	pos := currentPosition(t, inst)

	// Hand-build an endgame: one red man a step from the crown row.
	pos.Board = [8][8]int8{}
	pos.Board[1][2] = redMan
	pos.Board[5][2] = blackMan
	pos.Turn = redID
	inst.Container.Replace(pos, nil)

	next := applyOK(t, inst, redID, move(square{1, 2}, square{0, 1}))
	assert.Equal(t, redKing, next.Board[0][1])
	assert.False(t, next.IsTerminal())
}

func TestMove_KingMovesBackwards(t *testing.T) {
	inst := newGame(t)
	pos := currentPosition(t, inst)

	pos.Board = [8][8]int8{}
	pos.Board[0][1] = redKing
	pos.Board[5][2] = blackMan
	pos.Turn = redID
	inst.Container.Replace(pos, nil)

	next := applyOK(t, inst, redID, move(square{0, 1}, square{1, 2}))
	assert.Equal(t, redKing, next.Board[1][2])
}

func TestMove_CapturingLastPieceWins(t *testing.T) {
	inst := newGame(t)
	pos := currentPosition(t, inst)

	pos.Board = [8][8]int8{}
	pos.Board[4][3] = redMan
	pos.Board[3][4] = blackMan
	pos.Turn = redID
	inst.Container.Replace(pos, nil)

	next := applyOK(t, inst, redID, move(square{4, 3}, square{2, 5}))

	require.True(t, next.IsTerminal())
	winnerID, winnerName, ok := next.Winner()
	require.True(t, ok)
	assert.Equal(t, redID, winnerID)
	assert.Equal(t, "Rose", winnerName)
}

func TestMove_MultiJumpKeepsTurn(t *testing.T) {
	inst := newGame(t)
	pos := currentPosition(t, inst)

	// Red at 6,1 can jump 5,2 landing 4,3, then 3,4 landing 2,5.
	pos.Board = [8][8]int8{}
	pos.Board[6][1] = redMan
	pos.Board[5][2] = blackMan
	pos.Board[3][4] = blackMan
	pos.Board[0][7] = blackMan // survivor so the game continues
	pos.Turn = redID
	inst.Container.Replace(pos, nil)

	mid := applyOK(t, inst, redID, move(square{6, 1}, square{4, 3}))
	assert.Equal(t, redID, mid.Turn, "turn held for the continuation jump")
	require.NotNil(t, mid.MustJump)

	// The same piece must finish the sequence; stepping is refused.
	outcome := apply(t, inst, redID, move(square{4, 3}, square{3, 2}))
	assert.NotEmpty(t, outcome.Reject)

	final := applyOK(t, inst, redID, move(square{4, 3}, square{2, 5}))
	assert.Equal(t, blackID, final.Turn)
	assert.Nil(t, final.MustJump)
	assert.Equal(t, empty, final.Board[5][2])
	assert.Equal(t, empty, final.Board[3][4])
}

func TestMove_UndoRestoresPriorPosition(t *testing.T) {
	inst := newGame(t)

	before := currentPosition(t, inst)
	outcome := apply(t, inst, redID, move(square{5, 0}, square{4, 1}))
	require.NotNil(t, outcome.Undo)

	restored := outcome.Undo().(position)
	assert.Equal(t, before.Board, restored.Board)
	assert.Equal(t, before.Turn, restored.Turn)
	assert.Equal(t, before.MoveCount, restored.MoveCount)
}

func TestMove_OpponentWithNoMovesLoses(t *testing.T) {
	inst := newGame(t)
	pos := currentPosition(t, inst)

	// Black's lone man on 0,1 is boxed in: both steps are occupied and both
	// jump landing squares are occupied too.
	pos.Board = [8][8]int8{}
	pos.Board[0][1] = blackMan
	pos.Board[1][0] = redMan
	pos.Board[1][2] = redMan
	pos.Board[2][1] = redMan
	pos.Board[2][3] = redMan
	pos.Board[5][2] = redMan
	pos.Turn = redID
	inst.Container.Replace(pos, nil)

	// Any red move ends it; black has nothing afterward.
	next := applyOK(t, inst, redID, move(square{5, 2}, square{4, 1}))

	require.True(t, next.IsTerminal())
	winnerID, _, ok := next.Winner()
	require.True(t, ok)
	assert.Equal(t, redID, winnerID)
}
