// Package checkers is the reference rules plugin: two-seat American checkers
// on an 8x8 board. It exercises the full plugin surface, including role
// assignment by join order, turn enforcement, undo closures, and terminal
// detection.
package checkers

import (
	"encoding/json"
	"fmt"

	"github.com/TheZedxD/HomeGameServer/internal/v1/game"
	"github.com/TheZedxD/HomeGameServer/internal/v1/types"
)

const (
	// GameID is the registry key for this plugin.
	GameID types.GameID = "checkers"

	RoleRed   = "red"
	RoleBlack = "black"
)

// Cell values. Positive is red, negative is black, magnitude 2 is a king.
const (
	empty     int8 = 0
	redMan    int8 = 1
	redKing   int8 = 2
	blackMan  int8 = -1
	blackKing int8 = -2
)

type seat struct {
	ID   types.PlayerID `json:"id"`
	Name string         `json:"name"`
}

// position is the complete game state. It is a value type: strategies copy
// it, mutate the copy, and return the copy, so undo closures can capture the
// prior value without deep cloning.
type position struct {
	Board      [8][8]int8     `json:"board"`
	Red        seat           `json:"red"`
	Black      seat           `json:"black"`
	Turn       types.PlayerID `json:"turn"`
	MoveCount  int            `json:"moveCount"`
	MustJump   *square        `json:"mustJump,omitempty"` // mid multi-jump, only this piece may move
	Over       bool           `json:"over"`
	WinnerID   types.PlayerID `json:"winnerId,omitempty"`
	WinnerName string         `json:"winnerName,omitempty"`
}

func (p position) CurrentPlayer() types.PlayerID { return p.Turn }

func (p position) IsTerminal() bool { return p.Over }

func (p position) Winner() (types.PlayerID, string, bool) {
	if !p.Over || p.WinnerID == "" {
		return "", "", false
	}
	return p.WinnerID, p.WinnerName, true
}

type square struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (s square) onBoard() bool {
	return s.Row >= 0 && s.Row < 8 && s.Col >= 0 && s.Col < 8
}

type movePayload struct {
	From square `json:"from"`
	To   square `json:"to"`
}

// Plugin returns the checkers plugin definition for registry registration.
func Plugin() game.PluginDefinition {
	return game.PluginDefinition{
		ID:         GameID,
		Name:       "Checkers",
		MinPlayers: 2,
		MaxPlayers: 2,
		Category:   "board",
		Create:     create,
	}
}

// create seats the earliest-joined player as red (red moves first) and the
// second as black.
func create(ctx game.RoomContext) (*game.Instance, error) {
	if len(ctx.Players) != 2 {
		return nil, fmt.Errorf("checkers requires exactly 2 players, got %d", len(ctx.Players))
	}

	red := seat{ID: ctx.Players[0].ID, Name: ctx.Players[0].DisplayName}
	black := seat{ID: ctx.Players[1].ID, Name: ctx.Players[1].DisplayName}

	initial := position{Red: red, Black: black, Turn: red.ID}
	for r := 0; r < 3; r++ {
		for c := 0; c < 8; c++ {
			if (r+c)%2 == 1 {
				initial.Board[r][c] = blackMan
			}
		}
	}
	for r := 5; r < 8; r++ {
		for c := 0; c < 8; c++ {
			if (r+c)%2 == 1 {
				initial.Board[r][c] = redMan
			}
		}
	}

	return &game.Instance{
		Container: game.NewStateContainer(initial),
		Strategies: map[string]game.Strategy{
			"movePiece": moveStrategy,
		},
		Roles: map[types.PlayerID]string{
			red.ID:   RoleRed,
			black.ID: RoleBlack,
		},
	}, nil
}

func moveStrategy(in game.StrategyInput) game.CommandOutcome {
	cur, ok := in.State.(position)
	if !ok {
		return game.CommandOutcome{Reject: "invalid game state"}
	}
	if in.PlayerID != cur.Turn {
		return game.CommandOutcome{Reject: "not your turn"}
	}

	var mv movePayload
	if err := decodePayload(in.Payload, &mv); err != nil {
		return game.CommandOutcome{Reject: "malformed move payload"}
	}
	if !mv.From.onBoard() || !mv.To.onBoard() {
		return game.CommandOutcome{Reject: "move is off the board"}
	}

	side := sideOf(cur, in.PlayerID)
	piece := cur.Board[mv.From.Row][mv.From.Col]
	if piece == empty || sign(piece) != side {
		return game.CommandOutcome{Reject: "no piece of yours on that square"}
	}
	if cur.Board[mv.To.Row][mv.To.Col] != empty {
		return game.CommandOutcome{Reject: "destination square is occupied"}
	}
	if cur.MustJump != nil && (mv.From != *cur.MustJump) {
		return game.CommandOutcome{Reject: "must continue jumping with the same piece"}
	}

	dr := mv.To.Row - mv.From.Row
	dc := mv.To.Col - mv.From.Col
	if abs(dr) != abs(dc) || dr == 0 {
		return game.CommandOutcome{Reject: "moves must be diagonal"}
	}
	if !directionAllowed(piece, dr) {
		return game.CommandOutcome{Reject: "men cannot move backwards"}
	}

	next := cur // value copy, board array included
	switch abs(dr) {
	case 1:
		if cur.MustJump != nil {
			return game.CommandOutcome{Reject: "must continue jumping with the same piece"}
		}
		next.Board[mv.From.Row][mv.From.Col] = empty
		next.Board[mv.To.Row][mv.To.Col] = maybeKing(piece, mv.To.Row)
		next.MustJump = nil
		next.Turn = opponentOf(next, in.PlayerID)
	case 2:
		mid := square{Row: mv.From.Row + dr/2, Col: mv.From.Col + dc/2}
		victim := cur.Board[mid.Row][mid.Col]
		if victim == empty || sign(victim) == side {
			return game.CommandOutcome{Reject: "jumps must capture an opposing piece"}
		}
		next.Board[mv.From.Row][mv.From.Col] = empty
		next.Board[mid.Row][mid.Col] = empty
		landed := maybeKing(piece, mv.To.Row)
		next.Board[mv.To.Row][mv.To.Col] = landed

		// Same-piece continuation keeps the turn; kinging ends it.
		if landed == piece && canJumpFrom(next.Board, mv.To) {
			next.MustJump = &square{Row: mv.To.Row, Col: mv.To.Col}
		} else {
			next.MustJump = nil
			next.Turn = opponentOf(next, in.PlayerID)
		}
	default:
		return game.CommandOutcome{Reject: "moves must be one square, or two when jumping"}
	}

	next.MoveCount++

	if next.Turn != in.PlayerID && !hasAnyMove(next.Board, sideOf(next, next.Turn)) {
		next.Over = true
		next.WinnerID = in.PlayerID
		next.WinnerName = nameOf(next, in.PlayerID)
		next.MustJump = nil
	}

	prev := cur
	return game.CommandOutcome{
		Next: next,
		Undo: func() game.State { return prev },
	}
}

func decodePayload(payload map[string]any, into *movePayload) error {
	blob, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(blob, into)
}

func sideOf(p position, id types.PlayerID) int8 {
	if id == p.Red.ID {
		return 1
	}
	return -1
}

func opponentOf(p position, id types.PlayerID) types.PlayerID {
	if id == p.Red.ID {
		return p.Black.ID
	}
	return p.Red.ID
}

func nameOf(p position, id types.PlayerID) string {
	if id == p.Red.ID {
		return p.Red.Name
	}
	return p.Black.Name
}

func sign(v int8) int8 {
	if v > 0 {
		return 1
	}
	if v < 0 {
		return -1
	}
	return 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// directionAllowed checks forward motion for men. Red moves toward row 0,
// black toward row 7, kings both ways.
func directionAllowed(piece int8, dr int) bool {
	switch piece {
	case redMan:
		return dr < 0
	case blackMan:
		return dr > 0
	default:
		return true
	}
}

func maybeKing(piece int8, row int) int8 {
	if piece == redMan && row == 0 {
		return redKing
	}
	if piece == blackMan && row == 7 {
		return blackKing
	}
	return piece
}

func canJumpFrom(board [8][8]int8, from square) bool {
	piece := board[from.Row][from.Col]
	side := sign(piece)
	for _, dr := range []int{-2, 2} {
		if !directionAllowed(piece, dr) {
			continue
		}
		for _, dc := range []int{-2, 2} {
			to := square{Row: from.Row + dr, Col: from.Col + dc}
			if !to.onBoard() || board[to.Row][to.Col] != empty {
				continue
			}
			mid := board[from.Row+dr/2][from.Col+dc/2]
			if mid != empty && sign(mid) != side {
				return true
			}
		}
	}
	return false
}

// hasAnyMove reports whether the side has at least one legal step or jump.
// A side with no pieces or no moves has lost.
func hasAnyMove(board [8][8]int8, side int8) bool {
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			piece := board[r][c]
			if piece == empty || sign(piece) != side {
				continue
			}
			from := square{Row: r, Col: c}
			for _, dr := range []int{-1, 1} {
				if !directionAllowed(piece, dr) {
					continue
				}
				for _, dc := range []int{-1, 1} {
					to := square{Row: r + dr, Col: c + dc}
					if to.onBoard() && board[to.Row][to.Col] == empty {
						return true
					}
				}
			}
			if canJumpFrom(board, from) {
				return true
			}
		}
	}
	return false
}
