package transport

import (
	"encoding/json"
	"errors"

	"github.com/TheZedxD/HomeGameServer/internal/v1/types"
)

// Envelope is the wire frame for every message in both directions: an event
// name and a JSON payload.
type Envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Inbound event names.
const (
	EvtIdentify    = "identify"
	EvtCreateGame  = "createGame"
	EvtJoinGame    = "joinGame"
	EvtLeaveGame   = "leaveGame"
	EvtPlayerReady = "playerReady"
	EvtStartGame   = "startGame"
	EvtSubmitMove  = "submitMove"
	EvtMovePiece   = "movePiece"
	EvtGameCommand = "gameCommand"
	EvtUndoMove    = "undoMove"
	EvtDeleteRoom  = "deleteRoom"
	EvtListRooms   = "listRooms"
	EvtPing        = "ping"
)

// Outbound event names.
const (
	EvtConnected        = "connected"
	EvtAvailableGames   = "availableGames"
	EvtUpdateRoomList   = "updateRoomList"
	EvtJoinedMatchLobby = "joinedMatchLobby"
	EvtRoomStateUpdate  = "roomStateUpdate"
	EvtPlayerLeft       = "playerLeft"
	EvtGameStart        = "gameStart"
	EvtGameStateUpdate  = "gameStateUpdate"
	EvtRoundEnd         = "roundEnd"
	EvtRoomClosing      = "roomClosing"
	EvtRoomClosed       = "roomClosed"
	EvtServerMetrics    = "serverMetrics"
	EvtError            = "error"
	EvtPong             = "pong"
)

// ErrorPayload is the body of an error event. Action echoes the inbound
// event that failed so clients can correlate the reply.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
}

func errorPayloadFrom(err error, action string) ErrorPayload {
	p := ErrorPayload{
		Code:    types.CodeOf(err),
		Message: "internal error",
		Action:  action,
	}
	var appErr *types.Error
	if errors.As(err, &appErr) {
		p.Message = appErr.Message
		if appErr.Action != "" {
			p.Action = appErr.Action
		}
	}
	return p
}

func encodeEnvelope(event string, payload any) ([]byte, error) {
	env := Envelope{Event: event}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		env.Payload = raw
	}
	return json.Marshal(env)
}
