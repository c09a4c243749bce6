package transport

import (
	"context"
	"encoding/json"
	"time"

	"github.com/TheZedxD/HomeGameServer/internal/v1/game"
	"github.com/TheZedxD/HomeGameServer/internal/v1/metrics"
	"github.com/TheZedxD/HomeGameServer/internal/v1/room"
	"github.com/TheZedxD/HomeGameServer/internal/v1/types"
)

type inboundHandler func(h *Hub, ctx context.Context, c *Client, raw json.RawMessage) error

// inboundHandlers is the gateway's dispatch table. submitMove and movePiece
// are interchangeable command shorthands; gameCommand carries an explicit
// type for plugins with richer command vocabularies.
var inboundHandlers = map[string]inboundHandler{
	EvtIdentify:    (*Hub).handleIdentify,
	EvtCreateGame:  (*Hub).handleCreateGame,
	EvtJoinGame:    (*Hub).handleJoinGame,
	EvtLeaveGame:   (*Hub).handleLeaveGame,
	EvtPlayerReady: (*Hub).handlePlayerReady,
	EvtStartGame:   (*Hub).handleStartGame,
	EvtSubmitMove:  (*Hub).handleSubmitMove,
	EvtMovePiece:   (*Hub).handleSubmitMove,
	EvtGameCommand: (*Hub).handleGameCommand,
	EvtUndoMove:    (*Hub).handleUndoMove,
	EvtDeleteRoom:  (*Hub).handleDeleteRoom,
	EvtListRooms:   (*Hub).handleListRooms,
	EvtPing:        (*Hub).handlePing,
}

// route dispatches one inbound envelope, recording per-event metrics and
// latency. Failures are reported back to the sender only; they never fan out.
func (h *Hub) route(ctx context.Context, c *Client, env Envelope) {
	start := time.Now()

	if !h.limiter.AllowEvent(ctx, c.ID) {
		metrics.WebsocketEvents.WithLabelValues(env.Event, "rate_limited").Inc()
		c.SendError(types.ErrRateLimited.WithAction(env.Event), env.Event)
		return
	}

	handler, ok := inboundHandlers[env.Event]
	if !ok {
		metrics.WebsocketEvents.WithLabelValues(env.Event, "unknown").Inc()
		c.SendError(types.ErrUnknownEvent.WithAction(env.Event), env.Event)
		return
	}

	err := handler(h, ctx, c, env.Payload)

	elapsed := time.Since(start)
	metrics.EventHandlingDuration.WithLabelValues(env.Event).Observe(elapsed.Seconds())
	if h.observeLatency != nil {
		h.observeLatency(elapsed)
	}

	if err != nil {
		metrics.WebsocketEvents.WithLabelValues(env.Event, "error").Inc()
		c.SendError(err, env.Event)
		return
	}
	metrics.WebsocketEvents.WithLabelValues(env.Event, "ok").Inc()
}

func decodeInto(raw json.RawMessage, into any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return types.Wrap(types.KindValidation, "malformed_payload", "payload does not match the event schema", err)
	}
	return nil
}

type identifyRequest struct {
	Username string `json:"username"`
}

// handleIdentify attaches a sanitized display name to the connection. The
// per-connection inbound handler is single-threaded, so the write does not
// race later handlers reading the name.
func (h *Hub) handleIdentify(ctx context.Context, c *Client, raw json.RawMessage) error {
	var req identifyRequest
	if err := decodeInto(raw, &req); err != nil {
		return err
	}
	name, err := types.SanitizeDisplayName(req.Username)
	if err != nil {
		return err
	}
	c.DisplayName = string(name)
	return nil
}

type createRoomRequest struct {
	GameType    string `json:"gameType"`
	Mode        string `json:"mode"`
	RoomCode    string `json:"roomCode"`
	DisplayName string `json:"displayName"`
	MinPlayers  int    `json:"minPlayers"`
	MaxPlayers  int    `json:"maxPlayers"`
}

func (h *Hub) handleCreateGame(ctx context.Context, c *Client, raw json.RawMessage) error {
	var req createRoomRequest
	if err := decodeInto(raw, &req); err != nil {
		return err
	}

	gameID := types.GameID(req.GameType)
	if err := types.ValidateGameType(gameID); err != nil {
		return err
	}

	hostName := c.DisplayName
	if req.DisplayName != "" {
		name, err := types.SanitizeDisplayName(req.DisplayName)
		if err != nil {
			return err
		}
		hostName = string(name)
	}

	params := room.CreateParams{
		HostID:     c.ID,
		HostName:   hostName,
		GameID:     gameID,
		Mode:       req.Mode,
		MinPlayers: req.MinPlayers,
		MaxPlayers: req.MaxPlayers,
	}
	if req.Mode == types.ModeP2P {
		if req.RoomCode == "" {
			return types.E(types.KindValidation, "missing_room_code", "p2p rooms require a room code")
		}
		code, err := types.NormalizeRoomCode(req.RoomCode)
		if err != nil {
			return err
		}
		params.PreferredRoomID = code
	}

	snap, err := h.manager.CreateRoom(params)
	if err != nil {
		return err
	}

	h.subscribe(snap.ID, c)
	c.Send(EvtJoinedMatchLobby, joinedMatchLobbyPayload{Room: snap, YourID: c.ID})
	// The engine's roomCreated fan-out may have run before the subscription
	// above; send the caller its first snapshot directly.
	c.Send(EvtRoomStateUpdate, snap)
	return nil
}

type joinGameRequest struct {
	RoomID      string `json:"roomId"`
	DisplayName string `json:"displayName"`
}

func (h *Hub) handleJoinGame(ctx context.Context, c *Client, raw json.RawMessage) error {
	var req joinGameRequest
	if err := decodeInto(raw, &req); err != nil {
		return err
	}

	// Accept either a server-assigned id or a p2p invite code, which is
	// normalized the same way create normalizes it.
	roomID := types.RoomID(req.RoomID)
	if err := types.ValidateRoomID(roomID); err != nil {
		code, codeErr := types.NormalizeRoomCode(req.RoomID)
		if codeErr != nil {
			return err
		}
		roomID = code
	}

	displayName := c.DisplayName
	if req.DisplayName != "" {
		name, err := types.SanitizeDisplayName(req.DisplayName)
		if err != nil {
			return err
		}
		displayName = string(name)
	}

	snap, err := h.manager.JoinRoom(roomID, c.ID, displayName, nil)
	if err != nil {
		return err
	}

	h.subscribe(snap.ID, c)
	c.Send(EvtJoinedMatchLobby, joinedMatchLobbyPayload{Room: snap, YourID: c.ID})
	// As with create, the roomUpdated fan-out may predate the subscription.
	c.Send(EvtRoomStateUpdate, snap)
	return nil
}

func (h *Hub) handleLeaveGame(ctx context.Context, c *Client, raw json.RawMessage) error {
	roomID, ok := h.manager.RoomOf(c.ID)
	if !ok {
		return types.ErrRoomNotFound
	}
	return h.manager.LeaveRoom(roomID, c.ID, "player left")
}

type playerReadyRequest struct {
	Ready *bool `json:"ready"`
}

func (h *Hub) handlePlayerReady(ctx context.Context, c *Client, raw json.RawMessage) error {
	var req playerReadyRequest
	if err := decodeInto(raw, &req); err != nil {
		return err
	}

	roomID, ok := h.manager.RoomOf(c.ID)
	if !ok {
		return types.ErrRoomNotFound
	}

	if req.Ready != nil {
		_, err := h.manager.SetReady(roomID, c.ID, *req.Ready)
		return err
	}
	_, err := h.manager.ToggleReady(roomID, c.ID)
	return err
}

type startGameRequest struct {
	Options map[string]any `json:"options"`
}

func (h *Hub) handleStartGame(ctx context.Context, c *Client, raw json.RawMessage) error {
	var req startGameRequest
	if err := decodeInto(raw, &req); err != nil {
		return err
	}

	roomID, ok := h.manager.RoomOf(c.ID)
	if !ok {
		return types.ErrRoomNotFound
	}
	return h.manager.StartGame(roomID, c.ID, req.Options)
}

func (h *Hub) handleSubmitMove(ctx context.Context, c *Client, raw json.RawMessage) error {
	var payload map[string]any
	if err := decodeInto(raw, &payload); err != nil {
		return err
	}
	return h.submitCommand(c, EvtMovePiece, payload)
}

type gameCommandRequest struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

func (h *Hub) handleGameCommand(ctx context.Context, c *Client, raw json.RawMessage) error {
	var req gameCommandRequest
	if err := decodeInto(raw, &req); err != nil {
		return err
	}
	if req.Type == "" {
		return types.E(types.KindValidation, "missing_command_type", "command type is required")
	}
	return h.submitCommand(c, req.Type, req.Payload)
}

func (h *Hub) submitCommand(c *Client, commandType string, payload map[string]any) error {
	roomID, ok := h.manager.RoomOf(c.ID)
	if !ok {
		return types.ErrRoomNotFound
	}
	_, err := h.manager.SubmitCommand(roomID, game.CommandDescriptor{
		Type:     commandType,
		Payload:  payload,
		PlayerID: c.ID,
	})
	return err
}

func (h *Hub) handleUndoMove(ctx context.Context, c *Client, raw json.RawMessage) error {
	roomID, ok := h.manager.RoomOf(c.ID)
	if !ok {
		return types.ErrRoomNotFound
	}
	return h.manager.UndoLast(roomID, c.ID)
}

func (h *Hub) handleDeleteRoom(ctx context.Context, c *Client, raw json.RawMessage) error {
	roomID, ok := h.manager.RoomOf(c.ID)
	if !ok {
		return types.ErrRoomNotFound
	}
	snap, err := h.manager.Snapshot(roomID)
	if err != nil {
		return err
	}
	if snap.HostID != c.ID {
		return types.ErrNotHost
	}
	return h.manager.DeleteRoom(roomID, "closed by host")
}

func (h *Hub) handleListRooms(ctx context.Context, c *Client, raw json.RawMessage) error {
	c.Send(EvtUpdateRoomList, h.lists.Current())
	return nil
}

func (h *Hub) handlePing(ctx context.Context, c *Client, raw json.RawMessage) error {
	c.Send(EvtPong, nil)
	return nil
}
