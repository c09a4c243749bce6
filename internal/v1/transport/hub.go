package transport

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"k8s.io/utils/clock"

	"github.com/TheZedxD/HomeGameServer/internal/v1/auth"
	"github.com/TheZedxD/HomeGameServer/internal/v1/game"
	"github.com/TheZedxD/HomeGameServer/internal/v1/logging"
	"github.com/TheZedxD/HomeGameServer/internal/v1/metrics"
	"github.com/TheZedxD/HomeGameServer/internal/v1/ratelimit"
	"github.com/TheZedxD/HomeGameServer/internal/v1/room"
	"github.com/TheZedxD/HomeGameServer/internal/v1/types"
)

// Options configures the hub.
type Options struct {
	AllowedOrigins []string
	Clock          clock.Clock
}

// Hub is the WebSocket gateway: it authenticates connections, decodes
// inbound envelopes into engine operations, and fans engine notifications
// out to room subscribers. The hub holds no game state of its own; the room
// manager is the single source of truth.
type Hub struct {
	manager   *room.Manager
	registry  *game.Registry
	validator types.TokenValidator
	limiter   *ratelimit.Limiter
	opts      Options

	lists *listBroadcaster

	// observeLatency, when set, feeds the resource monitor's event latency
	// window. Assigned before Run.
	observeLatency func(time.Duration)

	mu      sync.RWMutex
	clients map[types.PlayerID]*Client
	subs    map[types.RoomID]map[types.PlayerID]*Client

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewHub wires the gateway to the engine.
func NewHub(manager *room.Manager, registry *game.Registry, validator types.TokenValidator, limiter *ratelimit.Limiter, opts Options) *Hub {
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	h := &Hub{
		manager:   manager,
		registry:  registry,
		validator: validator,
		limiter:   limiter,
		opts:      opts,
		clients:   make(map[types.PlayerID]*Client),
		subs:      make(map[types.RoomID]map[types.PlayerID]*Client),
	}
	h.ctx, h.cancel = context.WithCancel(context.Background())
	h.lists = newListBroadcaster(opts.Clock, manager.ListLobby, h.broadcastAll)
	return h
}

// SetLatencyObserver registers the monitor's latency sink. Must be called
// before Run.
func (h *Hub) SetLatencyObserver(fn func(time.Duration)) {
	h.observeLatency = fn
}

// BroadcastServerMetrics pushes a resource snapshot to every client.
func (h *Hub) BroadcastServerMetrics(payload any) {
	h.broadcastAll(EvtServerMetrics, payload)
}

// Run starts the engine event fan-out, the room-list flush worker, and the
// plugin catalog watcher.
func (h *Hub) Run() {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.lists.run(h.ctx)
	}()

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		for {
			select {
			case <-h.ctx.Done():
				return
			case ev := <-h.manager.Events():
				h.handleRoomEvent(ev)
			}
		}
	}()

	// Late plugin registrations refresh every client's game catalog.
	watch := h.registry.Watch()
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		for {
			select {
			case <-h.ctx.Done():
				return
			case <-watch:
				h.broadcastAll(EvtAvailableGames, availableGamesPayload{Games: h.registry.List()})
			}
		}
	}()
}

// Shutdown disconnects every client and stops background work.
func (h *Hub) Shutdown(ctx context.Context) error {
	logging.Info(ctx, "Shutting down gateway, closing all connections")

	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.Disconnect()
	}

	h.cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.wg.Wait()
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type availableGamesPayload struct {
	Games []game.Descriptor `json:"games"`
}

type connectedPayload struct {
	PlayerID    types.PlayerID `json:"playerId"`
	DisplayName string         `json:"displayName"`
}

// ServeWs authenticates the request and upgrades it to a WebSocket session.
func (h *Hub) ServeWs(c *gin.Context) {
	if !h.limiter.CheckWebSocket(c) {
		return
	}

	token, err := extractToken(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token not provided"})
		return
	}

	claims, err := h.validator.ValidateToken(token)
	if err != nil {
		logging.Warn(c.Request.Context(), "Token validation failed", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	if err := validateOrigin(c.Request, h.opts.AllowedOrigins); err != nil {
		logging.Security(c.Request.Context(), "WebSocket origin rejected",
			zap.String("origin", c.GetHeader("Origin")))
		c.JSON(http.StatusForbidden, gin.H{"error": "origin not allowed"})
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return validateOrigin(r, h.opts.AllowedOrigins) == nil
		},
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to upgrade connection", zap.Error(err))
		return
	}

	h.HandleConnection(conn, claims, c.Query("name"), c.ClientIP())
}

// HandleConnection registers an established connection and starts its pumps.
// Split from ServeWs so tests can drive it with a fake connection.
func (h *Hub) HandleConnection(conn wsConnection, claims *auth.Claims, requestedName, remoteAddr string) {
	playerID := types.PlayerID(claims.Subject)
	client := newClient(conn, h, playerID, resolveDisplayName(requestedName, claims), remoteAddr)

	// One live connection per player. A newer connection supersedes the old
	// one, which covers refresh-reconnect without waiting for the old socket
	// to time out.
	h.mu.Lock()
	if prev, ok := h.clients[playerID]; ok {
		prev.Disconnect()
	}
	h.clients[playerID] = client
	h.mu.Unlock()

	metrics.IncConnection()
	logging.Info(logging.WithPlayer(context.Background(), string(playerID)), "Client connected",
		zap.String("displayName", client.DisplayName), zap.String("remoteAddr", remoteAddr))

	client.Send(EvtConnected, connectedPayload{PlayerID: playerID, DisplayName: client.DisplayName})
	client.Send(EvtAvailableGames, availableGamesPayload{Games: h.registry.List()})
	client.Send(EvtUpdateRoomList, h.lists.Current())

	// Resume a held seat if the player dropped mid-game.
	if roomID, ok := h.manager.Reconnect(playerID); ok {
		h.subscribe(roomID, client)
		if snap, err := h.manager.Snapshot(roomID); err == nil {
			client.Send(EvtRoomStateUpdate, snap)
		}
		if state, version, running := h.manager.GameState(roomID); running {
			client.Send(EvtGameStateUpdate, gameStatePayload{State: state, Version: version})
		}
	}

	go client.writePump()
	go client.readPump()
}

func (h *Hub) handleDisconnect(c *Client) {
	h.mu.Lock()
	if current, ok := h.clients[c.ID]; ok && current == c {
		delete(h.clients, c.ID)
	} else {
		// Superseded by a newer connection; the new one owns the seat.
		h.mu.Unlock()
		c.Disconnect()
		return
	}
	h.mu.Unlock()

	c.Disconnect()
	h.manager.Disconnect(c.ID)
	logging.Info(logging.WithPlayer(context.Background(), string(c.ID)), "Client disconnected")
}

func (h *Hub) subscribe(roomID types.RoomID, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[roomID] == nil {
		h.subs[roomID] = make(map[types.PlayerID]*Client)
	}
	h.subs[roomID][c.ID] = c
}

func (h *Hub) unsubscribe(roomID types.RoomID, playerID types.PlayerID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.subs[roomID]; ok {
		delete(members, playerID)
		if len(members) == 0 {
			delete(h.subs, roomID)
		}
	}
}

func (h *Hub) dropRoom(roomID types.RoomID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, roomID)
}

func (h *Hub) sendToRoom(roomID types.RoomID, event string, payload any) {
	h.mu.RLock()
	members := make([]*Client, 0, len(h.subs[roomID]))
	for _, c := range h.subs[roomID] {
		members = append(members, c)
	}
	h.mu.RUnlock()

	for _, c := range members {
		c.Send(event, payload)
	}
}

func (h *Hub) broadcastAll(event string, payload any) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.Send(event, payload)
	}
}

type joinedMatchLobbyPayload struct {
	Room   *room.Snapshot `json:"room"`
	YourID types.PlayerID `json:"yourId"`
}

type playerLeftPayload struct {
	RoomID     types.RoomID   `json:"roomId"`
	PlayerID   types.PlayerID `json:"playerId"`
	PlayerName string         `json:"playerName"`
	Reason     string         `json:"reason,omitempty"`
}

type roomClosingPayload struct {
	RoomID           types.RoomID `json:"roomId"`
	Reason           string       `json:"reason,omitempty"`
	SecondsRemaining int          `json:"secondsRemaining"`
}

type roomClosedPayload struct {
	RoomID types.RoomID `json:"roomId"`
	Reason string       `json:"reason,omitempty"`
}

type gameStartPayload struct {
	Room    *room.Snapshot `json:"room"`
	State   game.State     `json:"state"`
	Version uint64         `json:"version"`
}

type gameStatePayload struct {
	State   game.State     `json:"state"`
	Version uint64         `json:"version"`
	Context map[string]any `json:"context,omitempty"`
}

// handleRoomEvent translates one engine notification into client frames.
func (h *Hub) handleRoomEvent(ev room.Event) {
	switch ev.Kind {
	case room.EventRoomCreated, room.EventRoomUpdated:
		h.sendToRoom(ev.RoomID, EvtRoomStateUpdate, ev.Room)
		h.lists.MarkDirty()
	case room.EventPlayerLeft:
		h.sendToRoom(ev.RoomID, EvtPlayerLeft, playerLeftPayload{
			RoomID:     ev.RoomID,
			PlayerID:   ev.PlayerID,
			PlayerName: ev.PlayerName,
			Reason:     ev.Reason,
		})
		h.unsubscribe(ev.RoomID, ev.PlayerID)
		h.lists.MarkDirty()
	case room.EventRoomClosing:
		h.sendToRoom(ev.RoomID, EvtRoomClosing, roomClosingPayload{
			RoomID:           ev.RoomID,
			Reason:           ev.Reason,
			SecondsRemaining: ev.SecondsRemaining,
		})
	case room.EventRoomRemoved:
		h.sendToRoom(ev.RoomID, EvtRoomClosed, roomClosedPayload{RoomID: ev.RoomID, Reason: ev.Reason})
		h.dropRoom(ev.RoomID)
		h.lists.MarkDirty()
	case room.EventGameStarted:
		h.sendToRoom(ev.RoomID, EvtGameStart, gameStartPayload{Room: ev.Room, State: ev.State, Version: ev.Version})
		h.lists.MarkDirty()
	case room.EventGameState:
		h.sendToRoom(ev.RoomID, EvtGameStateUpdate, gameStatePayload{State: ev.State, Version: ev.Version, Context: ev.Context})
	case room.EventRoundEnd:
		h.sendToRoom(ev.RoomID, EvtRoundEnd, ev.Payload)
	default:
		logging.Warn(context.Background(), "Unknown engine event kind", zap.String("kind", string(ev.Kind)))
	}
}

// extractToken pulls the bearer token from the query string or the
// Sec-WebSocket-Protocol header.
func extractToken(c *gin.Context) (string, error) {
	if token := c.Query("token"); token != "" {
		return token, nil
	}
	headerVal := c.GetHeader("Sec-WebSocket-Protocol")
	for _, p := range strings.Split(headerVal, ",") {
		p = strings.TrimSpace(p)
		if p != "" && p != "access_token" {
			return p, nil
		}
	}
	return "", fmt.Errorf("token not provided")
}

// validateOrigin checks the request origin against the allow list. Requests
// without an Origin header (non-browser clients) are allowed.
func validateOrigin(r *http.Request, allowedOrigins []string) error {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return nil
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return fmt.Errorf("invalid origin URL: %w", err)
	}

	for _, allowed := range allowedOrigins {
		allowedURL, err := url.Parse(allowed)
		if err != nil {
			continue
		}
		if originURL.Scheme == allowedURL.Scheme && originURL.Host == allowedURL.Host {
			return nil
		}
	}
	return fmt.Errorf("origin not allowed: %s", origin)
}

// resolveDisplayName sanitizes the requested name, falling back to the token
// claims and finally to a generic name derived from the subject.
func resolveDisplayName(requested string, claims *auth.Claims) string {
	for _, candidate := range []string{requested, claims.Name} {
		if candidate == "" {
			continue
		}
		if name, err := types.SanitizeDisplayName(candidate); err == nil {
			return string(name)
		}
	}
	suffix := claims.Subject
	if len(suffix) > 6 {
		suffix = suffix[:6]
	}
	return "Player " + suffix
}
