package transport

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/TheZedxD/HomeGameServer/internal/v1/logging"
	"github.com/TheZedxD/HomeGameServer/internal/v1/metrics"
	"github.com/TheZedxD/HomeGameServer/internal/v1/types"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second // must be under pongWait

	maxMessageSize = 16 * 1024

	sendQueueSize = 512
	// bulkHighWater is where lobby chatter starts being shed, keeping the
	// tail of the queue free for state-bearing frames.
	bulkHighWater = sendQueueSize - 64
)

// wsConnection is the slice of *websocket.Conn the client uses, narrowed so
// tests can drive the pumps with a fake.
type wsConnection interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
	SetWriteDeadline(t time.Time) error
	SetReadDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(appData string) error)
}

// Client represents one player's WebSocket connection. All outbound traffic
// flows through a single ordered queue, so a subscriber sees room events in
// the order the engine emitted them. When the queue backs up, lobby chatter
// is shed first and the remaining slots are reserved for state-bearing
// frames.
type Client struct {
	conn wsConnection
	hub  *Hub

	ID          types.PlayerID
	DisplayName string
	remoteAddr  string

	mu     sync.RWMutex
	closed bool

	send chan []byte
}

func newClient(conn wsConnection, hub *Hub, id types.PlayerID, displayName, remoteAddr string) *Client {
	return &Client{
		conn:        conn,
		hub:         hub,
		ID:          id,
		DisplayName: displayName,
		remoteAddr:  remoteAddr,
		send:        make(chan []byte, sendQueueSize),
	}
}

// criticalEvents keep their queue slot past the bulk high-water mark.
// Everything a client must see to render the game correctly is on this list.
var criticalEvents = map[string]bool{
	EvtError:            true,
	EvtJoinedMatchLobby: true,
	EvtGameStart:        true,
	EvtGameStateUpdate:  true,
	EvtRoundEnd:         true,
	EvtRoomClosing:      true,
	EvtRoomClosed:       true,
}

// Send marshals an envelope and queues it without blocking. Shed bulk frames
// are survivable because every later state frame carries the full snapshot.
func (c *Client) Send(event string, payload any) {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return
	}
	c.mu.RUnlock()

	data, err := encodeEnvelope(event, payload)
	if err != nil {
		logging.Error(context.Background(), "Failed to marshal outbound envelope",
			zap.String("event", event), zap.Error(err))
		return
	}

	defer func() {
		if r := recover(); r != nil {
			logging.Warn(context.Background(), "Recovered from send to closing client",
				zap.String("playerId", string(c.ID)), zap.Any("panic", r))
		}
	}()

	if !criticalEvents[event] && len(c.send) >= bulkHighWater {
		logging.Warn(context.Background(), "Client queue near capacity, shedding bulk frame",
			zap.String("playerId", string(c.ID)), zap.String("event", event))
		return
	}
	select {
	case c.send <- data:
	default:
		logging.Error(context.Background(), "Client queue full, dropping frame",
			zap.String("playerId", string(c.ID)), zap.String("event", event))
	}
}

// SendError reports a failed operation back to this client only.
func (c *Client) SendError(err error, action string) {
	c.Send(EvtError, errorPayloadFrom(err, action))
}

// Disconnect closes the send queue, which drains the writePump and closes
// the socket. Safe to call more than once.
func (c *Client) Disconnect() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	close(c.send)
}

// readPump reads frames until the connection drops, routing each envelope
// through the hub. It owns the read deadline and pong handling.
func (c *Client) readPump() {
	defer func() {
		c.hub.handleDisconnect(c)
		_ = c.conn.Close()
		metrics.DecConnection()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			logging.Warn(context.Background(), "Failed to unmarshal envelope",
				zap.String("playerId", string(c.ID)), zap.Error(err))
			c.SendError(types.E(types.KindValidation, "malformed_frame", "frame is not a valid event envelope"), "")
			continue
		}

		ctx := logging.WithPlayer(context.Background(), string(c.ID))
		c.hub.route(ctx, c, env)
	}
}

// writePump drains the send queue in order and keeps the connection alive
// with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logging.Error(context.Background(), "Error writing frame",
					zap.String("playerId", string(c.ID)), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
