package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for the game server.
//
// Naming convention: namespace_subsystem_name
// - namespace: game_server (application-level grouping)
// - subsystem: websocket, room, game (feature-level grouping)
// - name: specific metric (connections_active, events_total, etc.)

var (
	// ActiveWebSocketConnections tracks the current number of active WebSocket connections
	ActiveWebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "game_server",
		Subsystem: "websocket",
		Name:      "connections_active",
		Help:      "Current number of active WebSocket connections",
	})

	// ActiveRooms tracks the current number of rooms
	ActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "game_server",
		Subsystem: "room",
		Name:      "rooms_active",
		Help:      "Current number of rooms",
	})

	// ActiveGames tracks the number of rooms with a live game
	ActiveGames = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "game_server",
		Subsystem: "game",
		Name:      "games_active",
		Help:      "Current number of rooms with a running game",
	})

	// RoomPlayers tracks the number of players seated in each room
	RoomPlayers = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "game_server",
		Subsystem: "room",
		Name:      "players_count",
		Help:      "Number of players in each room",
	}, []string{"room_id"})

	// WebsocketEvents counts inbound events by type and outcome
	WebsocketEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "game_server",
		Subsystem: "websocket",
		Name:      "events_total",
		Help:      "Total WebSocket events processed",
	}, []string{"event_type", "status"})

	// EventHandlingDuration tracks inbound event handling latency
	EventHandlingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "game_server",
		Subsystem: "websocket",
		Name:      "event_handling_seconds",
		Help:      "Time spent handling inbound WebSocket events",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"event_type"})

	// CommandsDispatched counts rules-plugin command dispatches by game and outcome
	CommandsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "game_server",
		Subsystem: "game",
		Name:      "commands_total",
		Help:      "Total commands dispatched against rules plugins",
	}, []string{"game_id", "status"})

	// RoomListVersion exposes the process-wide lobby broadcast version
	RoomListVersion = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "game_server",
		Subsystem: "room",
		Name:      "list_version",
		Help:      "Monotonic version of the last updateRoomList broadcast",
	})

	// CircuitBreakerState tracks repository breaker state (0 closed, 1 open, 2 half-open)
	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "game_server",
		Subsystem: "store",
		Name:      "circuit_breaker_state",
		Help:      "Circuit breaker state for the snapshot repository",
	}, []string{"backend"})

	// CircuitBreakerFailures counts calls rejected by an open breaker
	CircuitBreakerFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "game_server",
		Subsystem: "store",
		Name:      "circuit_breaker_failures_total",
		Help:      "Repository calls rejected because the breaker was open",
	}, []string{"backend"})
)

func IncConnection() {
	ActiveWebSocketConnections.Inc()
}

func DecConnection() {
	ActiveWebSocketConnections.Dec()
}
