package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"

	"github.com/TheZedxD/HomeGameServer/internal/v1/metrics"
	"github.com/TheZedxD/HomeGameServer/internal/v1/types"
)

// Redis is a durable snapshot repository backed by a Redis instance. All
// calls run through a circuit breaker so a dead Redis degrades to dropped
// snapshots instead of piling up blocked goroutines.
type Redis struct {
	client *redis.Client
	cb     *gobreaker.CircuitBreaker
	ttl    time.Duration
}

// NewRedis creates a Redis repository and verifies connectivity immediately.
func NewRedis(addr, password string) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	st := gobreaker.Settings{
		Name:        "store",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     15 * time.Second,
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			var stateVal float64
			switch to {
			case gobreaker.StateClosed:
				stateVal = 0
			case gobreaker.StateOpen:
				stateVal = 1
			case gobreaker.StateHalfOpen:
				stateVal = 2
			}
			metrics.CircuitBreakerState.WithLabelValues("redis").Set(stateVal)
		},
	}

	slog.Info("Connected to Redis snapshot store", "addr", addr)
	return &Redis{
		client: rdb,
		cb:     gobreaker.NewCircuitBreaker(st),
		// Rooms are short-lived; stale snapshots have no value after a day.
		ttl: 24 * time.Hour,
	}, nil
}

// NewRedisFromClient wraps an existing client. Used by tests with miniredis.
func NewRedisFromClient(client *redis.Client) *Redis {
	return &Redis{
		client: client,
		cb:     gobreaker.NewCircuitBreaker(gobreaker.Settings{Name: "store"}),
		ttl:    24 * time.Hour,
	}
}

func snapshotKey(roomID types.RoomID) string {
	return fmt.Sprintf("game:room:%s", roomID)
}

func (r *Redis) Save(ctx context.Context, roomID types.RoomID, state []byte) error {
	_, err := r.cb.Execute(func() (interface{}, error) {
		return nil, r.client.Set(ctx, snapshotKey(roomID), state, r.ttl).Err()
	})
	if err != nil {
		if err == gobreaker.ErrOpenState {
			metrics.CircuitBreakerFailures.WithLabelValues("redis").Inc()
			slog.Warn("Store circuit breaker open, dropping snapshot", "roomId", roomID)
			return nil // best-effort: drop, don't fail the dispatch
		}
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func (r *Redis) Load(ctx context.Context, roomID types.RoomID) ([]byte, error) {
	res, err := r.cb.Execute(func() (interface{}, error) {
		blob, err := r.client.Get(ctx, snapshotKey(roomID)).Bytes()
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return blob, err
	})
	if err != nil {
		if err == gobreaker.ErrOpenState {
			metrics.CircuitBreakerFailures.WithLabelValues("redis").Inc()
			return nil, ErrNotFound
		}
		return nil, err
	}
	return res.([]byte), nil
}

func (r *Redis) Remove(ctx context.Context, roomID types.RoomID) error {
	_, err := r.cb.Execute(func() (interface{}, error) {
		return nil, r.client.Del(ctx, snapshotKey(roomID)).Err()
	})
	if err != nil {
		if err == gobreaker.ErrOpenState {
			metrics.CircuitBreakerFailures.WithLabelValues("redis").Inc()
			return nil
		}
		return fmt.Errorf("failed to remove snapshot: %w", err)
	}
	return nil
}

// Ping checks backend connectivity. Used by the readiness probe.
func (r *Redis) Ping(ctx context.Context) error {
	_, err := r.cb.Execute(func() (interface{}, error) {
		return nil, r.client.Ping(ctx).Err()
	})
	if err != nil && err == gobreaker.ErrOpenState {
		metrics.CircuitBreakerFailures.WithLabelValues("redis").Inc()
	}
	return err
}

// Client exposes the underlying connection for components that share it,
// like the rate limiter store.
func (r *Redis) Client() *redis.Client {
	return r.client
}

func (r *Redis) Close() error {
	return r.client.Close()
}
