// Package ratelimit throttles WebSocket connections by IP and inbound game
// events by player, backed by Redis when available and local memory otherwise.
package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"

	"github.com/TheZedxD/HomeGameServer/internal/v1/config"
	"github.com/TheZedxD/HomeGameServer/internal/v1/logging"
	"github.com/TheZedxD/HomeGameServer/internal/v1/types"
)

// Limiter holds the per-concern limiter instances.
type Limiter struct {
	wsIP     *limiter.Limiter
	wsEvents *limiter.Limiter
	store    limiter.Store
	disabled bool
}

// New builds a Limiter from the configured rate strings (ulule formatted,
// e.g. "100-M"). A nil redisClient selects the in-memory store.
func New(cfg *config.Config, redisClient *redis.Client) (*Limiter, error) {
	ipRate, err := limiter.NewRateFromFormatted(cfg.RateLimitWsIp)
	if err != nil {
		return nil, fmt.Errorf("invalid WS IP rate: %w", err)
	}
	eventRate, err := limiter.NewRateFromFormatted(cfg.RateLimitWsEvents)
	if err != nil {
		return nil, fmt.Errorf("invalid WS events rate: %w", err)
	}

	var store limiter.Store
	if redisClient != nil {
		s, err := sredis.NewStoreWithOptions(redisClient, limiter.StoreOptions{
			Prefix: "limiter:v1:",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create redis store: %w", err)
		}
		store = s
		logging.Info(context.Background(), "Rate limiter using Redis store")
	} else {
		store = memory.NewStore()
		logging.Info(context.Background(), "Rate limiter using memory store")
	}

	return &Limiter{
		wsIP:     limiter.New(store, ipRate),
		wsEvents: limiter.New(store, eventRate),
		store:    store,
		disabled: cfg.DevelopmentMode,
	}, nil
}

// CheckWebSocket enforces the per-IP connection limit before upgrade. When
// the limit is reached it writes the 429 response itself and returns false.
func (l *Limiter) CheckWebSocket(c *gin.Context) bool {
	if l == nil || l.disabled {
		return true
	}

	ctx := c.Request.Context()
	lctx, err := l.wsIP.Get(ctx, "ws:ip:"+c.ClientIP())
	if err != nil {
		// Store failure fails open; availability beats strictness here.
		logging.Error(ctx, "Rate limiter store failed", zap.Error(err))
		return true
	}

	if lctx.Reached {
		logging.Security(ctx, "WebSocket connection rate limited",
			zap.String("ip", c.ClientIP()))
		c.Header("Retry-After", strconv.FormatInt(lctx.Reset-time.Now().Unix(), 10))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":       "too many connections",
			"retry_after": lctx.Reset,
		})
		return false
	}
	return true
}

// AllowEvent enforces the per-player inbound event allowance. Callers map a
// false return to a rate_limited error event rather than closing the socket.
func (l *Limiter) AllowEvent(ctx context.Context, playerID types.PlayerID) bool {
	if l == nil || l.disabled {
		return true
	}

	lctx, err := l.wsEvents.Get(ctx, "ws:player:"+string(playerID))
	if err != nil {
		logging.Error(ctx, "Rate limiter store failed", zap.Error(err))
		return true
	}
	if lctx.Reached {
		logging.Security(ctx, "Player event rate limited",
			zap.String("playerId", string(playerID)))
		return false
	}
	return true
}
