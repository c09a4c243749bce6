// Package health exposes Kubernetes-style liveness and readiness probes.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/TheZedxD/HomeGameServer/internal/v1/logging"
)

// Pinger is the slice of the snapshot repository the probes need. Nil means
// the server runs on the in-memory store and has no external dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler manages health check endpoints.
type Handler struct {
	repo Pinger
}

// NewHandler creates a health check handler. repo may be nil.
func NewHandler(repo Pinger) *Handler {
	return &Handler{repo: repo}
}

// LivenessResponse represents the liveness probe response.
type LivenessResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// ReadinessResponse represents the readiness probe response.
type ReadinessResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Timestamp string            `json:"timestamp"`
}

// Liveness handles GET /health/live. Returns 200 if the process is alive,
// with no dependency checks.
func (h *Handler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, LivenessResponse{
		Status:    "alive",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Readiness handles GET /health/ready. Returns 200 only when the snapshot
// store is reachable, 503 otherwise.
func (h *Handler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{
		"snapshot_store": h.checkStore(ctx),
	}

	status := "ready"
	statusCode := http.StatusOK
	if checks["snapshot_store"] != "healthy" {
		status = "unavailable"
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, ReadinessResponse{
		Status:    status,
		Checks:    checks,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) checkStore(ctx context.Context) string {
	if h.repo == nil {
		return "healthy" // in-memory mode
	}
	if err := h.repo.Ping(ctx); err != nil {
		logging.Error(ctx, "Snapshot store health check failed", zap.Error(err))
		return "unhealthy"
	}
	return "healthy"
}
