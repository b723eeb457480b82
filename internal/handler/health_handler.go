package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/qrattend-backend/internal/response"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

// HealthHandler reports backend configuration and dependency reachability.
type HealthHandler struct {
	startTime time.Time
	info      map[string]string
	checks    map[string]HealthCheck
	log       zerolog.Logger
}

// NewHealthHandler creates a HealthHandler. info is echoed as-is; each check
// runs on every request.
func NewHealthHandler(info map[string]string, checks map[string]HealthCheck, log zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		startTime: time.Now(),
		info:      info,
		checks:    checks,
		log:       log.With().Str("component", "health_handler").Logger(),
	}
}

// Health godoc
// GET /health
// 200 when every dependency answers, 503 otherwise.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	status := "ok"
	deps := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.log.Warn().Err(err).Str("dependency", name).Msg("Health check failed")
			deps[name] = "down"
			status = "degraded"
			continue
		}
		deps[name] = "up"
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	response.Success(c, code, gin.H{
		"status":       status,
		"uptime":       time.Since(h.startTime).Round(time.Second).String(),
		"goroutines":   runtime.NumGoroutine(),
		"go_version":   runtime.Version(),
		"backends":     h.info,
		"dependencies": deps,
	})
}
