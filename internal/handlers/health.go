package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/genpersona/api/internal/database"
	"github.com/genpersona/api/internal/eventbus"
	"github.com/genpersona/api/internal/llm"
	"github.com/genpersona/api/internal/models"
	"github.com/gin-gonic/gin"
)

const version = "0.1.0"

// HealthHandler handles health check endpoints
type HealthHandler struct {
	db      *database.Postgres
	redis   *database.Redis
	bus     *eventbus.Bus
	breaker *llm.Breaker
}

// NewHealthHandler creates a new health handler. Any dependency may be nil.
func NewHealthHandler(db *database.Postgres, redis *database.Redis, bus *eventbus.Bus, breaker *llm.Breaker) *HealthHandler {
	return &HealthHandler{
		db:      db,
		redis:   redis,
		bus:     bus,
		breaker: breaker,
	}
}

// Health returns basic health status
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{Status: "healthy", Version: version})
}

// DeepHealth returns health status with dependency checks
func (h *HealthHandler) DeepHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	deps := make(map[string]string)
	allHealthy := true

	check := func(name string, configured bool, ping func() error) {
		if !configured {
			deps[name] = "not configured"
			return
		}
		if err := ping(); err != nil {
			deps[name] = "unhealthy: " + err.Error()
			allHealthy = false
			return
		}
		deps[name] = "healthy"
	}

	check("database", h.db != nil, func() error { return h.db.Ping(ctx) })
	check("redis", h.redis != nil, func() error { return h.redis.Ping(ctx) })
	check("nats", h.bus != nil, func() error { return h.bus.Ping() })

	if h.breaker != nil {
		state := h.breaker.State()
		deps["generative_service"] = "circuit " + state.String()
		if state == llm.CircuitOpen {
			allHealthy = false
		}
	} else {
		deps["generative_service"] = "not configured"
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if !allHealthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, models.HealthResponse{
		Status:   status,
		Version:  version,
		Services: deps,
	})
}
