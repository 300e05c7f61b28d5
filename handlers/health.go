package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/sahilchouksey/examace-vault/utils/response"
)

// DBChecker is satisfied by database.Storage
type DBChecker interface {
	HealthCheck(ctx context.Context) error
}

// CachePinger is satisfied by *cache.RedisCache
type CachePinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler answers GET /ping
type HealthHandler struct {
	db    DBChecker
	cache CachePinger
}

// NewHealthHandler creates the handler; cache may be nil
func NewHealthHandler(db DBChecker, cache CachePinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// HandleCheckHealth reports 503 when the database is down. A missing cache
// only degrades the service.
func (h *HealthHandler) HandleCheckHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
	defer cancel()

	status := fiber.Map{"status": "ok", "database": "ok", "cache": "disabled"}
	if h.cache != nil {
		status["cache"] = "ok"
		if err := h.cache.Ping(ctx); err != nil {
			status["cache"] = "unavailable"
			status["status"] = "degraded"
		}
	}
	if err := h.db.HealthCheck(ctx); err != nil {
		status["database"] = "unavailable"
		status["status"] = "down"
		return response.ErrorWithData(c, fiber.StatusServiceUnavailable, "Database unavailable", response.CodeUnavailable, status)
	}
	return response.Success(c, status)
}
