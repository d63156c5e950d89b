package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

type HealthHandler struct {
	redis *redis.Client
}

func NewHealthHandler(redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{redis: redisClient}
}

func (h *HealthHandler) Check(c echo.Context) error {
	if err := h.redis.Ping(c.Request().Context()).Err(); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]any{
			"status": "unhealthy",
			"redis":  err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"status": "ok"})
}
