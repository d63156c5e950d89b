package handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Register mounts every route under /api/v1.
func Register(e *echo.Echo, queue *QueueHandler, seats *SeatHandler, tickets *TicketHandler, health *HealthHandler) {
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	e.GET("/health", health.Check)

	v1 := e.Group("/api/v1")
	v1.POST("/queue/enter", queue.Enter)
	v1.GET("/queue/status", queue.Status)
	v1.GET("/seats", seats.List)
	v1.POST("/tickets/purchase", tickets.Purchase)
}
