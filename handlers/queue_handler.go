package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/irnd04/zticket/services"
)

type QueueHandler struct {
	entry *services.EntryService
}

func NewQueueHandler(entry *services.EntryService) *QueueHandler {
	return &QueueHandler{entry: entry}
}

// Enter issues a fresh queue token and places it at the tail of the
// waiting queue. Sold-out events are rejected before a token is minted.
func (h *QueueHandler) Enter(c echo.Context) error {
	token, err := h.entry.Enter(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, token)
}

// Status reports rank and state for a token. Polling doubles as the
// heartbeat: a token that stops asking stops counting as alive.
func (h *QueueHandler) Status(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"code":    "MISSING_TOKEN",
			"message": "token query parameter is required",
		})
	}
	status, err := h.entry.Status(c.Request().Context(), token)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, status)
}
