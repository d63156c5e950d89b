package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/irnd04/zticket/services"
)

type TicketHandler struct {
	tickets *services.TicketService
}

func NewTicketHandler(tickets *services.TicketService) *TicketHandler {
	return &TicketHandler{tickets: tickets}
}

type purchaseRequest struct {
	Token      string `json:"token"`
	SeatNumber int    `json:"seat_number"`
}

// Purchase commits a seat to the caller's token. The response is final
// the moment it returns PAID; settlement catches up in the background.
func (h *TicketHandler) Purchase(c echo.Context) error {
	var req purchaseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"code":    "INVALID_REQUEST",
			"message": "invalid request body",
		})
	}
	if req.Token == "" {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"code":    "MISSING_TOKEN",
			"message": "token is required",
		})
	}
	ticket, err := h.tickets.Purchase(c.Request().Context(), req.Token, req.SeatNumber)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, ticket)
}
