package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/irnd04/zticket/models"
	"github.com/irnd04/zticket/services"
)

type SeatHandler struct {
	seats *services.SeatService
}

func NewSeatHandler(seats *services.SeatService) *SeatHandler {
	return &SeatHandler{seats: seats}
}

// List returns the status of every seat. Owners are not exposed; the
// map is for rendering a seat picker, not for auditing.
func (h *SeatHandler) List(c echo.Context) error {
	seats, err := h.seats.AllSeats(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	available := 0
	for i := range seats {
		seats[i].Owner = ""
		if seats[i].Status == models.SeatAvailable {
			available++
		}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"total":     len(seats),
		"available": available,
		"seats":     seats,
	})
}
