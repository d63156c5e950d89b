package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/irnd04/zticket/models"
)

// fail maps service errors onto JSON responses. BusinessError carries
// its own status and code; anything else is a 500 that gets logged but
// not leaked.
func fail(c echo.Context, err error) error {
	var berr *models.BusinessError
	if errors.As(err, &berr) {
		return c.JSON(berr.Status, map[string]any{
			"code":    berr.Code,
			"message": berr.Message,
		})
	}
	slog.Error("unhandled request error", "path", c.Path(), "error", err)
	return c.JSON(http.StatusInternalServerError, map[string]any{
		"code":    models.ErrInternal.Code,
		"message": models.ErrInternal.Message,
	})
}
