package admin

import (
	"log/slog"
	"net/http"

	adminsvc "camrental/service/admin"

	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc adminsvc.Service
	Log *slog.Logger
}

// GET /v1/admin/stats  (admin, enforced by the route group)
func (h *Controller) Stats(c echo.Context) error {
	st, err := h.Svc.Stats(c.Request().Context())
	if err != nil {
		h.Log.Error("admin stats", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, st)
}

// GET /v1/admin/users  (admin, enforced by the route group)
func (h *Controller) Users(c echo.Context) error {
	users, err := h.Svc.Users(c.Request().Context())
	if err != nil {
		h.Log.Error("admin users", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to fetch users"})
	}
	return c.JSON(http.StatusOK, echo.Map{"users": users})
}
