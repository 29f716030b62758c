package wallet

import (
	"context"
	"log/slog"
	"net/http"

	"camrental/app/echoServer/jwtx"
	"camrental/model"
	walletsvc "camrental/service/wallet"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc walletsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// GET /v1/wallet
// @Summary Wallet balance and the 20 most recent transactions
// @Success 200 {object} model.Wallet
// @Failure 401,404,500
func (h *Controller) Get(c echo.Context) error {
	actor, ok := jwtx.Actor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	w, err := h.Svc.Wallet(c.Request().Context(), actor.ID)
	if err != nil {
		return h.fail(c, "wallet get", err)
	}
	return c.JSON(http.StatusOK, w)
}

// POST /v1/wallet/deposit
func (h *Controller) Deposit(c echo.Context) error {
	return h.move(c, "wallet deposit", h.Svc.Deposit)
}

// POST /v1/wallet/withdraw
func (h *Controller) Withdraw(c echo.Context) error {
	return h.move(c, "wallet withdraw", h.Svc.Withdraw)
}

func (h *Controller) move(c echo.Context, op string, fn func(context.Context, string, float64) (*model.Transaction, error)) error {
	actor, ok := jwtx.Actor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	var req AmountReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  map[string]string{"amount": "required, gt 0"},
		})
	}
	tx, err := fn(c.Request().Context(), actor.ID, req.Amount)
	if err != nil {
		return h.fail(c, op, err)
	}
	return c.JSON(http.StatusCreated, tx)
}

func (h *Controller) fail(c echo.Context, op string, err error) error {
	switch walletsvc.Code(err) {
	case walletsvc.ErrInvalidAmount:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	case walletsvc.ErrInsufficientFunds:
		return c.JSON(http.StatusConflict, echo.Map{"message": "insufficient funds"})
	case walletsvc.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
	}
	h.Log.Error(op, "err", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
}
