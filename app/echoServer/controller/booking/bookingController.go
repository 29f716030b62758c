package booking

import (
	"log/slog"
	"net/http"

	"camrental/app/echoServer/jwtx"
	"camrental/app/echoServer/validation"
	bookingsvc "camrental/service/booking"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc     bookingsvc.Service
	Queries bookingsvc.QueryService
	V       *validator.Validate
	Log     *slog.Logger
}

// Submit a rental request
// @Summary      Request a camera
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        payload  body  SubmitBookingReq  true  "Booking request"
// @Success      201  {object}  model.Booking
// @Failure      400,403,404  {object}  map[string]any
// @Router       /v1/bookings [post]
func (h *Controller) Submit(c echo.Context) error {
	actor, ok := jwtx.Actor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	var req SubmitBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": validation.Fields(err)})
	}
	pickup, err := parseDate(req.PickupDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}
	ret, err := parseDate(req.ReturnDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}

	b, err := h.Svc.SubmitRequest(c.Request().Context(), bookingsvc.SubmitReq{
		CameraID:   req.CameraID,
		RenterID:   actor.ID,
		PickupDate: pickup,
		ReturnDate: ret,
	})
	if err != nil {
		return h.fail(c, "booking submit", err)
	}
	return c.JSON(http.StatusCreated, b.Redacted())
}

// POST /v1/bookings/:id/approve
func (h *Controller) Approve(c echo.Context) error {
	actor, ok := jwtx.Actor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	b, err := h.Svc.ApproveRequest(c.Request().Context(), c.Param("id"), actor)
	if err != nil {
		return h.fail(c, "booking approve", err)
	}
	return c.JSON(http.StatusOK, b)
}

// POST /v1/bookings/:id/reject
func (h *Controller) Reject(c echo.Context) error {
	actor, ok := jwtx.Actor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	b, err := h.Svc.RejectRequest(c.Request().Context(), c.Param("id"), actor)
	if err != nil {
		return h.fail(c, "booking reject", err)
	}
	return c.JSON(http.StatusOK, b)
}

// Confirm an approved booking and mint both handoff codes. The codes are only
// ever returned to the lender.
// @Summary      Confirm booking
// @Tags         bookings
// @Produce      json
// @Param        id  path  string  true  "Booking ID"
// @Success      200  {object}  map[string]any
// @Failure      403,404,409  {object}  map[string]any
// @Router       /v1/bookings/{id}/confirm [post]
func (h *Controller) Confirm(c echo.Context) error {
	actor, ok := jwtx.Actor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	out, err := h.Svc.ConfirmAndIssueOTPs(c.Request().Context(), c.Param("id"), actor)
	if err != nil {
		return h.fail(c, "booking confirm", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"booking":    out.Booking,
		"pickup_otp": out.PickupOTP,
		"return_otp": out.ReturnOTP,
	})
}

// POST /v1/bookings/:id/verify-pickup
func (h *Controller) VerifyPickup(c echo.Context) error {
	var req VerifyOTPReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "otp must be 6 digits"})
	}
	b, err := h.Svc.VerifyPickup(c.Request().Context(), c.Param("id"), req.OTP)
	if err != nil {
		return h.fail(c, "verify pickup", err)
	}
	return c.JSON(http.StatusOK, b.Redacted())
}

// POST /v1/bookings/:id/verify-return
func (h *Controller) VerifyReturn(c echo.Context) error {
	var req VerifyOTPReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "otp must be 6 digits"})
	}
	b, err := h.Svc.VerifyReturn(c.Request().Context(), c.Param("id"), req.OTP)
	if err != nil {
		return h.fail(c, "verify return", err)
	}
	return c.JSON(http.StatusOK, b.Redacted())
}

// GET /v1/renter/bookings
func (h *Controller) RenterBookings(c echo.Context) error {
	actor, ok := jwtx.Actor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	v, err := h.Queries.RenterView(c.Request().Context(), actor.ID)
	if err != nil {
		h.Log.Error("renter bookings", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, v)
}

// GET /v1/lender/bookings
func (h *Controller) LenderBookings(c echo.Context) error {
	actor, ok := jwtx.Actor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	v, err := h.Queries.LenderView(c.Request().Context(), actor.ID)
	if err != nil {
		h.Log.Error("lender bookings", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Controller) fail(c echo.Context, op string, err error) error {
	switch bookingsvc.Code(err) {
	case bookingsvc.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
	case bookingsvc.ErrForbidden:
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	case bookingsvc.ErrInvalidState:
		return c.JSON(http.StatusConflict, echo.Map{"message": "booking is not in a valid state for this action"})
	case bookingsvc.ErrInvalidRange:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid booking dates"})
	case bookingsvc.ErrInvalidOTP:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid otp"})
	case bookingsvc.ErrSettlement:
		h.Log.Warn(op, "err", err, "req_id", c.Response().Header().Get(echo.HeaderXRequestID))
		return c.JSON(http.StatusBadGateway, echo.Map{"message": "payment settlement failed, please retry"})
	default:
		h.Log.Error(op, "err", err, "req_id", c.Response().Header().Get(echo.HeaderXRequestID))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}
