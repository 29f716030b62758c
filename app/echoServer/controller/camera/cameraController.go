package camera

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"camrental/app/echoServer/jwtx"
	"camrental/app/echoServer/validation"
	"camrental/model"
	camerasvc "camrental/service/camera"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc camerasvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// List cameras
// @Summary      Search the catalog
// @Tags         cameras
// @Produce      json
// @Param        search     query  string  false  "free text"
// @Param        category   query  string  false  "category or all"
// @Param        min_price  query  number  false  "minimum price per day"
// @Param        max_price  query  number  false  "maximum price per day"
// @Success      200  {object}  map[string]any
// @Router       /v1/cameras [get]
func (h *Controller) List(c echo.Context) error {
	f := model.CameraFilter{
		Search:   c.QueryParam("search"),
		Category: c.QueryParam("category"),
	}
	var err error
	if f.MinPrice, err = priceParam(c, "min_price"); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid min_price"})
	}
	if f.MaxPrice, err = priceParam(c, "max_price"); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid max_price"})
	}

	rows, err := h.Svc.Search(c.Request().Context(), f)
	if err != nil {
		if errors.Is(err, camerasvc.ErrBadInput) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "min_price exceeds max_price"})
		}
		h.Log.Error("camera list error", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	if rows == nil {
		rows = []model.Camera{}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/cameras/:id
func (h *Controller) Detail(c echo.Context) error {
	row, err := h.Svc.Detail(c.Request().Context(), c.Param("id"))
	if err != nil {
		h.Log.Error("camera detail error", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	if row == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
	}
	return c.JSON(http.StatusOK, row)
}

// POST /v1/cameras  (lender)
func (h *Controller) Create(c echo.Context) error {
	actor, ok := jwtx.Actor(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	if actor.Role != model.RoleLender {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	var req model.CreateCameraReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": validation.Fields(err)})
	}
	cam, err := h.Svc.Create(c.Request().Context(), actor, req)
	if err != nil {
		switch {
		case errors.Is(err, camerasvc.ErrNotLender):
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		case errors.Is(err, camerasvc.ErrBadInput):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
		}
		h.Log.Error("camera create error", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusCreated, cam)
}

func priceParam(c echo.Context, name string) (*float64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return nil, errors.New("invalid price")
	}
	return &v, nil
}
