package camera

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"camrental/app/echoServer/jwtx"
	"camrental/model"
	camerasvc "camrental/service/camera"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

type repoMock struct {
	camerasvc.Repo
	last    model.CameraFilter
	created *model.Camera
}

func (m *repoMock) Search(ctx context.Context, f model.CameraFilter) ([]model.Camera, error) {
	m.last = f
	return nil, nil
}

func (m *repoMock) Create(ctx context.Context, c *model.Camera) error {
	m.created = c
	return nil
}

func newController(m *repoMock) *Controller {
	return &Controller{
		Svc: camerasvc.New(m),
		V:   validator.New(),
		Log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestList_Filters(t *testing.T) {
	m := &repoMock{}
	h := newController(m)
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/cameras?search=sony&category=mirrorless&min_price=10&max_price=80", nil), rec)
	require.NoError(t, h.List(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"data":[]}`, rec.Body.String())
	require.Equal(t, "sony", m.last.Search)
	require.Equal(t, "mirrorless", m.last.Category)
	require.Equal(t, 10.0, *m.last.MinPrice)
	require.Equal(t, 80.0, *m.last.MaxPrice)

	for _, q := range []string{"min_price=abc", "max_price=-1", "min_price=90&max_price=10"} {
		rec = httptest.NewRecorder()
		c = e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/cameras?"+q, nil), rec)
		require.NoError(t, h.List(c))
		require.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestCreate(t *testing.T) {
	m := &repoMock{}
	h := newController(m)
	e := echo.New()

	post := func(body string, actor model.Actor) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/cameras", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		jwtx.SetActor(c, actor)
		require.NoError(t, h.Create(c))
		return rec
	}
	lender := model.Actor{ID: "l1", Role: model.RoleLender}
	valid := `{"name":"Canon R5","category":"mirrorless","description":"45MP body, two cards","price_per_day":75}`

	rec := post(valid, lender)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "l1", m.created.LenderID)

	require.Equal(t, http.StatusForbidden, post(valid, model.Actor{ID: "r1", Role: model.RoleRenter}).Code)
	require.Equal(t, http.StatusBadRequest, post(`{"name":"R5","category":"x","description":"short","price_per_day":75}`, lender).Code)
	require.Equal(t, http.StatusBadRequest, post(`{"name":"Canon R5","category":"x","description":"45MP body, two cards","price_per_day":20000}`, lender).Code)
}
