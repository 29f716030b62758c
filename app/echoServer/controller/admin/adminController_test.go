package admin

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"camrental/model"
	adminsvc "camrental/service/admin"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

type svcMock struct {
	adminsvc.Service
	users []model.User
	err   error
}

func (m svcMock) Users(ctx context.Context) ([]model.User, error) { return m.users, m.err }

func call(t *testing.T, h *Controller) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/admin/users", nil), rec)
	require.NoError(t, h.Users(c))
	return rec
}

func TestUsers(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := &Controller{Svc: svcMock{users: []model.User{
		{ID: "u2", Name: "Ana", Email: "ana@x.io", Role: model.RoleLender, PasswordHash: "secret-hash", WalletBalance: 12.5},
	}}, Log: log}

	rec := call(t, h)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, rec.Body.String(), "secret-hash")

	var body struct {
		Users []map[string]any `json:"users"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Users, 1)
	require.Equal(t, "lender", body.Users[0]["role"])
	require.Equal(t, 12.5, body.Users[0]["wallet_balance"])

	h.Svc = svcMock{err: errors.New("db down")}
	rec = call(t, h)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
