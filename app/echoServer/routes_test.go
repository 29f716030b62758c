package echoServer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"camrental/app/echoServer/controller/admin"
	"camrental/app/echoServer/controller/auth"
	"camrental/app/echoServer/controller/booking"
	"camrental/app/echoServer/controller/camera"
	"camrental/app/echoServer/controller/wallet"
	"camrental/model"
	adminsvc "camrental/service/admin"
	bookingsvc "camrental/service/booking"
	jwtutil "camrental/util/jwt"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

const testSecret = "routes-test-secret"

type adminStub struct{}

func (adminStub) Stats(ctx context.Context) (*adminsvc.Stats, error) {
	return &adminsvc.Stats{Aggregate: &bookingsvc.Aggregate{ByStatus: map[model.BookingStatus]int{}}}, nil
}

func (adminStub) Users(ctx context.Context) ([]model.User, error) { return []model.User{}, nil }

func newRouter() *echo.Echo {
	e := echo.New()
	Register(e, C{
		Auth:      &auth.Controller{},
		Camera:    &camera.Controller{},
		Booking:   &booking.Controller{},
		Wallet:    &wallet.Controller{},
		Admin:     &admin.Controller{Svc: adminStub{}, Log: quiet()},
		JWTSecret: testSecret,
	})
	return e
}

func token(t *testing.T, secret, role string) string {
	t.Helper()
	tok, err := jwtutil.Issue(secret, "user-1", role, 1)
	require.NoError(t, err)
	return tok
}

func TestAdminRoutes_Authorization(t *testing.T) {
	e := newRouter()

	cases := []struct {
		name  string
		token string
		want  int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"wrong signature", token(t, "other-secret", "admin"), http.StatusUnauthorized},
		{"unknown role", token(t, testSecret, "superuser"), http.StatusUnauthorized},
		{"renter", token(t, testSecret, "renter"), http.StatusForbidden},
		{"lender", token(t, testSecret, "lender"), http.StatusForbidden},
		{"admin", token(t, testSecret, "admin"), http.StatusOK},
	}
	for _, path := range []string{"/v1/admin/stats", "/v1/admin/users"} {
		for _, tc := range cases {
			t.Run(path+" "+tc.name, func(t *testing.T) {
				rec := httptest.NewRecorder()
				req := httptest.NewRequest(http.MethodGet, path, nil)
				if tc.token != "" {
					req.Header.Set(echo.HeaderAuthorization, "Bearer "+tc.token)
				}
				e.ServeHTTP(rec, req)
				require.Equal(t, tc.want, rec.Code, rec.Body.String())
			})
		}
	}
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	e := newRouter()
	for _, r := range []struct{ method, path string }{
		{http.MethodGet, "/v1/auth/me"},
		{http.MethodPost, "/v1/cameras"},
		{http.MethodPost, "/v1/bookings"},
		{http.MethodPost, "/v1/bookings/abc/approve"},
		{http.MethodPost, "/v1/bookings/abc/verify-return"},
		{http.MethodGet, "/v1/renter/bookings"},
		{http.MethodGet, "/v1/wallet"},
		{http.MethodPost, "/v1/wallet/withdraw"},
	} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(r.method, r.path, nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code, r.method+" "+r.path)
	}
}
