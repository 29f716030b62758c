package jwtx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"camrental/model"
	jwtutil "camrental/util/jwt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func ctx() echo.Context {
	e := echo.New()
	return e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
}

func TestActorFromToken(t *testing.T) {
	c := ctx()
	_, err := ActorFromToken(c)
	require.Error(t, err)

	c.Set("user", &jwt.Token{Claims: &jwtutil.Claims{
		Role:             "lender",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"},
	}})
	a, err := ActorFromToken(c)
	require.NoError(t, err)
	require.Equal(t, model.Actor{ID: "u1", Role: model.RoleLender}, a)

	c.Set("user", &jwt.Token{Claims: &jwtutil.Claims{
		Role:             "root",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"},
	}})
	_, err = ActorFromToken(c)
	require.Error(t, err)
}

func TestActor(t *testing.T) {
	c := ctx()
	_, ok := Actor(c)
	require.False(t, ok)

	SetActor(c, model.Actor{ID: "u2", Role: model.RoleRenter})
	a, ok := Actor(c)
	require.True(t, ok)
	require.Equal(t, "u2", a.ID)
}
