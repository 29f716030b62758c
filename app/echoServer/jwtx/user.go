package jwtx

import (
	"errors"

	"camrental/model"
	jwtutil "camrental/util/jwt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const actorKey = "actor"

// ActorFromToken builds the actor from the token echo-jwt stored under "user".
func ActorFromToken(c echo.Context) (model.Actor, error) {
	tok, ok := c.Get("user").(*jwt.Token)
	if !ok || tok == nil {
		return model.Actor{}, errors.New("no jwt token in context")
	}
	claims, ok := tok.Claims.(*jwtutil.Claims)
	if !ok {
		return model.Actor{}, errors.New("invalid jwt claims")
	}
	if claims.Subject == "" {
		return model.Actor{}, errors.New("sub missing in claims")
	}
	role := model.Role(claims.Role)
	if !role.Valid() {
		return model.Actor{}, errors.New("unknown role in claims")
	}
	return model.Actor{ID: claims.Subject, Role: role}, nil
}

func SetActor(c echo.Context, a model.Actor) { c.Set(actorKey, a) }

// Actor returns the actor resolved by the auth middleware.
func Actor(c echo.Context) (model.Actor, bool) {
	a, ok := c.Get(actorKey).(model.Actor)
	return a, ok && a.ID != ""
}
