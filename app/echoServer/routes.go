package echoServer

import (
	"net/http"

	"camrental/app/echoServer/controller/admin"
	"camrental/app/echoServer/controller/auth"
	"camrental/app/echoServer/controller/booking"
	"camrental/app/echoServer/controller/camera"
	"camrental/app/echoServer/controller/wallet"
	"camrental/app/echoServer/jwtx"
	"camrental/model"
	jwtutil "camrental/util/jwt"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

type C struct {
	Auth      *auth.Controller
	Camera    *camera.Controller
	Booking   *booking.Controller
	Wallet    *wallet.Controller
	Admin     *admin.Controller
	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/auth/register", c.Auth.Register)
	pub.POST("/auth/login", c.Auth.Login)
	pub.GET("/cameras", c.Camera.List)
	pub.GET("/cameras/:id", c.Camera.Detail)

	// Auth
	auth := e.Group("/v1")
	auth.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(c.JWTSecret),
		SigningMethod: "HS256",
		NewClaimsFunc: func(echo.Context) jwt.Claims { return new(jwtutil.Claims) },
		TokenLookup:   "header:Authorization:Bearer ",
		ErrorHandler: func(ctx echo.Context, err error) error {
			return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
		},
	}))
	auth.Use(resolveActor)

	auth.GET("/auth/me", c.Auth.Me)

	auth.POST("/cameras", c.Camera.Create)

	auth.POST("/bookings", c.Booking.Submit)
	auth.POST("/bookings/:id/approve", c.Booking.Approve)
	auth.POST("/bookings/:id/reject", c.Booking.Reject)
	auth.POST("/bookings/:id/confirm", c.Booking.Confirm)
	auth.POST("/bookings/:id/verify-pickup", c.Booking.VerifyPickup)
	auth.POST("/bookings/:id/verify-return", c.Booking.VerifyReturn)
	auth.GET("/renter/bookings", c.Booking.RenterBookings)
	auth.GET("/lender/bookings", c.Booking.LenderBookings)

	auth.GET("/wallet", c.Wallet.Get)
	auth.POST("/wallet/deposit", c.Wallet.Deposit)
	auth.POST("/wallet/withdraw", c.Wallet.Withdraw)

	// Admin
	adm := auth.Group("/admin", requireRole(model.RoleAdmin))
	adm.GET("/stats", c.Admin.Stats)
	adm.GET("/users", c.Admin.Users)
}

// resolveActor turns the verified token into a model.Actor for handlers.
func resolveActor(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		a, err := jwtx.ActorFromToken(ctx)
		if err != nil {
			ctx.Logger().Warnf("[AUTH] %v req_id=%s ip=%s", err, ctx.Response().Header().Get(echo.HeaderXRequestID), ctx.RealIP())
			return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
		}
		jwtx.SetActor(ctx, a)
		return next(ctx)
	}
}

func requireRole(role model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			a, ok := jwtx.Actor(ctx)
			if !ok || a.Role != role {
				return ctx.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
			}
			return next(ctx)
		}
	}
}
