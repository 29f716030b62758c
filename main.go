// Package main camera rental API.
//
// @title           Camera Rental API
// @version         1.0
// @description     Peer-to-peer camera rentals: listings, booking requests, OTP handoff and wallet settlement.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"camrental/app/echoServer"
	adminctrl "camrental/app/echoServer/controller/admin"
	authctrl "camrental/app/echoServer/controller/auth"
	bookingctrl "camrental/app/echoServer/controller/booking"
	cameractrl "camrental/app/echoServer/controller/camera"
	walletctrl "camrental/app/echoServer/controller/wallet"
	"camrental/app/echoServer/validation"
	"camrental/config"
	authrepo "camrental/repository/auth"
	bookingrepo "camrental/repository/booking"
	camerarepo "camrental/repository/camera"
	walletrepo "camrental/repository/wallet"
	adminsvc "camrental/service/admin"
	authsvc "camrental/service/auth"
	bookingsvc "camrental/service/booking"
	camerasvc "camrental/service/camera"
	"camrental/service/otp"
	walletsvc "camrental/service/wallet"
	"camrental/util/database"
	"camrental/util/metrics"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(log)

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		log.Error("db migrate failed", "err", err)
		os.Exit(1)
	}

	metrics.Register()

	// repos
	ar := authrepo.New(db)
	cr := camerarepo.New(db)
	br := bookingrepo.New(db)
	wr := walletrepo.New(db)

	// services
	as := authsvc.New(ar, cfg.JWTSecret, cfg.JWTTTLHours)
	cs := camerasvc.New(cr)
	ws := walletsvc.New(wr)
	bs := bookingsvc.New(br, cs, ws, otp.New())
	qs := bookingsvc.NewQueries(br)
	ads := adminsvc.New(qs, as.CountUsers, cs.Count, as.ListUsers)

	// controllers
	v := validation.NewValidate()
	authC := &authctrl.Controller{Svc: as, Log: log}
	cameraC := &cameractrl.Controller{Svc: cs, V: v, Log: log}
	bookingC := &bookingctrl.Controller{Svc: bs, Queries: qs, V: v, Log: log}
	walletC := &walletctrl.Controller{Svc: ws, V: v, Log: log}
	adminC := &adminctrl.Controller{Svc: ads, Log: log}

	// echo
	e := echo.New()
	e.HideBanner = true
	if e.IPExtractor, err = echoServer.IPExtractor(cfg.TrustedProxies); err != nil {
		log.Error("trusted proxies", "err", err)
		os.Exit(1)
	}
	echoServer.RegisterMiddlewares(e, log, rateLimitStore(ctx, cfg, log))
	e.Validator = validation.New(v)

	e.GET("/health", func(c echo.Context) error {
		if err := db.Pool.Ping(c.Request().Context()); err != nil {
			return c.JSON(503, map[string]any{"status": "degraded", "message": "database unreachable"})
		}
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:    authC,
		Camera:  cameraC,
		Booking: bookingC,
		Wallet:  walletC,
		Admin:   adminC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	log.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}

// rateLimitStore prefers a shared Redis window and falls back to a per-process
// limiter when Redis is not configured or not reachable.
func rateLimitStore(ctx context.Context, cfg config.App, log *slog.Logger) middleware.RateLimiterStore {
	max, window := cfg.RateLimit.MaxRequests, cfg.RateLimit.Window()
	if cfg.Redis.Addr == "" {
		return echoServer.NewMemoryStore(max, window)
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		log.Warn("redis unreachable, using in-memory rate limiter", "addr", cfg.Redis.Addr, "err", err)
		_ = rdb.Close()
		return echoServer.NewMemoryStore(max, window)
	}
	return echoServer.NewRedisWindowStore(rdb, max, window, log)
}
