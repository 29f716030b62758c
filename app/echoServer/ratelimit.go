package echoServer

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"camrental/util/metrics"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// windowCounter is the slice of *redis.Client the limiter needs.
type windowCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RedisWindowStore is a fixed-window limiter shared by every API replica.
// It fails open when Redis is unreachable.
type RedisWindowStore struct {
	rdb    windowCounter
	max    int64
	window time.Duration
	now    func() time.Time
	log    *slog.Logger
}

func NewRedisWindowStore(rdb windowCounter, max int, window time.Duration, log *slog.Logger) *RedisWindowStore {
	return &RedisWindowStore{rdb: rdb, max: int64(max), window: window, now: time.Now, log: log}
}

func (s *RedisWindowStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	slot := s.now().UnixMilli() / s.window.Milliseconds()
	key := fmt.Sprintf("camrental:ratelimit:%s:%d", identifier, slot)

	n, err := s.rdb.Incr(ctx, key).Result()
	if err != nil {
		s.log.Warn("rate limiter unavailable", "err", err)
		return true, nil
	}
	if n == 1 {
		if err := s.rdb.Expire(ctx, key, s.window).Err(); err != nil {
			s.log.Warn("rate limiter expire", "key", key, "err", err)
		}
	}
	return n <= s.max, nil
}

// NewMemoryStore approximates the same budget with a token bucket when no
// Redis is configured.
func NewMemoryStore(max int, window time.Duration) middleware.RateLimiterStore {
	return middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(max) / window.Seconds()),
		Burst:     max,
		ExpiresIn: window,
	})
}

func RateLimit(store middleware.RateLimiterStore) echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			p := c.Path()
			return p == "/health" || p == "/metrics"
		},
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			metrics.IncRateLimited()
			return c.JSON(http.StatusTooManyRequests, echo.Map{"message": "too many requests, please try again later"})
		},
	})
}
