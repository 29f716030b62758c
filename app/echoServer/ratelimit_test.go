package echoServer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type counterMock struct {
	counts  map[string]int64
	expires map[string]time.Duration
	err     error
}

func newCounter() *counterMock {
	return &counterMock{counts: map[string]int64{}, expires: map[string]time.Duration{}}
}

func (m *counterMock) Incr(ctx context.Context, key string) *redis.IntCmd {
	if m.err != nil {
		return redis.NewIntResult(0, m.err)
	}
	m.counts[key]++
	return redis.NewIntResult(m.counts[key], nil)
}

func (m *counterMock) Expire(ctx context.Context, key string, exp time.Duration) *redis.BoolCmd {
	m.expires[key] = exp
	return redis.NewBoolResult(true, nil)
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestRedisWindowStore(t *testing.T) {
	m := newCounter()
	s := NewRedisWindowStore(m, 2, time.Minute, quiet())
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		ok, err := s.Allow("1.2.3.4")
		require.NoError(t, err)
		require.True(t, ok)
	}
	ok, _ := s.Allow("1.2.3.4")
	require.False(t, ok)

	ok, _ = s.Allow("5.6.7.8")
	require.True(t, ok, "budgets are per client")
	require.Len(t, m.expires, 2, "expiry set once per window key")

	now = now.Add(time.Minute)
	ok, _ = s.Allow("1.2.3.4")
	require.True(t, ok, "new window")
}

func TestRedisWindowStore_FailsOpen(t *testing.T) {
	m := newCounter()
	m.err = errors.New("connection refused")
	s := NewRedisWindowStore(m, 1, time.Minute, quiet())
	for i := 0; i < 3; i++ {
		ok, err := s.Allow("1.2.3.4")
		require.NoError(t, err)
		require.True(t, ok)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	e := echo.New()
	e.Use(RateLimit(NewRedisWindowStore(newCounter(), 1, time.Minute, quiet())))
	e.GET("/v1/cameras", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/health", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	do := func(path string) int {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "10.0.0.1:1234"
		e.ServeHTTP(rec, req)
		return rec.Code
	}
	require.Equal(t, http.StatusOK, do("/v1/cameras"))
	require.Equal(t, http.StatusTooManyRequests, do("/v1/cameras"))
	require.Equal(t, http.StatusOK, do("/health"))
	require.Equal(t, http.StatusOK, do("/health"))
}

func TestRateLimit_IgnoresSpoofedForwardedFor(t *testing.T) {
	e := echo.New()
	RegisterMiddlewares(e, quiet(), NewMemoryStore(1, time.Minute))
	e.GET("/v1/cameras", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	codes := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/cameras", nil)
		req.RemoteAddr = "203.0.113.7:5555"
		req.Header.Set(echo.HeaderXForwardedFor, fmt.Sprintf("1.2.3.%d", i))
		req.Header.Set(echo.HeaderXRealIP, fmt.Sprintf("4.3.2.%d", i))
		e.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	require.Equal(t, []int{200, 429, 429, 429, 429}, codes)
}

func TestIPExtractor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.1.2.3:4000"
	req.Header.Set(echo.HeaderXForwardedFor, "198.51.100.9")

	direct, err := IPExtractor(nil)
	require.NoError(t, err)
	require.Equal(t, "10.1.2.3", direct(req))

	viaProxy, err := IPExtractor([]string{"10.0.0.0/8"})
	require.NoError(t, err)
	require.Equal(t, "198.51.100.9", viaProxy(req))

	// a forwarded header from an untrusted peer is ignored
	req.RemoteAddr = "192.0.2.50:4000"
	require.Equal(t, "192.0.2.50", viaProxy(req))

	_, err = IPExtractor([]string{"not-a-cidr"})
	require.Error(t, err)
}
