package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const devSecret = "local_dev_secret"

// Load reads .env (when present), the process environment and finally the
// YAML file named by CONFIG_FILE. Values set in the file win.
func Load() (App, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return App{}, fmt.Errorf("load .env: %w", err)
	}
	return load(os.Getenv)
}

func load(getenv func(string) string) (App, error) {
	env := func(k, def string) string {
		if v := getenv(k); v != "" {
			return v
		}
		return def
	}
	envInt := func(k string, def int) (int, error) {
		v := getenv(k)
		if v == "" {
			return def, nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", k, err)
		}
		return n, nil
	}

	cfg := App{
		Port:        env("APP_PORT", "8080"),
		DatabaseURL: getenv("DATABASE_URL"),
		JWTSecret:   env("JWT_SECRET", devSecret),
		Env:         env("APP_ENV", "dev"),
		LogLevel:    env("LOG_LEVEL", "info"),
		Redis: RedisConfig{
			Addr:     getenv("REDIS_ADDR"),
			Password: getenv("REDIS_PASSWORD"),
		},
	}
	for _, p := range strings.Split(getenv("TRUSTED_PROXIES"), ",") {
		if p = strings.TrimSpace(p); p != "" {
			cfg.TrustedProxies = append(cfg.TrustedProxies, p)
		}
	}
	var err error
	if cfg.JWTTTLHours, err = envInt("JWT_TTL_HOURS", 24); err != nil {
		return App{}, err
	}
	if cfg.Redis.DB, err = envInt("REDIS_DB", 0); err != nil {
		return App{}, err
	}
	if cfg.RateLimit.MaxRequests, err = envInt("RATE_LIMIT_MAX_REQUESTS", 100); err != nil {
		return App{}, err
	}
	if cfg.RateLimit.WindowMS, err = envInt("RATE_LIMIT_WINDOW_MS", 15*60*1000); err != nil {
		return App{}, err
	}

	if path := getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return App{}, fmt.Errorf("read config file: %w", err)
		}
		expanded := os.Expand(string(data), getenv)
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return App{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	if cfg.DatabaseURL == "" {
		return App{}, errors.New("DATABASE_URL is required")
	}
	if cfg.RateLimit.MaxRequests <= 0 || cfg.RateLimit.WindowMS <= 0 {
		return App{}, errors.New("rate limit must be positive")
	}
	if cfg.JWTSecret == devSecret && cfg.Env == "prod" {
		slog.Warn("JWT_SECRET is the development default")
	}
	return cfg, nil
}

// SlogLevel maps LOG_LEVEL onto slog, defaulting to info.
func (a App) SlogLevel() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(a.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}
