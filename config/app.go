package config

import "time"

type App struct {
	Port        string `yaml:"port"`
	DatabaseURL string `yaml:"database_url"`
	JWTSecret   string `yaml:"jwt_secret"`
	JWTTTLHours int    `yaml:"jwt_ttl_hours"`
	Env         string `yaml:"env"`
	LogLevel    string `yaml:"log_level"`

	// TrustedProxies lists the CIDRs allowed to set X-Forwarded-For. Empty
	// means the socket address is the client address.
	TrustedProxies []string `yaml:"trusted_proxies"`

	Redis     RedisConfig     `yaml:"redis"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type RateLimitConfig struct {
	MaxRequests int `yaml:"max_requests"`
	WindowMS    int `yaml:"window_ms"`
}

func (r RateLimitConfig) Window() time.Duration { return time.Duration(r.WindowMS) * time.Millisecond }
