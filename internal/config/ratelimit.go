package config

import "time"

// RateLimitConfig drives the gateway's fixed-window rate limiter: at most
// Max requests per client IP within each Window.
type RateLimitConfig struct {
	Enabled bool
	Max     int
	Window  time.Duration
	Prefix  string
}

// LoadRateLimitConfig reads RATE_LIMIT_* environment variables with
// defaults matching the gateway's documented policy of 100 requests per
// 15 minutes.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled: envBool("RATE_LIMIT_ENABLED", true),
		Max:     envInt("RATE_LIMIT_MAX", 100),
		Window:  envDur("RATE_LIMIT_WINDOW", 15*time.Minute),
		Prefix:  getenv("RATE_LIMIT_PREFIX", "rl"),
	}
	if cfg.Max < 1 {
		cfg.Max = 1
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	return cfg
}
