package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/nkefor/microservices-cicd/internal/config"
)

// RateLimit returns a fixed-window per-IP rate limiter backed by Redis: at
// most cfg.Max requests per cfg.Window for each client address. When the
// limiter is disabled or no Redis client is available it becomes a
// passthrough, so the gateway keeps serving without Redis.
func RateLimit(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := fmt.Sprintf("%s:%s", cfg.Prefix, c.RealIP())

			n, err := rdb.Incr(c.Request().Context(), key).Result()
			if err != nil {
				// Limiter failure must not take the gateway down.
				return next(c)
			}
			if n == 1 {
				rdb.Expire(c.Request().Context(), key, cfg.Window)
			}
			if n > int64(cfg.Max) {
				ttl, _ := rdb.TTL(c.Request().Context(), key).Result()
				if ttl > 0 {
					c.Response().Header().Set("Retry-After", fmt.Sprintf("%d", int(ttl/time.Second)+1))
				}
				return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "Too many requests"})
			}
			return next(c)
		}
	}
}
