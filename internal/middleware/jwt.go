// Package middleware contains reusable Echo middleware shared by the
// services: the bearer-token authentication gate, the role guard, and the
// gateway rate limiter.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/nkefor/microservices-cicd/internal/utils"
)

// Context keys under which JWTAuth stores the decoded identity.
const (
	ContextUsername = "username"
	ContextRole     = "role"
)

// JWTAuth returns the authentication gate applied to protected routes. It
// extracts the bearer token from the Authorization header (the "Bearer "
// prefix is optional), verifies it, and injects the username and role into
// the request context. Missing, expired and invalid tokens each fail the
// whole request with a distinct 401 body.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.Request().Header.Get("Authorization")
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Token is missing"})
			}
			raw = strings.TrimPrefix(raw, "Bearer ")

			claims, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				if errors.Is(err, utils.ErrTokenExpired) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Token has expired"})
				}
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid token"})
			}

			c.Set(ContextUsername, claims.Username)
			c.Set(ContextRole, claims.Role)
			return next(c)
		}
	}
}
