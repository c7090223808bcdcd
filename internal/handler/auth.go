// Package handler implements the HTTP endpoints of the services. Handlers
// bundle their dependencies in a struct and carry the workflow logic;
// storage and outbound calls live behind the repository and client
// interfaces.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nkefor/microservices-cicd/internal/config"
	"github.com/nkefor/microservices-cicd/internal/middleware"
	"github.com/nkefor/microservices-cicd/internal/model"
	"github.com/nkefor/microservices-cicd/internal/repository"
	"github.com/nkefor/microservices-cicd/internal/utils"
)

// storeTimeout bounds every store call made from a handler.
const storeTimeout = 5 * time.Second

// AuthHandler bundles dependencies for the auth service endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users repository.UserStore
}

func NewAuthHandler(cfg config.Config, users repository.UserStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users}
}

// ----- DTOs -----

type registerReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Health reports liveness for the auth service.
func (h *AuthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":    "UP",
		"service":   "auth-service",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Root describes the service and its endpoint map.
func (h *AuthHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"service": "Authentication Service",
		"version": "1.0.0",
		"endpoints": echo.Map{
			"health":   "/health",
			"register": "/register",
			"login":    "/login",
			"validate": "/validate",
			"profile":  "/profile",
			"users":    "/users",
		},
	})
}

// Register creates a new credential record. The password is stored only as
// a bcrypt hash. Duplicate usernames yield 409.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Username and password required"})
	}
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Username and password required"})
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	user := model.User{
		Username:  req.Username,
		Password:  hash,
		Email:     req.Email,
		Role:      model.NormalizeRole(req.Role),
		CreatedAt: time.Now().UTC(),
	}
	if err := h.Users.Insert(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "User already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message":  "User registered successfully",
		"username": req.Username,
	})
}

// Login verifies credentials and issues a signed token. Unknown usernames
// and wrong passwords both yield the same 401 so the response does not leak
// which of the two failed.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Username and password required"})
	}
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Username and password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	user, err := h.Users.Find(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}
	if !utils.VerifyPassword(user.Password, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid credentials"})
	}

	token, err := utils.NewAccessToken(h.Cfg.JWTSecret, user.Username, user.Role, h.Cfg.TokenTTLHours)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"token":      token.Token,
		"username":   user.Username,
		"role":       user.Role,
		"expires_in": h.Cfg.TokenTTLHours * 3600,
	})
}

// Validate checks a token supplied in the Authorization header and reports
// the identity it carries. Missing, expired and invalid tokens are
// distinguished in the error message.
func (h *AuthHandler) Validate(c echo.Context) error {
	raw := c.Request().Header.Get("Authorization")
	if raw == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"valid": false, "error": "Token missing"})
	}
	raw = strings.TrimPrefix(raw, "Bearer ")

	claims, err := utils.ParseAccessToken(h.Cfg.JWTSecret, raw)
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"valid": false, "error": "Token expired"})
		}
		return c.JSON(http.StatusUnauthorized, echo.Map{"valid": false, "error": "Invalid token"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"valid":    true,
		"username": claims.Username,
		"role":     claims.Role,
	})
}

// Profile returns the authenticated user's non-secret fields. The record
// can vanish between token issuance and this call, hence the 404.
func (h *AuthHandler) Profile(c echo.Context) error {
	username, _ := c.Get(middleware.ContextUsername).(string)

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	user, err := h.Users.Find(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}

	return c.JSON(http.StatusOK, user.Public())
}

// Users lists every registered user's non-secret fields. The route is
// admin-only; the role guard runs before this handler.
func (h *AuthHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}

	out := make([]model.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out})
}
