// Package router wires handlers onto Echo instances, one registration
// function per service, plus the shared error handler that keeps every
// failure in the {"error": ...} wire format.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nkefor/microservices-cicd/internal/handler"
	"github.com/nkefor/microservices-cicd/internal/middleware"
	"github.com/nkefor/microservices-cicd/internal/model"
)

// ErrorHandler renders every unhandled error as JSON with an "error" field.
// Unmatched routes become 404 {"error":"Route not found"}; anything
// unexpected becomes a generic 500 that leaks no internals.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := "Internal server error"
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		switch {
		case code == http.StatusNotFound:
			msg = "Route not found"
		case code == http.StatusMethodNotAllowed:
			msg = "Method not allowed"
		case code < http.StatusInternalServerError:
			if s, ok := he.Message.(string); ok {
				msg = s
			}
		}
	}
	_ = c.JSON(code, echo.Map{"error": msg})
}

// RegisterAuthRoutes wires the auth service endpoints. The profile and
// users routes sit behind the bearer-token gate; users additionally
// requires the admin role.
func RegisterAuthRoutes(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	e.HTTPErrorHandler = ErrorHandler

	e.GET("/health", a.Health)
	e.GET("/", a.Root)
	e.POST("/register", a.Register)
	e.POST("/login", a.Login)
	e.POST("/validate", a.Validate)

	gate := middleware.JWTAuth(jwtSecret)
	e.GET("/profile", a.Profile, gate)
	e.GET("/users", a.ListUsers, gate, middleware.RequireRole(model.RoleAdmin))
}

// RegisterOrderRoutes wires the order service endpoints. The stats route is
// registered before the parameterized one so /orders/stats never resolves
// as an order id.
func RegisterOrderRoutes(e *echo.Echo, o *handler.OrderHandler) {
	e.HTTPErrorHandler = ErrorHandler

	e.GET("/health", o.Health)
	e.GET("/", o.Root)
	e.GET("/orders/stats", o.Stats)
	e.GET("/orders", o.List)
	e.GET("/orders/:id", o.Get)
	e.POST("/orders", o.Create)
	e.PUT("/orders/:id", o.Update)
	e.DELETE("/orders/:id", o.Cancel)
}

// RegisterProductRoutes wires the product service endpoints.
func RegisterProductRoutes(e *echo.Echo, p *handler.ProductHandler) {
	e.HTTPErrorHandler = ErrorHandler

	e.GET("/health", p.Health)
	e.GET("/", p.Root)
	e.GET("/products", p.List)
	e.GET("/products/:id", p.Get)
	e.POST("/products", p.Create)
	e.PUT("/products/:id", p.Update)
	e.DELETE("/products/:id", p.Delete)
	e.POST("/products/:id/check-availability", p.CheckAvailability)
}
