// Package gateway implements the API gateway: a reverse proxy in front of
// the auth, product and order services with per-service health fan-out.
package gateway

import (
	"encoding/json"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nkefor/microservices-cicd/internal/config"
)

// healthTimeout bounds each downstream /health probe.
const healthTimeout = 2 * time.Second

// Handler proxies /api/<service>/* to the backing services.
type Handler struct {
	Cfg        config.Config
	httpClient *http.Client
}

func NewHandler(cfg config.Config) *Handler {
	return &Handler{
		Cfg:        cfg,
		httpClient: &http.Client{Timeout: healthTimeout},
	}
}

// Register wires the gateway routes onto e.
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/health", h.Health)
	e.GET("/health/services", h.ServiceHealth)
	e.GET("/", h.Root)

	e.Any("/api/auth/*", proxyHandler(h.Cfg.AuthServiceURL, "/api/auth"))
	e.Any("/api/products/*", proxyHandler(h.Cfg.ProductServiceURL, "/api/products"))
	e.Any("/api/orders/*", proxyHandler(h.Cfg.OrderServiceURL, "/api/orders"))
}

// Health reports liveness for the gateway itself.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":    "UP",
		"service":   "api-gateway",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ServiceHealth probes every downstream /health endpoint and reports
// UP/DOWN per service, with 503 when any of them is down.
func (h *Handler) ServiceHealth(c echo.Context) error {
	services := map[string]string{
		"auth":    h.Cfg.AuthServiceURL,
		"product": h.Cfg.ProductServiceURL,
		"order":   h.Cfg.OrderServiceURL,
	}

	statuses := make(map[string]string, len(services))
	allUp := true
	for name, base := range services {
		if h.probe(base + "/health") {
			statuses[name] = "UP"
		} else {
			statuses[name] = "DOWN"
			allUp = false
		}
	}

	overall := "UP"
	code := http.StatusOK
	if !allUp {
		overall = "DEGRADED"
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, echo.Map{
		"status":    overall,
		"services":  statuses,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) probe(url string) bool {
	resp, err := h.httpClient.Get(url)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Root describes the gateway and its routes.
func (h *Handler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"message": "API Gateway - Microservices CI/CD Project",
		"version": "1.0.0",
		"endpoints": echo.Map{
			"health":        "/health",
			"serviceHealth": "/health/services",
			"auth":          "/api/auth/*",
			"products":      "/api/products/*",
			"orders":        "/api/orders/*",
		},
	})
}

// proxyHandler builds an Echo handler that strips the gateway prefix and
// forwards the request to the target service. Proxy transport failures
// surface as 503 in the gateway's JSON error format.
func proxyHandler(target, prefix string) echo.HandlerFunc {
	u, err := url.Parse(target)
	if err != nil {
		log.Printf("gateway: invalid target %q: %v", target, err)
		return func(c echo.Context) error {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "Service unavailable"})
		}
	}

	proxy := httputil.NewSingleHostReverseProxy(u)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Printf("gateway: error proxying to %s: %v", target, err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Service unavailable"})
	}

	return func(c echo.Context) error {
		r := c.Request()
		r.URL.Path = strings.TrimPrefix(r.URL.Path, prefix)
		if r.URL.Path == "" {
			r.URL.Path = "/"
		}
		r.Host = u.Host
		proxy.ServeHTTP(c.Response(), r)
		return nil
	}
}
