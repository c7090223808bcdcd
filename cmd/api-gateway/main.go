package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/nkefor/microservices-cicd/internal/config"
	"github.com/nkefor/microservices-cicd/internal/gateway"
	"github.com/nkefor/microservices-cicd/internal/middleware"
	"github.com/nkefor/microservices-cicd/internal/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(config.DefaultGatewayPort)
	rlCfg := config.LoadRateLimitConfig()

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = router.ErrorHandler

	rdb := config.NewRedisClient()
	if rdb == nil && rlCfg.Enabled {
		log.Printf("redis unavailable, rate limiting disabled")
	}
	e.Use(middleware.RateLimit(rlCfg, rdb))

	gateway.NewHandler(cfg).Register(e)

	addr := ":" + cfg.Port
	log.Printf("api-gateway listening on %s (env=%s)", addr, cfg.Env)
	log.Printf("connected services: auth=%s product=%s order=%s",
		cfg.AuthServiceURL, cfg.ProductServiceURL, cfg.OrderServiceURL)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
