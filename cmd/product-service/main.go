package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/nkefor/microservices-cicd/internal/config"
	"github.com/nkefor/microservices-cicd/internal/handler"
	"github.com/nkefor/microservices-cicd/internal/repository"
	"github.com/nkefor/microservices-cicd/internal/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(config.DefaultProductPort)

	products := repository.NewSeededProductStore()

	e := echo.New()
	e.HideBanner = true
	router.RegisterProductRoutes(e, handler.NewProductHandler(products))

	addr := ":" + cfg.Port
	log.Printf("product-service listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
