package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/nkefor/microservices-cicd/internal/client"
	"github.com/nkefor/microservices-cicd/internal/config"
	"github.com/nkefor/microservices-cicd/internal/handler"
	"github.com/nkefor/microservices-cicd/internal/queue"
	"github.com/nkefor/microservices-cicd/internal/repository"
	"github.com/nkefor/microservices-cicd/internal/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(config.DefaultOrderPort)

	var orders repository.OrderStore = repository.NewMemoryOrderStore()
	if cfg.StoreBackend == "redis" {
		if rdb := config.NewRedisClient(); rdb != nil {
			orders = repository.NewRedisOrderStore(rdb)
		} else {
			log.Printf("redis unavailable, using in-memory order store")
		}
	}

	var events queue.Publisher = queue.NopPublisher{}
	if cfg.RabbitURL != "" {
		events = queue.NewAMQPPublisher(cfg.RabbitURL)
	}

	products := client.NewHTTPProductClient(cfg.ProductServiceURL, nil)

	e := echo.New()
	e.HideBanner = true
	router.RegisterOrderRoutes(e, handler.NewOrderHandler(cfg, orders, products, events))

	addr := ":" + cfg.Port
	log.Printf("order-service listening on %s (env=%s, products=%s)", addr, cfg.Env, cfg.ProductServiceURL)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
