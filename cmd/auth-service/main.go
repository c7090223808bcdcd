package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/nkefor/microservices-cicd/internal/config"
	"github.com/nkefor/microservices-cicd/internal/handler"
	"github.com/nkefor/microservices-cicd/internal/model"
	"github.com/nkefor/microservices-cicd/internal/repository"
	"github.com/nkefor/microservices-cicd/internal/router"
	"github.com/nkefor/microservices-cicd/internal/utils"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(config.DefaultAuthPort)

	var users repository.UserStore = repository.NewMemoryUserStore()
	if cfg.StoreBackend == "redis" {
		if rdb := config.NewRedisClient(); rdb != nil {
			users = repository.NewRedisUserStore(rdb)
		} else {
			log.Printf("redis unavailable, using in-memory user store")
		}
	}
	seedUsers(cfg, users)

	e := echo.New()
	e.HideBanner = true
	router.RegisterAuthRoutes(e, handler.NewAuthHandler(cfg, users), cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("auth-service listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// seedUsers creates the demo accounts the service ships with. Insert
// failures other than "already exists" are worth a log line but never fatal.
func seedUsers(cfg config.Config, users repository.UserStore) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	seed := []struct {
		username, password, email, role string
	}{
		{"admin", "admin123", "admin@example.com", model.RoleAdmin},
		{"user1", "password123", "user1@example.com", model.RoleUser},
	}
	for _, s := range seed {
		hash, err := utils.HashPassword(s.password, cfg.BcryptCost)
		if err != nil {
			log.Printf("seed %s: %v", s.username, err)
			continue
		}
		err = users.Insert(ctx, model.User{
			Username:  s.username,
			Password:  hash,
			Email:     s.email,
			Role:      s.role,
			CreatedAt: time.Now().UTC(),
		})
		if err != nil && err != repository.ErrUserExists {
			log.Printf("seed %s: %v", s.username, err)
		}
	}
}
