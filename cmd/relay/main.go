package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/mossy-p/p2p-relay/config"
	"github.com/mossy-p/p2p-relay/internal/handlers"
	"github.com/mossy-p/p2p-relay/internal/redis"
	"github.com/mossy-p/p2p-relay/internal/registry"
	"github.com/mossy-p/p2p-relay/internal/signaling"
	"github.com/mossy-p/p2p-relay/internal/transport"
)

func main() {
	// Load configuration
	cfg := config.Load()
	loggerFactory := cfg.LoggerFactory()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	hub := transport.NewHub(transport.HubConfig{LoggerFactory: loggerFactory})

	routerConfig := signaling.RouterConfig{
		Registry:      registry.New(),
		Transport:     hub,
		CleanupDelay:  cfg.CleanupDelay,
		LoggerFactory: loggerFactory,
	}

	// Presence mirror is optional
	if cfg.Redis.Enabled() {
		mirror, err := redis.Connect(cfg.Redis, loggerFactory)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer mirror.Close()

		routerConfig.Observer = mirror
		log.Println("Redis presence mirror enabled")
	}

	relay := signaling.NewRouter(routerConfig)

	engine := handlers.NewEngine(handlers.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AdminJWTSecret: cfg.AdminJWTSecret,
	}, relay, hub)

	if cfg.AdminJWTSecret == "" {
		log.Println("ADMIN_JWT_SECRET not set, admin API disabled")
	}

	// Start server
	log.Printf("WebRTC Signaling Server running on port %s", cfg.Port)
	if err := engine.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
