package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/mossy-p/p2p-relay/internal/middleware"
	"github.com/mossy-p/p2p-relay/internal/transport"
)

// Relay is the signaling router as seen by the HTTP layer.
type Relay interface {
	RoomService
	transport.Handler
}

type Options struct {
	AllowedOrigins []string

	// AdminJWTSecret enables the /api admin routes when non-empty.
	AdminJWTSecret string
}

// NewEngine wires every HTTP route of the relay.
func NewEngine(opts Options, relay Relay, hub *transport.Hub) *gin.Engine {
	router := gin.Default()

	// Global CORS middleware (runs before routing)
	router.Use(OriginFilter(opts.AllowedOrigins))

	router.GET("/", Root)
	router.GET("/health", Health)
	router.GET("/rooms/:roomId", GetRoom(relay))

	// Event transport for peers
	router.GET("/ws", HandleSignaling(hub, relay))

	if opts.AdminJWTSecret != "" {
		apiGroup := router.Group("/api", middleware.JWTAuth(opts.AdminJWTSecret))
		{
			apiGroup.GET("/rooms", ListRooms(relay))
			apiGroup.DELETE("/rooms/:roomId", CloseRoom(relay))
		}
	}

	return router
}
