// internal/app/router.go
package app

import (
	fleetHandler "fleetmap-service/internal/handlers/fleet"
	wsHandler "fleetmap-service/internal/handlers/websocket"
	"fleetmap-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	FleetHandler   *fleetHandler.FleetHandler
	WSHandler      *wsHandler.WebSocketHandler
	AuthMiddleware *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== WebSocket ====================
	r.GET("/ws", h.WSHandler.HandleConnection)

	// ==================== Fleet Map ====================
	fleet := api.Group("/fleet")
	fleet.Use(h.AuthMiddleware.Auth())
	{
		fleet.GET("/config", h.FleetHandler.GetMapConfig)
		fleet.GET("/locations", h.FleetHandler.GetLocations)
		fleet.GET("/map", h.FleetHandler.GetMap)
		fleet.GET("/stats", h.FleetHandler.GetStats)
		fleet.GET("/search", h.FleetHandler.Search)
	}

	ws := api.Group("/ws")
	ws.Use(h.AuthMiddleware.Auth())
	{
		ws.GET("/stats", h.WSHandler.GetStats)
	}
}
