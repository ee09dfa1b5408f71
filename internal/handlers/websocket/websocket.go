// internal/handlers/websocket/websocket.go
package handlers

import (
	"net/http"
	"time"

	"fleetmap-service/internal/domain/fleet"
	wstypes "fleetmap-service/internal/domain/websocket"
	"fleetmap-service/internal/middleware"
	xerrors "fleetmap-service/internal/pkg/errors"
	"fleetmap-service/internal/pkg/jwt"
	"fleetmap-service/internal/pkg/response"
	fleetsvc "fleetmap-service/internal/service/fleet"
	ws "fleetmap-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type WebSocketHandler struct {
	hub      *ws.Hub
	fleet    *fleetsvc.FleetService
	verifier *jwt.Verifier
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewWebSocketHandler builds the map socket endpoint. A nil verifier disables
// authentication.
func NewWebSocketHandler(hub *ws.Hub, fleetService *fleetsvc.FleetService, verifier *jwt.Verifier, allowedOrigins []string, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:      hub,
		fleet:    fleetService,
		verifier: verifier,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return middleware.OriginAllowed(allowedOrigins, r.Header.Get("Origin"))
			},
		},
		logger: logger,
	}
}

// HandleConnection upgrades the request and binds a fresh map view to the socket
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	var identityID int64
	if h.verifier != nil {
		token := middleware.ExtractToken(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "missing authentication token", xerrors.ErrUnauthorized)
			return
		}
		claims, err := h.verifier.VerifyAccessToken(token)
		if err != nil {
			h.logger.Warn("websocket authentication failed",
				zap.Error(err),
				zap.String("ip", c.ClientIP()),
			)
			response.Error(c, http.StatusUnauthorized, "authentication failed", err)
			return
		}
		identityID = claims.IdentityID
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed",
			zap.Error(err),
			zap.String("ip", c.ClientIP()),
		)
		return
	}

	view := h.fleet.NewView()
	client := ws.NewClient(h.hub, conn, view, identityID)

	view.OnState(func(state fleet.ViewState) {
		client.SendMessage(wstypes.NewMessage(wstypes.EventTypeMapState, state))
	})
	view.OnCamera(func(move fleet.CameraMove) {
		client.SendMessage(wstypes.NewMessage(wstypes.EventTypeMapCamera, move))
	})

	if !h.hub.Register(client) {
		h.logger.Warn("websocket hub stopped, dropping connection", zap.String("ip", c.ClientIP()))
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()

	client.SendMessage(wstypes.NewMessage(wstypes.EventTypeConnected, gin.H{
		"view_id": view.ID(),
		"map":     h.fleet.MapConfig(),
	}))
	view.Start()
}

// GetStats returns websocket connection statistics
func (h *WebSocketHandler) GetStats(c *gin.Context) {
	response.Success(c, http.StatusOK, "websocket stats", gin.H{
		"total_connections": h.hub.TotalClients(),
		"active_views":      h.fleet.ActiveViews(),
		"timestamp":         time.Now(),
	})
}
