package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"legal-aid/internal/realtime"
)

// WSHandler actualiza la petición a websocket y entrega la conexión al hub.
type WSHandler struct {
	logger   *zap.Logger
	hub      *realtime.Hub
	auth     realtime.RoomAuthorizer
	upgrader websocket.Upgrader
	buffer   int
}

func NewWSHandler(logger *zap.Logger, hub *realtime.Hub, auth realtime.RoomAuthorizer, allowedOrigin string, buffer int) *WSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSHandler{
		logger:   logger,
		hub:      hub,
		auth:     auth,
		upgrader: realtime.NewUpgrader(allowedOrigin),
		buffer:   buffer,
	}
}

// Connect maneja GET /ws.
func (h *WSHandler) Connect(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade ya escribió la respuesta de error.
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := realtime.NewClient(conn, h.hub, h.auth, claims.UserID, h.buffer, h.logger)
	client.Run(c.Request.Context())
}
