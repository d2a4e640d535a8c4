package handlers

import (
	"net/http"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"insights-dashboard/middleware"
	"insights-dashboard/models"
	"insights-dashboard/services"
)

// WebSocketHandler handles WebSocket connections for live report updates
type WebSocketHandler struct {
	hub *services.WebSocketHub
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *services.WebSocketHub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The dashboard frontend is served from another origin.
		return true
	},
}

// ListenReportUpdates upgrades the connection and registers the client for
// refreshed report broadcasts
func (h *WebSocketHandler) ListenReportUpdates(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Errorf("Failed to upgrade websocket for user %s: %v", userID, err)
		return
	}

	h.hub.RegisterClient(conn, userID)
	log.Infof("WebSocket connection established for user %s", userID)
}

// HealthCheck reports hub health for monitoring
func (h *WebSocketHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:           "healthy",
		Service:          "insights-dashboard",
		ConnectedClients: h.hub.GetConnectedClientsCount(),
	})
}
