package handler

import (
	"ai-research-be/internal/pkg/logger"
	internalWS "ai-research-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// ResearchStreamHandler upgrades dashboard connections that watch a session's
// pipeline progress live.
type ResearchStreamHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewResearchStreamHandler(hub *internalWS.Hub, log logger.ILogger) *ResearchStreamHandler {
	return &ResearchStreamHandler{
		hub:    hub,
		logger: log,
	}
}

// ServeWs handles websocket requests from the peer.
func (h *ResearchStreamHandler) ServeWs(c *fiber.Ctx) error {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing 'session_id' query parameter"})
	}

	// Upgrade via Fiber WebSocket Middleware
	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(c *websocket.Conn) {
			h.logger.Info("ResearchStreamHandler", "Starting WebSocket session", map[string]interface{}{"session_id": sessionID})
			internalWS.ServeWs(h.hub, c, sessionID)
			h.logger.Info("ResearchStreamHandler", "WebSocket session ended", map[string]interface{}{"session_id": sessionID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// RegisterRoutes registers the stream routes.
func (h *ResearchStreamHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws", h.ServeWs)
}
