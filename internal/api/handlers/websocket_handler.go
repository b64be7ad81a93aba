package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/lmoren/taskdeck-be/internal/auth"
	ws "github.com/lmoren/taskdeck-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler upgrades HTTP connections to the task feed.
type WebSocketHandler struct {
	hub *ws.Hub
}

// NewWebSocketHandler creates a new WebSocketHandler.
func NewWebSocketHandler(hub *ws.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins (consider tightening this in production).
		return true
	},
}

// Serve handles the WebSocket connection request. The route is behind the
// JWT middleware, so the feed is always scoped to the authenticated user.
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(auth.UserClaimsKey).(*auth.Claims)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing auth token")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}

	client := ws.NewClient(h.hub, conn, claims.UserID)
	h.hub.Register <- client

	go client.WritePump()
	go func() {
		client.ReadPump(h.handleIncomingWSMessage)
		h.hub.Unregister <- client
	}()
}

// handleIncomingWSMessage processes messages received from a websocket
// client. The feed is one-way; anything inbound gets an error notice back.
func (h *WebSocketHandler) handleIncomingWSMessage(client *ws.Client, message []byte) {
	log.Warn().Str("user_id", client.UserID).Bytes("message", message).Msg("Unexpected websocket message received")
	client.Send <- ws.NewErrorMessage("the task feed does not accept messages")
}
