package server

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/soar/VRPawn/internal/hub"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local use
	},
}

func handleWebSocket(h *hub.Hub, b *hub.Broadcaster, ctrl hub.Controller, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		client := hub.NewClient(h, conn, logger.With(zap.String("remote", r.RemoteAddr)))
		h.Register(client)

		// Send current state to the new client
		b.SendInitialState(r.Context(), client)

		// Start write pump
		go client.WritePump()
		// Start read pump forwarding session, source and frame messages
		go client.ReadPump(ctrl)
	}
}
