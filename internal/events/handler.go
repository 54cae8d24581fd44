package events

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"
)

// HandleWebSocket upgrades the request and streams hub events to it.
func HandleWebSocket(hub *Hub, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true, // local household app, any origin
		})
		if err != nil {
			logger.Warn("websocket accept", "error", err, "remote", r.RemoteAddr)
			return
		}

		logger.Debug("websocket connected", "remote", r.RemoteAddr)
		NewClient(hub, conn).Run(r.Context())
		logger.Debug("websocket disconnected", "remote", r.RemoteAddr)
	}
}
