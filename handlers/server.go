package handlers

import (
	"net/http"
	"rabbit-bot/middleware"
)

// NewRouter builds the operator HTTP surface.
func NewRouter(reminderHandler *ReminderHandler, hub *Hub, auth *middleware.Auth) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	mux.HandleFunc("GET /api/ws", hub.HandleWebSocket)
	mux.HandleFunc("GET /api/reminders", auth.WithAuth(reminderHandler.List))

	return mux
}
