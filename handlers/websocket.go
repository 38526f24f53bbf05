package handlers

import (
	"encoding/json"
	"net/http"
	"rabbit-bot/middleware"
	"rabbit-bot/models"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // operator tools connect from anywhere; the token is the gate
	},
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
)

type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	subject string
}

// Hub fans reminder events out to connected operator feeds.
type Hub struct {
	auth    *middleware.Auth
	clients map[*Client]bool
	mu      sync.RWMutex
	closed  bool
}

func NewHub(auth *middleware.Auth) *Hub {
	return &Hub{
		auth:    auth,
		clients: make(map[*Client]bool),
	}
}

// Publish sends msg to every connected client. Clients whose buffer is full
// are dropped rather than blocking the caller.
func (h *Hub) Publish(msg models.WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("component", "ws").Str("type", msg.Type).Msg("marshal failed")
		return
	}

	sentCount := 0
	var staleClients []*Client
	h.mu.RLock()
	totalClients := len(h.clients)
	for client := range h.clients {
		select {
		case client.send <- data:
			sentCount++
		default:
			staleClients = append(staleClients, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range staleClients {
		log.Warn().Str("component", "ws").Str("subject", client.subject).Msg("client buffer full, closing")
		h.unregister(client)
	}

	log.Debug().Str("component", "ws").Str("type", msg.Type).Int("sent", sentCount).Int("clients", totalClients).Msg("published")
}

func (h *Hub) register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = true
	return true
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Token required", http.StatusUnauthorized)
		return
	}

	claims, err := h.auth.ValidateToken(token)
	if err != nil {
		log.Warn().Err(err).Str("component", "ws").Str("remote", r.RemoteAddr).Msg("connection rejected")
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Str("component", "ws").Str("subject", claims.Subject).Msg("upgrade failed")
		return
	}

	client := &Client{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, 256),
		subject: claims.Subject,
	}

	// Registered before the welcome is written, so anything published after a
	// client has seen the welcome reaches it. Queued events wait for writePump.
	if !h.register(client) {
		conn.Close()
		return
	}

	welcome, _ := json.Marshal(models.WSMessage{
		Type:    models.WSTypeWelcome,
		Payload: map[string]string{"message": "connected"},
	})
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, welcome); err != nil {
		log.Error().Err(err).Str("component", "ws").Str("subject", client.subject).Msg("failed to send welcome")
		h.unregister(client)
		conn.Close()
		return
	}

	log.Info().Str("component", "ws").Str("subject", client.subject).Msg("client connected")
	go client.writePump()
	go client.readPump()
}

// readPump only services control frames; the feed is one-way.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
		log.Info().Str("component", "ws").Str("subject", c.subject).Msg("client disconnected")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("component", "ws").Str("subject", c.subject).Msg("unexpected close")
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Warn().Err(err).Str("component", "ws").Str("subject", c.subject).Msg("write failed")
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
