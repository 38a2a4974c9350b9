package handlers

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"social-network/internal/metrics"
	"social-network/internal/models"
	"social-network/internal/repos"
)

// WSMessage is the loose frame format shared with the browser client.
type WSMessage map[string]interface{}

// Client represents one websocket connection.
type Client struct {
	username string
	conn     *websocket.Conn
	send     chan WSMessage
}

// Hub maintains active clients, broadcasts events and relays direct
// messages. Presence flips are written through the user repository so the
// REST surface and the socket agree on who is online.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client // username -> client

	// broadcast channel for safe message dispatch
	broadcast chan WSMessage

	repos *repos.Repos
}

func NewHub(r *repos.Repos) *Hub {
	return &Hub{
		clients:   make(map[string]*Client),
		broadcast: make(chan WSMessage, 64),
		repos:     r,
	}
}

func (h *Hub) AddClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.username] = c
}

func (h *Hub) RemoveClient(username string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, username)
}

// OnlineUsers lists usernames with a live socket.
func (h *Hub) OnlineUsers() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, 0, len(h.clients))
	for username := range h.clients {
		out = append(out, username)
	}
	return out
}

// BroadcastPresence announces an online/offline transition to everyone.
func (h *Hub) BroadcastPresence(username, status string) {
	h.Broadcast(WSMessage{"type": "presence", "username": username, "status": status})
}

func (h *Hub) Broadcast(msg WSMessage) {
	select {
	case h.broadcast <- msg:
	default:
		// drop if broadcast channel is full to avoid blocking
	}
}

// SendToUser delivers msg to one user's socket, if connected.
func (h *Hub) SendToUser(username string, msg WSMessage) {
	h.mu.RLock()
	c, ok := h.clients[username]
	h.mu.RUnlock()
	if !ok {
		return
	}
	select {
	case c.send <- msg:
	default:
		// drop if client's send buffer is full
	}
}

// Disconnect force-closes a user's socket (account deletion). Closing the
// connection unwinds the reader loop, which performs the cleanup; the send
// channel stays open because broadcasts may still hold a reference to it.
func (h *Hub) Disconnect(username string) {
	h.mu.RLock()
	c, ok := h.clients[username]
	h.mu.RUnlock()
	if ok {
		c.conn.Close()
	}
}

// Run listens on the broadcast channel and dispatches to clients without
// holding the lock during sends.
func (h *Hub) Run() {
	for msg := range h.broadcast {
		h.mu.RLock()
		clients := make([]*Client, 0, len(h.clients))
		for _, c := range h.clients {
			clients = append(clients, c)
		}
		h.mu.RUnlock()

		for _, c := range clients {
			select {
			case c.send <- msg:
			default:
				// drop if client's send buffer is full
			}
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// served behind the app's own origin; tighten when a separate
		// front-end origin is introduced
		return true
	},
}

// ServeWS upgrades the request. Browsers cannot set headers on websocket
// dials, so the token may arrive as ?token= instead of Authorization.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	}
	claims, err := h.jwt.ValidateToken(token)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}

	h.hub.serve(claims.Username, conn)
}

func (h *Hub) serve(username string, conn *websocket.Conn) {
	client := &Client{username: username, conn: conn, send: make(chan WSMessage, 16)}
	h.AddClient(client)
	metrics.TrackWSConnection(true)
	log.Info().Str("user", username).Msg("websocket connected")

	// mark online and tell everyone
	h.setOnline(username, true)
	conn.WriteJSON(WSMessage{"type": "init", "username": username, "online_users": h.OnlineUsers()})
	h.BroadcastPresence(username, "online")

	go h.writerLoop(client)
	h.readerLoop(client)
}

func (h *Hub) setOnline(username string, online bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := h.repos.Users.UpdateUser(ctx, username, repos.UserUpdate{Online: &online}); err != nil {
		log.Warn().Err(err).Str("user", username).Msg("presence update failed")
	}
}

func (h *Hub) writerLoop(c *Client) {
	ticker := time.NewTicker(25 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) readerLoop(c *Client) {
	defer func() {
		h.RemoveClient(c.username)
		h.setOnline(c.username, false)
		h.BroadcastPresence(c.username, "offline")
		metrics.TrackWSConnection(false)
		log.Info().Str("user", c.username).Msg("websocket disconnected")
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		return nil
	})

	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		t, _ := msg["type"].(string)
		if t != "message" {
			c.send <- WSMessage{"type": "error", "message": "Unknown message type"}
			continue
		}

		to, _ := msg["to"].(string)
		content, _ := msg["content"].(string)
		if to == "" || content == "" {
			c.send <- WSMessage{"type": "error", "message": "Invalid recipient or empty content"}
			continue
		}

		msgType, _ := msg["msgType"].(string)
		if msgType == "" {
			msgType = models.MessageText
		}
		fileName, _ := msg["fileName"].(string)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)

		if _, err := h.repos.Users.GetUserByUsername(ctx, to); err != nil {
			cancel()
			c.send <- WSMessage{"type": "error", "message": "Recipient not found"}
			continue
		}

		m := &models.Message{
			From:     c.username,
			To:       to,
			Type:     msgType,
			Content:  content,
			FileName: fileName,
		}
		err := h.repos.Messages.CreateMessage(ctx, m)
		cancel()
		if err != nil {
			c.send <- WSMessage{"type": "error", "message": "Failed to save message"}
			continue
		}
		metrics.RecordWSMessage()

		frame := WSMessage{"type": "message", "message": m}
		h.SendToUser(to, frame)
		// echo back to the sender as confirmation
		c.send <- frame
	}
}
