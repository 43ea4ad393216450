package chat

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/dcalliari/appe/internal"
	"github.com/dcalliari/appe/internal/core/events"
	"github.com/dcalliari/appe/internal/transport"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendBuffer     = 32

	FrameTypeMessage = "chat.message"
)

// Frame is what the push channel writes to a connected client.
type Frame struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// IdentityVerifier turns a bearer token into an Identity.
type IdentityVerifier interface {
	Verify(token string) (*internal.Identity, error)
}

// Hub pushes newly sent messages to the connected sessions of both
// participants. It only mirrors what polling returns and never touches read
// state.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]map[*client]struct{}
	verifier IdentityVerifier
	upgrader websocket.Upgrader
	logger   *slog.Logger
	base     *transport.BaseHandler
}

func NewHub(verifier IdentityVerifier, allowedOrigins []string, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Hub{
		clients:  make(map[string]map[*client]struct{}),
		verifier: verifier,
		logger:   logger,
		base:     transport.NewBaseHandler(logger),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// ServeWS handles GET /chat/ws. Browsers cannot set headers on the upgrade
// request, so the token may also come in the "token" query parameter.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := transport.BearerToken(r)
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		h.base.HandleServiceError(w, r, internal.ErrUnauthenticated)
		return
	}

	id, err := h.verifier.Verify(token)
	if err != nil {
		h.base.HandleServiceError(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		h.logger.Warn("websocket upgrade failed", "user_id", id.UserID, "error", err)
		return
	}

	c := &client{
		hub:    h,
		userID: id.UserID,
		conn:   conn,
		send:   make(chan Frame, sendBuffer),
	}
	h.register(c)
	go c.writePump()
	go c.readPump()
}

// OnMessageSent is subscribed to chat.message.sent on the event bus.
func (h *Hub) OnMessageSent(_ context.Context, evt events.Event) error {
	sent, ok := evt.(*events.ChatMessageSentEvent)
	if !ok {
		return nil
	}
	frame := Frame{
		Type: FrameTypeMessage,
		Data: &Message{
			ID:         sent.MessageID,
			FromUserID: sent.FromUserID,
			ToUserID:   sent.ToUserID,
			Message:    sent.Message,
			CreatedAt:  sent.CreatedAt,
		},
	}
	h.deliver(sent.ToUserID, frame)
	h.deliver(sent.FromUserID, frame)
	return nil
}

// Connections reports how many sessions userID has open.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Close drops every connection.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, set := range h.clients {
		for c := range set {
			close(c.send)
		}
		delete(h.clients, userID)
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
	h.logger.Debug("websocket client connected", "user_id", c.userID, "sessions", len(set))
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
	h.logger.Debug("websocket client disconnected", "user_id", c.userID)
}

func (h *Hub) deliver(userID string, frame Frame) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[userID] {
		select {
		case c.send <- frame:
		default:
			h.logger.Warn("websocket client too slow, dropping frame", "user_id", userID)
		}
	}
}

type client struct {
	hub    *Hub
	userID string
	conn   *websocket.Conn
	send   chan Frame
}

// readPump only services control frames; clients have nothing to say.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("unexpected websocket close", "user_id", c.userID, "error", err)
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(frame); err != nil {
				c.hub.logger.Warn("websocket write failed", "user_id", c.userID, "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
