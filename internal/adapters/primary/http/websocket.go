package http

import (
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"deckview/internal/domain/entities"
	"deckview/internal/domain/ports"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512
)

// createUpgrader creates a WebSocket upgrader with proper origin validation
func (s *Server) createUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return s.isValidOrigin(r)
		},
	}
}

// WebSocketClient represents a WebSocket client connection
type WebSocketClient struct {
	id      string
	conn    *websocket.Conn
	send    chan entities.UpdateEvent
	manager *ConnectionManager
	session ports.SessionService
	logger  *HTTPLogger
}

// navMessage is the key event a client (or an embedded document, relayed
// through the shell) forwards over the socket.
type navMessage struct {
	Nav   bool   `json:"__pptNav"`
	Key   string `json:"key"`
	Shift bool   `json:"shiftKey"`
	Alt   bool   `json:"altKey"`
	Ctrl  bool   `json:"ctrlKey"`
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := s.createUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("WebSocket upgrade failed: %v", err)
		return
	}

	client := &WebSocketClient{
		id:      uuid.New().String(),
		conn:    conn,
		send:    make(chan entities.UpdateEvent, 256),
		manager: s.connMgr,
		session: s.session,
		logger:  s.logger,
	}

	// Register the client with connection manager
	connInfo := &Connection{
		ID:   client.id,
		Send: client.send,
	}
	s.connMgr.register <- connInfo

	// Start goroutines for reading and writing
	go client.writePump()
	go client.readPump()

	// Send the full state so a late joiner lands on the current slide
	event := entities.UpdateEvent{
		Type:      "connected",
		Timestamp: time.Now(),
		Data:      s.session.Snapshot(),
	}

	select {
	case client.send <- event:
	default:
		// Client's send channel is full
	}
}

// readPump pumps messages from the WebSocket connection
func (c *WebSocketClient) readPump() {
	defer func() {
		c.manager.Unregister(c.id)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		// Read message from browser
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket connection error: %v", err)
			}
			break
		}

		var msg navMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.logger.Error("Failed to parse client message: %v", err)
			continue
		}
		if !msg.Nav {
			c.logger.Debug("Ignoring non-nav message from client %s", c.id)
			continue
		}

		c.session.HandleKey(entities.NavIntent{
			Key:   msg.Key,
			Shift: msg.Shift,
			Alt:   msg.Alt,
			Ctrl:  msg.Ctrl,
		})
	}
}

// writePump pumps messages to the WebSocket connection
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The channel has been closed
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// Write the event as JSON
			if err := c.conn.WriteJSON(event); err != nil {
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

// isValidOrigin gates WebSocket upgrades. Same-origin requests carry no
// Origin header and pass; everything else depends on the environment.
func (s *Server) isValidOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		s.logger.Warn("WebSocket connection rejected: invalid origin %q: %v", origin, err)
		return false
	}

	if s.config.IsDevelopment() {
		return isLocalOrigin(originURL.Hostname())
	}
	return s.isAllowedOrigin(originURL)
}

// isLocalOrigin accepts the loopback names plus RFC 1918 addresses, so a
// phone on the presenter's network can attach during development.
func isLocalOrigin(hostname string) bool {
	switch hostname {
	case "localhost", "0.0.0.0":
		return true
	}
	ip := net.ParseIP(hostname)
	if ip == nil {
		return false
	}
	return ip.IsLoopback() || ip.IsPrivate()
}

// isAllowedOrigin matches the origin against the configured CORS whitelist,
// honoring *.example.com wildcard entries.
func (s *Server) isAllowedOrigin(originURL *url.URL) bool {
	for _, allowed := range s.config.GetCORSOrigins() {
		if originURL.String() == allowed {
			return true
		}
		if domain, ok := strings.CutPrefix(allowed, "*."); ok {
			if strings.HasSuffix(originURL.Hostname(), domain) {
				return true
			}
		}
	}

	s.logger.Warn("WebSocket connection rejected: origin %s not in whitelist", originURL.String())
	return false
}
