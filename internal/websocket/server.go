// Package websocket pushes session lifecycle events to connected
// clients so a UI can follow playback and scoring in real time.
package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rfweber/qsotrainer/internal/session"
	"github.com/rfweber/qsotrainer/pkg/logger"
)

const (
	// writeWait bounds a single write to a client.
	writeWait = 10 * time.Second

	// pongWait is how long we wait for a pong before dropping a client.
	pongWait = 60 * time.Second

	// pingPeriod must be shorter than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// sendBufferSize is the per-client outbound queue. A client that
	// falls this far behind is disconnected.
	sendBufferSize = 64
)

// Server fans session events out to every connected websocket client.
// It implements session.EventSink.
type Server struct {
	logger   *logger.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewServer creates a websocket event server. allowedOrigins follows
// the CORS configuration; "*" accepts any origin.
func NewServer(allowedOrigins []string, log *logger.Logger) *Server {
	s := &Server{
		logger:  log.Named("websocket"),
		clients: make(map[*client]struct{}),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return s
}

func originChecker(allowed []string) func(*http.Request) bool {
	for _, origin := range allowed {
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
	}
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		allowedSet[origin] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allowedSet[origin]
		return ok
	}
}

// HandleWS upgrades an HTTP request and registers the connection for
// event delivery.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Failed to upgrade websocket connection", logger.Error(err))
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = conn.Close()
		return
	}
	s.clients[c] = struct{}{}
	count := len(s.clients)
	s.mu.Unlock()

	s.logger.Info("Websocket client connected",
		logger.String("remote", conn.RemoteAddr().String()),
		logger.Int("clients", count),
	)

	go s.writePump(c)
	go s.readPump(c)
}

// Publish serializes the event and queues it to every connected client.
// Slow clients are dropped rather than allowed to block the session.
func (s *Server) Publish(event session.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("Failed to marshal session event", logger.Error(err))
		return
	}

	s.mu.Lock()
	var stale []*client
	for c := range s.clients {
		select {
		case c.send <- payload:
		default:
			stale = append(stale, c)
		}
	}
	for _, c := range stale {
		delete(s.clients, c)
	}
	s.mu.Unlock()

	for _, c := range stale {
		s.logger.Warn("Dropping slow websocket client",
			logger.String("remote", c.conn.RemoteAddr().String()),
		)
		close(c.send)
	}
}

// Close disconnects every client and rejects new connections.
func (s *Server) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.clients = make(map[*client]struct{})
	s.mu.Unlock()

	for _, c := range clients {
		close(c.send)
	}
}

// readPump discards inbound messages and watches for disconnection.
// The event stream is one-way; clients only listen.
func (s *Server) readPump(c *client) {
	defer s.remove(c)
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
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

// remove unregisters a client after its read pump exits.
func (s *Server) remove(c *client) {
	s.mu.Lock()
	_, ok := s.clients[c]
	if ok {
		delete(s.clients, c)
	}
	count := len(s.clients)
	s.mu.Unlock()

	if ok {
		close(c.send)
		s.logger.Info("Websocket client disconnected", logger.Int("clients", count))
	}
}
