package remote

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait = 2 * time.Second
	// sendBuffer is how many messages may wait for one slow client before
	// further statuses to it are dropped.
	sendBuffer = 8
)

var upgrader = websocket.Upgrader{CheckOrigin: sameOrigin}

// sameOrigin accepts requests without an Origin header (curl, scripts) and
// browser requests whose Origin host matches the Host they were sent to.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

// requireSameOrigin rejects cross-site browser requests to the control
// routes with 403.
func requireSameOrigin(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !sameOrigin(c.Request) {
			log.Warn("cross-origin control request rejected",
				"origin", c.GetHeader("Origin"), "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "cross-origin request"})
			return
		}
		c.Next()
	}
}

// client is one WebSocket connection. Only its writer goroutine touches
// the connection for writes.
type client struct {
	conn *websocket.Conn
	send chan any
}

// hub tracks WebSocket clients. Publishing never waits on a connection.
type hub struct {
	log     *slog.Logger
	mu      sync.Mutex
	clients map[*client]struct{}
}

func newHub(log *slog.Logger) *hub {
	return &hub{log: log, clients: make(map[*client]struct{})}
}

func (h *hub) add(conn *websocket.Conn) *client {
	c := &client{conn: conn, send: make(chan any, sendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	go h.writeLoop(c)
	return c
}

func (h *hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(c)
}

func (h *hub) dropLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	if c.conn != nil {
		c.conn.Close()
	}
}

func (h *hub) writeLoop(c *client) {
	for v := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(v); err != nil {
			h.log.Warn("websocket write failed, dropping client", "err", err)
			h.remove(c)
			return
		}
	}
}

// send queues v for one client. It reports false when the client's buffer
// is full or the client is gone.
func (h *hub) send(c *client, v any) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return false
	}
	select {
	case c.send <- v:
		return true
	default:
		return false
	}
}

func (h *hub) broadcast(v any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- v:
		default:
			h.log.Debug("websocket client behind, status dropped")
		}
	}
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.dropLocked(c)
	}
}

func (s *Server) handleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Error("websocket upgrade failed", "err", err)
		return
	}
	cl := s.hub.add(conn)
	defer s.hub.remove(cl)
	s.log.Info("websocket client connected", "remote", conn.RemoteAddr().String())

	s.hub.send(cl, s.Status())
	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			s.log.Info("websocket client disconnected", "err", err)
			return
		}
		var cmd Command
		switch msg.Action {
		case "approve":
			id, err := parseID(msg.ProposalID)
			if err != nil {
				s.hub.send(cl, gin.H{"error": "invalid proposal_id"})
				continue
			}
			cmd = Command{Kind: CommandApprove, ProposalID: id, Source: "ws"}
		case "toggle":
			cmd = Command{Kind: CommandToggle, Source: "ws"}
		default:
			s.hub.send(cl, gin.H{"error": "unknown action " + msg.Action})
			continue
		}
		if !s.enqueue(cmd) {
			s.hub.send(cl, gin.H{"error": "command queue full"})
		}
	}
}
