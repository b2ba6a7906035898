// Package remote serves the approval and toggle controls over HTTP and
// WebSocket. Handlers never touch the controller: they queue Commands
// that the tick goroutine drains.
package remote

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// inboxSize bounds queued commands. A full inbox rejects new ones.
const inboxSize = 16

// CommandKind names a remote control action.
type CommandKind uint8

const (
	CommandApprove CommandKind = iota
	CommandToggle
)

func (k CommandKind) String() string {
	if k == CommandToggle {
		return "toggle"
	}
	return "approve"
}

// Command is one queued control action. ProposalID is uuid.Nil when an
// approval does not name a proposal.
type Command struct {
	Kind       CommandKind
	ProposalID uuid.UUID
	Source     string // "http" or "ws"
}

// PendingView is the JSON form of a proposal awaiting approval.
type PendingView struct {
	ID       string `json:"id"`
	Action   string `json:"action"`
	Row      int    `json:"row"`
	Col      int    `json:"col"`
	Tier     string `json:"tier"`
	Detected string `json:"detected"`
	Summary  string `json:"summary"`
}

// Status is the snapshot published after each tick.
type Status struct {
	Running    bool         `json:"running"`
	State      string       `json:"state"`
	Outcome    string       `json:"outcome"`
	Game       string       `json:"game"`
	Pending    *PendingView `json:"pending,omitempty"`
	Locked     int          `json:"locked"`
	Unrevealed int          `json:"unrevealed"`
	Revealed   int          `json:"revealed"`
	Flagged    int          `json:"flagged"`
	Unknown    int          `json:"unknown"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

type approveRequest struct {
	ProposalID string `json:"proposal_id"`
}

type wsMessage struct {
	Action     string `json:"action"`
	ProposalID string `json:"proposal_id,omitempty"`
}

// Server is the remote control surface.
type Server struct {
	engine *gin.Engine
	inbox  chan Command
	hub    *hub
	log    *slog.Logger

	mu     sync.RWMutex
	status Status
}

// NewServer builds the routes. gatherer backs /metrics; nil serves the
// default registry.
func NewServer(log *slog.Logger, gatherer prometheus.Gatherer) *Server {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	s := &Server{
		engine: gin.New(),
		inbox:  make(chan Command, inboxSize),
		hub:    newHub(log),
		log:    log,
	}
	s.engine.Use(gin.Recovery())
	s.engine.GET("/status", s.handleStatus)
	control := s.engine.Group("/", requireSameOrigin(log))
	control.POST("/approve", s.handleApprove)
	control.POST("/toggle", s.handleToggle)
	s.engine.GET("/ws", s.handleWS)
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Commands is drained by the tick goroutine.
func (s *Server) Commands() <-chan Command { return s.inbox }

// Publish stores st for /status and pushes it to WebSocket clients.
func (s *Server) Publish(st Status) {
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
	s.hub.broadcast(st)
}

// Status returns the last published snapshot.
func (s *Server) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.engine, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Info("remote control listening", "addr", addr)
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.hub.closeAll()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// enqueue hands cmd to the tick goroutine without blocking.
func (s *Server) enqueue(cmd Command) bool {
	select {
	case s.inbox <- cmd:
		s.log.Debug("remote command queued", "kind", cmd.Kind.String(), "source", cmd.Source)
		return true
	default:
		s.log.Warn("remote command dropped, inbox full", "kind", cmd.Kind.String())
		return false
	}
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.Status())
}

func (s *Server) handleApprove(c *gin.Context) {
	var req approveRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	id, err := parseID(req.ProposalID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid proposal_id"})
		return
	}
	if !s.enqueue(Command{Kind: CommandApprove, ProposalID: id, Source: "http"}) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "command queue full"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"queued": "approve"})
}

func (s *Server) handleToggle(c *gin.Context) {
	if !s.enqueue(Command{Kind: CommandToggle, Source: "http"}) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "command queue full"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"queued": "toggle"})
}

func parseID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(s)
}
