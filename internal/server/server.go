package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/blastfield/internal/config"
	"github.com/zeusync/blastfield/internal/core/observability/log"
)

const shutdownTimeout = 5 * time.Second

// Server accepts AR host connections and gives each one its own scene.
type Server struct {
	config   config.Config
	logger   log.Log
	upgrader websocket.Upgrader
	http     *http.Server

	sessions     sync.Map // map[string]*Session
	sessionCount atomic.Int64

	running atomic.Bool
	closed  atomic.Bool
}

func NewServer(cfg config.Config, logger log.Log) *Server {
	s := &Server{
		config: cfg,
		logger: logger.With(log.String("component", "server")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	s.http = &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("Server created",
		log.String("listen_addr", cfg.Server.ListenAddr),
		log.Int("max_sessions", cfg.Server.MaxSessions))

	return s
}

// Handler exposes /ws for AR hosts and /healthz for probes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

func (s *Server) ActiveSessions() int { return int(s.sessionCount.Load()) }

// ListenAndServe listens on the configured address and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Server.ListenAddr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.closed.Load() {
		_ = ln.Close()
		return ErrServerClosed
	}
	if !s.running.CompareAndSwap(false, true) {
		_ = ln.Close()
		return ErrServerAlreadyRunning
	}
	defer s.running.Store(false)

	s.logger.Info("Server listening", log.String("addr", ln.Addr().String()))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return s.shutdown()
	})

	err := g.Wait()
	s.logger.Info("Server stopped")
	return err
}

func (s *Server) shutdown() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.logger.Info("Stopping server", log.Int("sessions", s.ActiveSessions()))

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := s.http.Shutdown(ctx)

	// hijacked websocket connections are not tracked by http.Server
	s.sessions.Range(func(_, value any) bool {
		value.(*Session).close(websocket.CloseGoingAway, "server shutting down")
		return true
	})
	return err
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.closed.Load() {
		http.Error(w, ErrServerClosed.Error(), http.StatusServiceUnavailable)
		return
	}
	if s.sessionCount.Add(1) > int64(s.config.Server.MaxSessions) {
		s.sessionCount.Add(-1)
		s.logger.Warn("Maximum sessions reached, rejecting connection",
			log.String("remote_addr", r.RemoteAddr))
		http.Error(w, ErrTooManySessions.Error(), http.StatusServiceUnavailable)
		return
	}
	defer s.sessionCount.Add(-1)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Websocket upgrade failed", log.Error(err))
		return
	}

	session, err := newSession(conn, s.config, s.logger)
	if err != nil {
		s.logger.Error("Failed to create session", log.Error(err))
		_ = conn.Close()
		return
	}

	s.sessions.Store(session.ID, session)
	defer s.sessions.Delete(session.ID)

	s.logger.Info("Session opened",
		log.String("session", session.ID),
		log.String("remote_addr", r.RemoteAddr))

	session.serve(s.config.Server.ReadLimit)
	session.close(websocket.CloseNormalClosure, "")

	s.logger.Info("Session closed",
		log.String("session", session.ID),
		log.Int("bodies", len(session.Scene().Bodies())),
		log.Duration("duration", time.Since(session.ConnectedAt)))
}

type healthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := "ok"
	code := http.StatusOK
	if s.closed.Load() {
		status = "closing"
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(healthResponse{Status: status, Sessions: s.ActiveSessions()})
}
