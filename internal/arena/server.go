package arena

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/arcadeworks/arena/internal/config"
	"github.com/arcadeworks/arena/internal/game/world"
	"github.com/arcadeworks/arena/internal/records"
)

// Server is the HTTP front of the arena: it upgrades /ws connections into
// clients and serves a health endpoint. It implements the lifecycle Service
// interface.
type Server struct {
	logger     *zap.Logger
	cfg        config.ServerConfig
	world      *world.World
	dispatcher *Dispatcher
	auth       *records.StaticAuth

	httpServer *http.Server
	upgrader   websocket.Upgrader
}

// NewServer creates a Server listening on cfg.Addr().
//
// Precondition: all arguments must be non-nil.
func NewServer(
	logger *zap.Logger,
	cfg config.ServerConfig,
	w *world.World,
	d *Dispatcher,
	auth *records.StaticAuth,
) *Server {
	s := &Server{
		logger:     logger,
		cfg:        cfg,
		world:      w,
		dispatcher: d,
		auth:       auth,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", s.handleHealth)
	s.httpServer = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler exposes the HTTP handler for tests.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Start runs the HTTP server. It blocks until Stop is called or the listener
// fails.
func (s *Server) Start() error {
	s.logger.Info("arena server listening", zap.String("addr", s.cfg.Addr()))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts the HTTP server down, waiting up to the configured timeout for
// in-flight requests.
func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Warn("server shutdown", zap.Error(err))
	}
}

// handleWS upgrades the connection and joins the player to the world. The
// player name comes from the "name" query parameter; the connection is bound
// to that name as its account.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "missing name", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	connID := uuid.NewString()
	s.auth.Bind(connID, name)

	client := newClient(connID, conn, s.logger, s.world, s.dispatcher, s.auth)
	// Register before Join so the joiner receives its own snapshot.
	s.dispatcher.Register(client)

	ctx := context.Background()
	if err := s.world.Join(ctx, connID, name); err != nil {
		s.logger.Warn("join failed", zap.String("conn_id", connID), zap.Error(err))
		s.dispatcher.Unregister(connID)
		s.auth.Unbind(connID)
		conn.Close()
		return
	}

	client.run(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
