package vehicle

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// ServerConfig is the simulator's listen configuration.
type ServerConfig struct {
	Addr            string        `help:"Listen address of the simulated vehicle" default:":1024" env:"RCPAD_VEHICLE_ADDR"`
	ShutdownTimeout time.Duration `help:"Grace period for open connections on shutdown" default:"2s" env:"RCPAD_VEHICLE_SHUTDOWN_TIMEOUT"`
}

// Server exposes a Vehicle over WebSocket (GET /) and its state as JSON
// (GET /state).
type Server struct {
	cfg      ServerConfig
	vehicle  *Vehicle
	logger   *slog.Logger
	engine   *gin.Engine
	upgrader websocket.Upgrader

	ln  net.Listener
	srv *http.Server
}

// NewServer builds the router. Nothing listens until Start.
func NewServer(cfg ServerConfig, v *Vehicle, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		cfg:     cfg,
		vehicle: v,
		logger:  logger,
		engine:  gin.New(),
		upgrader: websocket.Upgrader{
			// the panel may be served from anywhere on the local network
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	s.engine.Use(gin.Recovery())
	s.engine.GET("/", s.handleSocket)
	s.engine.GET("/state", s.handleState)
	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.engine }

// Addr returns the bound address after Start.
func (s *Server) Addr() string {
	if s.ln == nil {
		return s.cfg.Addr
	}
	return s.ln.Addr().String()
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.srv = &http.Server{Handler: s.engine, ReadHeaderTimeout: 5 * time.Second}
	s.logger.Info("vehicle listening", "addr", ln.Addr().String())
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("vehicle server stopped", "error", err)
		}
	}()
	return nil
}

// Close shuts the server down, waiting up to ShutdownTimeout for handlers.
// Hijacked WebSocket connections are closed by their read loops.
func (s *Server) Close() error {
	if s.srv == nil {
		return nil
	}
	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleState(c *gin.Context) {
	c.JSON(http.StatusOK, s.vehicle.Snapshot())
}

func (s *Server) handleSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "remote", c.Request.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()

	logger := s.logger.With("remote", conn.RemoteAddr().String())
	s.vehicle.Connected()
	defer s.vehicle.Disconnected()
	logger.Info("panel connected")

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("websocket read", "error", err)
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		if err := s.vehicle.Apply(string(data)); err != nil {
			logger.Warn("ignoring token", "error", err)
		}
	}
}
