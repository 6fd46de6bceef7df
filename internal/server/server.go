package server

import (
	"context"
	"io/fs"
	"net/http"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/soar/VRPawn/internal/hub"
)

// Options configure a Server.
type Options struct {
	Addr        string
	Hub         *hub.Hub
	Broadcaster *hub.Broadcaster
	Controller  hub.Controller
	Frontend    fs.FS
	Minify      bool
	Logger      *zap.Logger
}

type Server struct {
	hub         *hub.Hub
	broadcaster *hub.Broadcaster
	controller  hub.Controller
	assets      *assets
	addr        string
	logger      *zap.Logger
	httpServer  *http.Server
}

// New loads the frontend and returns a server ready to listen.
func New(opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	a, err := loadAssets(opts.Frontend, opts.Minify)
	if err != nil {
		return nil, errors.Wrap(err, "load frontend")
	}
	logger.Debug("frontend loaded", zap.Int("files", a.Len()), zap.Bool("minified", opts.Minify))
	return &Server{
		hub:         opts.Hub,
		broadcaster: opts.Broadcaster,
		controller:  opts.Controller,
		assets:      a,
		addr:        opts.Addr,
		logger:      logger,
	}, nil
}

// Handler returns the routes: the WebSocket endpoint and the frontend.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// WebSocket endpoint
	mux.HandleFunc("/ws", handleWebSocket(s.hub, s.broadcaster, s.controller, s.logger))

	// Static files (frontend)
	mux.Handle("/", s.assets)

	return mux
}

func (s *Server) ListenAndServe() error {
	s.httpServer = &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	s.logger.Info("HTTP server listening", zap.String("addr", s.addr))
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		s.logger.Info("shutting down HTTP server")
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
