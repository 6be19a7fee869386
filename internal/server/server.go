// Package server exposes topologies, geometry compilation and layout
// records over HTTP.
//
// The layout routes are the remote end of [store.HTTPStore]: a board whose
// gateway is configured with the http backend persists through them.
//
//	GET    /api/health
//	GET    /api/topologies
//	GET    /api/topologies/{name}
//	POST   /api/topologies/{name}/compile
//	GET    /api/layouts/{topology}
//	GET    /api/layouts/{topology}/{group}
//	PUT    /api/layouts/{topology}/{group}
//	DELETE /api/layouts/{topology}/{group}
//
// Errors are JSON objects {"code": ..., "error": ...} with the status
// derived from the error code.
package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/dashgrid/pkg/cache"
	"github.com/matzehuels/dashgrid/pkg/store"
)

// Defaults for server options.
const (
	DefaultCompileTTL   = time.Hour
	DefaultPingTimeout  = 5 * time.Second
	DefaultShutdownWait = 10 * time.Second
	maxBodyBytes        = 1 << 20
)

// Server serves the dashgrid HTTP API.
type Server struct {
	store      store.Store
	cache      cache.Cache
	keyer      cache.Keyer
	logger     *log.Logger
	degraded   func() bool
	compileTTL time.Duration
	now        func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCache caches compile results.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *Server) {
		s.cache = c
		s.compileTTL = ttl
	}
}

// WithKeyer sets how compile cache keys are built.
func WithKeyer(k cache.Keyer) Option {
	return func(s *Server) { s.keyer = k }
}

// WithDegraded reports an upstream degraded flag in /api/health, typically
// [persist.Gateway.Degraded] of the process hosting the server.
func WithDegraded(fn func() bool) Option {
	return func(s *Server) { s.degraded = fn }
}

// New creates a server backed by st.
func New(st store.Store, opts ...Option) *Server {
	s := &Server{
		store:      st,
		cache:      cache.NewNullCache(),
		keyer:      cache.NewDefaultKeyer(),
		logger:     log.Default(),
		degraded:   func() bool { return false },
		compileTTL: DefaultCompileTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/topologies", func(r chi.Router) {
			r.Get("/", s.handleListTopologies)
			r.Get("/{name}", s.handleGetTopology)
			r.Post("/{name}/compile", s.handleCompile)
		})

		r.Route("/layouts/{topology}", func(r chi.Router) {
			r.Get("/", s.handleListLayouts)
			r.Get("/{group}", s.handleGetLayout)
			r.Put("/{group}", s.handlePutLayout)
			r.Delete("/{group}", s.handleDeleteLayout)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Code: "NOT_FOUND", Error: "no route for " + r.URL.Path})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Code: "INVALID_INPUT", Error: r.Method + " not allowed on " + r.URL.Path})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.logger.Info("Listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), DefaultShutdownWait)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("Server stopped")
	return nil
}
