// Package api is the HTTP host. GET /user always answers with the fixed demo
// user; the catalog routes are mounted only when repositories are wired in.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Tarun9121/project-lambok/repo"
	"github.com/Tarun9121/project-lambok/telemetry"
)

// Pinger is satisfied by *db.DB.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config wires the server's collaborators. Every field is optional.
type Config struct {
	Users    repo.UserRepository
	Products repo.ProductRepository
	// DB is pinged by /healthz.
	DB Pinger

	Logger  *slog.Logger
	Metrics *telemetry.Collector
	Tracer  *telemetry.Tracer

	// ReadHeaderTimeout bounds header reads in Run. Zero uses 5s.
	ReadHeaderTimeout time.Duration
}

// Server routes requests to handlers.
type Server struct {
	cfg    Config
	logger *slog.Logger
	router *mux.Router
}

// NewServer builds the router.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ReadHeaderTimeout == 0 {
		cfg.ReadHeaderTimeout = 5 * time.Second
	}

	s := &Server{cfg: cfg, logger: logger, router: mux.NewRouter()}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.Use(requestID, s.observe)

	r.HandleFunc("/user", s.getCurrentUser).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)

	if s.cfg.Users != nil {
		r.HandleFunc("/users/{id}", s.getUser).Methods(http.MethodGet)
	}
	if s.cfg.Products != nil {
		r.HandleFunc("/products", s.listProducts).Methods(http.MethodGet)
		r.HandleFunc("/products/{id}", s.getProduct).Methods(http.MethodGet)
	}

	if s.cfg.Metrics != nil {
		r.Handle("/metrics", s.cfg.Metrics.Handler()).Methods(http.MethodGet)
	} else {
		r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run serves on ln until ctx is cancelled, then drains in-flight requests
// for at most shutdownTimeout.
func (s *Server) Run(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("api: listening", "addr", ln.Addr().String())
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("api: serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("api: shutting down", "timeout", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api: shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api: serve: %w", err)
	}
	return nil
}
