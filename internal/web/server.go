// Package web exposes the reconciliation results and validation actions
// over HTTP for the dashboard frontend.
package web

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Server is the HTTP front of the reconciliation service.
type Server struct {
	cfg        Config
	svc        *Service
	router     *mux.Router
	httpServer *http.Server
	log        zerolog.Logger
}

// NewServer assembles the router around a bootstrapped service.
func NewServer(cfg Config, svc *Service, log zerolog.Logger) *Server {
	s := &Server{cfg: cfg, svc: svc, log: log}
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router = mux.NewRouter()

	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/lands/municipal", s.handleMunicipal).Methods("GET")
	api.HandleFunc("/lands/government", s.handleGovernment).Methods("GET")
	api.HandleFunc("/lands/not-in-registry", s.handleNotInRegistry).Methods("GET")
	api.HandleFunc("/lands/remediated/confirmed", s.handleConfirmed).Methods("GET")
	api.HandleFunc("/lands/remediated/pending", s.handlePending).Methods("GET")

	api.HandleFunc("/validations/validate", s.handleValidate).Methods("POST")
	api.HandleFunc("/validations/reject", s.handleReject).Methods("POST")

	api.HandleFunc("/sync", s.handleSync).Methods("POST")
	api.HandleFunc("/stats", s.handleStats).Methods("GET")
	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	s.router.Use(corsMiddleware)
	s.router.Use(loggingMiddleware(s.log))
}

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	errs := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.httpServer.Addr).Msg("http server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	select {
	case err := <-errs:
		return err
	case <-stop:
	}

	s.log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
