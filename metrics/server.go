package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server provides an HTTP server for Prometheus metrics
type Server struct {
	httpServer *http.Server
}

// NewServer creates a metrics server for the default registry
func NewServer(addr string) *Server {
	return NewServerFor(addr, prometheus.DefaultGatherer)
}

// NewServerFor creates a metrics server exposing gatherer
func NewServerFor(addr string, gatherer prometheus.Gatherer) *Server {
	if addr == "" {
		addr = ":9419"
	}

	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      newMux(gatherer),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
	}
}

func newMux(gatherer prometheus.Gatherer) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	return mux
}

// Start starts the metrics HTTP server; it blocks until Stop.
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully stops the metrics HTTP server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.httpServer.Addr
}
