package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vietddude/rpcpulse/internal/core/domain"
)

// Server provides HTTP endpoints for health monitoring.
type Server struct {
	caches map[domain.ChainID]*Cache
	server *http.Server
}

// NewServer creates a health server over the per-chain caches.
func NewServer(caches map[domain.ChainID]*Cache, port int) *Server {
	mux := http.NewServeMux()
	s := &Server{
		caches: caches,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
	}

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/health/detailed", s.handleDetailed)
	mux.Handle("/metrics", promhttp.Handler())

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := domain.ChainHealthy

	// Aggregate status (worst case wins)
	for _, cache := range s.caches {
		snap, err := cache.Snapshot(r.Context())
		if err != nil || snap.Status == domain.ChainDown {
			status = domain.ChainDown
			break
		}
		if snap.Status == domain.ChainDegraded {
			status = domain.ChainDegraded
		}
	}

	response := map[string]string{"status": string(status)}
	w.Header().Set("Content-Type", "application/json")

	if status == domain.ChainDown {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	json.NewEncoder(w).Encode(response)
}

func (s *Server) handleDetailed(w http.ResponseWriter, r *http.Request) {
	report := make(map[domain.ChainID]domain.NetworkHealthSnapshot)
	for chainID, cache := range s.caches {
		snap, err := cache.Snapshot(r.Context())
		if err != nil {
			continue
		}
		report[chainID] = snap
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}
