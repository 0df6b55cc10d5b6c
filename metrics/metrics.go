// Package metrics exposes Prometheus metrics for the vault pipelines on a
// dedicated listener, kept separate from the API server so scraping is never
// affected by API load or draining.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pipeline counters. Labels carry the outcome kind, never object identifiers
// or owner ids.
var (
	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "imgvault_uploads_total",
		Help: "Number of upload pipeline invocations by outcome.",
	}, []string{"outcome"})

	RetrievalsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "imgvault_retrievals_total",
		Help: "Number of retrieval pipeline invocations by outcome.",
	}, []string{"outcome"})

	DeletionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "imgvault_deletions_total",
		Help: "Number of deletion pipeline invocations by outcome.",
	}, []string{"outcome"})

	OrphanedBlobsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "imgvault_orphaned_blobs_total",
		Help: "Blobs left behind after a failed metadata write whose compensating delete also failed.",
	})
)

// MetricsServer serves the Prometheus registry over HTTP.
type MetricsServer struct {
	srv *http.Server
}

// New creates a metrics server listening on addr.
func New(name, addr string) (*MetricsServer, error) {
	if addr == "" {
		return nil, fmt.Errorf("metrics: empty listen address")
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &MetricsServer{
		srv: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}, nil
}

// ListenAndServe blocks serving the metrics endpoint.
func (m *MetricsServer) ListenAndServe() error {
	return m.srv.ListenAndServe()
}

// Shutdown gracefully stops the metrics server.
func (m *MetricsServer) Shutdown(ctx context.Context) error {
	return m.srv.Shutdown(ctx)
}
