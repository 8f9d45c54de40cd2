// Package metrics serves Prometheus metrics and a health check over HTTP.
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Carmen-Shannon/oxy-xr/internal/logger"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Registerer is a metrics set that registers its own collectors, such as *immersive.Metrics.
type Registerer interface {
	Register(reg prometheus.Registerer) error
}

// Exporter owns a registry with the Go runtime and process collectors and serves it at
// /metrics, next to /health.
type Exporter struct {
	addr     string
	registry *prometheus.Registry
	mux      *http.ServeMux
}

// NewExporter creates an exporter for addr and registers every set with it.
//
// Parameters:
//   - addr: the listen address, e.g. ":9464"
//   - sets: metric sets to expose
//
// Returns:
//   - *Exporter: the exporter
//   - error: error if a set fails to register
func NewExporter(addr string, sets ...Registerer) (*Exporter, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	for _, set := range sets {
		if set == nil {
			continue
		}
		if err := set.Register(reg); err != nil {
			return nil, err
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &Exporter{addr: addr, registry: reg, mux: mux}, nil
}

// Registry returns the underlying registry.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// Handler returns the /metrics and /health routes for mounting in another server.
func (e *Exporter) Handler() http.Handler {
	return e.mux
}

// Serve listens on the exporter's address and serves until ctx is done, then shuts the
// server down gracefully.
//
// Parameters:
//   - ctx: stops the server when done
//
// Returns:
//   - error: error if listening fails or the server stops unexpectedly
func (e *Exporter) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", e.addr)
	if err != nil {
		return err
	}
	return e.serve(ctx, ln)
}

func (e *Exporter) serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:           e.mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- server.Serve(ln)
	}()
	logger.Info("metrics endpoint listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
