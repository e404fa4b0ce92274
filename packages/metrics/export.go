package metrics

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler serves g in the Prometheus exposition format.
func Handler(g prometheus.Gatherer) nethttp.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// WriteFile writes g to path in the Prometheus text format.
func WriteFile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics file: %w", err)
	}
	return nil
}

// Serve exposes g on /metrics at port until ctx is done.
func Serve(ctx context.Context, port int, g prometheus.Gatherer) error {
	mux := nethttp.NewServeMux()
	mux.Handle("/metrics", Handler(g))

	server := &nethttp.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); !errors.Is(err, nethttp.ErrServerClosed) {
		return err
	}
	return nil
}
