package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/lfsr/analysis"
	"github.com/tailored-agentic-units/lfsr/observability"
	"github.com/tailored-agentic-units/lfsr/service"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *options) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis API over Connect RPC with Prometheus metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			metrics, err := observability.NewPrometheusObserver(prometheus.DefaultRegisterer)
			if err != nil {
				return fmt.Errorf("failed to register metrics: %w", err)
			}
			observability.RegisterObserver("prometheus", metrics)

			configured, err := observability.GetObserver(opts.cfg.Observer)
			if err != nil {
				return err
			}
			observer := observability.NewMultiObserver(configured, metrics)

			a, err := opts.analyzer(analysis.WithObserver(observer))
			if err != nil {
				return err
			}
			defer closeAnalyzer(a, opts.logger)

			mux := http.NewServeMux()
			path, handler := service.NewHandler(a)
			mux.Handle(path, handler)
			mux.Handle("/metrics", promhttp.Handler())

			srv := &http.Server{
				Addr:              addr,
				Handler:           mux,
				ReadHeaderTimeout: 5 * time.Second,
			}
			return serve(cmd.Context(), srv, opts)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	return cmd
}

func serve(ctx context.Context, srv *http.Server, opts *options) error {
	errs := make(chan error, 1)
	go func() {
		opts.logger.Info("serving", "addr", srv.Addr, "service", service.ServiceName)
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	opts.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
