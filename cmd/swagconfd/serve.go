package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

// newServeCmd starts only the metrics endpoint. The command-dispatch front
// end that would turn swagconfd into a long-running service sits outside
// this repository's scope; this subcommand exists so an operator can scrape
// /metrics against the same environment the CLI subcommands use.
func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose Prometheus metrics for the configured environment",
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer orch.Close()

			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(orch.Metrics().Registerer, promhttp.HandlerOpts{}))

			server := &http.Server{Addr: addr, Handler: mux}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() { errCh <- server.ListenAndServe() }()
			log.Info("metrics server listening", "addr", addr)

			select {
			case err := <-errCh:
				if err != nil && err != http.ErrServerClosed {
					return err
				}
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					return fmt.Errorf("shutdown metrics server: %w", err)
				}
				log.Info("metrics server stopped")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":9111", "metrics listen address")
	return cmd
}
