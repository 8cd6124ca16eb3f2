package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"modgraph/internal/catalog"
	"modgraph/pkg/logging"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-validate a tenant whenever its catalog files change",
		Long: `Watches the tenant directory of a file catalog and prints a fresh
validation report every time modules.yaml or dependencies.yaml changes.
Bursts of writes are debounced (watch.debounce in config.yaml).

With --metrics-addr (or metrics.address in config.yaml) the Prometheus
metrics of the engine are served on /metrics.

Examples:
  modgraph watch --tenant acme
  modgraph watch --tenant acme --metrics-addr :9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.newSession(cmd, true)
			if err != nil {
				return err
			}
			defer s.Close()

			store, err := s.fileCatalog("watch")
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if metricsAddr == "" {
				metricsAddr = s.config.Metrics.Address
			}
			if metricsAddr != "" {
				shutdown := serveMetrics(metricsAddr)
				defer shutdown()
			}

			changes := make(chan struct{}, 1)
			watcher := catalog.NewWatcher(catalog.WatcherConfig{
				Dir:      store.TenantDir(s.tenantID),
				Debounce: s.config.Watch.Debounce,
				OnChange: func() {
					select {
					case changes <- struct{}{}:
					default:
					}
				},
			})
			if err := watcher.Start(); err != nil {
				return err
			}
			defer func() {
				if err := watcher.Stop(); err != nil {
					logging.Warn("CLI", "Failed to stop catalog watcher: %v", err)
				}
			}()

			return watchLoop(ctx, s, changes)
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	return cmd
}

// watchLoop prints a report now and after every change until ctx is done.
// Load failures are logged so that a half-written catalog does not end the watch.
func watchLoop(ctx context.Context, s *session, changes <-chan struct{}) error {
	report := func() {
		r, err := s.orchestrator.GetValidationReport(ctx, s.tenantID)
		if err != nil {
			logging.Error("CLI", err, "Validation failed for tenant %s", s.tenantID)
			return
		}
		if err := s.formatter.FormatReport(s.out, s.tenantID, r); err != nil {
			logging.Error("CLI", err, "Failed to print report")
		}
	}

	report()
	for {
		select {
		case <-ctx.Done():
			logging.Info("CLI", "Stopped watching tenant %s", s.tenantID)
			return nil
		case <-changes:
			logging.Info("CLI", "Catalog of tenant %s changed, re-validating", s.tenantID)
			report()
		}
	}
}

// serveMetrics starts the /metrics endpoint and returns its shutdown func.
func serveMetrics(addr string) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logging.Info("CLI", "Serving metrics on %s/metrics", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("CLI", err, "Metrics endpoint stopped")
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logging.Warn("CLI", "Failed to shut down metrics endpoint: %v", err)
		}
	}
}
