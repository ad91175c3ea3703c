package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/use-agent/seometa/api"
	"github.com/use-agent/seometa/webhook"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and web page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(cmd)
			initLogger(cfg.Log, os.Stdout)

			slog.Info("seometa starting",
				"host", cfg.Server.Host,
				"port", cfg.Server.Port,
				"mode", cfg.Server.Mode,
				"concurrency", cfg.Batch.Concurrency,
				"timeout", cfg.Fetch.Timeout.String(),
			)

			notifier := webhook.New(cfg.Webhook.URL, cfg.Webhook.Secret)
			if notifier != nil {
				slog.Info("batch webhook enabled")
			}
			runner := newRunner(cfg, notifier)
			router := api.NewRouter(runner, cfg, time.Now())

			addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
			srv := &http.Server{
				Addr:    addr,
				Handler: router,
			}

			errCh := make(chan error, 1)
			go func() {
				slog.Info("HTTP server listening", "addr", addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case err := <-errCh:
				slog.Error("HTTP server error", "error", err)
				return err
			case sig := <-quit:
				slog.Info("shutdown signal received", "signal", sig.String())
			}

			// A bulk upload of 100 slow URLs can take a while; give it room to finish.
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				slog.Error("HTTP server forced shutdown", "error", err)
			} else {
				slog.Info("HTTP server drained gracefully")
			}

			slog.Info("seometa stopped")
			return nil
		},
	}
}
