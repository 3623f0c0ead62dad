// File: cmd/serve.go
package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ehc-io/xmedia-downloader/internal/observability"
	"github.com/ehc-io/xmedia-downloader/internal/service"
)

// newServeCmd creates the `serve` command running the daemon HTTP surface.
func newServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Runs the download service with an HTTP API",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := viper.BindPFlag("service.addr", cmd.Flags().Lookup("addr")); err != nil {
				return err
			}
			return viper.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			components, err := service.NewComponentFactory().Create(ctx, appConfig, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize components: %w", err)
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
				defer cancel()
				components.Shutdown(shutdownCtx)
			}()

			queue := service.NewJobQueue(components.Pipeline, appConfig.Service.QueueSize, logger)
			queue.Start(ctx)

			server := service.NewServer(
				appConfig.Service.Addr,
				queue,
				components.SessionStore,
				components.Validator,
				components.Refresher,
				components.CredentialCache,
				logger,
			)

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logger.Info("Shutdown signal received, draining.")
			drainCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := server.Shutdown(drainCtx); err != nil {
				logger.Warn("HTTP server shutdown reported an error.", zap.Error(err))
			}
			queue.Wait()
			return nil
		},
	}

	serveCmd.Flags().String("addr", "", "listen address for the HTTP API (e.g. :8080)")

	return serveCmd
}
