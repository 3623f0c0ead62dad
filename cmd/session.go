// File: cmd/session.go
package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ehc-io/xmedia-downloader/internal/observability"
	"github.com/ehc-io/xmedia-downloader/internal/service"
)

// newSessionCmd groups the session maintenance subcommands.
func newSessionCmd() *cobra.Command {
	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Inspects and refreshes the stored authentication session",
	}
	sessionCmd.AddCommand(newSessionCheckCmd())
	sessionCmd.AddCommand(newSessionRefreshCmd())
	return sessionCmd
}

func newSessionCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Reports whether the stored session exists and is still valid",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withComponents(cmd.Context(), func(ctx context.Context, components *service.Components, logger *zap.Logger) error {
				exists, err := components.SessionStore.EnsureLocal(ctx)
				if err != nil {
					return fmt.Errorf("session store unavailable: %w", err)
				}
				if !exists {
					logger.Warn("No session artifact exists locally or in the blob store.")
					fmt.Println("session: absent")
					return nil
				}

				if components.Validator.IsValid(ctx, components.SessionStore.Path()) {
					fmt.Println("session: valid")
				} else {
					fmt.Println("session: invalid")
				}
				return nil
			})
		},
	}
}

func newSessionRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Validates the session, refreshing it through the agent if needed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withComponents(cmd.Context(), func(ctx context.Context, components *service.Components, logger *zap.Logger) error {
				// Drop the local copy so the cycle starts from the durable store.
				if err := components.SessionStore.Invalidate(); err != nil {
					logger.Warn("Could not drop local session artifact.", zap.Error(err))
				}
				if err := components.Refresher.EnsureValidSession(ctx); err != nil {
					return err
				}
				fmt.Println("session: valid")
				return nil
			})
		},
	}
}

// withComponents wraps the init/run/teardown cycle shared by the session
// subcommands.
func withComponents(parent context.Context, fn func(context.Context, *service.Components, *zap.Logger) error) error {
	logger := observability.GetLogger()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
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

	return fn(ctx, components, logger)
}
