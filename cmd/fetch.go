// File: cmd/fetch.go
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

// newFetchCmd creates the one-shot `fetch` command.
func newFetchCmd() *cobra.Command {
	var postURL string

	fetchCmd := &cobra.Command{
		Use:   "fetch",
		Short: "Downloads all media attached to a single post",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := viper.BindPFlag("downloader.output_dir", cmd.Flags().Lookup("output")); err != nil {
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

			results, err := components.Pipeline.Run(ctx, postURL)
			if err != nil {
				return err
			}

			if len(results) == 0 {
				logger.Info("No media was downloaded for this post.")
				return nil
			}
			failures := 0
			for _, res := range results {
				if res.Err != nil {
					failures++
					continue
				}
				logger.Info("Saved media file.", zap.String("path", res.Path))
			}
			if failures > 0 {
				return fmt.Errorf("%d of %d media items failed to download", failures, len(results))
			}
			return nil
		},
	}

	fetchCmd.Flags().StringVarP(&postURL, "url", "u", "", "post URL to download media from")
	fetchCmd.Flags().StringP("output", "o", "", "output directory for downloaded media")
	fetchCmd.MarkFlagRequired("url")

	return fetchCmd
}
