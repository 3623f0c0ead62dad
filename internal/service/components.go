// File: internal/service/components.go

// Package service wires the application components together and exposes the
// daemon HTTP surface.
package service

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/ehc-io/xmedia-downloader/internal/browser"
	"github.com/ehc-io/xmedia-downloader/internal/credentials"
	"github.com/ehc-io/xmedia-downloader/internal/pipeline"
	"github.com/ehc-io/xmedia-downloader/internal/session"
	"github.com/ehc-io/xmedia-downloader/internal/storage"
)

// Components holds every initialized runtime dependency. A partially
// constructed value is safe to Shutdown.
type Components struct {
	BrowserManager  *browser.Manager
	BlobStore       storage.BlobStore
	SessionStore    *session.Store
	Validator       session.Validator
	Refresher       *session.Refresher
	CredentialCache *credentials.Cache
	HTTPClient      *http.Client
	Pipeline        *pipeline.Pipeline

	logger *zap.Logger
}

// Shutdown releases browser and client resources. It tolerates nil fields
// so it can run after a failed initialization.
func (c *Components) Shutdown(ctx context.Context) {
	if c == nil {
		return
	}
	if c.BrowserManager != nil {
		if err := c.BrowserManager.Shutdown(ctx); err != nil && c.logger != nil {
			c.logger.Warn("Browser manager shutdown reported an error.", zap.Error(err))
		}
	}
	if c.HTTPClient != nil {
		c.HTTPClient.CloseIdleConnections()
	}
}
