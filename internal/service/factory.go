// File: internal/service/factory.go
package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ehc-io/xmedia-downloader/internal/browser"
	"github.com/ehc-io/xmedia-downloader/internal/config"
	"github.com/ehc-io/xmedia-downloader/internal/content"
	"github.com/ehc-io/xmedia-downloader/internal/credentials"
	"github.com/ehc-io/xmedia-downloader/internal/downloader"
	"github.com/ehc-io/xmedia-downloader/internal/network"
	"github.com/ehc-io/xmedia-downloader/internal/pipeline"
	"github.com/ehc-io/xmedia-downloader/internal/session"
	"github.com/ehc-io/xmedia-downloader/internal/storage"
	"github.com/ehc-io/xmedia-downloader/internal/xapi"
)

// ComponentFactory builds the full component graph for a run. The
// abstraction keeps command-level logic testable against fakes.
type ComponentFactory interface {
	Create(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error)
}

type concreteFactory struct{}

// NewComponentFactory creates the production component factory.
func NewComponentFactory() ComponentFactory {
	return &concreteFactory{}
}

// Create handles the full dependency injection and initialization of the
// application components.
func (f *concreteFactory) Create(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	components := &Components{logger: logger}

	// Ensure cleanup happens if initialization fails midway.
	var initializationErr error
	defer func() {
		if initializationErr != nil {
			logger.Warn("Initialization failed, shutting down partially created components.",
				zap.Error(initializationErr))
			components.Shutdown(context.WithoutCancel(ctx))
		}
	}()

	// 1. Blob store. Optional; without a bucket everything stays local.
	var blobs storage.BlobStore
	if cfg.Storage.Bucket != "" {
		gcs, err := storage.NewGCSStore(ctx, cfg.Storage.Bucket, logger)
		if err != nil {
			initializationErr = fmt.Errorf("failed to initialize blob store: %w", err)
			return nil, initializationErr
		}
		blobs = gcs
		logger.Debug("Blob store initialized.", zap.String("bucket", cfg.Storage.Bucket))
	} else {
		blobs = storage.NewNullStore()
		logger.Debug("No bucket configured, blob operations are local-only.")
	}
	components.BlobStore = blobs

	// 2. Browser manager.
	browserManager, err := browser.NewManager(ctx, logger, cfg)
	if err != nil {
		initializationErr = fmt.Errorf("failed to initialize browser manager: %w", err)
		return nil, initializationErr
	}
	components.BrowserManager = browserManager
	logger.Debug("Browser manager initialized.")

	// 3. Session layer.
	store := session.NewStore(cfg.Session.Dir, cfg.Session.FileName, cfg.SessionBlobKey(), blobs, logger)
	validator := session.NewLiveValidator(browserManager, blobs, cfg.Session.Screenshots, logger)
	agent := session.NewExecAgent(cfg.Session.RefreshAgent, logger)
	refresher := session.NewRefresher(store, validator, agent, logger)
	components.SessionStore = store
	components.Validator = validator
	components.Refresher = refresher
	logger.Debug("Session layer initialized.")

	// 4. HTTP client shared by the API client and the downloader.
	clientCfg := network.NewDefaultClientConfig(logger)
	clientCfg.IgnoreTLSErrors = cfg.Browser.IgnoreTLSErrors
	if cfg.Network.Timeout > 0 {
		clientCfg.RequestTimeout = cfg.Network.Timeout
	}
	if cfg.Network.Proxy != "" {
		proxyURL, err := network.ParseProxySpec(cfg.Network.Proxy)
		if err != nil {
			initializationErr = fmt.Errorf("invalid proxy specification: %w", err)
			return nil, initializationErr
		}
		clientCfg.ProxyURL = proxyURL
	}
	httpClient := network.NewClient(clientCfg)
	components.HTTPClient = httpClient
	logger.Debug("HTTP client initialized.")

	// 5. Credential layer.
	cache := credentials.NewCache(logger)
	extractor := credentials.NewExtractor(browserManager, logger)
	components.CredentialCache = cache

	// 6. API client, metadata extractor, media sink.
	apiClient := xapi.NewClient(httpClient, cfg.Browser.UserAgent, logger)
	metadata := content.NewExtractor(browserManager, logger)
	sink := downloader.New(httpClient, cfg.Downloader.OutputDir, blobs, cfg.Downloader.UploadToBlob, logger)

	// 7. Pipeline.
	components.Pipeline = pipeline.New(refresher, extractor, cache, metadata, apiClient, sink, logger)
	logger.Info("All components initialized successfully.")

	return components, nil
}
