// File: internal/content/extractor.go

// Package content identifies posts and scrapes their on-page metadata.
package content

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ehc-io/xmedia-downloader/internal/browser"
)

const (
	postArticleSelector = `article[data-testid="tweet"]`
	handleSelector      = `div[data-testid="User-Name"] a > div > span`
	timestampSelector   = `article[data-testid="tweet"] time`

	articleWaitTimeout = 15 * time.Second
)

// Metadata describes a post as rendered on its page.
type Metadata struct {
	PostID    string
	Handle    string
	Timestamp time.Time
}

// Extractor scrapes post metadata out of an authenticated browser tab.
type Extractor struct {
	manager *browser.Manager
	log     *zap.Logger
}

// NewExtractor builds a metadata extractor over the shared browser manager.
func NewExtractor(manager *browser.Manager, logger *zap.Logger) *Extractor {
	return &Extractor{
		manager: manager,
		log:     logger.Named("content"),
	}
}

// Metadata navigates to the post URL in a fresh tab and reads the author
// handle and publication time from the rendered page. Missing fields fall
// back to zero values with a warning; only navigation-level failures error.
func (e *Extractor) Metadata(ctx context.Context, artifactPath, postURL string) (Metadata, error) {
	artifact, err := browser.LoadArtifact(artifactPath)
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to load session artifact: %w", err)
	}

	tab, err := e.manager.NewTab(ctx, artifact)
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to open tab: %w", err)
	}
	defer tab.Close(context.WithoutCancel(ctx))

	if err := tab.Navigate(ctx, postURL); err != nil {
		return Metadata{}, fmt.Errorf("failed to navigate to post: %w", err)
	}
	if err := tab.WaitVisible(ctx, postArticleSelector, articleWaitTimeout); err != nil {
		return Metadata{}, fmt.Errorf("post article did not render: %w", err)
	}

	meta := Metadata{PostID: PostIDFromURL(postURL)}

	handle, err := tab.Text(ctx, handleSelector)
	if err != nil || handle == "" {
		e.log.Warn("Could not read author handle from post page.", zap.Error(err))
	} else {
		meta.Handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	}

	raw, ok, err := tab.Attribute(ctx, timestampSelector, "datetime")
	if err != nil || !ok {
		e.log.Warn("Could not read post timestamp from page.", zap.Error(err))
	} else if ts, perr := time.Parse(time.RFC3339, raw); perr != nil {
		e.log.Warn("Post timestamp did not parse.", zap.String("raw", raw), zap.Error(perr))
	} else {
		meta.Timestamp = ts
	}

	return meta, nil
}
