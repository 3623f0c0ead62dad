// File: internal/session/validator.go
package session

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ehc-io/xmedia-downloader/internal/browser"
	"github.com/ehc-io/xmedia-downloader/internal/storage"
)

const (
	// homeURL is a page that requires login; anonymous visitors are redirected.
	homeURL = "https://x.com/home"
	// loginIndicatorSelector matches the compose button, which only renders
	// for authenticated users. The one stable login-only marker we have.
	loginIndicatorSelector = `a[data-testid="SideNav_NewTweet_Button"]`

	screenshotTimeout = 15 * time.Second
)

// Validator decides whether a stored session artifact is currently
// authenticated. Implementations must return a boolean and never raise.
type Validator interface {
	IsValid(ctx context.Context, artifactPath string) bool
}

// LiveValidator drives a real browser tab to a protected page and checks for
// the login-only UI marker.
type LiveValidator struct {
	mgr         *browser.Manager
	blobs       storage.BlobStore
	screenshots bool
	log         *zap.Logger
}

var _ Validator = (*LiveValidator)(nil)

// NewLiveValidator builds a validator on the shared browser manager. blobs may
// be nil to disable diagnostic screenshot uploads.
func NewLiveValidator(mgr *browser.Manager, blobs storage.BlobStore, screenshots bool, logger *zap.Logger) *LiveValidator {
	return &LiveValidator{
		mgr:         mgr,
		blobs:       blobs,
		screenshots: screenshots && blobs != nil,
		log:         logger.Named("session_validator"),
	}
}

// IsValid restores a tab from the artifact, navigates to the protected page,
// waits out client-side redirects, and looks for the login indicator. Any
// automation-layer error is treated as invalid, never propagated.
func (v *LiveValidator) IsValid(ctx context.Context, artifactPath string) bool {
	artifact, err := browser.LoadArtifact(artifactPath)
	if err != nil {
		v.log.Warn("Session artifact unreadable; treating session as invalid.", zap.Error(err))
		return false
	}

	tab, err := v.mgr.NewTab(ctx, artifact)
	if err != nil {
		v.log.Warn("Could not open browser tab for validation; treating session as invalid.", zap.Error(err))
		return false
	}
	defer tab.Close(ctx)

	if err := tab.Navigate(ctx, homeURL); err != nil {
		v.log.Warn("Navigation failed during session validation.", zap.Error(err))
		v.uploadScreenshot(ctx, tab, "session-validation-error")
		return false
	}
	if err := tab.Settle(ctx); err != nil {
		v.log.Warn("Settle wait interrupted during session validation.", zap.Error(err))
		return false
	}

	loggedIn, err := tab.ElementExists(ctx, loginIndicatorSelector)
	if err != nil {
		v.log.Warn("DOM query failed during session validation.", zap.Error(err))
		v.uploadScreenshot(ctx, tab, "session-validation-error")
		return false
	}

	if loggedIn {
		v.log.Info("Session validation passed: login indicator present.")
		v.uploadScreenshot(ctx, tab, "session-validation-success")
	} else {
		v.log.Warn("Session validation failed: login indicator not found.")
		v.uploadScreenshot(ctx, tab, "session-validation-failed")
	}
	return loggedIn
}

// uploadScreenshot captures the current page and pushes it to the blob store
// for after-the-fact debugging of platform UI drift. Best effort: bounded by
// its own timeout, failures are logged and swallowed, and the validation
// result is never affected.
func (v *LiveValidator) uploadScreenshot(ctx context.Context, tab *browser.Tab, tag string) {
	if !v.screenshots {
		return
	}
	// Detach from the caller's cancellation so an abandoned validation does
	// not lose its diagnostic, but stay bounded.
	shotCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), screenshotTimeout)
	defer cancel()

	png, err := tab.Screenshot(shotCtx)
	if err != nil {
		v.log.Warn("Failed to capture diagnostic screenshot.", zap.String("tag", tag), zap.Error(err))
		return
	}

	ts := time.Now().UTC().Format("2006-01-02T15-04-05-000")
	key := fmt.Sprintf("screenshots/%s-%s.png", ts, tag)
	if err := v.blobs.UploadString(shotCtx, png, key); err != nil {
		v.log.Warn("Failed to upload diagnostic screenshot.", zap.String("key", key), zap.Error(err))
		return
	}
	v.log.Info("Diagnostic screenshot uploaded.", zap.String("key", key))
}
