// File: internal/credentials/extractor.go
package credentials

import (
	"context"
	"strings"

	cdpnetwork "github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/ehc-io/xmedia-downloader/internal/browser"
)

const (
	landingURL = "https://x.com/home"

	authCookieName = "auth_token"
	csrfCookieName = "ct0"
)

// fallbackScanScript searches the page's script context for a token-shaped
// string: localStorage entries first, then well-known global objects. Best
// effort and schema-fragile; it returns "" rather than throwing when nothing
// is found.
const fallbackScanScript = `(() => {
	for (const key of Object.keys(localStorage)) {
		if (key.includes('token') || key.includes('auth')) {
			const value = localStorage.getItem(key);
			if (value && value.includes('AAAA')) return value;
		}
	}
	try {
		if (window.__INITIAL_STATE__ && window.__INITIAL_STATE__.authentication) {
			return window.__INITIAL_STATE__.authentication.bearerToken || '';
		}
		for (const key in window) {
			try {
				const obj = window[key];
				if (obj && typeof obj === 'object' && obj.authorization && obj.authorization.bearerToken) {
					return obj.authorization.bearerToken;
				}
			} catch (e) {}
		}
	} catch (e) {}
	return '';
})()`

// Extractor resolves a credential bundle from a session artifact by driving a
// browser tab to a logged-in surface. The bearer token has no stable,
// documented home, so two independent strategies race over one slot: live
// request interception (registered before navigation) and an in-page scan
// fallback. Either can silently break when the platform changes its client.
type Extractor struct {
	mgr *browser.Manager
	log *zap.Logger
}

// NewExtractor builds an extractor on the shared browser manager.
func NewExtractor(mgr *browser.Manager, logger *zap.Logger) *Extractor {
	return &Extractor{mgr: mgr, log: logger.Named("credential_extractor")}
}

// Extract launches an isolated tab restored from the artifact and resolves
// the auth cookie, CSRF cookie, and bearer token. Fails with an
// ExtractionError naming exactly the missing fields. The tab is torn down on
// every exit path.
func (e *Extractor) Extract(ctx context.Context, artifactPath string) (Bundle, error) {
	artifact, err := browser.LoadArtifact(artifactPath)
	if err != nil {
		return Bundle{}, err
	}

	tab, err := e.mgr.NewTab(ctx, artifact)
	if err != nil {
		return Bundle{}, err
	}
	defer tab.Close(ctx)

	// The observer must be live before navigation or the boot-time API
	// burst is missed.
	slot := &tokenSlot{}
	e.observeBearerTokens(tab, slot)

	if err := tab.Navigate(ctx, landingURL); err != nil {
		return Bundle{}, err
	}
	// Let background API calls fire and populate the observer.
	if err := tab.Settle(ctx); err != nil {
		return Bundle{}, err
	}

	bundle := Bundle{}
	cookies, err := tab.Cookies(ctx)
	if err != nil {
		return Bundle{}, err
	}
	for _, c := range cookies {
		switch c.Name {
		case authCookieName:
			bundle.AuthToken = c.Value
		case csrfCookieName:
			bundle.CSRFToken = c.Value
		}
	}

	token, intercepted := slot.value()
	if !intercepted {
		e.log.Info("No bearer token captured from requests, scanning page context.")
		var scanned string
		if err := tab.Evaluate(ctx, fallbackScanScript, &scanned); err != nil {
			e.log.Warn("In-page token scan failed.", zap.Error(err))
		} else if scanned != "" {
			slot.fill(strings.TrimPrefix(scanned, "Bearer "))
		}
		token, _ = slot.value()
	}
	bundle.BearerToken = token

	if missing := bundle.Missing(); len(missing) > 0 {
		return Bundle{}, &ExtractionError{Missing: missing}
	}

	e.log.Info("Successfully extracted all authentication tokens.")
	return bundle, nil
}

// observeBearerTokens watches every outgoing request to the platform's API
// hosts and records the Authorization bearer value. The latest distinct token
// wins; deduplication only keeps the log quiet.
func (e *Extractor) observeBearerTokens(tab *browser.Tab, slot *tokenSlot) {
	chromedp.ListenTarget(tab.Context(), func(ev interface{}) {
		req, ok := ev.(*cdpnetwork.EventRequestWillBeSent)
		if !ok || req.Request == nil {
			return
		}
		if !isAPIRequest(req.Request.URL) {
			return
		}
		auth := headerValue(req.Request.Headers, "Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			return
		}
		token := strings.TrimPrefix(auth, "Bearer ")
		if slot.record(token) {
			e.log.Info("Intercepted bearer token.", zap.String("prefix", tokenPrefix(token)))
		}
	})
}

// isAPIRequest matches the hosts the platform's client calls with a bearer.
func isAPIRequest(url string) bool {
	return strings.Contains(url, "api.twitter.com") ||
		strings.Contains(url, "twitter.com/i/api") ||
		strings.Contains(url, "x.com/i/api")
}

// headerValue performs a case-insensitive lookup in a CDP header map.
func headerValue(headers cdpnetwork.Headers, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}

// tokenPrefix truncates a token for logging.
func tokenPrefix(token string) string {
	if len(token) > 20 {
		return token[:20] + "..."
	}
	return token
}
