// File: internal/browser/tab.go
package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/fetch"
	cdpnetwork "github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	json "github.com/json-iterator/go"
	"go.uber.org/zap"
)

// Tab is a single isolated browser context restored from a session artifact.
// It is created by Manager.NewTab and must be closed on every exit path.
type Tab struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger
	mgr    *Manager

	mu       sync.Mutex
	isClosed bool
}

func newTab(ctx context.Context, m *Manager, artifact *Artifact) (*Tab, error) {
	tabCtx, cancel := chromedp.NewContext(m.allocatorCtx)

	id := uuid.New().String()
	t := &Tab{
		id:     id,
		ctx:    tabCtx,
		cancel: cancel,
		logger: m.logger.With(zap.String("tab_id", id[:8])),
		mgr:    m,
	}

	// Materialize the target before doing anything with it.
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create browser tab: %w", err)
	}

	if m.proxyUser != "" {
		t.handleProxyAuth(m.proxyUser, m.proxyPass)
	}

	if artifact != nil {
		if err := t.restore(ctx, artifact); err != nil {
			cancel()
			return nil, fmt.Errorf("failed to restore session artifact: %w", err)
		}
	}

	return t, nil
}

// Context returns the tab's chromedp context, for event listeners and custom
// CDP actions.
func (t *Tab) Context() context.Context {
	return t.ctx
}

// handleProxyAuth answers Chrome's proxy authentication challenges with the
// configured credentials. Must be installed before the first navigation.
func (t *Tab) handleProxyAuth(user, pass string) {
	if err := chromedp.Run(t.ctx, fetch.Enable().WithHandleAuthRequests(true)); err != nil {
		t.logger.Warn("Could not enable auth interception for proxy.", zap.Error(err))
		return
	}
	chromedp.ListenTarget(t.ctx, func(ev interface{}) {
		switch e := ev.(type) {
		case *fetch.EventAuthRequired:
			go func() {
				resp := &fetch.AuthChallengeResponse{
					Response: fetch.AuthChallengeResponseResponseProvideCredentials,
					Username: user,
					Password: pass,
				}
				action := fetch.ContinueWithAuth(e.RequestID, resp)
				if err := chromedp.Run(t.ctx, action); err != nil {
					t.logger.Debug("Proxy auth continuation failed.", zap.Error(err))
				}
			}()
		case *fetch.EventRequestPaused:
			go func() {
				if err := chromedp.Run(t.ctx, fetch.ContinueRequest(e.RequestID)); err != nil {
					t.logger.Debug("Request continuation failed.", zap.Error(err))
				}
			}()
		}
	})
}

// restore injects the artifact's cookies, then seeds localStorage by visiting
// each origin. Cookies must land before any navigation so the first page load
// is already authenticated.
func (t *Tab) restore(ctx context.Context, artifact *Artifact) error {
	setCookies := chromedp.ActionFunc(func(c context.Context) error {
		for _, ck := range artifact.Cookies {
			p := cdpnetwork.SetCookie(ck.Name, ck.Value).
				WithDomain(ck.Domain).
				WithPath(ck.Path).
				WithHTTPOnly(ck.HTTPOnly).
				WithSecure(ck.Secure)
			if ck.SameSite != "" {
				p = p.WithSameSite(cdpnetwork.CookieSameSite(ck.SameSite))
			}
			if ck.Expires > 0 {
				exp := cdp.TimeSinceEpoch(time.Unix(int64(ck.Expires), 0))
				p = p.WithExpires(&exp)
			}
			if err := p.Do(c); err != nil {
				return fmt.Errorf("failed to set cookie %q: %w", ck.Name, err)
			}
		}
		return nil
	})
	if err := t.run(ctx, t.mgr.cfg.Network.NavigationTimeout, setCookies); err != nil {
		return err
	}

	for _, origin := range artifact.Origins {
		if len(origin.LocalStorage) == 0 {
			continue
		}
		seed := chromedp.Tasks{
			chromedp.Navigate(origin.Origin),
			chromedp.ActionFunc(func(c context.Context) error {
				for _, entry := range origin.LocalStorage {
					var ignored interface{}
					err := chromedp.Evaluate(
						`localStorage.setItem(`+jsString(entry.Name)+`, `+jsString(entry.Value)+`); null`,
						&ignored,
					).Do(c)
					if err != nil {
						return fmt.Errorf("failed to seed localStorage for %s: %w", origin.Origin, err)
					}
				}
				return nil
			}),
		}
		if err := t.run(ctx, t.mgr.cfg.Network.NavigationTimeout, seed); err != nil {
			return err
		}
	}
	return nil
}

// run executes chromedp actions against the tab, bounded by the given timeout
// and by the caller's context.
func (t *Tab) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(t.ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- chromedp.Run(runCtx, actions...) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		cancel()
		<-done
		return ctx.Err()
	}
}

// Navigate loads a URL and waits for the document to be ready, bounded by the
// configured navigation timeout.
func (t *Tab) Navigate(ctx context.Context, url string) error {
	t.logger.Debug("Navigating.", zap.String("url", url))
	return t.run(ctx, t.mgr.cfg.Network.NavigationTimeout,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

// Settle waits the configured settle interval so client-side redirects and
// background API calls can fire. Respects cancellation.
func (t *Tab) Settle(ctx context.Context) error {
	select {
	case <-time.After(t.mgr.cfg.Network.SettleWait):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-t.ctx.Done():
		return t.ctx.Err()
	}
}

// ElementExists reports whether a CSS selector currently matches.
func (t *Tab) ElementExists(ctx context.Context, selector string) (bool, error) {
	var found bool
	err := t.run(ctx, t.mgr.cfg.Network.NavigationTimeout,
		chromedp.Evaluate(`document.querySelector(`+jsString(selector)+`) !== null`, &found),
	)
	return found, err
}

// WaitVisible blocks until the selector matches a visible element or the
// timeout elapses.
func (t *Tab) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	return t.run(ctx, timeout, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

// Evaluate runs a JavaScript expression in the page and unmarshals the result.
func (t *Tab) Evaluate(ctx context.Context, expression string, result interface{}) error {
	return t.run(ctx, t.mgr.cfg.Network.NavigationTimeout, chromedp.Evaluate(expression, result))
}

// Text returns the inner text of the first element matching the selector.
func (t *Tab) Text(ctx context.Context, selector string) (string, error) {
	var out string
	err := t.run(ctx, t.mgr.cfg.Network.NavigationTimeout,
		chromedp.Text(selector, &out, chromedp.ByQuery),
	)
	return out, err
}

// Attribute returns the value of an attribute on the first matching element.
func (t *Tab) Attribute(ctx context.Context, selector, name string) (string, bool, error) {
	var value string
	var ok bool
	err := t.run(ctx, t.mgr.cfg.Network.NavigationTimeout,
		chromedp.AttributeValue(selector, name, &value, &ok, chromedp.ByQuery),
	)
	return value, ok, err
}

// Cookies returns all cookies visible to the browser, including HttpOnly ones.
func (t *Tab) Cookies(ctx context.Context) ([]*cdpnetwork.Cookie, error) {
	var cookies []*cdpnetwork.Cookie
	err := t.run(ctx, t.mgr.cfg.Network.NavigationTimeout,
		chromedp.ActionFunc(func(c context.Context) error {
			var err error
			cookies, err = cdpnetwork.GetCookies().Do(c)
			return err
		}),
	)
	return cookies, err
}

// Screenshot captures the full current viewport as PNG bytes.
func (t *Tab) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	err := t.run(ctx, t.mgr.cfg.Network.NavigationTimeout,
		chromedp.FullScreenshot(&buf, 90),
	)
	return buf, err
}

// Close tears down the tab exactly once and signals the manager.
func (t *Tab) Close(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.isClosed {
		return nil
	}
	t.isClosed = true
	t.closeLocked(ctx)
	t.mgr.wg.Done()
	return nil
}

func (t *Tab) closeLocked(ctx context.Context) {
	if t.cancel != nil {
		t.cancel()
	}
	if t.ctx == nil {
		return
	}
	waitCtx, cancelWait := context.WithTimeout(ctx, 10*time.Second)
	defer cancelWait()
	select {
	case <-t.ctx.Done():
		t.logger.Debug("Browser tab closed.")
	case <-waitCtx.Done():
		t.logger.Warn("Deadline exceeded waiting for browser tab to close.", zap.Error(waitCtx.Err()))
	}
}

// jsString encodes a Go string as a JavaScript string literal.
func jsString(s string) string {
	out, err := json.MarshalToString(s)
	if err != nil {
		return `""`
	}
	return out
}
