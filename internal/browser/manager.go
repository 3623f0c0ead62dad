// File: internal/browser/manager.go
package browser

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/ehc-io/xmedia-downloader/internal/config"
	"github.com/ehc-io/xmedia-downloader/internal/network"
)

// Manager owns the headless browser process. All tab contexts used by the
// session validator and credential extractor are derived from its allocator, so
// one Chrome instance serves the whole process lifetime.
type Manager struct {
	logger *zap.Logger
	cfg    *config.Config

	// allocatorCtx manages the browser process. All tabs derive from it.
	allocatorCtx    context.Context
	allocatorCancel context.CancelFunc

	// Proxy credentials, split out of the config spec at launch.
	proxyUser string
	proxyPass string

	// wg tracks open tabs for a graceful shutdown.
	wg sync.WaitGroup
}

// NewManager launches the browser process and verifies it responds.
func NewManager(ctx context.Context, logger *zap.Logger, cfg *config.Config) (*Manager, error) {
	m := &Manager{
		logger: logger.Named("browser_manager"),
		cfg:    cfg,
	}

	opts, err := m.buildAllocatorOptions()
	if err != nil {
		return nil, err
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	m.allocatorCtx = allocCtx
	m.allocatorCancel = cancel

	// Confirm the browser starts and responds before handing it out.
	testCtx, cancelTest := context.WithTimeout(allocCtx, 30*time.Second)
	testCtx, cancelTestCtx := chromedp.NewContext(testCtx)
	defer cancelTestCtx()
	defer cancelTest()

	if err := chromedp.Run(testCtx, chromedp.Navigate("about:blank")); err != nil {
		m.allocatorCancel()
		return nil, fmt.Errorf("browser failed to start or respond: %w", err)
	}

	m.logger.Info("Browser launched successfully and is responsive.")
	return m, nil
}

// buildAllocatorOptions assembles launch flags for a headless, proxy-aware,
// automation-quiet browser instance.
func (m *Manager) buildAllocatorOptions() ([]chromedp.ExecAllocatorOption, error) {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)

	opts = append(opts,
		// The default option set turns this on, which reveals automation.
		chromedp.Flag("enable-automation", false),
		chromedp.Flag("headless", m.cfg.Browser.Headless),
		chromedp.Flag("ignore-certificate-errors", m.cfg.Browser.IgnoreTLSErrors),
		// The platform's client inspects navigator.webdriver.
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-gpu", m.cfg.Browser.Headless),
		chromedp.UserAgent(m.cfg.Browser.UserAgent),
	)

	if m.cfg.Network.Proxy != "" {
		server, user, pass, err := network.SplitProxyCredentials(m.cfg.Network.Proxy)
		if err != nil {
			return nil, fmt.Errorf("failed to parse proxy configuration: %w", err)
		}
		opts = append(opts, chromedp.ProxyServer(server))
		m.proxyUser, m.proxyPass = user, pass
	}

	// Custom arguments from config.
	for _, arg := range m.cfg.Browser.Args {
		parts := strings.SplitN(arg, "=", 2)
		flagName := strings.TrimPrefix(parts[0], "--")
		if len(parts) == 2 {
			opts = append(opts, chromedp.Flag(flagName, parts[1]))
		} else {
			opts = append(opts, chromedp.Flag(flagName, true))
		}
	}

	// Flags required for running inside containers.
	if runtime.GOOS == "linux" {
		opts = append(opts,
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.Flag("disable-setuid-sandbox", true),
		)
	}

	return opts, nil
}

// NewTab creates an isolated tab restored from the given session artifact.
// Callers must Close the returned tab on every exit path.
func (m *Manager) NewTab(ctx context.Context, artifact *Artifact) (*Tab, error) {
	tab, err := newTab(ctx, m, artifact)
	if err != nil {
		return nil, err
	}
	m.wg.Add(1)
	return tab, nil
}

// Shutdown waits for open tabs to close and terminates the browser process.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.logger.Info("Browser manager shutdown initiated. Waiting for open tabs...")

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		m.logger.Warn("Shutdown deadline exceeded. Forcing browser termination.", zap.Error(ctx.Err()))
	}

	if m.allocatorCancel != nil {
		m.allocatorCancel()
		<-m.allocatorCtx.Done()
	}
	return nil
}
