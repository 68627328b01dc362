// internal/browser/session.go
package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/zhangxinyong12/auto-fill-extension/internal/config"
)

// Session owns one headless browser tab. It satisfies dom.Evaluator, so the
// snapshot capture and the live control writer both run through it.
type Session struct {
	cfg    config.BrowserConfig
	logger *zap.Logger

	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
}

const defaultScriptTimeout = 20 * time.Second

// NewSession launches the browser and opens a tab. Close must be called.
func NewSession(parent context.Context, cfg config.BrowserConfig, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("browser")

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
	)
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, opts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			logger.Debug(fmt.Sprintf(format, args...))
		}),
	)

	// Start the browser eagerly so launch failures surface here, not on the
	// first navigation.
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	return &Session{
		cfg:         cfg,
		logger:      logger,
		ctx:         tabCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
	}, nil
}

// Navigate loads the URL, waits for the document to be ready, and then for
// the configured post-load settle period so late-rendering frameworks get a
// chance to paint their forms.
func (s *Session) Navigate(ctx context.Context, url string) error {
	timeout := s.cfg.NavigationTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	opCtx, cancel := linkedTimeout(s.ctx, ctx, timeout)
	defer cancel()

	actions := []chromedp.Action{
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	}
	if s.cfg.PostLoadWait > 0 {
		actions = append(actions, chromedp.Sleep(s.cfg.PostLoadWait))
	}

	if err := chromedp.Run(opCtx, actions...); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	s.logger.Debug("navigation complete", zap.String("url", url))
	return nil
}

// ExecuteScript evaluates a JavaScript expression in the page and returns
// the JSON-encoded result. Promises are awaited; page exceptions are kept
// silent so evaluation cannot trip the page's own error handlers.
func (s *Session) ExecuteScript(ctx context.Context, script string) (json.RawMessage, error) {
	opCtx, cancel := linkedTimeout(s.ctx, ctx, defaultScriptTimeout)
	defer cancel()

	var res json.RawMessage
	err := chromedp.Run(opCtx,
		chromedp.Evaluate(script, &res, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithReturnByValue(true).WithAwaitPromise(true).WithSilent(true)
		}),
	)
	if err != nil {
		if opCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("script evaluation timed out after %v: %w", defaultScriptTimeout, opCtx.Err())
		}
		return nil, fmt.Errorf("script evaluation failed: %w", err)
	}
	return res, nil
}

// Close tears down the tab and the browser process.
func (s *Session) Close() {
	s.cancelTab()
	s.cancelAlloc()
}

// linkedTimeout derives a timeout context from the session's tab context
// while also honoring the caller's cancellation. chromedp actions must run
// on a context derived from the tab context, so the caller's context cannot
// be used directly.
func linkedTimeout(tab, caller context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	opCtx, cancel := context.WithTimeout(tab, d)
	if caller == nil {
		return opCtx, cancel
	}
	stop := context.AfterFunc(caller, cancel)
	return opCtx, func() {
		stop()
		cancel()
	}
}
