// Package browser owns the headless Chrome session used for page
// acquisition. The session is a process-scoped resource: constructed once
// at startup, torn down once at shutdown, and navigation is serialized
// because the driven page state is not reentrant.
package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

// Session wraps a single headless browser instance. All methods are safe
// for concurrent use; navigation requests queue behind a mutex.
type Session struct {
	mu       sync.Mutex
	allocCtx context.Context
	browser  context.Context
	cancels  []context.CancelFunc

	navTimeout  time.Duration
	settleDelay time.Duration
}

// Options configures a Session.
type Options struct {
	NavigationTimeout time.Duration
	SettleDelay       time.Duration
	UserAgent         string
}

// NewSession starts a headless Chrome instance. Close must be called to
// release the browser process.
func NewSession(ctx context.Context, opts Options) (*Session, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.WindowSize(1920, 1080),
	)
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// Start the browser eagerly so startup failures surface here rather
	// than on the first request.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("start headless browser: %w", err)
	}

	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = 30 * time.Second
	}

	return &Session{
		allocCtx:    allocCtx,
		browser:     browserCtx,
		cancels:     []context.CancelFunc{cancelBrowser, cancelAlloc},
		navTimeout:  opts.NavigationTimeout,
		settleDelay: opts.SettleDelay,
	}, nil
}

// PageHTML navigates to url, waits for the page to settle, and returns
// the rendered document HTML. Only one navigation is in flight at a time.
func (s *Session) PageHTML(ctx context.Context, url string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	navCtx, cancel := context.WithTimeout(s.browser, s.navTimeout)
	defer cancel()

	// Respect caller cancellation as well as the navigation deadline.
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-navCtx.Done():
		}
	}()

	actions := []chromedp.Action{chromedp.Navigate(url)}
	if s.settleDelay > 0 {
		actions = append(actions, chromedp.Sleep(s.settleDelay))
	}
	var html string
	actions = append(actions, chromedp.OuterHTML("html", &html))

	if err := chromedp.Run(navCtx, actions...); err != nil {
		return "", fmt.Errorf("navigate %s: %w", url, err)
	}
	return html, nil
}

// Close tears down the browser process.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cancel := range s.cancels {
		cancel()
	}
}
