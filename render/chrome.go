package render

import (
	"context"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Options configures a Chrome session.
type Options struct {
	Headless    bool
	ChromePath  string // Path to Chrome binary (empty = auto-detect)
	UserAgent   string
	LoadTimeout time.Duration // Per-navigation timeout
	CallTimeout time.Duration // Per-evaluate/read timeout
}

// DefaultOptions returns sensible defaults. The long load timeout leaves room
// for slow connections and bot-protection interstitials.
func DefaultOptions() Options {
	return Options{
		Headless:    true,
		UserAgent:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		LoadTimeout: 90 * time.Second,
		CallTimeout: 30 * time.Second,
	}
}

// stealthScript masks the usual headless-automation tells before any page
// script runs. Based on puppeteer-extra-plugin-stealth techniques.
const stealthScript = `
Object.defineProperty(navigator, 'webdriver', {
    get: () => undefined,
});

window.chrome = {
    runtime: {},
    loadTimes: function() {},
    csi: function() {},
    app: {},
};

Object.defineProperty(navigator, 'languages', {
    get: () => ['en-US', 'en'],
});

Object.defineProperty(navigator, 'plugins', {
    get: () => [
        { name: 'Chrome PDF Plugin', filename: 'internal-pdf-viewer', description: 'Portable Document Format' },
        { name: 'Chrome PDF Viewer', filename: 'mhjfbmdgcfjbbpaeojofohoefgiehjai', description: '' },
        { name: 'Native Client', filename: 'internal-nacl-plugin', description: '' },
    ],
});
`

// ChromeSession implements Session on top of a dedicated headless Chrome
// process managed by chromedp.
type ChromeSession struct {
	opts        Options
	ctx         context.Context
	cancelCtx   context.CancelFunc
	cancelAlloc context.CancelFunc
	closed      bool
}

// NewChromeSession launches a browser and returns a session bound to a fresh
// tab. The caller owns the session and must Close it.
func NewChromeSession(opts Options) (*ChromeSession, error) {
	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoDefaultBrowserCheck,
		chromedp.NoFirstRun,
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("exclude-switches", "enable-automation"),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.UserAgent(opts.UserAgent),
		chromedp.WindowSize(1920, 1080),
	}
	if opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", "new"))
	}
	if opts.ChromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ChromePath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	ctx, cancelCtx := chromedp.NewContext(allocCtx)

	s := &ChromeSession{
		opts:        opts,
		ctx:         ctx,
		cancelCtx:   cancelCtx,
		cancelAlloc: cancelAlloc,
	}

	// Inject the stealth script before the first navigation.
	err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(stealthScript).Do(ctx)
		return err
	}))
	if err != nil {
		s.Close()
		return nil, &NavigationError{URL: "", Err: err}
	}

	return s, nil
}

// Load navigates to the URL and waits for the body to be ready.
func (s *ChromeSession) Load(ctx context.Context, url string) error {
	runCtx, cancel := s.callContext(ctx, s.opts.LoadTimeout)
	defer cancel()

	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return &NavigationError{URL: url, Err: err}
	}
	return nil
}

// Evaluate runs a script in the page and unmarshals its result into out.
func (s *ChromeSession) Evaluate(ctx context.Context, script string, out any) error {
	runCtx, cancel := s.callContext(ctx, s.opts.CallTimeout)
	defer cancel()

	// chromedp discards the result when out is nil.
	if err := chromedp.Run(runCtx, chromedp.Evaluate(script, out)); err != nil {
		return &ScriptError{Err: err}
	}
	return nil
}

// HTML returns the full serialized document.
func (s *ChromeSession) HTML(ctx context.Context) (string, error) {
	runCtx, cancel := s.callContext(ctx, s.opts.CallTimeout)
	defer cancel()

	var html string
	if err := chromedp.Run(runCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", &ScriptError{Err: err}
	}
	return html, nil
}

// Title returns the current document title.
func (s *ChromeSession) Title(ctx context.Context) (string, error) {
	runCtx, cancel := s.callContext(ctx, s.opts.CallTimeout)
	defer cancel()

	var title string
	if err := chromedp.Run(runCtx, chromedp.Title(&title)); err != nil {
		return "", &ScriptError{Err: err}
	}
	return title, nil
}

// Location returns the current URL after redirects.
func (s *ChromeSession) Location(ctx context.Context) (string, error) {
	runCtx, cancel := s.callContext(ctx, s.opts.CallTimeout)
	defer cancel()

	var loc string
	if err := chromedp.Run(runCtx, chromedp.Location(&loc)); err != nil {
		return "", &ScriptError{Err: err}
	}
	return loc, nil
}

// Close shuts the browser down. Safe to call more than once.
func (s *ChromeSession) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.cancelCtx()
	s.cancelAlloc()
}

// callContext derives a run context that honors both the caller's context and
// the per-call timeout. The browser context carries the chromedp target, so it
// is the parent; the caller's cancellation is propagated alongside.
func (s *ChromeSession) callContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithTimeout(s.ctx, timeout)
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}
