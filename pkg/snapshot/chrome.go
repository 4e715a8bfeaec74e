package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/waftester/a11ycorpus/pkg/defaults"
	"github.com/waftester/a11ycorpus/pkg/duration"
	"github.com/waftester/a11ycorpus/pkg/iohelper"
)

// serializeDocument returns the doctype plus the serialized DOM.
const serializeDocument = `(document.doctype
  ? new XMLSerializer().serializeToString(document.doctype) + "\n"
  : "") + document.documentElement.outerHTML`

const documentLang = `document.documentElement.getAttribute("lang") || ""`

// ChromeCapturer captures pages with a headless Chrome driven over the
// DevTools protocol. One browser process backs all captures; each capture
// runs in a fresh tab that is closed afterwards.
type ChromeCapturer struct {
	execPath string
	width    int
	height   int
	timeout  time.Duration
	settle   time.Duration
	logger   *slog.Logger

	mu            sync.Mutex // one capture in flight
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	closed        bool
}

// ChromeOption configures a ChromeCapturer.
type ChromeOption func(*ChromeCapturer)

// WithExecPath sets the Chrome binary; empty lets chromedp search PATH.
func WithExecPath(path string) ChromeOption {
	return func(c *ChromeCapturer) { c.execPath = path }
}

// WithViewport sets the viewport pages are rendered at.
func WithViewport(width, height int) ChromeOption {
	return func(c *ChromeCapturer) {
		c.width = width
		c.height = height
	}
}

// WithCaptureTimeout bounds each capture.
func WithCaptureTimeout(d time.Duration) ChromeOption {
	return func(c *ChromeCapturer) { c.timeout = d }
}

// WithSettle sets the pause after the load event before the DOM is read.
func WithSettle(d time.Duration) ChromeOption {
	return func(c *ChromeCapturer) { c.settle = d }
}

// WithLogger sets a custom structured logger.
func WithLogger(l *slog.Logger) ChromeOption {
	return func(c *ChromeCapturer) { c.logger = l }
}

// NewChromeCapturer launches headless Chrome. The browser lives until Close.
func NewChromeCapturer(ctx context.Context, opts ...ChromeOption) (*ChromeCapturer, error) {
	c := &ChromeCapturer{
		width:   defaults.ViewportWidth,
		height:  defaults.ViewportHeight,
		timeout: duration.CapturePage,
		settle:  duration.CaptureSettle,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("allow-file-access-from-files", true),
		chromedp.WindowSize(c.width, c.height),
	)
	if c.execPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(c.execPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// An empty Run starts the browser so launch failures surface here.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("launch chrome: %w", err)
	}

	c.allocCancel = allocCancel
	c.browserCtx = browserCtx
	c.browserCancel = browserCancel
	return c, nil
}

// Capture navigates a new tab to locator and captures the loaded page.
func (c *ChromeCapturer) Capture(ctx context.Context, locator string) (Page, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return Page{}, fmt.Errorf("capture %s: browser closed", locator)
	}

	tabCtx, cancelTab := chromedp.NewContext(c.browserCtx)
	defer cancelTab()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	runCtx, cancel := context.WithTimeout(tabCtx, c.timeout)
	defer cancel()

	nav := &navigation{}
	chromedp.ListenTarget(runCtx, nav.handle)

	var document, title, lang string
	err := chromedp.Run(runCtx,
		network.Enable(),
		chromedp.EmulateViewport(int64(c.width), int64(c.height)),
		chromedp.Navigate(locator),
		chromedp.Sleep(c.settle),
		chromedp.Title(&title),
		chromedp.Evaluate(documentLang, &lang),
		chromedp.Evaluate(serializeDocument, &document),
	)
	if err != nil {
		if ctx.Err() != nil {
			return Page{}, ctx.Err()
		}
		return Page{}, fmt.Errorf("capture %s: %w", locator, err)
	}

	page := nav.page(locator)
	page.Document = Document{Title: title, Lang: lang, HTML: document}
	page.Device = Device{
		Type: "screen",
		Viewport: Viewport{
			Width:       c.width,
			Height:      c.height,
			Orientation: orientation(c.width, c.height),
		},
		Display: Display{Resolution: 1},
	}

	body, err := c.responseBody(runCtx, locator, nav.documentID())
	if err != nil {
		return Page{}, fmt.Errorf("capture %s: read response body: %w", locator, err)
	}
	page.Response.Body = body

	c.logger.Debug("page captured",
		slog.String("locator", locator),
		slog.String("title", title),
		slog.Int("status", page.Response.Status))

	return page, nil
}

// responseBody prefers the bytes on disk for file:// locators: Chrome does
// not retain bodies for file loads.
func (c *ChromeCapturer) responseBody(ctx context.Context, locator string, id network.RequestID) (string, error) {
	if path, err := FilePath(locator); err == nil {
		data, err := iohelper.ReadFile(os.DirFS(filepath.Dir(path)), filepath.Base(path), iohelper.DefaultMaxSize)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	if id == "" {
		return "", nil
	}

	var body []byte
	err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		body, err = network.GetResponseBody(id).Do(ctx)
		return err
	}))
	return string(body), err
}

// Close shuts the browser down. A graceful shutdown that takes longer than
// duration.BrowserShutdown is replaced by killing the process tree.
func (c *ChromeCapturer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	var proc *os.Process
	if cc := chromedp.FromContext(c.browserCtx); cc != nil && cc.Browser != nil {
		proc = cc.Browser.Process()
	}

	done := make(chan struct{})
	go func() {
		c.browserCancel()
		c.allocCancel()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(duration.BrowserShutdown):
		killProcessTree(proc)
		c.logger.Warn("browser shutdown timed out, killed chrome process tree")
	}
	return nil
}

// navigation records the main document request and response of one tab.
type navigation struct {
	mu       sync.Mutex
	id       network.RequestID
	request  Request
	response Response
}

func (n *navigation) handle(ev any) {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		if e.Type != network.ResourceTypeDocument || n.id != "" {
			return
		}
		n.id = e.RequestID
		n.request = Request{
			Method:  e.Request.Method,
			URL:     e.Request.URL,
			Headers: headers(e.Request.Headers),
		}
	case *network.EventResponseReceived:
		if e.RequestID != n.id || e.Response == nil {
			return
		}
		n.response = Response{
			URL:     e.Response.URL,
			Status:  int(e.Response.Status),
			Headers: headers(e.Response.Headers),
		}
	}
}

func (n *navigation) documentID() network.RequestID {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.id
}

func (n *navigation) page(locator string) Page {
	n.mu.Lock()
	defer n.mu.Unlock()

	p := Page{Request: n.request, Response: n.response}
	if p.Request.URL == "" {
		p.Request = Request{Method: "GET", URL: locator}
	}
	if p.Response.URL == "" {
		p.Response.URL = locator
	}
	return p
}

func headers(h network.Headers) []Header {
	if len(h) == 0 {
		return nil
	}
	out := make([]Header, 0, len(h))
	for name, v := range h {
		out = append(out, Header{Name: name, Value: fmt.Sprint(v)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func orientation(width, height int) string {
	if width >= height {
		return "landscape"
	}
	return "portrait"
}

// ChromeAvailable reports whether a Chrome or Chromium binary can be found.
func ChromeAvailable() bool {
	for _, name := range []string{"chrome", "chromium", "chromium-browser", "google-chrome", "google-chrome-stable", "headless-shell"} {
		if path, err := exec.LookPath(name); err == nil && path != "" {
			return true
		}
	}
	for _, path := range []string{
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	} {
		if _, err := os.Stat(path); err == nil {
			return true
		}
	}
	return false
}
