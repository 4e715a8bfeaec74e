package testutil

import (
	"context"
	"os"
	"regexp"
	"sync"
	"sync/atomic"

	"github.com/waftester/a11ycorpus/pkg/snapshot"
)

var titleRe = regexp.MustCompile(`(?s)<title>(.*?)</title>`)
var langRe = regexp.MustCompile(`<html[^>]*\slang="([^"]*)"`)

// FakeCapturer captures pages by reading the file behind a file:// locator
// instead of rendering it. The markup becomes both the response body and
// the document.
type FakeCapturer struct {
	// FailAt makes the Nth capture (1-based) fail with ErrFault. Zero never fails.
	FailAt int

	mu       sync.Mutex
	locators []string
	inFlight atomic.Int32
	overlaps atomic.Int32
	closed   atomic.Int32
}

var _ snapshot.Capturer = (*FakeCapturer)(nil)

// Capture implements snapshot.Capturer.
func (f *FakeCapturer) Capture(ctx context.Context, locator string) (snapshot.Page, error) {
	if f.inFlight.Add(1) > 1 {
		f.overlaps.Add(1)
	}
	defer f.inFlight.Add(-1)

	f.mu.Lock()
	f.locators = append(f.locators, locator)
	n := len(f.locators)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return snapshot.Page{}, err
	}
	if f.FailAt > 0 && n == f.FailAt {
		return snapshot.Page{}, ErrFault
	}

	path, err := snapshot.FilePath(locator)
	if err != nil {
		return snapshot.Page{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return snapshot.Page{}, err
	}
	return PageFromMarkup(locator, string(data)), nil
}

// Close implements snapshot.Capturer.
func (f *FakeCapturer) Close() error {
	f.closed.Add(1)
	return nil
}

// Locators returns every locator captured so far, in order.
func (f *FakeCapturer) Locators() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.locators...)
}

// Overlapped reports whether two captures were ever in flight at once.
func (f *FakeCapturer) Overlapped() bool { return f.overlaps.Load() > 0 }

// Closed returns how many times Close was called.
func (f *FakeCapturer) Closed() int { return int(f.closed.Load()) }

// PageFromMarkup builds the page a capture of markup at url would produce.
func PageFromMarkup(url, markup string) snapshot.Page {
	p := snapshot.Page{
		Request:  snapshot.Request{Method: "GET", URL: url},
		Response: snapshot.Response{URL: url, Status: 200, Body: markup},
		Document: snapshot.Document{HTML: markup},
		Device: snapshot.Device{
			Type:     "screen",
			Viewport: snapshot.Viewport{Width: 1280, Height: 720, Orientation: "landscape"},
			Display:  snapshot.Display{Resolution: 1},
		},
	}
	if m := titleRe.FindStringSubmatch(markup); m != nil {
		p.Document.Title = m[1]
	}
	if m := langRe.FindStringSubmatch(markup); m != nil {
		p.Document.Lang = m[1]
	}
	return p
}
