package snapshot

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// ErrNotFileLocator is returned by FilePath for non file:// locators.
var ErrNotFileLocator = errors.New("snapshot: not a file locator")

// Capturer renders the page at a locator and captures it.
//
// Implementations hold a single rendering context: callers must not issue
// overlapping Capture calls, and ChromeCapturer serializes them regardless.
type Capturer interface {
	Capture(ctx context.Context, locator string) (Page, error)
	Close() error
}

// FileLocator returns the file:// URL addressing the file at path.
func FileLocator(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	u := url.URL{Scheme: "file", Path: p}
	return u.String(), nil
}

// FilePath is the inverse of FileLocator.
func FilePath(locator string) (string, error) {
	u, err := url.Parse(locator)
	if err != nil {
		return "", err
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("%w: %s", ErrNotFileLocator, locator)
	}
	return filepath.FromSlash(u.Path), nil
}
