// Package assets materializes the shared scripts and stylesheets that
// synthesized test pages link to. Each asset is copied to scratch storage at
// most once per Cache, and later calls return the same location.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/waftester/a11ycorpus/pkg/iohelper"
	"golang.org/x/sync/singleflight"
)

// Sentinel errors for asset materialization.
var (
	// ErrInvalidName indicates a logical name that is not a clean,
	// slash-separated relative path.
	ErrInvalidName = errors.New("assets: invalid asset name")

	// ErrClosed indicates the cache was used after Close.
	ErrClosed = errors.New("assets: cache closed")
)

// Cache maps logical asset names to files in a private scratch directory.
// Safe for concurrent use; concurrent first requests for the same name share
// one copy.
type Cache struct {
	root    fs.FS
	tempDir string
	logger  *slog.Logger

	group singleflight.Group

	mu     sync.Mutex
	dir    string
	paths  map[string]string
	closed bool
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets a custom structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

// WithTempDir sets the parent of the scratch directory (default os.TempDir).
func WithTempDir(dir string) Option {
	return func(c *Cache) { c.tempDir = dir }
}

// New creates a cache serving assets from root.
func New(root fs.FS, opts ...Option) *Cache {
	c := &Cache{
		root:   root,
		logger: slog.Default(),
		paths:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Materialize returns the absolute path of the scratch copy of name, copying
// it on first use. A failed copy leaves nothing behind and is retried on the
// next call.
func (c *Cache) Materialize(ctx context.Context, name string) (string, error) {
	if !fs.ValidPath(name) || name == "." {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	if path, ok, err := c.lookup(name); err != nil || ok {
		return path, err
	}

	v, err, _ := c.group.Do(name, func() (any, error) {
		if path, ok, err := c.lookup(name); err != nil || ok {
			return path, err
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}

		path, err := c.copy(name)
		if err != nil {
			return "", err
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed {
			return "", ErrClosed
		}
		c.paths[name] = path
		c.logger.Debug("asset materialized", slog.String("asset", name), slog.String("path", path))
		return path, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Len returns the number of materialized assets.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.paths)
}

// Close removes the scratch directory and everything in it.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	c.paths = make(map[string]string)
	if c.dir == "" {
		return nil
	}
	dir := c.dir
	c.dir = ""
	return os.RemoveAll(dir)
}

func (c *Cache) lookup(name string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return "", false, ErrClosed
	}
	path, ok := c.paths[name]
	return path, ok, nil
}

func (c *Cache) scratch() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return "", ErrClosed
	}
	if c.dir != "" {
		return c.dir, nil
	}

	dir, err := os.MkdirTemp(c.tempDir, "a11ycorpus-assets-*")
	if err != nil {
		return "", fmt.Errorf("create asset scratch dir: %w", err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		_ = os.RemoveAll(dir)
		return "", err
	}
	c.dir = abs
	return abs, nil
}

// copy writes name into the scratch directory through a temp file that is
// renamed into place. On failure the temp file and every directory created
// for it are removed.
func (c *Cache) copy(name string) (path string, err error) {
	base, err := c.scratch()
	if err != nil {
		return "", err
	}

	dst := filepath.Join(base, filepath.FromSlash(name))
	created, err := mkdirAll(filepath.Dir(dst))
	defer func() {
		if err != nil {
			removeDirs(created)
		}
	}()
	if err != nil {
		return "", fmt.Errorf("create asset dir for %s: %w", name, err)
	}

	src, err := c.root.Open(name)
	if err != nil {
		return "", fmt.Errorf("open asset %s: %w", name, err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".partial-*")
	if err != nil {
		return "", fmt.Errorf("create asset %s: %w", name, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	n, err := io.Copy(tmp, io.LimitReader(src, iohelper.AssetMaxSize+1))
	if err != nil {
		return "", fmt.Errorf("copy asset %s: %w", name, err)
	}
	if n > iohelper.AssetMaxSize {
		return "", fmt.Errorf("%w: asset %s", iohelper.ErrTooLarge, name)
	}
	if err = tmp.Close(); err != nil {
		return "", fmt.Errorf("close asset %s: %w", name, err)
	}
	if err = os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("place asset %s: %w", name, err)
	}

	return dst, nil
}

// mkdirAll is os.MkdirAll that also reports which directories it created,
// outermost first.
func mkdirAll(dir string) ([]string, error) {
	var missing []string
	for d := dir; ; d = filepath.Dir(d) {
		if _, err := os.Stat(d); err == nil {
			break
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		missing = append(missing, d)
		if parent := filepath.Dir(d); parent == d {
			break
		}
	}

	var created []string
	for i := len(missing) - 1; i >= 0; i-- {
		if err := os.Mkdir(missing[i], 0o755); err != nil && !errors.Is(err, fs.ErrExist) {
			return created, err
		}
		created = append(created, missing[i])
	}
	return created, nil
}

func removeDirs(dirs []string) {
	for i := len(dirs) - 1; i >= 0; i-- {
		_ = os.Remove(dirs[i])
	}
}
