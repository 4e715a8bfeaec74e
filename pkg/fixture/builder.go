package fixture

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/waftester/a11ycorpus/pkg/assets"
	"github.com/waftester/a11ycorpus/pkg/defaults"
	"github.com/waftester/a11ycorpus/pkg/iohelper"
	"github.com/waftester/a11ycorpus/pkg/manifest"
	"github.com/waftester/a11ycorpus/pkg/slug"
	"github.com/waftester/a11ycorpus/pkg/snapshot"
)

// BuildReport summarizes a finished build.
type BuildReport struct {
	Categories int
	Fixtures   int
	Duration   time.Duration
}

// Builder turns a manifest into fixtures. Captures are issued one at a
// time; a Builder must not run two builds at once.
type Builder struct {
	store         *Store
	capturer      snapshot.Capturer
	examples      fs.FS
	assets        *assets.Cache
	scratchDir    string
	closeCapturer bool
	logger        *slog.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithExamplesRoot sets where example-page references are resolved.
func WithExamplesRoot(fsys fs.FS) BuilderOption {
	return func(b *Builder) { b.examples = fsys }
}

// WithAssets sets the cache that materializes shared page assets. The
// caller keeps ownership and closes it.
func WithAssets(c *assets.Cache) BuilderOption {
	return func(b *Builder) { b.assets = c }
}

// WithScratchDir sets where page markup is written before capture. By
// default a temporary directory is created per build and removed after.
func WithScratchDir(dir string) BuilderOption {
	return func(b *Builder) { b.scratchDir = dir }
}

// WithCloseCapturer controls whether Build closes the capturer when it
// returns. Defaults to true.
func WithCloseCapturer(enabled bool) BuilderOption {
	return func(b *Builder) { b.closeCapturer = enabled }
}

// WithLogger sets a custom structured logger.
func WithLogger(l *slog.Logger) BuilderOption {
	return func(b *Builder) { b.logger = l }
}

// NewBuilder returns a builder writing into store and capturing with c.
func NewBuilder(store *Store, c snapshot.Capturer, opts ...BuilderOption) *Builder {
	b := &Builder{
		store:         store,
		capturer:      c,
		closeCapturer: true,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	if b.examples == nil {
		b.examples = os.DirFS(filepath.Join(defaults.VendorDir, defaults.ExamplePagesDir))
	}
	return b
}

// Build writes one fixture per test case in m, in declared order. The first
// error aborts the build; files written before it stay on disk but the
// corpus should be considered invalid until a build succeeds.
func (b *Builder) Build(ctx context.Context, m *manifest.Manifest) (report BuildReport, err error) {
	start := time.Now()

	if b.closeCapturer {
		defer func() {
			if cerr := b.capturer.Close(); cerr != nil {
				b.logger.Warn("close capturer", slog.String("error", cerr.Error()))
			}
		}()
	}

	if err := os.MkdirAll(b.store.Dir(), 0o755); err != nil {
		return report, fmt.Errorf("create output directory: %w", err)
	}

	lock := flock.New(filepath.Join(b.store.Dir(), defaults.BuildLockFile))
	locked, err := lock.TryLock()
	if err != nil {
		return report, fmt.Errorf("lock output directory: %w", err)
	}
	if !locked {
		return report, fmt.Errorf("%w: %s", ErrBuildLocked, b.store.Dir())
	}
	defer func() { _ = lock.Unlock() }()

	if err := CheckConflicts(m); err != nil {
		return report, err
	}

	cache := b.assets
	if cache == nil {
		cache = assets.New(os.DirFS(filepath.Join(defaults.VendorDir, defaults.AssetsDir)),
			assets.WithLogger(b.logger))
		defer iohelper.CloseOrLog(cache, b.logger, "asset cache")
	}

	scratch := b.scratchDir
	if scratch == "" {
		scratch, err = os.MkdirTemp("", "a11ycorpus-pages-*")
		if err != nil {
			return report, fmt.Errorf("create scratch directory: %w", err)
		}
		defer os.RemoveAll(scratch)
	} else if err := os.MkdirAll(scratch, 0o755); err != nil {
		return report, fmt.Errorf("create scratch directory: %w", err)
	}

	for _, category := range m.Categories {
		dir := filepath.Join(b.store.Dir(), slug.Normalize(category.Name))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return report, fmt.Errorf("create category directory: %w", err)
		}
		logger := b.logger.With(slog.String("category", dir))
		logger.Info("building category", slog.Int("cases", len(category.Cases)))

		for _, tc := range category.Cases {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			if err := b.buildOne(ctx, logger, cache, scratch, tc); err != nil {
				return report, err
			}
			report.Fixtures++
		}
		report.Categories++
	}

	report.Duration = time.Since(start)
	b.logger.Info("build complete",
		slog.Int("categories", report.Categories),
		slog.Int("fixtures", report.Fixtures),
		slog.Duration("elapsed", report.Duration))
	return report, nil
}

func (b *Builder) buildOne(ctx context.Context, logger *slog.Logger, cache *assets.Cache, scratch string, tc manifest.TestCase) error {
	start := time.Now()
	id := slug.Normalize(tc.Title)

	markup, err := b.markup(ctx, cache, tc)
	if err != nil {
		return err
	}

	file := filepath.Join(scratch, id+".html")
	if err := os.WriteFile(file, markup, 0o644); err != nil {
		return fmt.Errorf("write page %s: %w", file, err)
	}
	locator, err := snapshot.FileLocator(file)
	if err != nil {
		return fmt.Errorf("locate page %s: %w", file, err)
	}

	page, err := b.capturer.Capture(ctx, locator)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCapture, locator, err)
	}

	rec := Record{ID: id, Category: tc.Category, Title: tc.Title, Page: page}
	if err := b.store.Save(rec); err != nil {
		return err
	}

	logger.Info("fixture written",
		slog.String("file", id+defaults.FixtureExt),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

// markup returns the referenced example page verbatim, or the inline
// example wrapped in the standard page.
func (b *Builder) markup(ctx context.Context, cache *assets.Cache, tc manifest.TestCase) ([]byte, error) {
	ref, ok := tc.ExamplePage()
	if !ok {
		return RenderPage(ctx, tc.Title, tc.Example, cache.Materialize)
	}
	data, err := iohelper.ReadFile(b.examples, ref, iohelper.DefaultMaxSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %s (%s): %w", ErrExampleMissing, ref, tc.Title, err)
	}
	return data, nil
}

// CheckConflicts reports every category slug and every title slug within a
// category that more than one distinct name maps to, and every name that
// normalizes to the empty slug. No file is written by a build whose
// manifest has conflicts.
func CheckConflicts(m *manifest.Manifest) error {
	var conflicts []Conflict

	categories := newClaims()
	for _, c := range m.Categories {
		categories.add(slug.Normalize(c.Name), c.Name)

		titles := newClaims()
		for _, tc := range c.Cases {
			titles.add(slug.Normalize(tc.Title), tc.Title)
		}
		for _, s := range titles.order {
			if names := titles.names[s]; len(names) > 1 || s == "" {
				conflicts = append(conflicts, Conflict{Category: c.Name, Slug: s, Names: names})
			}
		}
	}
	for _, s := range categories.order {
		if names := categories.names[s]; len(names) > 1 || s == "" {
			conflicts = append(conflicts, Conflict{Slug: s, Names: names})
		}
	}

	if len(conflicts) == 0 {
		return nil
	}
	return &ConflictError{Conflicts: conflicts}
}

// claims records which distinct names map to each slug, in first-seen order.
type claims struct {
	order []string
	names map[string][]string
}

func newClaims() *claims {
	return &claims{names: make(map[string][]string)}
}

func (c *claims) add(s, name string) {
	names, seen := c.names[s]
	if !seen {
		c.order = append(c.order, s)
	}
	for _, n := range names {
		if n == name {
			return
		}
	}
	c.names[s] = append(names, name)
}

// AsConflict extracts a *ConflictError from err.
func AsConflict(err error) (*ConflictError, bool) {
	var ce *ConflictError
	ok := errors.As(err, &ce)
	return ce, ok
}
