package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/waftester/a11ycorpus/pkg/assets"
	"github.com/waftester/a11ycorpus/pkg/defaults"
	"github.com/waftester/a11ycorpus/pkg/duration"
	"github.com/waftester/a11ycorpus/pkg/fixture"
	"github.com/waftester/a11ycorpus/pkg/iohelper"
	"github.com/waftester/a11ycorpus/pkg/manifest"
	"github.com/waftester/a11ycorpus/pkg/snapshot"
)

type buildCommand struct {
	Manifest string `short:"m" long:"manifest" description:"test-case manifest (JSON or YAML)"`
	Fixtures string `short:"o" long:"fixtures" description:"output directory"`
	Examples string `long:"examples" description:"example-pages directory"`
	Assets   string `long:"assets" description:"shared assets directory"`
	Chrome   string `long:"chrome" description:"Chrome or Chromium binary"`
	Scratch  string `long:"scratch" description:"keep captured page markup in this directory"`
}

// newCapturer is replaced in tests.
var newCapturer = func(ctx context.Context, e *env) (snapshot.Capturer, error) {
	b := e.cfg.Browser
	return snapshot.NewChromeCapturer(ctx,
		snapshot.WithExecPath(b.ExecPath),
		snapshot.WithViewport(b.Width, b.Height),
		snapshot.WithCaptureTimeout(b.CaptureTimeout),
		snapshot.WithSettle(b.Settle),
		snapshot.WithLogger(e.logger),
	)
}

func (c *buildCommand) run(ctx context.Context, e *env) int {
	cfg := e.cfg
	override(&cfg.Manifest, c.Manifest)
	override(&cfg.Fixtures, c.Fixtures)
	override(&cfg.ExamplePages, c.Examples)
	override(&cfg.Assets, c.Assets)
	override(&cfg.Browser.ExecPath, c.Chrome)

	m, err := manifest.Load(cfg.Manifest)
	if err != nil {
		e.logger.Error("load manifest", slog.String("path", cfg.Manifest), slog.Any("error", err))
		return exitCode(err, manifest.ErrInvalidManifest, manifest.ErrDuplicateEntry, fs.ErrNotExist)
	}

	ctx, cancel := context.WithTimeout(ctx, duration.ContextBuild)
	defer cancel()

	capturer, err := newCapturer(ctx, e)
	if err != nil {
		e.logger.Error("start browser", slog.Any("error", err))
		return defaults.ExitInternalError
	}

	cache := assets.New(os.DirFS(cfg.Assets), assets.WithLogger(e.logger))
	defer iohelper.CloseOrLog(cache, e.logger, "asset cache")

	b := fixture.NewBuilder(fixture.NewStore(cfg.Fixtures), capturer,
		fixture.WithExamplesRoot(os.DirFS(cfg.ExamplePages)),
		fixture.WithAssets(cache),
		fixture.WithScratchDir(c.Scratch),
		fixture.WithLogger(e.logger),
	)

	e.logger.Info("building corpus",
		slog.String("manifest", cfg.Manifest),
		slog.String("fixtures", cfg.Fixtures),
		slog.Int("cases", m.Len()))

	report, err := b.Build(ctx, m)
	if err != nil {
		e.logger.Error("build aborted", slog.Any("error", err))
		if ce, ok := fixture.AsConflict(err); ok {
			for _, conflict := range ce.Conflicts {
				e.logger.Error("slug conflict",
					slog.String("category", conflict.Category),
					slog.String("slug", conflict.Slug),
					slog.Any("names", conflict.Names))
			}
		}
		if fixture.IsBuildAbort(err) || errors.Is(err, context.Canceled) {
			return defaults.ExitBuildAborted
		}
		return defaults.ExitInternalError
	}

	e.logger.Info("corpus built",
		slog.Int("categories", report.Categories),
		slog.Int("fixtures", report.Fixtures),
		slog.Duration("elapsed", report.Duration))
	return defaults.ExitSuccess
}
