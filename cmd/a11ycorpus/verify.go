package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/sourcegraph/conc/pool"
	"github.com/waftester/a11ycorpus/pkg/audit"
	"github.com/waftester/a11ycorpus/pkg/audit/script"
	"github.com/waftester/a11ycorpus/pkg/cases"
	"github.com/waftester/a11ycorpus/pkg/defaults"
	"github.com/waftester/a11ycorpus/pkg/duration"
	"github.com/waftester/a11ycorpus/pkg/fixture"
	"github.com/waftester/a11ycorpus/pkg/harness"
	"github.com/waftester/a11ycorpus/pkg/summary"
	"github.com/waftester/a11ycorpus/pkg/ui"
)

type verifyCommand struct {
	Fixtures    string   `short:"f" long:"fixtures" description:"fixture corpus directory"`
	Rules       string   `short:"r" long:"rules" description:"directory of rule scripts"`
	Concurrency int      `short:"j" long:"concurrency" description:"cases verified in parallel"`
	Metrics     string   `long:"metrics" description:"write the summary as a Prometheus textfile"`
	Only        []string `long:"only" description:"restrict to a category or rule ID (repeatable)"`
}

type verified struct {
	c   cases.Case
	res harness.Result
	err error
}

func (c *verifyCommand) run(ctx context.Context, e *env) int {
	cfg := e.cfg
	override(&cfg.Fixtures, c.Fixtures)
	override(&cfg.Rules, c.Rules)
	override(&cfg.MetricsTextfile, c.Metrics)
	if c.Concurrency > 0 {
		cfg.Concurrency = c.Concurrency
	}

	reg := audit.NewRegistry()
	if cfg.Rules != "" {
		n, errs := script.Register(reg, cfg.Rules)
		for _, err := range errs {
			e.logger.Error("load rule", slog.Any("error", err))
		}
		if len(errs) > 0 {
			return defaults.ExitUserError
		}
		e.logger.Info("rules loaded", slog.Int("count", n), slog.Any("ids", reg.IDs()))
	}

	store := fixture.NewStore(cfg.Fixtures)
	if _, err := os.Stat(cfg.Fixtures); errors.Is(err, fs.ErrNotExist) {
		e.logger.Error("no corpus: run build first", slog.String("fixtures", cfg.Fixtures))
		return defaults.ExitUserError
	}

	counters := &harness.Counters{}
	h := harness.New(store, counters, harness.WithLogger(e.logger))

	selected := cases.Filter(c.Only...)
	results := make([]verified, len(selected))

	p := pool.New().WithMaxGoroutines(cfg.Concurrency)
	for i, tc := range selected {
		p.Go(func() {
			caseCtx, cancel := context.WithTimeout(ctx, duration.ContextVerifyCase)
			defer cancel()
			res, err := h.Verify(caseCtx, tc.Expectation(reg), tc.Category, tc.Fixture)
			results[i] = verified{c: tc, res: res, err: err}
		})
	}
	p.Wait()

	code := defaults.ExitSuccess
	for _, v := range results {
		switch {
		case v.err != nil:
			e.logger.Error("case errored", slog.String("case", v.c.Name()), slog.Any("error", v.err))
			code = defaults.ExitInternalError
		case !v.res.Passed():
			ui.Fprintf(e.stdout, "%s %s %s (%s)\n",
				ui.Icon("✗", "FAIL"),
				v.c.Name(),
				ui.VerdictStyle(v.res.Verdict.String()).Render(v.res.Verdict.String()),
				strings.Join(v.res.URIs, " "))
			if code == defaults.ExitSuccess {
				code = defaults.ExitMismatch
			}
		}
	}

	s := summary.Compute(counters.Snapshot())
	if entries, err := store.List(); err == nil {
		s.CorpusSize = len(entries)
	}
	s.Log(e.logger)
	fmt.Fprintln(e.stdout, s.Render())

	if cfg.MetricsTextfile != "" {
		if err := summary.WriteTextfile(cfg.MetricsTextfile, s); err != nil {
			e.logger.Error("write metrics", slog.Any("error", err))
			return defaults.ExitInternalError
		}
	}
	return code
}
