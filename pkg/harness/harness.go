package harness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/waftester/a11ycorpus/pkg/audit"
	"github.com/waftester/a11ycorpus/pkg/defaults"
	"github.com/waftester/a11ycorpus/pkg/fixture"
)

// Status classifies a verified case.
type Status int

const (
	// StatusFound means the rules reported the failure the case encodes.
	StatusFound Status = iota
	// StatusMismatch means the rules passed or did not apply to a page
	// that is known to fail.
	StatusMismatch
	// StatusUnimplemented means no rule covers the case yet.
	StatusUnimplemented
	// StatusNonRequirement means the case encodes no requirement.
	StatusNonRequirement
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusMismatch:
		return "mismatch"
	case StatusUnimplemented:
		return "unimplemented"
	case StatusNonRequirement:
		return "non-requirement"
	default:
		return "unknown"
	}
}

// Result is the classification of one case.
type Result struct {
	Status   Status
	Category string
	Fixture  string
	Title    string
	// Verdict is the reduced verdict. Outcome is the sample that produced
	// it; its identity may depend on rule output order.
	Verdict audit.Verdict
	Outcome audit.Outcome
	// Rules and URIs name the invoked rules.
	Rules []string
	URIs  []string
	// Excerpt is the start of the served markup, set on mismatch.
	Excerpt string
}

// Passed reports whether the case passes. Only a mismatch fails.
func (r Result) Passed() bool { return r.Status != StatusMismatch }

// Harness verifies cases against a fixture store.
type Harness struct {
	store      *fixture.Store
	counters   *Counters
	excerptMax int
	logger     *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets a custom structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// WithExcerptMax sets how much markup a mismatch carries.
func WithExcerptMax(n int) Option {
	return func(h *Harness) { h.excerptMax = n }
}

// New returns a harness reading fixtures from store and counting into
// counters.
func New(store *fixture.Store, counters *Counters, opts ...Option) *Harness {
	h := &Harness{
		store:      store,
		counters:   counters,
		excerptMax: defaults.ExcerptMax,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	return h
}

// Counters returns the accumulator the harness counts into.
func (h *Harness) Counters() *Counters { return h.counters }

// Verify classifies one case. The returned error is reserved for
// infrastructure failures such as a missing fixture; a mismatch is a
// Result, not an error.
func (h *Harness) Verify(ctx context.Context, exp Expectation, category, fixtureID string) (Result, error) {
	res := Result{Category: category, Fixture: fixtureID}
	h.counters.total.Add(1)

	if !exp.Requirement() {
		h.counters.invalid.Add(1)
		res.Status = StatusNonRequirement
		return res, nil
	}

	h.counters.legacy(exp.Legacy)

	switch exp.Rule.Kind() {
	case audit.KindNone:
		res.Status = StatusUnimplemented
		return res, nil
	case audit.KindRules:
	default:
		return res, fmt.Errorf("harness: unknown selection kind %s", exp.Rule.Kind())
	}

	res.Rules = exp.Rule.IDs()
	res.URIs = exp.Rule.URIs()

	rec, err := h.store.Load(category, fixtureID)
	if err != nil {
		return res, err
	}
	res.Title = rec.Title

	outcomes, err := audit.Evaluate(ctx, &rec.Page, exp.Rule)
	if err != nil {
		return res, fmt.Errorf("%s/%s: %w", category, fixtureID, err)
	}

	res.Outcome, _ = audit.Reduce(outcomes)
	res.Verdict = res.Outcome.Verdict

	logger := h.logger.With(
		slog.String("category", category),
		slog.String("fixture", fixtureID),
		slog.Any("rules", res.Rules))

	if !res.Verdict.Found() {
		res.Status = StatusMismatch
		res.Excerpt = rec.Page.Excerpt(h.excerptMax)
		logger.Error("rule did not report known failure",
			slog.String("verdict", res.Verdict.String()),
			slog.Any("uri", res.URIs),
			slog.String("excerpt", res.Excerpt))
		return res, nil
	}

	h.counters.found.Add(1)
	res.Status = StatusFound
	logger.Info("failure found",
		slog.String("verdict", res.Verdict.String()),
		slog.String("target", res.Outcome.Target))
	return res, nil
}
