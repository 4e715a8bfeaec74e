package harness

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waftester/a11ycorpus/pkg/audit"
	"github.com/waftester/a11ycorpus/pkg/audit/script"
	"github.com/waftester/a11ycorpus/pkg/fixture"
	"github.com/waftester/a11ycorpus/pkg/snapshot"
	"github.com/waftester/a11ycorpus/pkg/testutil"
)

type fixedRule struct {
	id       string
	outcomes []audit.Outcome
	calls    atomic.Int32
}

func (r *fixedRule) ID() string  { return r.id }
func (r *fixedRule) URI() string { return "https://rules.example/" + r.id }
func (r *fixedRule) Evaluate(context.Context, *snapshot.Page) ([]audit.Outcome, error) {
	r.calls.Add(1)
	return r.outcomes, nil
}

func verdictRule(id string, verdicts ...audit.Verdict) *fixedRule {
	r := &fixedRule{id: id}
	for i, v := range verdicts {
		r.outcomes = append(r.outcomes, audit.Outcome{Rule: id, Target: string(rune('a' + i)), Verdict: v})
	}
	return r
}

const emptyTitlePage = `<!DOCTYPE html>
<html lang="en"><head><title></title></head><body><h1>Empty page title</h1></body></html>`

func newStore(t *testing.T) *fixture.Store {
	t.Helper()
	s := fixture.NewStore(t.TempDir())
	require.NoError(t, s.Save(fixture.Record{
		ID:       "empty-page-title",
		Category: "Page title",
		Title:    "Empty page title",
		Page:     testutil.PageFromMarkup("file:///empty-page-title.html", emptyTitlePage),
	}))
	return s
}

func newHarness(t *testing.T) (*Harness, *Counters) {
	t.Helper()
	c := &Counters{}
	return New(newStore(t), c, WithLogger(testutil.DiscardLogger())), c
}

func TestVerifyMismatchNegativeExcerpt(t *testing.T) {
	h := New(newStore(t), &Counters{}, WithLogger(testutil.DiscardLogger()), WithExcerptMax(-1))

	res, err := h.Verify(context.Background(), Expectation{Rule: audit.Rules(verdictRule("R1", audit.Passed))}, "page-title", "empty-page-title")
	require.NoError(t, err)
	assert.Equal(t, StatusMismatch, res.Status)
	assert.Equal(t, "…", res.Excerpt)
}

func TestVerifyFound(t *testing.T) {
	for _, v := range []audit.Verdict{audit.Failed, audit.CantTell} {
		t.Run(v.String(), func(t *testing.T) {
			h, c := newHarness(t)
			rule := verdictRule("R1", audit.Passed, v, audit.Inapplicable)

			res, err := h.Verify(context.Background(), Expectation{Rule: audit.Rules(rule)}, "page-title", "empty-page-title")
			require.NoError(t, err)
			assert.Equal(t, StatusFound, res.Status)
			assert.True(t, res.Passed())
			assert.Equal(t, v, res.Verdict)
			assert.Equal(t, "b", res.Outcome.Target)
			assert.Equal(t, "Empty page title", res.Title)
			assert.Empty(t, res.Excerpt)
			assert.Equal(t, Totals{Total: 1, Found: 1}, c.Snapshot())
		})
	}
}

func TestVerifyMismatch(t *testing.T) {
	for _, verdicts := range [][]audit.Verdict{{audit.Passed}, {audit.Inapplicable}, nil} {
		h, c := newHarness(t)
		rule := verdictRule("R1", verdicts...)

		res, err := h.Verify(context.Background(), Expectation{Rule: audit.Rules(rule)}, "page-title", "empty-page-title")
		require.NoError(t, err)
		assert.Equal(t, StatusMismatch, res.Status)
		assert.False(t, res.Passed())
		assert.Equal(t, []string{"R1"}, res.Rules)
		assert.Equal(t, []string{"https://rules.example/R1"}, res.URIs)
		assert.Contains(t, res.Excerpt, "<title></title>")
		assert.Equal(t, Totals{Total: 1}, c.Snapshot())
	}
}

func TestVerifyIgnoresOtherRulesOutcomes(t *testing.T) {
	h, _ := newHarness(t)
	rule := &fixedRule{id: "R1", outcomes: []audit.Outcome{
		{Rule: "R2", Target: "x", Verdict: audit.Failed},
		{Rule: "R1", Target: "y", Verdict: audit.Passed},
	}}

	res, err := h.Verify(context.Background(), Expectation{Rule: audit.Rules(rule)}, "page-title", "empty-page-title")
	require.NoError(t, err)
	assert.Equal(t, StatusMismatch, res.Status)
	assert.Equal(t, audit.Passed, res.Verdict)
}

func TestVerifyMultipleRules(t *testing.T) {
	h, _ := newHarness(t)
	sel := audit.Rules(verdictRule("R8", audit.Passed), verdictRule("R69", audit.Failed))

	res, err := h.Verify(context.Background(), Expectation{Rule: sel}, "page-title", "empty-page-title")
	require.NoError(t, err)
	assert.Equal(t, StatusFound, res.Status)
	assert.Equal(t, "R69", res.Outcome.Rule)
}

func TestVerifyNonRequirementNeverLoads(t *testing.T) {
	h, c := newHarness(t)
	rule := verdictRule("R1", audit.Passed)

	// The fixture does not exist: loading it would fail.
	res, err := h.Verify(context.Background(),
		Expectation{Rule: audit.Rules(rule), Legacy: LegacyError, NonRequirement: true},
		"page-title", "does-not-exist")
	require.NoError(t, err)
	assert.Equal(t, StatusNonRequirement, res.Status)
	assert.True(t, res.Passed())
	assert.Zero(t, rule.calls.Load())
	assert.Equal(t, Totals{Total: 1, Invalid: 1}, c.Snapshot(), "legacy is not counted for non-requirements")
}

func TestVerifyNoRule(t *testing.T) {
	h, c := newHarness(t)

	res, err := h.Verify(context.Background(), Expectation{Legacy: LegacyWarning}, "page-title", "does-not-exist")
	require.NoError(t, err)
	assert.Equal(t, StatusUnimplemented, res.Status)
	assert.True(t, res.Passed())
	assert.Equal(t, Totals{Total: 1, LegacyWarning: 1}, c.Snapshot())
}

func TestVerifyMissingFixture(t *testing.T) {
	h, c := newHarness(t)
	rule := verdictRule("R1", audit.Failed)

	_, err := h.Verify(context.Background(), Expectation{Rule: audit.Rules(rule)}, "page-title", "nope")
	assert.ErrorIs(t, err, fixture.ErrMissingFixture)
	assert.Zero(t, rule.calls.Load())
	assert.Equal(t, int64(1), c.Snapshot().Total)
}

func TestVerifyEmptyPageTitleWithScriptRule(t *testing.T) {
	src := `
text := import("text")
id := "R1"
uri := "https://alfa.siteimprove.com/rules/sia-r1"
evaluate := func(page) {
    if text.trim_space(page.title) == "" {
        return [{target: "title", verdict: "failed"}]
    }
    return [{target: "title", verdict: "passed"}]
}
`
	path := filepath.Join(t.TempDir(), "r1.tengo")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	reg := audit.NewRegistry()
	n, errs := script.Register(reg, filepath.Dir(path))
	require.Empty(t, errs)
	require.Equal(t, 1, n)

	h, c := newHarness(t)
	res, err := h.Verify(context.Background(), Expectation{Rule: reg.Lookup("R1")}, "page-title", "empty-page-title")
	require.NoError(t, err)
	assert.Equal(t, StatusFound, res.Status)
	assert.Equal(t, audit.Failed, res.Verdict)

	// Evaluating the live markup gives the same answer as the stored fixture.
	live := testutil.PageFromMarkup("file:///live.html", emptyTitlePage)
	direct, err := audit.Evaluate(context.Background(), &live, reg.Lookup("R1"))
	require.NoError(t, err)
	reduced, _ := audit.Reduce(direct)
	assert.Equal(t, res.Verdict, reduced.Verdict)

	assert.Equal(t, Totals{Total: 1, Found: 1}, c.Snapshot())
}

func TestCountersConcurrent(t *testing.T) {
	h, c := newHarness(t)
	found := audit.Rules(verdictRule("R1", audit.Failed))
	leaks := testutil.TrackGoroutines()

	testutil.AssertTimeout(t, "concurrent verify", 10*time.Second, func() {
		testutil.RunConcurrently(64, func(i int) {
			var exp Expectation
			switch i % 4 {
			case 0:
				exp = Expectation{Rule: found}
			case 1:
				exp = Expectation{NonRequirement: true}
			case 2:
				exp = Expectation{Legacy: LegacyError}
			case 3:
				exp = Expectation{Rule: found, Legacy: LegacyWarning}
			}
			_, err := h.Verify(context.Background(), exp, "page-title", "empty-page-title")
			assert.NoError(t, err)
		})
	})
	leaks.CheckLeaks(t, 2)

	got := c.Snapshot()
	assert.Equal(t, Totals{Total: 64, Found: 32, Invalid: 16, LegacyError: 16, LegacyWarning: 16}, got)
	assert.Equal(t, got.Total, got.Found+got.Invalid+got.Other())
	assert.Equal(t, int64(16), got.Other())
	assert.Equal(t, int64(32), got.Legacy())
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "found", StatusFound.String())
	assert.Equal(t, "mismatch", StatusMismatch.String())
	assert.Equal(t, "unimplemented", StatusUnimplemented.String())
	assert.Equal(t, "non-requirement", StatusNonRequirement.String())
	assert.Equal(t, "error", LegacyError.String())
	assert.Equal(t, "warning", LegacyWarning.String())
	assert.Equal(t, "none", LegacyNone.String())
	assert.True(t, Expectation{}.Requirement())
}
