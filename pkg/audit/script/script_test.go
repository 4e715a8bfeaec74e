package script

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waftester/a11ycorpus/pkg/audit"
	"github.com/waftester/a11ycorpus/pkg/testutil"
)

const pageTitleRule = `
text := import("text")

id := "R1"
uri := "https://alfa.siteimprove.com/rules/sia-r1"

evaluate := func(page) {
    out := []
    for _, el in page.elements {
        if el.tag == "title" {
            v := "passed"
            if text.trim_space(el.text) == "" {
                v = "failed"
            }
            out = append(out, {target: el.path, verdict: v})
        }
    }
    if len(out) == 0 {
        out = append(out, {target: "html", verdict: "failed"})
    }
    return out
}
`

const header = "id := \"R9\"\nuri := \"u\"\n"

func writeScript(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestLoadAndEvaluate(t *testing.T) {
	path := writeScript(t, t.TempDir(), "r1.tengo", pageTitleRule)

	r, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "R1", r.ID())
	assert.Equal(t, "https://alfa.siteimprove.com/rules/sia-r1", r.URI())
	assert.Equal(t, path, r.Path())

	tests := []struct {
		name   string
		markup string
		want   audit.Verdict
		target string
	}{
		{"empty title", "<html><head><title></title></head><body></body></html>", audit.Failed, "html > head:nth-of-type(1) > title:nth-of-type(1)"},
		{"whitespace title", "<html><head><title>  </title></head></html>", audit.Failed, "html > head:nth-of-type(1) > title:nth-of-type(1)"},
		{"missing title", "<html><head></head><body></body></html>", audit.Failed, "html"},
		{"good title", "<html><head><title>Home</title></head></html>", audit.Passed, "html > head:nth-of-type(1) > title:nth-of-type(1)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := testutil.PageFromMarkup("file:///p.html", tt.markup)
			outcomes, err := r.Evaluate(context.Background(), &page)
			require.NoError(t, err)
			require.Len(t, outcomes, 1)
			assert.Equal(t, audit.Outcome{Rule: "R1", Target: tt.target, Verdict: tt.want}, outcomes[0])
		})
	}
}

func TestEvaluateConcurrent(t *testing.T) {
	r, err := Load(writeScript(t, t.TempDir(), "r1.tengo", pageTitleRule))
	require.NoError(t, err)

	page := testutil.PageFromMarkup("file:///p.html", "<title></title>")
	testutil.RunConcurrently(16, func(int) {
		outcomes, err := r.Evaluate(context.Background(), &page)
		assert.NoError(t, err)
		assert.Len(t, outcomes, 1)
	})
}

func TestLoadMissingFields(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"no-id.tengo":       `uri := "u"` + "\n" + `evaluate := func(p) { return [] }`,
		"no-uri.tengo":      `id := "R9"` + "\n" + `evaluate := func(p) { return [] }`,
		"no-evaluate.tengo": `id := "R9"` + "\n" + `uri := "u"`,
		"syntax.tengo":      `id := `,
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeScript(t, dir, name, src))
			assert.Error(t, err)
		})
	}
}

func TestEvaluateBadResult(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"not-array.tengo":   header + `evaluate := func(p) { return "nope" }`,
		"not-map.tengo":     header + `evaluate := func(p) { return [1] }`,
		"bad-verdict.tengo": header + `evaluate := func(p) { return [{target: "x", verdict: "maybe"}] }`,
	}
	page := testutil.PageFromMarkup("file:///p.html", "<p>x</p>")
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			r, err := Load(writeScript(t, dir, name, src))
			require.NoError(t, err)
			_, err = r.Evaluate(context.Background(), &page)
			assert.ErrorIs(t, err, ErrBadResult)
		})
	}
}

func TestEvaluateRuntimeError(t *testing.T) {
	src := header + `evaluate := func(p) { f := p.missing; return f(1) }`
	r, err := Load(writeScript(t, t.TempDir(), "err.tengo", src))
	require.NoError(t, err)

	page := testutil.PageFromMarkup("file:///p.html", "<p>x</p>")
	_, err = r.Evaluate(context.Background(), &page)
	assert.Error(t, err)
}

func TestEvaluateSeesPageFields(t *testing.T) {
	src := `
id := "R4"
uri := "u"
evaluate := func(page) {
    if page.lang == "" {
        return [{target: "html", verdict: "failed"}]
    }
    return [{target: "html", verdict: "passed"}]
}
`
	r, err := Load(writeScript(t, t.TempDir(), "r4.tengo", src))
	require.NoError(t, err)

	missing := testutil.PageFromMarkup("file:///p.html", "<html><body></body></html>")
	out, err := r.Evaluate(context.Background(), &missing)
	require.NoError(t, err)
	assert.Equal(t, audit.Failed, out[0].Verdict)

	present := testutil.PageFromMarkup("file:///p.html", `<html lang="en"><body></body></html>`)
	out, err = r.Evaluate(context.Background(), &present)
	require.NoError(t, err)
	assert.Equal(t, audit.Passed, out[0].Verdict)
}

func TestLoadDirAndRegister(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "r1.tengo", pageTitleRule)
	writeScript(t, dir, "broken.tengo", `id := `)
	writeScript(t, dir, "README.md", "not a rule")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.tengo"), 0o755))

	rules, errs := LoadDir(dir)
	assert.Len(t, rules, 1)
	assert.Len(t, errs, 1)

	reg := audit.NewRegistry()
	n, errs := Register(reg, dir)
	assert.Equal(t, 1, n)
	assert.Len(t, errs, 1)
	assert.Equal(t, audit.KindRules, reg.Lookup("R1").Kind())

	n, errs = Register(reg, dir)
	assert.Zero(t, n)
	require.Len(t, errs, 2)
	assert.ErrorIs(t, errs[1], audit.ErrDuplicateRule)
}

func TestLoadDirMissing(t *testing.T) {
	rules, errs := LoadDir(filepath.Join(t.TempDir(), "absent"))
	assert.Empty(t, rules)
	assert.Len(t, errs, 1)
}

func TestElements(t *testing.T) {
	els, err := Elements(`<html lang="en"><body><p>a</p><p class="x">  b
  c </p></body></html>`)
	require.NoError(t, err)

	var tags []string
	for _, e := range els {
		tags = append(tags, e.Tag)
	}
	assert.Equal(t, []string{"html", "head", "body", "p", "p"}, tags)

	assert.Equal(t, "html", els[0].Path)
	assert.Equal(t, "en", els[0].Attrs["lang"])
	assert.Equal(t, "html > body:nth-of-type(1) > p:nth-of-type(2)", els[4].Path)
	assert.Equal(t, "b c", els[4].Text)
	assert.Equal(t, "x", els[4].Attrs["class"])
	assert.Nil(t, els[1].Attrs)
}
