package cases

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
	"github.com/waftester/a11ycorpus/pkg/assets"
	"github.com/waftester/a11ycorpus/pkg/fixture"
	"github.com/waftester/a11ycorpus/pkg/manifest"
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

const manifestJSON = `{
  "Page title": {
    "Empty page title": {
      "example": "<a href=\"example-pages/empty-title.html\">Example</a>"
    },
    "Missing page title": {
      "example": "<a href=\"example-pages/missing-title.html\">Example</a>"
    }
  }
}`

func buildPageTitleCorpus(t *testing.T) *fixture.Store {
	t.Helper()

	m, err := manifest.Parse(strings.NewReader(manifestJSON))
	require.NoError(t, err)

	examples := fstest.MapFS{
		"empty-title.html":   {Data: []byte("<!DOCTYPE html><html lang=\"en\"><head><title></title></head><body></body></html>")},
		"missing-title.html": {Data: []byte("<!DOCTYPE html><html lang=\"en\"><head></head><body></body></html>")},
	}
	cache := assets.New(fstest.MapFS{}, assets.WithTempDir(t.TempDir()))
	t.Cleanup(func() { _ = cache.Close() })

	store := fixture.NewStore(filepath.Join(t.TempDir(), "fixtures"))
	b := fixture.NewBuilder(store, &testutil.FakeCapturer{},
		fixture.WithExamplesRoot(examples),
		fixture.WithAssets(cache),
		fixture.WithLogger(testutil.DiscardLogger()),
	)
	report, err := b.Build(context.Background(), m)
	require.NoError(t, err)
	require.Equal(t, 2, report.Fixtures)
	return store
}
