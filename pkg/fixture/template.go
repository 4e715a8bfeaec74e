package fixture

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// Shared assets every synthesized page loads, relative to the assets root.
const (
	AssetJQuery     = "javascript/jquery-1.12.0.min.js"
	AssetMainScript = "javascript/main.js"
	AssetStylesheet = "stylesheets/tests.css"
)

// pageAssets lists the assets in the order the template references them.
var pageAssets = []string{AssetJQuery, AssetMainScript, AssetStylesheet}

// Title and markup are inserted unescaped: the markup is the test case and
// must reach the browser exactly as written.
const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>{{ .Title }}</title>
  <script src="{{ get .Assets "` + AssetJQuery + `" }}"></script>
  <script src="{{ get .Assets "` + AssetMainScript + `" }}"></script>
  <link rel="stylesheet" href="{{ get .Assets "` + AssetStylesheet + `" }}">
</head>
<body>
  <h1>{{ .Title }}</h1>
  <main>{{ .Markup }}</main>
</body>
</html>`

var page = template.Must(template.New("page").Funcs(sprig.TxtFuncMap()).Parse(pageTemplate))

type pageData struct {
	Title  string
	Markup string
	Assets map[string]any
}

// AssetResolver maps a logical asset name to a location the browser can load.
type AssetResolver func(ctx context.Context, name string) (string, error)

// RenderPage wraps an inline example in the standard test page.
func RenderPage(ctx context.Context, title, markup string, resolve AssetResolver) ([]byte, error) {
	data := pageData{
		Title:  title,
		Markup: markup,
		Assets: make(map[string]any, len(pageAssets)),
	}
	for _, name := range pageAssets {
		loc, err := resolve(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("asset %s: %w", name, err)
		}
		data.Assets[name] = loc
	}

	var buf bytes.Buffer
	if err := page.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render page %q: %w", title, err)
	}
	return buf.Bytes(), nil
}
