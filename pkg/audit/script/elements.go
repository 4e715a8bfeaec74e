package script

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Element is one element of a page as scripts see it.
type Element struct {
	Tag   string
	Attrs map[string]string
	Text  string
	Path  string
}

// Elements parses markup and returns its elements in document order. Path
// is a CSS selector that addresses the element uniquely.
func Elements(markup string) ([]Element, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}
	var out []Element
	var walk func(n *html.Node, parent string)
	walk = func(n *html.Node, parent string) {
		counts := map[string]int{}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				walk(c, parent)
				continue
			}
			counts[c.Data]++
			path := c.Data
			if parent != "" {
				path = fmt.Sprintf("%s > %s:nth-of-type(%d)", parent, c.Data, counts[c.Data])
			}
			el := Element{Tag: c.Data, Text: textContent(c), Path: path}
			if len(c.Attr) > 0 {
				el.Attrs = make(map[string]string, len(c.Attr))
				for _, a := range c.Attr {
					el.Attrs[a.Key] = a.Val
				}
			}
			out = append(out, el)
			walk(c, path)
		}
	}
	walk(doc, "")
	return out, nil
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func (e Element) object() map[string]interface{} {
	attrs := make(map[string]interface{}, len(e.Attrs))
	for k, v := range e.Attrs {
		attrs[k] = v
	}
	return map[string]interface{}{
		"tag":   e.Tag,
		"attrs": attrs,
		"text":  e.Text,
		"path":  e.Path,
	}
}
