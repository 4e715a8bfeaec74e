// Package manifest loads the third-party test-case manifest: an ordered
// mapping of category name to test title to test description.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-json-experiment/json/jsontext"
	"github.com/waftester/a11ycorpus/pkg/jsonutil"
	"gopkg.in/yaml.v3"
)

// exampleRef matches an inline example that only links to a static page.
var exampleRef = regexp.MustCompile(`href="example-pages/(.+\.html)"`)

// TestCase is one externally supplied test description.
type TestCase struct {
	Category string
	Title    string
	// Example is either inline markup or markup linking to a static page.
	Example string
}

// ExamplePage returns the path of the static page the example refers to,
// relative to the example-pages root.
func (tc TestCase) ExamplePage() (string, bool) {
	m := exampleRef.FindStringSubmatch(tc.Example)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Category is a named, ordered group of test cases.
type Category struct {
	Name  string
	Cases []TestCase
}

// Manifest is the full set of categories in declared order.
type Manifest struct {
	Categories []Category
}

// Len returns the number of test cases across all categories.
func (m *Manifest) Len() int {
	n := 0
	for _, c := range m.Categories {
		n += len(c.Cases)
	}
	return n
}

// Category returns the named category.
func (m *Manifest) Category(name string) (Category, bool) {
	for _, c := range m.Categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

// description is the per-test object. Fields other than example are ignored.
type description struct {
	Example string `json:"example" yaml:"example"`
}

// Load reads a manifest file. Files ending in .yaml or .yml are parsed as
// YAML; everything else as JSON.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return Parse(bytes.NewReader(data))
	}
}

// Parse decodes a JSON manifest, keeping category and title order.
func Parse(r io.Reader) (*Manifest, error) {
	m := &Manifest{}

	err := jsonutil.EachMember(r, func(category string, cases jsontext.Value) error {
		cat := Category{Name: category}
		err := jsonutil.EachMemberValue(cases, func(title string, raw jsontext.Value) error {
			var d description
			if err := jsonutil.Unmarshal(raw, &d); err != nil {
				return fmt.Errorf("%w: %s / %s: %v", ErrInvalidManifest, category, title, err)
			}
			cat.Cases = append(cat.Cases, TestCase{Category: category, Title: title, Example: d.Example})
			return nil
		})
		if err != nil {
			return err
		}
		m.Categories = append(m.Categories, cat)
		return nil
	})
	if err != nil {
		switch {
		case isManifestErr(err):
			return nil, err
		case errors.Is(err, jsontext.ErrDuplicateName):
			return nil, fmt.Errorf("%w: %v", ErrDuplicateEntry, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
		}
	}

	return m, nil
}

// ParseYAML decodes a YAML manifest of the same shape, keeping order.
func ParseYAML(data []byte) (*Manifest, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return &Manifest{}, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level is not a mapping", ErrInvalidManifest)
	}

	m := &Manifest{}
	seenCat := make(map[string]bool)

	for i := 0; i+1 < len(root.Content); i += 2 {
		name, body := root.Content[i].Value, root.Content[i+1]
		if seenCat[name] {
			return nil, fmt.Errorf("%w: category %q", ErrDuplicateEntry, name)
		}
		seenCat[name] = true

		if body.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("%w: category %q is not a mapping", ErrInvalidManifest, name)
		}

		cat := Category{Name: name}
		seenTitle := make(map[string]bool)
		for j := 0; j+1 < len(body.Content); j += 2 {
			title := body.Content[j].Value
			if seenTitle[title] {
				return nil, fmt.Errorf("%w: %s / %s", ErrDuplicateEntry, name, title)
			}
			seenTitle[title] = true

			var d description
			if err := body.Content[j+1].Decode(&d); err != nil {
				return nil, fmt.Errorf("%w: %s / %s: %v", ErrInvalidManifest, name, title, err)
			}
			cat.Cases = append(cat.Cases, TestCase{Category: name, Title: title, Example: d.Example})
		}
		m.Categories = append(m.Categories, cat)
	}

	return m, nil
}
