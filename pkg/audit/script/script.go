// Package script hosts audit rules written as Tengo scripts, so rules can
// be supplied from outside the binary.
//
// A rule script defines:
//
//	id := "R1"
//	uri := "https://example.org/rules/r1"
//	evaluate := func(page) { return [{target: "title", verdict: "failed"}] }
//
// page is a map with url, status, title, lang, html, body and elements.
// Each element is a map with tag, attrs, text and path. Verdicts are
// inapplicable, passed, cantTell or failed.
//
// Scripts run in a sandbox with only the text, fmt and math modules.
package script

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/waftester/a11ycorpus/pkg/audit"
	"github.com/waftester/a11ycorpus/pkg/defaults"
	"github.com/waftester/a11ycorpus/pkg/snapshot"
)

// Ext is the file extension of rule scripts.
const Ext = ".tengo"

// ErrBadResult is returned when evaluate returns something other than an
// array of {target, verdict} maps.
var ErrBadResult = errors.New("script: evaluate returned malformed outcomes")

// safeModules are the only Tengo stdlib modules available to scripts.
var safeModules = stdlib.GetModuleMap("text", "fmt", "math")

// Rule is an audit.Rule backed by a compiled script.
type Rule struct {
	id       string
	uri      string
	path     string
	compiled *tengo.Compiled
}

var _ audit.Rule = (*Rule)(nil)

// Load compiles the script at path.
func Load(path string) (*Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule script %s: %w", path, err)
	}

	s := tengo.NewScript(data)
	s.SetImports(safeModules)
	s.SetMaxAllocs(defaults.ScriptMaxAllocs)

	meta, err := s.Run()
	if err != nil {
		return nil, fmt.Errorf("compile rule script %s: %w", path, err)
	}

	idVar := meta.Get("id")
	if idVar.IsUndefined() || idVar.String() == "" {
		return nil, fmt.Errorf("rule script %s: missing 'id' variable", path)
	}
	uriVar := meta.Get("uri")
	if uriVar.IsUndefined() {
		return nil, fmt.Errorf("rule script %s: missing 'uri' variable", path)
	}
	if meta.Get("evaluate").IsUndefined() {
		return nil, fmt.Errorf("rule script %s: missing 'evaluate' function", path)
	}

	r := &Rule{id: idVar.String(), uri: uriVar.String(), path: path}
	if err := r.precompile(data); err != nil {
		return nil, err
	}
	return r, nil
}

// precompile compiles a wrapper that calls evaluate, cloned per Evaluate
// call. Compile does not run it, so evaluate is not invoked at load time.
func (r *Rule) precompile(src []byte) error {
	wrapper := fmt.Sprintf("%s\n__result__ := evaluate(__page__)\n", src)

	s := tengo.NewScript([]byte(wrapper))
	s.SetImports(safeModules)
	s.SetMaxAllocs(defaults.ScriptMaxAllocs)
	if err := s.Add("__page__", map[string]interface{}{}); err != nil {
		return fmt.Errorf("precompile rule %s: %w", r.id, err)
	}

	compiled, err := s.Compile()
	if err != nil {
		return fmt.Errorf("precompile rule %s: %w", r.id, err)
	}
	r.compiled = compiled
	return nil
}

// ID implements audit.Rule.
func (r *Rule) ID() string { return r.id }

// URI implements audit.Rule.
func (r *Rule) URI() string { return r.uri }

// Path returns the script file the rule was loaded from.
func (r *Rule) Path() string { return r.path }

// Evaluate implements audit.Rule. Each call runs on its own clone of the
// compiled script, so a Rule is safe for concurrent use.
func (r *Rule) Evaluate(ctx context.Context, page *snapshot.Page) (outcomes []audit.Outcome, err error) {
	defer func() {
		if p := recover(); p != nil {
			outcomes, err = nil, fmt.Errorf("rule %s: panic: %v", r.id, p)
		}
	}()

	obj, err := pageObject(page)
	if err != nil {
		return nil, fmt.Errorf("rule %s: %w", r.id, err)
	}

	c := r.compiled.Clone()
	if err := c.Set("__page__", obj); err != nil {
		return nil, fmt.Errorf("rule %s: %w", r.id, err)
	}
	if err := c.RunContext(ctx); err != nil {
		return nil, fmt.Errorf("rule %s: %w", r.id, err)
	}
	return r.outcomes(c.Get("__result__").Value())
}

func (r *Rule) outcomes(v interface{}) ([]audit.Outcome, error) {
	if v == nil {
		return nil, nil
	}
	items, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: rule %s: got %T", ErrBadResult, r.id, v)
	}
	out := make([]audit.Outcome, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: rule %s: item %d is %T", ErrBadResult, r.id, i, item)
		}
		name, _ := m["verdict"].(string)
		verdict, err := audit.ParseVerdict(name)
		if err != nil {
			return nil, fmt.Errorf("%w: rule %s: item %d: %w", ErrBadResult, r.id, i, err)
		}
		target, _ := m["target"].(string)
		out = append(out, audit.Outcome{Rule: r.id, Target: target, Verdict: verdict})
	}
	return out, nil
}

func pageObject(page *snapshot.Page) (map[string]interface{}, error) {
	markup := page.Document.HTML
	if markup == "" {
		markup = page.Response.Body
	}
	elements, err := Elements(markup)
	if err != nil {
		return nil, err
	}
	objs := make([]interface{}, len(elements))
	for i, e := range elements {
		objs[i] = e.object()
	}
	return map[string]interface{}{
		"url":      page.Response.URL,
		"status":   page.Response.Status,
		"title":    page.Document.Title,
		"lang":     page.Document.Lang,
		"html":     page.Document.HTML,
		"body":     page.Response.Body,
		"elements": objs,
	}, nil
}

// LoadDir loads every rule script in dir. Scripts that fail to load are
// returned as errors but don't prevent loading others.
func LoadDir(dir string) ([]*Rule, []error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, []error{fmt.Errorf("read rule dir %s: %w", dir, err)}
	}

	var rules []*Rule
	var errs []error
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), Ext) {
			continue
		}
		r, err := Load(filepath.Join(dir, entry.Name()))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		rules = append(rules, r)
	}
	return rules, errs
}

// Register loads the scripts in dir into reg and returns how many rules
// were registered.
func Register(reg *audit.Registry, dir string) (int, []error) {
	rules, errs := LoadDir(dir)
	n := 0
	for _, r := range rules {
		if err := reg.Register(r); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.path, err))
			continue
		}
		n++
	}
	return n, errs
}
