package audit

import (
	"context"

	"github.com/waftester/a11ycorpus/pkg/snapshot"
)

// Rule is one audit rule of the external engine.
type Rule interface {
	// ID is the short identifier, e.g. "R69".
	ID() string
	// URI documents the rule.
	URI() string
	// Evaluate returns one outcome per target the rule looked at.
	Evaluate(ctx context.Context, page *snapshot.Page) ([]Outcome, error)
}

// Kind tells which variant a Selection holds.
type Kind int

const (
	// KindNone means no rule implements the case yet.
	KindNone Kind = iota
	// KindRules means one or more rules are invoked.
	KindRules
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindRules:
		return "rules"
	default:
		return "unknown"
	}
}

// Selection is the set of rules a test case invokes, or none at all.
// The zero value is NoRule.
type Selection struct {
	rules []Rule
}

// NoRule selects nothing.
func NoRule() Selection { return Selection{} }

// Rules selects the given rules. An empty list is NoRule.
func Rules(rules ...Rule) Selection {
	if len(rules) == 0 {
		return NoRule()
	}
	return Selection{rules: append([]Rule(nil), rules...)}
}

// Kind returns the variant.
func (s Selection) Kind() Kind {
	if len(s.rules) == 0 {
		return KindNone
	}
	return KindRules
}

// List returns the selected rules.
func (s Selection) List() []Rule {
	return append([]Rule(nil), s.rules...)
}

// IDs returns the selected rule IDs in order.
func (s Selection) IDs() []string {
	ids := make([]string, len(s.rules))
	for i, r := range s.rules {
		ids[i] = r.ID()
	}
	return ids
}

// URIs returns the selected rule URIs in order.
func (s Selection) URIs() []string {
	uris := make([]string, len(s.rules))
	for i, r := range s.rules {
		uris[i] = r.URI()
	}
	return uris
}
