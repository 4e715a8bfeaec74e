package audit

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps rule IDs to rules. Safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	rules map[string]Rule
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]Rule)}
}

// Register adds r. Registering a second rule with the same ID fails with
// ErrDuplicateRule.
func (r *Registry) Register(rule Rule) error {
	if rule == nil || rule.ID() == "" {
		return ErrInvalidRule
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rules[rule.ID()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateRule, rule.ID())
	}
	r.rules[rule.ID()] = rule
	return nil
}

// Lookup selects the rule with the given ID, or NoRule when none is
// registered.
func (r *Registry) Lookup(id string) Selection {
	return r.Select(id)
}

// Select selects every named rule. If any of them is missing the case
// cannot be enforced yet and the result is NoRule.
func (r *Registry) Select(ids ...string) Selection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rules := make([]Rule, 0, len(ids))
	for _, id := range ids {
		rule, ok := r.rules[id]
		if !ok {
			return NoRule()
		}
		rules = append(rules, rule)
	}
	return Rules(rules...)
}

// IDs returns the registered rule IDs, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.rules))
	for id := range r.rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered rules.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rules)
}
