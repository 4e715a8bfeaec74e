package audit

import (
	"context"
	"fmt"

	"github.com/waftester/a11ycorpus/pkg/snapshot"
)

// Evaluate runs every selected rule against page and returns the outcomes
// owned by the invoked rules, in rule order. Outcomes a rule reports for
// some other rule ID are dropped. NoRule evaluates nothing.
func Evaluate(ctx context.Context, page *snapshot.Page, sel Selection) ([]Outcome, error) {
	if sel.Kind() == KindNone {
		return nil, nil
	}

	invoked := make(map[string]struct{}, len(sel.rules))
	for _, r := range sel.rules {
		invoked[r.ID()] = struct{}{}
	}

	var out []Outcome
	for _, r := range sel.rules {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		outcomes, err := r.Evaluate(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrRuleFailed, r.ID(), err)
		}
		for _, o := range outcomes {
			if _, ok := invoked[o.Rule]; ok {
				out = append(out, o)
			}
		}
	}
	return out, nil
}
