package testutil

import (
	"context"
	"sync/atomic"

	"github.com/waftester/a11ycorpus/pkg/audit"
	"github.com/waftester/a11ycorpus/pkg/snapshot"
)

// StaticRule is an audit.Rule that reports the same verdict for every page.
type StaticRule struct {
	RuleID  string
	Verdict audit.Verdict
	Err     error

	calls atomic.Int64
}

var _ audit.Rule = (*StaticRule)(nil)

// ID implements audit.Rule.
func (r *StaticRule) ID() string { return r.RuleID }

// URI implements audit.Rule.
func (r *StaticRule) URI() string { return "https://rules.invalid/" + r.RuleID }

// Evaluate implements audit.Rule.
func (r *StaticRule) Evaluate(_ context.Context, _ *snapshot.Page) ([]audit.Outcome, error) {
	r.calls.Add(1)
	if r.Err != nil {
		return nil, r.Err
	}
	return []audit.Outcome{{Rule: r.RuleID, Target: "html", Verdict: r.Verdict}}, nil
}

// Calls returns how many times Evaluate ran.
func (r *StaticRule) Calls() int64 { return r.calls.Load() }
