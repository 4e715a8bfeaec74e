package audit

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waftester/a11ycorpus/pkg/jsonutil"
	"github.com/waftester/a11ycorpus/pkg/snapshot"
)

type stubRule struct {
	id       string
	outcomes []Outcome
	err      error
	calls    int
}

func (r *stubRule) ID() string  { return r.id }
func (r *stubRule) URI() string { return "https://rules.example/" + r.id }
func (r *stubRule) Evaluate(context.Context, *snapshot.Page) ([]Outcome, error) {
	r.calls++
	return r.outcomes, r.err
}

func TestVerdictOrder(t *testing.T) {
	order := []Verdict{Inapplicable, Passed, CantTell, Failed}
	for i := 1; i < len(order); i++ {
		assert.Greater(t, order[i].Precedence(), order[i-1].Precedence(),
			"%s must outrank %s", order[i], order[i-1])
	}
	assert.Len(t, Precedence, len(order))
	assert.Equal(t, -1, Verdict(42).Precedence())
}

func TestVerdictNames(t *testing.T) {
	tests := []struct {
		v    Verdict
		name string
	}{
		{Inapplicable, "inapplicable"},
		{Passed, "passed"},
		{CantTell, "cantTell"},
		{Failed, "failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.v.String())
			v, err := ParseVerdict(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.v, v)
		})
	}

	v, err := ParseVerdict("CANTTELL")
	require.NoError(t, err)
	assert.Equal(t, CantTell, v)

	_, err = ParseVerdict("maybe")
	assert.ErrorIs(t, err, ErrUnknownVerdict)
	assert.Equal(t, "verdict(9)", Verdict(9).String())
}

func TestVerdictText(t *testing.T) {
	data, err := jsonutil.Marshal(Outcome{Rule: "R1", Target: "title", Verdict: CantTell})
	require.NoError(t, err)
	assert.JSONEq(t, `{"rule":"R1","target":"title","verdict":"cantTell"}`, string(data))

	var o Outcome
	require.NoError(t, jsonutil.Unmarshal(data, &o))
	assert.Equal(t, CantTell, o.Verdict)

	_, err = Verdict(-1).MarshalText()
	assert.ErrorIs(t, err, ErrUnknownVerdict)
}

func TestFound(t *testing.T) {
	assert.True(t, Failed.Found())
	assert.True(t, CantTell.Found())
	assert.False(t, Passed.Found())
	assert.False(t, Inapplicable.Found())
}

func TestReduceEmpty(t *testing.T) {
	o, ok := Reduce(nil)
	assert.False(t, ok)
	assert.Equal(t, Inapplicable, o.Verdict)
}

func TestReduceKeepsFirstOnTie(t *testing.T) {
	o, ok := Reduce([]Outcome{
		{Rule: "R1", Target: "a", Verdict: Passed},
		{Rule: "R1", Target: "b", Verdict: Failed},
		{Rule: "R1", Target: "c", Verdict: Failed},
		{Rule: "R1", Target: "d", Verdict: CantTell},
	})
	require.True(t, ok)
	assert.Equal(t, "b", o.Target)
	assert.Equal(t, Failed, o.Verdict)
}

func TestReduceAllInapplicable(t *testing.T) {
	o, ok := Reduce([]Outcome{{Target: "a"}, {Target: "b"}})
	require.True(t, ok)
	assert.Equal(t, Inapplicable, o.Verdict)
	assert.Equal(t, "a", o.Target)
}

func TestReduceOrderIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	all := []Verdict{Inapplicable, Passed, CantTell, Failed}

	for i := 0; i < 500; i++ {
		n := 1 + rng.Intn(8)
		outcomes := make([]Outcome, n)
		want := Inapplicable
		for j := range outcomes {
			v := all[rng.Intn(len(all))]
			outcomes[j] = Outcome{Rule: "R", Target: string(rune('a' + j)), Verdict: v}
			if v.Precedence() > want.Precedence() {
				want = v
			}
		}

		first, _ := Reduce(outcomes)
		rng.Shuffle(n, func(a, b int) { outcomes[a], outcomes[b] = outcomes[b], outcomes[a] })
		second, _ := Reduce(outcomes)

		assert.Equal(t, want, first.Verdict)
		assert.Equal(t, first.Verdict, second.Verdict)
		assert.Equal(t, first.Verdict.Found(), second.Verdict.Found())
	}
}

func TestSelection(t *testing.T) {
	var zero Selection
	assert.Equal(t, KindNone, zero.Kind())
	assert.Equal(t, KindNone, NoRule().Kind())
	assert.Equal(t, KindNone, Rules().Kind())

	a, b := &stubRule{id: "R1"}, &stubRule{id: "R2"}
	sel := Rules(a, b)
	assert.Equal(t, KindRules, sel.Kind())
	assert.Equal(t, []string{"R1", "R2"}, sel.IDs())
	assert.Equal(t, []string{"https://rules.example/R1", "https://rules.example/R2"}, sel.URIs())
	assert.Len(t, sel.List(), 2)
	assert.Equal(t, "rules", KindRules.String())
	assert.Equal(t, "none", KindNone.String())
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&stubRule{id: "R69"}))
	require.NoError(t, reg.Register(&stubRule{id: "R1"}))

	assert.ErrorIs(t, reg.Register(&stubRule{id: "R1"}), ErrDuplicateRule)
	assert.ErrorIs(t, reg.Register(&stubRule{}), ErrInvalidRule)
	assert.ErrorIs(t, reg.Register(nil), ErrInvalidRule)

	assert.Equal(t, []string{"R1", "R69"}, reg.IDs())
	assert.Equal(t, 2, reg.Len())

	assert.Equal(t, KindRules, reg.Lookup("R1").Kind())
	assert.Equal(t, KindNone, reg.Lookup("R2").Kind())
	assert.Equal(t, []string{"R69", "R1"}, reg.Select("R69", "R1").IDs())
	assert.Equal(t, KindNone, reg.Select("R69", "R404").Kind(), "any missing rule disables the case")
}

func TestEvaluateFiltersToInvokedRules(t *testing.T) {
	r1 := &stubRule{id: "R1", outcomes: []Outcome{
		{Rule: "R1", Target: "title", Verdict: Failed},
		{Rule: "R99", Target: "html", Verdict: Passed},
	}}
	r2 := &stubRule{id: "R2", outcomes: []Outcome{
		{Rule: "R2", Target: "h1", Verdict: Passed},
	}}

	got, err := Evaluate(context.Background(), &snapshot.Page{}, Rules(r1, r2))
	require.NoError(t, err)
	assert.Equal(t, []Outcome{
		{Rule: "R1", Target: "title", Verdict: Failed},
		{Rule: "R2", Target: "h1", Verdict: Passed},
	}, got)
}

func TestEvaluateNoRule(t *testing.T) {
	got, err := Evaluate(context.Background(), &snapshot.Page{}, NoRule())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEvaluateRuleError(t *testing.T) {
	boom := assert.AnError
	r := &stubRule{id: "R3", err: boom}
	_, err := Evaluate(context.Background(), &snapshot.Page{}, Rules(r))
	assert.ErrorIs(t, err, ErrRuleFailed)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "R3")
}

func TestEvaluateCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &stubRule{id: "R1"}
	_, err := Evaluate(ctx, &snapshot.Page{}, Rules(r))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, r.calls)
}
