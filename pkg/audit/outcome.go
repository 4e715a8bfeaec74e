package audit

// Outcome is one verdict produced by one rule for one target.
type Outcome struct {
	Rule    string  `json:"rule"`
	Target  string  `json:"target"`
	Verdict Verdict `json:"verdict"`
}

// Reduce folds outcomes into the one with the highest precedence. On a tie
// the earliest outcome is kept. The classification is the same for any
// order of the input; only the retained sample may differ.
//
// An empty input reduces to an Inapplicable outcome and false.
func Reduce(outcomes []Outcome) (Outcome, bool) {
	if len(outcomes) == 0 {
		return Outcome{Verdict: Inapplicable}, false
	}
	best := outcomes[0]
	for _, o := range outcomes[1:] {
		if o.Verdict.Precedence() > best.Verdict.Precedence() {
			best = o
		}
	}
	return best, true
}
