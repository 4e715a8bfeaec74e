// Package audit is the narrow interface to the external accessibility rule
// engine: verdicts, rules, rule selection and the reduction of many
// outcomes to one.
package audit

import (
	"fmt"
	"strings"
)

// Verdict is the result of one rule against one target.
type Verdict int

// Verdicts in ascending order of severity.
const (
	Inapplicable Verdict = iota
	Passed
	CantTell
	Failed
)

var verdictNames = [...]string{
	Inapplicable: "inapplicable",
	Passed:       "passed",
	CantTell:     "cantTell",
	Failed:       "failed",
}

func (v Verdict) String() string {
	if v < 0 || int(v) >= len(verdictNames) {
		return fmt.Sprintf("verdict(%d)", int(v))
	}
	return verdictNames[v]
}

// MarshalText implements encoding.TextMarshaler.
func (v Verdict) MarshalText() ([]byte, error) {
	if v < 0 || int(v) >= len(verdictNames) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownVerdict, int(v))
	}
	return []byte(verdictNames[v]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Verdict) UnmarshalText(text []byte) error {
	parsed, err := ParseVerdict(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ParseVerdict parses a verdict name. Matching ignores case, so
// "cantTell" and "canttell" are the same.
func ParseVerdict(s string) (Verdict, error) {
	for v, name := range verdictNames {
		if strings.EqualFold(s, name) {
			return Verdict(v), nil
		}
	}
	return Inapplicable, fmt.Errorf("%w: %q", ErrUnknownVerdict, s)
}

// Precedence ranks verdicts for reduction: the highest rank wins.
var Precedence = map[Verdict]int{
	Failed:       3,
	CantTell:     2,
	Passed:       1,
	Inapplicable: 0,
}

// Precedence returns the rank of v in the Precedence table. Unknown
// verdicts rank below everything.
func (v Verdict) Precedence() int {
	if p, ok := Precedence[v]; ok {
		return p
	}
	return -1
}

// Found reports whether v means the rule found the problem the case
// encodes.
func (v Verdict) Found() bool {
	return v == Failed || v == CantTell
}
