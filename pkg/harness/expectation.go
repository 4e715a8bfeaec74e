// Package harness verifies the rule engine against the fixture corpus: it
// loads a fixture, runs the selected rules, reduces their outcomes and
// classifies the test case.
package harness

import "github.com/waftester/a11ycorpus/pkg/audit"

// Legacy records whether a previous generation of tooling flagged a case.
// It is bookkeeping only and never decides pass or fail.
type Legacy int

const (
	LegacyNone Legacy = iota
	LegacyError
	LegacyWarning
)

func (l Legacy) String() string {
	switch l {
	case LegacyNone:
		return "none"
	case LegacyError:
		return "error"
	case LegacyWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Expectation is what a test case expects of the rule engine. The zero
// value is a requirement with no rule and no legacy flag.
type Expectation struct {
	Rule   audit.Selection
	Legacy Legacy
	// NonRequirement marks a case that encodes no conformance requirement.
	// It is kept for corpus completeness and excluded from the pass rate.
	NonRequirement bool
}

// Requirement reports whether the case encodes a conformance requirement.
func (e Expectation) Requirement() bool { return !e.NonRequirement }
