// Package cases is the table of test cases the rule engine is verified
// against, one per fixture of the corpus that some rule is expected to
// catch.
//
// Scenarios of the suite that are not listed have no rule planned: they
// need manual review, a layout engine, or fall outside conformance testing.
package cases

import (
	"github.com/waftester/a11ycorpus/pkg/audit"
	"github.com/waftester/a11ycorpus/pkg/harness"
)

// Case is one declared test case.
type Case struct {
	// Rule is the ID of the rule expected to catch the fixture. Empty when
	// no rule covers it yet.
	Rule     string
	Category string
	Fixture  string
	Legacy   harness.Legacy
	// NonRequirement marks a fixture that tests no conformance requirement.
	NonRequirement bool
}

// Name identifies the case in test output.
func (c Case) Name() string { return c.Category + "/" + c.Fixture }

// Expectation resolves c against reg. A rule that is not registered yields
// NoRule, so the case is tracked but not enforced.
func (c Case) Expectation(reg *audit.Registry) harness.Expectation {
	sel := audit.NoRule()
	if c.Rule != "" && reg != nil {
		sel = reg.Lookup(c.Rule)
	}
	return harness.Expectation{
		Rule:           sel,
		Legacy:         c.Legacy,
		NonRequirement: c.NonRequirement,
	}
}

// All lists every case in suite order.
var All = []Case{
	// Colour and contrast
	{Rule: "R69", Category: "colour-and-contrast", Fixture: "small-text-does-not-have-a-contrast-ratio-of-at-least-451-so-does-not-meet-aa"},
	{Rule: "R69", Category: "colour-and-contrast", Fixture: "large-text-does-not-have-a-contrast-ratio-of-at-least-31-so-does-not-meet-aa"},
	{Rule: "R69", Category: "colour-and-contrast", Fixture: "small-text-does-not-have-a-contrast-ratio-of-at-least-71-so-does-not-meet-aaa"},
	{Rule: "R69", Category: "colour-and-contrast", Fixture: "large-text-does-not-have-a-contrast-ratio-of-at-least-451-so-does-not-meet-aaa"},

	// Typography. Blink and marquee are waiting on R70.
	{Rule: "R73", Category: "typography", Fixture: "inadequate-line-height-used"},
	{Rule: "R72", Category: "typography", Fixture: "all-caps-text-found"},
	{Rule: "R85", Category: "typography", Fixture: "italics-used-on-long-sections-of-text"},
	{Rule: "R75", Category: "typography", Fixture: "very-small-text-found"},
	{Rule: "R71", Category: "typography", Fixture: "justified-text-found"},

	// Language of content
	{Rule: "R4", Category: "language-of-content", Fixture: "html-element-has-an-empty-lang-attribute"},
	{Rule: "R5", Category: "language-of-content", Fixture: "html-element-has-an-invalid-value-in-the-lang-attribute"},
	{Rule: "R7", Category: "language-of-content", Fixture: "lang-attribute-used-to-identify-change-of-language-but-with-invalid-value"},
	{Rule: "R4", Category: "language-of-content", Fixture: "html-element-is-missing-a-lang-attribute"},

	// Page title
	{Rule: "R1", Category: "page-title", Fixture: "empty-page-title"},
	{Rule: "R1", Category: "page-title", Fixture: "missing-page-title"},

	// Headings
	{Rule: "R64", Category: "headings", Fixture: "empty-heading"},
	{Rule: "R61", Category: "headings", Fixture: "missing-h1"},
	{Rule: "R53", Category: "headings", Fixture: "headings-not-structured-in-a-hierarchical-manner"},

	// Tables
	{Rule: "R46", Category: "tables", Fixture: "table-with-column-headers-and-double-row-headers"},
	{Rule: "R46", Category: "tables", Fixture: "table-that-only-has-th-elements-in-it"},
	{Rule: "R46", Category: "tables", Fixture: "table-has-an-empty-table-header"},

	// Images
	{Rule: "R2", Category: "images", Fixture: "image-with-no-alt-attribute"},
	{Rule: "R39", Category: "images", Fixture: "image-alt-attribute-contains-image-file-name"},

	// Links
	{Rule: "R11", Category: "links", Fixture: "image-link-with-no-alternative-text"},
	{Rule: "R11", Category: "links", Fixture: "blank-link-text"},
	{Rule: "R41", Category: "links", Fixture: "links-with-the-same-text-go-to-different-pages"},

	// Buttons. Image buttons are waiting on R28.
	{Rule: "R12", Category: "buttons", Fixture: "empty-button"},

	// Forms. Placeholder-only labels are not caught by R8 yet.
	{Rule: "R8", Category: "forms", Fixture: "labels-missing-when-they-would-look-clumsy-for-some-form-controls"},
	{Rule: "R8", Category: "forms", Fixture: "form-element-has-no-label"},
	{Rule: "R8", Category: "forms", Fixture: "label-element-with-for-attribute-but-not-matching-id-attribute-of-form-control"},
	{Rule: "R8", Category: "forms", Fixture: "empty-label-found"},
	{Rule: "R69", Category: "forms", Fixture: "errors-identified-with-a-poor-colour-contrast"},
	{Rule: "R8", Category: "forms", Fixture: "missing-labels-in-checkboxes"},

	// Frames
	{Rule: "R13", Category: "frames", Fixture: "iframe-is-missing-a-title-attribute"},

	// HTML
	{Rule: "R3", Category: "html", Fixture: "duplicate-id"},
	{Rule: "R21", Category: "html", Fixture: "invalid-aria-role-names"},
}

// Rules returns the distinct rule IDs the table refers to, in first-use
// order.
func Rules() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, c := range All {
		if c.Rule != "" && !seen[c.Rule] {
			seen[c.Rule] = true
			ids = append(ids, c.Rule)
		}
	}
	return ids
}

// Filter returns the cases whose category or rule is in keep. An empty
// keep returns All.
func Filter(keep ...string) []Case {
	if len(keep) == 0 {
		return All
	}
	want := make(map[string]bool, len(keep))
	for _, k := range keep {
		want[k] = true
	}
	var out []Case
	for _, c := range All {
		if want[c.Category] || want[c.Rule] {
			out = append(out, c)
		}
	}
	return out
}
