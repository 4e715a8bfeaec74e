// Package slug turns arbitrary titles and category names into deterministic,
// filesystem-safe identifiers used to name fixture directories and files.
package slug

import (
	"regexp"
	"strings"
)

var (
	disallowed = regexp.MustCompile(`[^a-z0-9\-\s]`)
	slashes    = regexp.MustCompile(`/`)
	colons     = regexp.MustCompile(`:`)
	spaces     = regexp.MustCompile(`\s+`)
	dashes     = regexp.MustCompile(`-+`)
)

// Normalize maps any input to a slug made only of [a-z0-9-] with no runs of
// "-". It never fails; degenerate input yields the empty string.
//
// The "/" and ":" mappings run after stripping, so they never fire. They are
// kept so the pipeline matches the one the upstream corpus names its pages
// with.
//
// Normalize does not detect collisions: two titles may share a slug.
func Normalize(input string) string {
	s := strings.ToLower(input)
	s = strings.TrimSpace(s)
	s = disallowed.ReplaceAllString(s, "")
	s = slashes.ReplaceAllString(s, " ")
	s = colons.ReplaceAllString(s, "-")
	s = spaces.ReplaceAllString(s, "-")
	s = dashes.ReplaceAllString(s, "-")
	return s
}
