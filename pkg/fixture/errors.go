package fixture

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for build and load failure modes.
// Callers should use errors.Is() to check for these.
var (
	// ErrExampleMissing indicates a test case references an example page
	// that cannot be read.
	ErrExampleMissing = errors.New("fixture: example page missing")

	// ErrCapture indicates the page snapshot capability failed.
	ErrCapture = errors.New("fixture: page capture failed")

	// ErrSlugConflict indicates two distinct names normalize to the same
	// file name, or a name normalizes to nothing. Returned wrapped in a
	// *ConflictError.
	ErrSlugConflict = errors.New("fixture: slug conflict")

	// ErrBuildLocked indicates another build holds the output directory.
	ErrBuildLocked = errors.New("fixture: output directory locked by another build")

	// ErrMissingFixture indicates a fixture file does not exist. The corpus
	// has to be built before it is verified.
	ErrMissingFixture = errors.New("fixture: fixture not found")
)

// ConflictError lists every slug claimed by more than one name.
type ConflictError struct {
	Conflicts []Conflict
}

// Conflict is one slug and the names that produce it. Category is empty
// when the conflict is between categories. An empty Slug means the names
// normalize to nothing and would escape their directory.
type Conflict struct {
	Category string
	Slug     string
	Names    []string
}

func (e *ConflictError) Error() string {
	var b strings.Builder
	b.WriteString(ErrSlugConflict.Error())
	for i, c := range e.Conflicts {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		switch {
		case c.Slug == "" && c.Category == "":
			fmt.Fprintf(&b, "categories %q have an empty slug", c.Names)
		case c.Slug == "":
			fmt.Fprintf(&b, "%s: titles %q have an empty slug", c.Category, c.Names)
		case c.Category == "":
			fmt.Fprintf(&b, "categories %q -> %s", c.Names, c.Slug)
		default:
			fmt.Fprintf(&b, "%s: titles %q -> %s", c.Category, c.Names, c.Slug)
		}
	}
	return b.String()
}

func (e *ConflictError) Unwrap() error { return ErrSlugConflict }

// IsBuildAbort reports whether err is one of the errors that abort a build.
func IsBuildAbort(err error) bool {
	return errors.Is(err, ErrExampleMissing) ||
		errors.Is(err, ErrCapture) ||
		errors.Is(err, ErrSlugConflict) ||
		errors.Is(err, ErrBuildLocked)
}
