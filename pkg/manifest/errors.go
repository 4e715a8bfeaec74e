package manifest

import "errors"

// Sentinel errors for manifest loading.
// Callers should use errors.Is() to check for these.
var (
	// ErrInvalidManifest indicates the manifest is not the expected
	// category -> title -> {example} shape.
	ErrInvalidManifest = errors.New("manifest: invalid manifest")

	// ErrDuplicateEntry indicates a category or a title within a category
	// is declared twice.
	ErrDuplicateEntry = errors.New("manifest: duplicate entry")
)

func isManifestErr(err error) bool {
	return errors.Is(err, ErrInvalidManifest) || errors.Is(err, ErrDuplicateEntry)
}
