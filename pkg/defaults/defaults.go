// Package defaults provides canonical default values for the entire codebase.
// This is the SINGLE SOURCE OF TRUTH for paths, limits and concurrency.
//
// Usage:
//
//	store := fixture.NewStore(defaults.FixturesDir)
//	pool := pool.New().WithMaxGoroutines(defaults.ConcurrencyVerify)
//
// DO NOT hardcode these values elsewhere; reference the constant.
package defaults

// Version is the current a11ycorpus version
const Version = "0.4.0"

// ============================================================================
// CORPUS LAYOUT
// ============================================================================
//
// The corpus lives inside the repository so verification runs from a clean
// checkout without a browser.
// ============================================================================

const (
	// FixturesDir is where the builder writes and the harness reads fixtures
	FixturesDir = "test/fixtures"

	// VendorDir is the checkout of the third-party audit corpus
	VendorDir = "vendor/accessibility-tool-audit"

	// ManifestFile is the test-case manifest inside VendorDir
	ManifestFile = "tests.json"

	// ExamplePagesDir holds the static example pages referenced by the manifest
	ExamplePagesDir = "example-pages"

	// AssetsDir holds the scripts and styles shared by synthesized pages
	AssetsDir = "assets"

	// FixtureExt is the extension of every fixture file
	FixtureExt = ".json"

	// BuildLockFile guards an output directory against concurrent builds
	BuildLockFile = ".build.lock"
)

// ============================================================================
// CONCURRENCY SETTINGS
// ============================================================================

const (
	// ConcurrencyMinimal is for single-threaded operations (1)
	ConcurrencyMinimal = 1

	// ConcurrencyVerify is the default number of cases verified in parallel (8)
	ConcurrencyVerify = 8
)

// ============================================================================
// SIZE LIMITS
// ============================================================================

const (
	// ExcerptMax is the longest page excerpt attached to a mismatch (2KB)
	ExcerptMax = 2 * 1024

	// ScriptMaxAllocs bounds the allocations of one rule script run
	ScriptMaxAllocs = 10_000_000
)

// ============================================================================
// VIEWPORT
// ============================================================================

const (
	// ViewportWidth is the width pages are rendered at
	ViewportWidth = 1280

	// ViewportHeight is the height pages are rendered at
	ViewportHeight = 720
)
