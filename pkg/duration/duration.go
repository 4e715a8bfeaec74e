// Package duration provides canonical time constants for the entire codebase.
// This is the SINGLE SOURCE OF TRUTH for all time-based configuration.
//
// Usage:
//
//	ctx, cancel := context.WithTimeout(ctx, duration.CapturePage)
//
// DO NOT use hardcoded time.Duration values like `30 * time.Second` anywhere.
// Instead, reference the appropriate constant from this package.
package duration

import "time"

// ============================================================================
// BROWSER/HEADLESS TIMEOUTS
// ============================================================================
//
// Use these for chromedp operations during fixture capture.
// ============================================================================

const (
	// CapturePage bounds one page capture, navigation included (30s)
	CapturePage = 30 * time.Second

	// CaptureSettle is the pause after load for late scripts and styles (250ms)
	CaptureSettle = 250 * time.Millisecond

	// BrowserShutdown bounds a graceful browser close before force-kill (5s)
	BrowserShutdown = 5 * time.Second
)

// ============================================================================
// CONTEXT/OPERATION TIMEOUTS
// ============================================================================

const (
	// ContextBuild bounds a full corpus build (30min)
	ContextBuild = 30 * time.Minute

	// ContextVerifyCase bounds the verification of one case (1min)
	ContextVerifyCase = 1 * time.Minute
)
