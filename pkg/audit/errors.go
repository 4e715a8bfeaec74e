package audit

import "errors"

// Sentinel errors for the audit capability.
var (
	ErrUnknownVerdict = errors.New("audit: unknown verdict")
	ErrInvalidRule    = errors.New("audit: rule has no id")
	ErrDuplicateRule  = errors.New("audit: rule already registered")
	ErrRuleFailed     = errors.New("audit: rule evaluation failed")
)
