package defaults

// Exit codes for the CLI.
const (
	ExitSuccess       = 0 // Clean exit, every case verified
	ExitMismatch      = 1 // At least one case did not produce the expected verdict
	ExitUserError     = 2 // Invalid arguments or configuration
	ExitBuildAborted  = 3 // Fixture build aborted
	ExitInternalError = 4 // Unexpected internal error
)
