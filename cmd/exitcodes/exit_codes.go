package exitcodes

const (
	// ================================
	// Platform-universal exit codes
	// ================================

	// ExitCodeSuccess indicates no errors or failures had occurred.
	ExitCodeSuccess = 0

	// ExitCodeGeneralError indicates some type of general error occurred.
	ExitCodeGeneralError = 1

	// ================================
	// Application-specific exit codes
	// ================================
	// Note: Despite not being standardized, exit codes 2-5 are often used for common use cases, so we avoid them.

	// ExitCodeServerError indicates that the simulation server failed to start or terminated abnormally. Note that an
	// error with code ExitCodeGeneralError and ExitCodeServerError are mutually exclusive errors.
	ExitCodeServerError = 6

	// ExitCodeNodeError indicates the supervised chain node process could not be launched, most often because the
	// node binary was not found on the host.
	ExitCodeNodeError = 7
)
