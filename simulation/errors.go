package simulation

import (
	"errors"
	"fmt"
)

// ConfigurationError indicates the service is misconfigured (e.g. no signing credential, tool missing). It is
// always fatal to the request and never retried; every request fails consistently until the configuration is
// fixed.
type ConfigurationError struct {
	// Message describes the configuration problem.
	Message string
}

// Error returns the error message string, implementing the `error` interface.
func (e *ConfigurationError) Error() string {
	return e.Message
}

// NewConfigurationError creates a ConfigurationError with the given message.
func NewConfigurationError(message string) *ConfigurationError {
	return &ConfigurationError{Message: message}
}

// ValidationError indicates the request payload was missing or malformed. No side effect occurs for a request
// which fails validation.
type ValidationError struct {
	// Message describes the validation problem.
	Message string

	// Index describes the position of the offending transaction within the request's transaction list, or -1 when
	// the problem is not attributable to a specific transaction.
	Index int
}

// Error returns the error message string, implementing the `error` interface.
func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError not attributable to a specific transaction index.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message, Index: -1}
}

// NewTransactionValidationError creates a ValidationError naming the index of the malformed transaction.
func NewTransactionValidationError(index int, err error) *ValidationError {
	return &ValidationError{
		Message: fmt.Sprintf("Invalid format for transaction at index %d: %s", index, err.Error()),
		Index:   index,
	}
}

// DeploymentError indicates the one allowed deployment command failed. The whole request is aborted; node state
// may have changed if the failure occurred post-broadcast.
type DeploymentError struct {
	// Details describes the raw diagnostic text captured from the failed deployment.
	Details string
}

// Error returns the error message string, implementing the `error` interface.
func (e *DeploymentError) Error() string {
	return "Contract deployment failed."
}

// NewDeploymentError creates a DeploymentError carrying the given diagnostic text.
func NewDeploymentError(details string) *DeploymentError {
	return &DeploymentError{Details: details}
}

// AsConfigurationError unwraps the given error into a *ConfigurationError, returning the typed error and a boolean
// indicating whether the conversion succeeded.
func AsConfigurationError(err error) (*ConfigurationError, bool) {
	var typedErr *ConfigurationError
	ok := errors.As(err, &typedErr)
	return typedErr, ok
}

// AsValidationError unwraps the given error into a *ValidationError, returning the typed error and a boolean
// indicating whether the conversion succeeded.
func AsValidationError(err error) (*ValidationError, bool) {
	var typedErr *ValidationError
	ok := errors.As(err, &typedErr)
	return typedErr, ok
}

// AsDeploymentError unwraps the given error into a *DeploymentError, returning the typed error and a boolean
// indicating whether the conversion succeeded.
func AsDeploymentError(err error) (*DeploymentError, bool) {
	var typedErr *DeploymentError
	ok := errors.As(err, &typedErr)
	return typedErr, ok
}
