package cmd

import "fmt"

// Exit codes for persephone CLI
const (
	// ExitSuccess indicates the call resolved
	ExitSuccess = 0

	// ExitRejected indicates the call settled on a failure status, or a
	// bench run missed its thresholds
	ExitRejected = 1

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitTransportError indicates a network, timeout or abort fault
	ExitTransportError = 4

	// ExitSchemaMismatch indicates the body failed JSON Schema validation
	ExitSchemaMismatch = 5

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

// ExitError carries an exit code out of a command. A nil Err means the
// outcome was already reported.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func exitError(code int, err error) *ExitError {
	return &ExitError{Code: code, Err: err}
}
