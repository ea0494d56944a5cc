package cmd

import "errors"

// Exit codes for thinhttp CLI
const (
	// ExitSuccess indicates the request succeeded and every check passed
	ExitSuccess = 0

	// ExitHTTPError indicates the server answered with a non-2xx status
	ExitHTTPError = 1

	// ExitCheckFailure indicates a --expect, --schema or --query check failed
	ExitCheckFailure = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitNetworkError indicates a network/connection error
	ExitNetworkError = 4

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

// exitError carries the process exit code out of a command. A nil err means
// the failure has already been reported to the user.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return ""
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func withExitCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

func exitCodeFor(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitUsageError
}
