// Package output provides structured output and error handling for the longrun CLI.
package output

import "errors"

// Exit codes:
// 0 = Success
// 1 = User error (bad args, unknown feature or id)
// 2 = System error (template missing, write failed, git missing)
// 3 = Conflict (harness already initialized)
// 4 = Partial (artifacts written, version control step failed)
const (
	ExitSuccess     = 0
	ExitUserError   = 1
	ExitSystemError = 2
	ExitConflict    = 3
	ExitPartial     = 4
)

// Error kinds shared across packages. JSON error output reports them in
// the "kind" field.
const (
	KindInvalidInput       = "InvalidInput"
	KindNotFound           = "NotFound"
	KindTemplateMissing    = "TemplateMissing"
	KindWriteFailure       = "WriteFailure"
	KindAlreadyInitialized = "AlreadyInitialized"
	KindVcsUnavailable     = "VcsUnavailable"
	KindVcsFailure         = "VcsFailure"
)

// ExitError is an error that carries an exit code for the CLI.
// Kind is an optional stable identifier (e.g. "AlreadyInitialized") that
// callers and JSON consumers can switch on without parsing Message.
type ExitError struct {
	Code    int
	Kind    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/errors.As support.
func (e *ExitError) Unwrap() error {
	return e.Cause
}

// NewUserError creates an error for user-caused issues (exit code 1).
func NewUserError(message string) *ExitError {
	return &ExitError{
		Code:    ExitUserError,
		Message: message,
	}
}

// NewSystemError creates an error for system failures (exit code 2).
func NewSystemError(message string) *ExitError {
	return &ExitError{
		Code:    ExitSystemError,
		Message: message,
	}
}

// NewSystemErrorWithCause creates a system error wrapping an underlying cause.
func NewSystemErrorWithCause(message string, cause error) *ExitError {
	return &ExitError{
		Code:    ExitSystemError,
		Message: message,
		Cause:   cause,
	}
}

// NewConflictError creates an error for conflict situations (exit code 3).
func NewConflictError(message string) *ExitError {
	return &ExitError{
		Code:    ExitConflict,
		Message: message,
	}
}

// NewKindError creates an error with an explicit code and kind.
func NewKindError(code int, kind, message string, cause error) *ExitError {
	return &ExitError{
		Code:    code,
		Kind:    kind,
		Message: message,
		Cause:   cause,
	}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitSuccess for nil, ExitUserError for non-ExitError errors.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	return ExitUserError
}

// GetKind returns the kind of the outermost ExitError in err's chain, or "".
func GetKind(err error) string {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Kind
	}
	return ""
}
