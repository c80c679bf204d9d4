package harness

import "github.com/gorewood/longrun/internal/output"

// Error kinds reported by harness operations.
const (
	KindInvalidInput       = output.KindInvalidInput
	KindNotFound           = output.KindNotFound
	KindTemplateMissing    = output.KindTemplateMissing
	KindWriteFailure       = output.KindWriteFailure
	KindAlreadyInitialized = output.KindAlreadyInitialized
	KindVcsUnavailable     = output.KindVcsUnavailable
	KindVcsFailure         = output.KindVcsFailure
)

// KindOf returns the error kind carried by err, or "" when it has none.
func KindOf(err error) string {
	return output.GetKind(err)
}

func errInvalidInput(message string) error {
	return output.NewKindError(output.ExitUserError, KindInvalidInput, message, nil)
}

func errNotFound(message string, cause error) error {
	return output.NewKindError(output.ExitUserError, KindNotFound, message, cause)
}

func errTemplateMissing(message string, cause error) error {
	return output.NewKindError(output.ExitSystemError, KindTemplateMissing, message, cause)
}

func errWriteFailure(message string, cause error) error {
	return output.NewKindError(output.ExitSystemError, KindWriteFailure, message, cause)
}

func errAlreadyInitialized(message string) error {
	return output.NewKindError(output.ExitConflict, KindAlreadyInitialized, message, nil)
}

func errVcsUnavailable(cause error) error {
	return output.NewKindError(output.ExitSystemError, KindVcsUnavailable,
		"version control unavailable: git is not installed or not in PATH", cause)
}

func errVcsFailure(message string, cause error) error {
	return output.NewKindError(output.ExitPartial, KindVcsFailure, message, cause)
}
