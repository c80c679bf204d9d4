package output

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitCodeConstants(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		expected int
	}{
		{"ExitSuccess", ExitSuccess, 0},
		{"ExitUserError", ExitUserError, 1},
		{"ExitSystemError", ExitSystemError, 2},
		{"ExitConflict", ExitConflict, 3},
		{"ExitPartial", ExitPartial, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.code != tt.expected {
				t.Errorf("%s = %d, want %d", tt.name, tt.code, tt.expected)
			}
		})
	}
}

func TestExitError(t *testing.T) {
	tests := []struct {
		name        string
		err         *ExitError
		wantCode    int
		wantMessage string
	}{
		{
			name:        "user error",
			err:         NewUserError("feature name is required"),
			wantCode:    ExitUserError,
			wantMessage: "feature name is required",
		},
		{
			name:        "system error",
			err:         NewSystemError("git not found"),
			wantCode:    ExitSystemError,
			wantMessage: "git not found",
		},
		{
			name:        "conflict error",
			err:         NewConflictError("harness already initialized"),
			wantCode:    ExitConflict,
			wantMessage: "harness already initialized",
		},
		{
			name:        "kind error",
			err:         NewKindError(ExitPartial, "VcsFailure", "commit failed", nil),
			wantCode:    ExitPartial,
			wantMessage: "commit failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %d, want %d", tt.err.Code, tt.wantCode)
			}
			if tt.err.Error() != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", tt.err.Error(), tt.wantMessage)
			}
		})
	}
}

func TestExitErrorWrapping(t *testing.T) {
	underlying := errors.New("permission denied")
	err := NewSystemErrorWithCause("write progress.txt", underlying)

	if !errors.Is(err, underlying) {
		t.Error("errors.Is should find underlying error")
	}
	if err.Error() != "write progress.txt" {
		t.Errorf("Error() = %q, want %q", err.Error(), "write progress.txt")
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: ExitSuccess},
		{name: "user", err: NewUserError("bad input"), expected: ExitUserError},
		{name: "system", err: NewSystemError("git failed"), expected: ExitSystemError},
		{name: "conflict", err: NewConflictError("exists"), expected: ExitConflict},
		{name: "partial", err: NewKindError(ExitPartial, "VcsFailure", "x", nil), expected: ExitPartial},
		{name: "wrapped", err: fmt.Errorf("init: %w", NewConflictError("exists")), expected: ExitConflict},
		{name: "regular error defaults to user error", err: errors.New("some error"), expected: ExitUserError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetExitCode(tt.err); got != tt.expected {
				t.Errorf("GetExitCode() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestGetKind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewKindError(ExitConflict, "AlreadyInitialized", "exists", nil))
	if got := GetKind(err); got != "AlreadyInitialized" {
		t.Errorf("GetKind() = %q, want AlreadyInitialized", got)
	}
	if got := GetKind(errors.New("plain")); got != "" {
		t.Errorf("GetKind(plain) = %q, want empty", got)
	}
}
