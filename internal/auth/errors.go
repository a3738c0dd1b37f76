package auth

import (
	"errors"
	"fmt"
)

// Provider error codes. They are returned to API clients verbatim.
const (
	CodeInvalidArgument   = "auth/argument-error"
	CodeInvalidEmail      = "auth/invalid-email"
	CodeMissingPassword   = "auth/missing-password"
	CodeWeakPassword      = "auth/weak-password"
	CodeEmailInUse        = "auth/email-already-in-use"
	CodeInvalidCredential = "auth/invalid-credential"
	CodeUserNotFound      = "auth/user-not-found"
	CodeInvalidActionCode = "auth/invalid-action-code"
	CodeInvalidIDToken    = "auth/invalid-id-token"
	CodeInternal          = "auth/internal-error"
)

// Error is a failure reported by the auth provider, identified by a stable code.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// InvalidArgument reports a request the provider could not even read.
func InvalidArgument(err error) *Error {
	return &Error{Code: CodeInvalidArgument, Message: "The request body is malformed.", Err: err}
}

func internalError(err error) *Error {
	return &Error{Code: CodeInternal, Message: "An internal error has occurred.", Err: err}
}

// AsError extracts the provider error from err. Errors that did not originate
// in the provider are reported as internal errors.
func AsError(err error) *Error {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr
	}

	return internalError(err)
}
