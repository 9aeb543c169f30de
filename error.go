package archlens

import (
	"errors"
	"fmt"
)

// Error codes for machine-readable error classification.
const (
	EINVALID  = "invalid"
	ENOTFOUND = "not_found"
	ENETWORK  = "network"
	ETIMEOUT  = "timeout"
	ESERVER   = "server"
	EINTERNAL = "internal"
)

// Error represents an application-specific error. Errors carry a machine
// readable code and a human-readable message.
type Error struct {
	// Code classifies the error for programmatic handling.
	Code string

	// Message is a human-readable description safe to show to users.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("archlens error: code=%s message=%s", e.Code, e.Message)
}

// Errorf constructs an Error with the given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorCode extracts the code from an error, unwrapping as needed.
// Returns EINTERNAL for non-application errors and an empty string for nil.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage extracts the message from an error, unwrapping as needed.
// Returns a generic message for non-application errors and an empty string
// for nil.
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}
