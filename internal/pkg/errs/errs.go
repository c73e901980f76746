/*
Package errs provides custom error types and application-level error code constants.

This file defines the CustomError struct, which implements the standard Go
error interface and carries a numeric code, an error kind for coarse
classification, and a human-readable message for unified error reporting.
*/
package errs

import (
	"fmt"
	"strings"

	"tabchat/internal/pkg/logx"
)

// Kind classifies an error into one of the broad failure categories of the
// client: connection failures, bad wire data, rejected user actions, and
// everything else.
type Kind string

const (
	// KindTransport covers connection establishment and socket I/O failures.
	// These are terminal for the current connection attempt.
	KindTransport Kind = "transport"

	// KindProtocol covers malformed or unrecognized inbound frames. The
	// offending frame is dropped; the connection stays open.
	KindProtocol Kind = "protocol"

	// KindPrecondition covers user actions attempted before their
	// prerequisites hold (identity not set, not connected, empty input).
	// The action is dropped, never queued.
	KindPrecondition Kind = "precondition"

	// KindInternal covers unclassified internal failures.
	KindInternal Kind = "internal"
)

// CustomError is the custom error structure used throughout the application.
// It wraps the Go error interface, adding a numeric code and a Kind.
type CustomError struct {
	// Code is the application error code (see constants definition).
	Code int

	// Kind is the coarse classification of the error.
	Kind Kind

	// Message is the human-readable error description.
	Message string
}

// Error implements the standard Go error interface. It returns a formatted
// error string containing the error code, kind, and message.
func (e CustomError) Error() string {
	return fmt.Sprintf("Error Code %d (%s): %s", e.Code, e.Kind, e.Message)
}

// NewError constructs and returns a new *CustomError instance based on a
// predefined error code. The optional details parameter allows printf-style
// formatting arguments for the error message. If an unknown code is
// provided, it defaults to returning ErrUnknown.
func NewError(code int, details ...any) *CustomError {
	templateErr, ok := errorMap[code]

	if !ok {
		logx.Error(
			fmt.Errorf("attempted to create an error with an unknown code in errorMap"),
			"Unknown error code requested",
			"requested_code", code,
		)

		unknownErr := errorMap[ErrUnknown]
		return &CustomError{
			Code:    unknownErr.Code,
			Kind:    unknownErr.Kind,
			Message: unknownErr.Message,
		}
	}

	customErr := templateErr

	if code == ErrUnknown && len(details) > 0 {
		if originalErr, ok := details[0].(error); ok {
			customErr.Message = fmt.Sprintf("%s (%v)", customErr.Message, originalErr)
		}
	} else if len(details) > 0 {
		if strings.Contains(customErr.Message, "%") {
			customErr.Message = fmt.Sprintf(customErr.Message, details...)
		} else {
			logx.Warn(
				"Details provided for error, but message template has no formatting placeholders. Details ignored.",
			)
		}
	}

	return &customErr
}

// IsKind reports whether err is a *CustomError of the given kind.
func IsKind(err error, kind Kind) bool {
	customErr, ok := err.(*CustomError)
	return ok && customErr.Kind == kind
}
