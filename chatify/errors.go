package chatify

import (
	"errors"
	"fmt"
)

// ErrorCode represents a categorized error type.
type ErrorCode int

const (
	// Protocol errors (from server error frames)
	ErrorUnknown ErrorCode = iota
	ErrorUnauthorized
	ErrorBadRequest
	ErrorRoomNotFound
	ErrorAccessDenied
	ErrorInternalServer

	// Client-side errors
	ErrorAlreadyConnected
	ErrorAuthentication
	ErrorTransport
	ErrorNotConnected
	ErrorInvalidArgument
	ErrorInvalidConfig
	ErrorMalformedEvent
	ErrorSerialization
)

// String returns the string representation of an ErrorCode.
func (e ErrorCode) String() string {
	switch e {
	case ErrorUnknown:
		return "unknown"
	case ErrorUnauthorized:
		return "unauthorized"
	case ErrorBadRequest:
		return "bad_request"
	case ErrorRoomNotFound:
		return "room_not_found"
	case ErrorAccessDenied:
		return "access_denied"
	case ErrorInternalServer:
		return "internal_error"
	case ErrorAlreadyConnected:
		return "already_connected"
	case ErrorAuthentication:
		return "authentication_error"
	case ErrorTransport:
		return "transport_error"
	case ErrorNotConnected:
		return "not_connected"
	case ErrorInvalidArgument:
		return "invalid_argument"
	case ErrorInvalidConfig:
		return "invalid_config"
	case ErrorMalformedEvent:
		return "malformed_event"
	case ErrorSerialization:
		return "serialization_error"
	default:
		return fmt.Sprintf("unknown_code_%d", e)
	}
}

// ParseErrorCode converts a protocol error code string to ErrorCode.
func ParseErrorCode(code string) ErrorCode {
	switch code {
	case "unauthorized":
		return ErrorUnauthorized
	case "bad_request":
		return ErrorBadRequest
	case "room_not_found":
		return ErrorRoomNotFound
	case "access_denied":
		return ErrorAccessDenied
	case "internal_error":
		return ErrorInternalServer
	default:
		return ErrorUnknown
	}
}

// ChatifyError is a structured error with code and context.
type ChatifyError struct {
	Code    ErrorCode
	Message string
	Wrapped error
}

// Error implements the error interface.
func (e *ChatifyError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %s (wrapped: %v)", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error for errors.Unwrap support.
func (e *ChatifyError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is support by comparing codes.
func (e *ChatifyError) Is(target error) bool {
	t, ok := target.(*ChatifyError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewError creates a new ChatifyError with the given code and message.
func NewError(code ErrorCode, message string) *ChatifyError {
	return &ChatifyError{
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an existing error with a ChatifyError.
func WrapError(code ErrorCode, message string, err error) *ChatifyError {
	return &ChatifyError{
		Code:    code,
		Message: message,
		Wrapped: err,
	}
}

// FromProtocolError converts a protocol Error frame to ChatifyError.
func FromProtocolError(e *Error) *ChatifyError {
	if e == nil {
		return nil
	}
	return &ChatifyError{
		Code:    ParseErrorCode(e.Code),
		Message: e.Msg,
	}
}

func errorCode(err error) (ErrorCode, bool) {
	var ce *ChatifyError
	if !errors.As(err, &ce) {
		return ErrorUnknown, false
	}
	return ce.Code, true
}

// IsAuthenticationError reports whether err means the credential was
// rejected or has expired. Such failures are fatal to the session and
// are never retried.
func IsAuthenticationError(err error) bool {
	code, ok := errorCode(err)
	return ok && (code == ErrorAuthentication || code == ErrorUnauthorized)
}

// IsTransportError reports whether err is a network-level failure that
// the client retries with backoff.
func IsTransportError(err error) bool {
	code, ok := errorCode(err)
	return ok && code == ErrorTransport
}

// IsNotConnected reports whether err is a command precondition failure
// caused by the connection not being up.
func IsNotConnected(err error) bool {
	code, ok := errorCode(err)
	return ok && code == ErrorNotConnected
}

// IsInvalidArgument reports whether err is a caller precondition
// violation such as empty message content.
func IsInvalidArgument(err error) bool {
	code, ok := errorCode(err)
	return ok && code == ErrorInvalidArgument
}
