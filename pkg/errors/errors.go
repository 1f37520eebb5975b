// Package errors defines the failure taxonomy shared by the gate, the PII
// vault and the analyzer. Every failure that leaves a package is an AppError
// so the HTTP layer can decide between a user-facing message and the generic
// opaque error without inspecting strings.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode identifies a failure category.
type ErrorCode string

func (c ErrorCode) String() string { return string(c) }

const (
	CodeOK                ErrorCode = "OK"
	CodeInvalidInput      ErrorCode = "INPUT_INVALID"
	CodeInputTooShort     ErrorCode = "INPUT_TOO_SHORT"
	CodeModelProtocol     ErrorCode = "MODEL_PROTOCOL"
	CodeModelUnavailable  ErrorCode = "MODEL_UNAVAILABLE"
	CodeSchemaViolation   ErrorCode = "SCHEMA_VIOLATION"
	CodeSecurityViolation ErrorCode = "SECURITY_VIOLATION"
	CodeInternal          ErrorCode = "INTERNAL"
	CodeUnknown           ErrorCode = "UNKNOWN"
)

// AppError carries a code, a message and an optional cause.
type AppError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error formats as "[CODE] message: cause".
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// New constructs an AppError without a cause.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Newf is New with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches err as the cause. It returns nil when err is nil. When code
// is CodeUnknown and err already carries an AppError, the original code is
// kept.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	if code == CodeUnknown {
		var ae *AppError
		if errors.As(err, &ae) {
			code = ae.Code
		}
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// IsCode reports whether any AppError in err's chain has the given code.
func IsCode(err error, code ErrorCode) bool {
	for err != nil {
		var ae *AppError
		if !errors.As(err, &ae) {
			return false
		}
		if ae.Code == code {
			return true
		}
		err = ae.Cause
	}
	return false
}

// GetCode returns the code of the outermost AppError in err's chain.
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeOK
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}

// Retryable reports whether the analyzer may spend its one extra attempt on err.
// Only malformed model output qualifies; schema and security violations are
// terminal.
func Retryable(err error) bool {
	return GetCode(err) == CodeModelProtocol
}

// HTTPStatus maps a code onto the status returned to API callers.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case CodeOK:
		return http.StatusOK
	case CodeInvalidInput, CodeInputTooShort:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
