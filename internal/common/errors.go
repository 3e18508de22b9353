package common

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
)

// Code classifies a pipeline failure. Every stage surfaces exactly one of
// these to its caller; no stage retries internally.
type Code string

const (
	CodeNotFound        Code = "NOT_FOUND"
	CodeCorruptDocument Code = "CORRUPT_DOCUMENT"
	CodeTransport       Code = "TRANSPORT"
	CodeUpstream        Code = "UPSTREAM"
	CodeMalformedOutput Code = "MALFORMED_OUTPUT"
	CodeSchemaMismatch  Code = "SCHEMA_MISMATCH"
	CodeInvalidInput    Code = "INVALID_INPUT"
)

// AppError represents application-specific errors.
type AppError struct {
	Code    Code
	Message string
	Cause   error

	// Raw holds the model's response text when the failure concerns it
	// (MALFORMED_OUTPUT, SCHEMA_MISMATCH), so callers can diagnose.
	Raw string

	// Status is the HTTP status for UPSTREAM failures, zero otherwise.
	Status int
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError builds an AppError with an arbitrary code.
func NewAppError(code Code, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, Cause: cause}
}

// Error constructors, one per taxonomy entry.

func NotFoundError(path string) *AppError {
	return &AppError{Code: CodeNotFound, Message: fmt.Sprintf("input file not found: %s", path)}
}

func CorruptDocumentError(path string, cause error) *AppError {
	return &AppError{Code: CodeCorruptDocument, Message: fmt.Sprintf("cannot parse document: %s", path), Cause: cause}
}

func TransportError(message string, cause error) *AppError {
	return &AppError{Code: CodeTransport, Message: message, Cause: cause}
}

func UpstreamError(status int, body string) *AppError {
	return &AppError{
		Code:    CodeUpstream,
		Message: fmt.Sprintf("endpoint returned status %d", status),
		Status:  status,
		Raw:     body,
	}
}

func MalformedOutputError(raw string, cause error) *AppError {
	return &AppError{Code: CodeMalformedOutput, Message: "model response is not recoverable as JSON", Cause: cause, Raw: raw}
}

func SchemaMismatchError(message, raw string, cause error) *AppError {
	return &AppError{Code: CodeSchemaMismatch, Message: message, Cause: cause, Raw: raw}
}

func InvalidInputError(message string) *AppError {
	return &AppError{Code: CodeInvalidInput, Message: message}
}

// CodeOf returns the failure code carried by err, or "" when err carries none.
func CodeOf(err error) Code {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

// IsCode reports whether err carries the given failure code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// IsTimeout reports whether err was ultimately caused by a deadline or
// network timeout. Used to classify TRANSPORT failures.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
