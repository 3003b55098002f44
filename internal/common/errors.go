package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
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

// Failure classes for the verification pipeline. Handlers map these to
// response codes; everything else is treated as internal.
var (
	ErrModelUnavailable       = errors.New("model unavailable")
	ErrInferenceFailed        = errors.New("inference failed")
	ErrStorageDownload        = errors.New("storage download failed")
	ErrRecognitionUnreachable = errors.New("recognition service unreachable")
	ErrRecognitionFailed      = errors.New("recognition service error")
	ErrConfiguration          = errors.New("configuration error")
	ErrNotFound               = errors.New("resource not found")
	ErrInvalidInput           = errors.New("invalid input")
)

func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
