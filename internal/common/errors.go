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

// Common application errors
var (
	// ErrUnsupportedFileType is fatal and user-facing: the upload is neither
	// a PDF nor an image by MIME type or extension.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrExtractionFailed marks a hard failure of the text-layer extractor.
	// It is fatal for the document's extraction step only.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrBackendUnavailable marks a missing extraction backend (e.g. the
	// rasterizer binary is not installed). Non-fatal; callers degrade.
	ErrBackendUnavailable = errors.New("extraction backend unavailable")

	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
)

// Error constructors
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
