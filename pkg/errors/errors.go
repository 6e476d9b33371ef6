package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Cache errors
	ErrCacheCorrupt ErrorCode = "CACHE_CORRUPT"
	ErrCacheWrite   ErrorCode = "CACHE_WRITE"

	// Resolution errors
	ErrNoMapping     ErrorCode = "NO_MAPPING"
	ErrNoBuildRoot   ErrorCode = "NO_BUILD_ROOT"
	ErrInvalidChoice ErrorCode = "INVALID_CHOICE"

	// FileSystem errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileAccess   ErrorCode = "FILE_ACCESS"
)

// DevelDirsError represents a structured error with code and details
type DevelDirsError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *DevelDirsError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *DevelDirsError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *DevelDirsError) Is(target error) bool {
	var targetErr *DevelDirsError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new DevelDirsError with the given code and message
func New(code ErrorCode, message string) *DevelDirsError {
	return &DevelDirsError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new DevelDirsError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *DevelDirsError {
	return &DevelDirsError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a DevelDirsError
func Wrap(err error, code ErrorCode, message string) *DevelDirsError {
	if err == nil {
		return nil
	}
	return &DevelDirsError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *DevelDirsError {
	if err == nil {
		return nil
	}
	return &DevelDirsError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *DevelDirsError) WithDetail(key string, value interface{}) *DevelDirsError {
	e.Details[key] = value
	return e
}

// GetCode extracts the error code from an error, if it is a DevelDirsError
func GetCode(err error) ErrorCode {
	var ddErr *DevelDirsError
	if errors.As(err, &ddErr) {
		return ddErr.Code
	}
	return ErrUnknown
}

// IsCode reports whether err carries the given error code
func IsCode(err error, code ErrorCode) bool {
	var ddErr *DevelDirsError
	if errors.As(err, &ddErr) {
		return ddErr.Code == code
	}
	return false
}
