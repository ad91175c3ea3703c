package models

import (
	"errors"
	"fmt"
)

// Error codes used in API responses and internal error handling.
const (
	// ErrCodeValidation rejects a request before any processing begins.
	ErrCodeValidation = "VALIDATION_ERROR"
	// ErrCodeFetch covers transport failures, timeouts and non-2xx responses.
	ErrCodeFetch = "FETCH_FAILED"
	// ErrCodeParse covers HTML bodies that cannot be parsed at all.
	ErrCodeParse = "PARSE_FAILED"

	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error *ErrorDetail `json:"error"`
}

// AnalyzeError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type AnalyzeError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *AnalyzeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AnalyzeError) Unwrap() error {
	return e.Err
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *AnalyzeError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Error()}
}

// NewAnalyzeError creates a new AnalyzeError.
func NewAnalyzeError(code, message string, err error) *AnalyzeError {
	return &AnalyzeError{Code: code, Message: message, Err: err}
}

// NewValidationError reports missing or invalid request input.
func NewValidationError(message string) *AnalyzeError {
	return NewAnalyzeError(ErrCodeValidation, message, nil)
}

// NewFetchError reports a failed page fetch for one URL.
func NewFetchError(message string, err error) *AnalyzeError {
	return NewAnalyzeError(ErrCodeFetch, message, err)
}

// NewParseError reports an HTML body that could not be parsed.
func NewParseError(message string, err error) *AnalyzeError {
	return NewAnalyzeError(ErrCodeParse, message, err)
}

// ErrorCode returns the code of the first AnalyzeError in err's chain,
// or ErrCodeInternal when there is none.
func ErrorCode(err error) string {
	var ae *AnalyzeError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ErrCodeInternal
}

// IsValidationError reports whether err rejects the whole request.
func IsValidationError(err error) bool {
	return err != nil && ErrorCode(err) == ErrCodeValidation
}

// AsDetail converts any error into an ErrorDetail, defaulting to ErrCodeInternal.
func AsDetail(err error) *ErrorDetail {
	var ae *AnalyzeError
	if errors.As(err, &ae) {
		return ae.ToDetail()
	}
	return &ErrorDetail{Code: ErrCodeInternal, Message: err.Error()}
}
