// Package errors provides the standardized error kinds shared by the store,
// lifecycle, catalog and worker layers, and their mapping onto job-engine errors.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrCodeConflict          ErrorCode = "CONFLICT"
	ErrCodeInvalidTransition ErrorCode = "INVALID_TRANSITION"
	ErrCodeValidation        ErrorCode = "VALIDATION_ERROR"
	ErrCodeIOFailure         ErrorCode = "IO_FAILURE"

	ErrCodeDatabase     ErrorCode = "DATABASE_ERROR"
	ErrCodeCache        ErrorCode = "CACHE_ERROR"
	ErrCodeIndex        ErrorCode = "INDEX_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeEngine                 ErrorCode = "ENGINE_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
}

// Unwrap exposes the underlying cause, if any.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// Is reports whether target is a StandardError with the same code, so that
// errors.Is(err, ErrNotFound) works regardless of message or details.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// Sentinels for errors.Is comparisons.
var (
	ErrNotFound          = &StandardError{Code: ErrCodeNotFound}
	ErrConflict          = &StandardError{Code: ErrCodeConflict}
	ErrInvalidTransition = &StandardError{Code: ErrCodeInvalidTransition}
	ErrValidation        = &StandardError{Code: ErrCodeValidation}
	ErrIOFailure         = &StandardError{Code: ErrCodeIOFailure}
	ErrDatabase          = &StandardError{Code: ErrCodeDatabase}
)

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewNotFoundError reports a missing job, application or template.
func NewNotFoundError(resource, id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotFound,
		Message:   fmt.Sprintf("%s not found", resource),
		Details:   fmt.Sprintf("%s: %s", resource, id),
		Retryable: false,
		Metadata:  map[string]interface{}{"resource": resource, "id": id},
		Timestamp: time.Now().UTC(),
	}
}

// NewConflictError reports a uniqueness violation. key names the violated
// constraint ("url", "company_title_location", "id").
func NewConflictError(resource, key string, err error) *StandardError {
	details := fmt.Sprintf("key: %s", key)
	if err != nil {
		details = fmt.Sprintf("key: %s, error: %s", key, err.Error())
	}
	return &StandardError{
		Code:      ErrCodeConflict,
		Message:   fmt.Sprintf("%s already exists", resource),
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"resource": resource, "key": key},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewInvalidTransitionError reports a lifecycle guard violation.
func NewInvalidTransitionError(from, to string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidTransition,
		Message:   "Status transition not allowed",
		Details:   fmt.Sprintf("from: %s, to: %s", from, to),
		Retryable: false,
		Metadata:  map[string]interface{}{"from": from, "to": to},
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationError reports a missing or malformed required field.
func NewValidationError(field, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidation,
		Message:   fmt.Sprintf("Validation failed for %s", field),
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"field": field},
		Timestamp: time.Now().UTC(),
	}
}

// NewIOFailureError reports a filesystem read or directory creation failure.
func NewIOFailureError(op, path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeIOFailure,
		Message:   fmt.Sprintf("Filesystem %s failed", op),
		Details:   fmt.Sprintf("path: %s, error: %v", path, err),
		Retryable: false,
		Metadata:  map[string]interface{}{"op": op, "path": path},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewDatabaseError creates a retryable database error.
func NewDatabaseError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabase,
		Message:   "Database operation failed",
		Details:   fmt.Sprintf("op: %s, error: %v", op, err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewCacheError creates a retryable cache error.
func NewCacheError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCache,
		Message:   "Cache operation failed",
		Details:   fmt.Sprintf("op: %s, error: %v", op, err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewIndexError creates a retryable search index error.
func NewIndexError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeIndex,
		Message:   "Search index operation failed",
		Details:   fmt.Sprintf("op: %s, error: %v", op, err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewInvalidInputError reports a job payload that could not be parsed or
// did not match its schema.
func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Invalid job input",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   fmt.Sprintf("Failed to send %s notification", channel),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewEngineError wraps a failed job-engine command.
func NewEngineError(op string, err error, retryable bool) *StandardError {
	return &StandardError{
		Code:      ErrCodeEngine,
		Message:   "Job engine command failed",
		Details:   fmt.Sprintf("op: %s, error: %v", op, err),
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// GetRetryCount returns the recommended retry count for an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabase,
		ErrCodeCache,
		ErrCodeNotificationSendFailed,
		ErrCodeEngine:
		return 3

	case ErrCodeIndex:
		return 2

	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// Is and As forward to the standard library so callers importing this
// package under its own name still have them.
func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target interface{}) bool { return stderrors.As(err, target) }

// AsStandard returns err as a *StandardError, wrapping unknown errors as
// non-retryable internal errors.
func AsStandard(err error) *StandardError {
	var stdErr *StandardError
	if As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// CodeOf returns the code of err, or "" when err carries no StandardError.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if As(err, &stdErr) {
		return stdErr.Code
	}
	return ""
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "TRANSITION"):
		return "LIFECYCLE"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "CONFLICT"):
		return "DATABASE"
	case strings.Contains(codeStr, "CACHE") || strings.Contains(codeStr, "INDEX"):
		return "INFRASTRUCTURE"
	case strings.Contains(codeStr, "IO_"):
		return "FILESYSTEM"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "ENGINE"):
		return "ENGINE"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	case strings.Contains(codeStr, "NOT_FOUND"):
		return "LOOKUP"
	default:
		return "OTHER"
	}
}
