package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain-level errors used by the service layer. Services wrap these so that
// controllers and maintenance commands can classify a failure with errors.Is.
var (
	ErrNotFound         = errors.New("not_found")
	ErrValidation       = errors.New("validation_error")
	ErrPermissionDenied = errors.New("permission_denied")
	ErrStore            = errors.New("store_error")

	// For concurrency conflicts
	ErrRowVersionConflict = errors.New("row_version_conflict")

	ErrExternalServiceFailure = errors.New("external_service_failure")
)

// AppError for structured error handling from services to controllers.
type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// NotFoundError reports a referenced entity that does not exist.
func NotFoundError(entity, id string) *AppError {
	return &AppError{
		StatusCode: http.StatusNotFound,
		Code:       ErrCodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		Err:        fmt.Errorf("%w: %s %q", ErrNotFound, entity, id),
	}
}

// ValidationError rejects malformed or out-of-range input before any write.
func ValidationError(format string, args ...any) *AppError {
	msg := fmt.Sprintf(format, args...)
	return &AppError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrCodeValidation,
		Message:    msg,
		Err:        fmt.Errorf("%w: %s", ErrValidation, msg),
	}
}

// PermissionError is surfaced distinctly so clients can show an actionable message.
func PermissionError(scope string) *AppError {
	return &AppError{
		StatusCode: http.StatusForbidden,
		Code:       ErrCodeForbidden,
		Message:    "Missing permission " + scope,
		Err:        fmt.Errorf("%w: %s", ErrPermissionDenied, scope),
	}
}

// StoreError wraps a document store failure with the record and operation.
func StoreError(op, id string, err error) *AppError {
	return &AppError{
		StatusCode: http.StatusInternalServerError,
		Code:       ErrCodeInternal,
		Message:    "Document store failure",
		Err:        fmt.Errorf("%w: %s %s: %v", ErrStore, op, id, err),
	}
}

// HandleAppError centralizes responding to AppErrors.
func HandleAppError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		RespondErrorWithCode(w, appErr.StatusCode, appErr.Code, appErr.Message, nil, appErr.Err)
	} else {
		// Fallback for unexpected error types
		RespondErrorWithCode(w, http.StatusInternalServerError, ErrCodeInternal, "An unexpected error occurred", nil, err)
	}
}
