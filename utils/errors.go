package utils

import (
	"errors"
	"fmt"
)

// ErrorKind discriminates where a failure originated so the HTTP boundary
// can map it to a response without inspecting error strings.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindParticipantNotFound
	KindNotFound
	KindStorageUnavailable
	KindServiceNotConfigured
	KindUpstreamError
	KindUpstreamUnavailable
	KindMalformedUpstreamResponse
)

// String returns the string representation of the error kind
func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindParticipantNotFound:
		return "participant_not_found"
	case KindNotFound:
		return "not_found"
	case KindStorageUnavailable:
		return "storage_unavailable"
	case KindServiceNotConfigured:
		return "service_not_configured"
	case KindUpstreamError:
		return "upstream_error"
	case KindUpstreamUnavailable:
		return "upstream_unavailable"
	case KindMalformedUpstreamResponse:
		return "malformed_upstream_response"
	default:
		return "internal"
	}
}

// AppError represents a custom application error with context
type AppError struct {
	Kind    ErrorKind              // Failure classification
	Code    int                    // HTTP status code
	Message string                 // User-friendly message
	Err     error                  // Underlying error
	Context map[string]interface{} // Additional context
}

// NewAppError creates a new AppError
func NewAppError(kind ErrorKind, code int, message string, err error) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    code,
		Message: message,
		Err:     err,
		Context: make(map[string]interface{}),
	}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the underlying error for errors.Is/As chains
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	e.Context[key] = value
	return e
}

// Classify extracts the kind from any error; plain errors count as internal.
func Classify(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Common error constructors

func ValidationError(message string, err error) *AppError {
	return NewAppError(KindValidation, 400, message, err)
}

func ParticipantNotFoundError(message string, err error) *AppError {
	return NewAppError(KindParticipantNotFound, 404, message, err)
}

func NotFoundError(message string, err error) *AppError {
	return NewAppError(KindNotFound, 404, message, err)
}

func UnauthorizedError(message string, err error) *AppError {
	return NewAppError(KindInternal, 401, message, err)
}

func StorageUnavailableError(message string, err error) *AppError {
	return NewAppError(KindStorageUnavailable, 502, message, err)
}

func ServiceNotConfiguredError(message string) *AppError {
	return NewAppError(KindServiceNotConfigured, 500, message, nil)
}

// UpstreamErrorResponse keeps the upstream's own payload so the boundary can
// forward it. The status is mirrored when it is a sensible HTTP error code,
// otherwise the boundary falls back to 503.
func UpstreamErrorResponse(status int, message string, payload map[string]interface{}) *AppError {
	code := 503
	if status >= 400 && status < 600 {
		code = status
	}
	e := NewAppError(KindUpstreamError, code, message, nil)
	if payload != nil {
		e.Context["ai_service_error"] = payload
	}
	return e
}

func UpstreamUnavailableError(message string, err error) *AppError {
	return NewAppError(KindUpstreamUnavailable, 503, message, err)
}

func MalformedUpstreamResponseError(message string, err error) *AppError {
	return NewAppError(KindMalformedUpstreamResponse, 502, message, err)
}

func InternalServerError(message string, err error) *AppError {
	return NewAppError(KindInternal, 500, message, err)
}
