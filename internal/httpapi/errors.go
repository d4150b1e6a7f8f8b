package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nguyentantai21042004/study-flow/internal/export"
	"github.com/nguyentantai21042004/study-flow/internal/media"
	"github.com/nguyentantai21042004/study-flow/internal/session"
)

// ErrorCode is a machine-readable error code.
type ErrorCode string

const (
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrCodeFileTooLarge  ErrorCode = "FILE_TOO_LARGE"
	ErrCodeUnsupported   ErrorCode = "UNSUPPORTED_MEDIA"
	ErrCodeNotReady      ErrorCode = "NOT_READY"
	ErrCodeInternal      ErrorCode = "INTERNAL_ERROR"
	ErrCodeDatabaseError ErrorCode = "DATABASE_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeNotReady:      true,
	ErrCodeDatabaseError: true,
}

// AppError is the error shape every handler responds with.
type AppError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Retryable  bool           `json:"retryable"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Cause      error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// ErrorResponse is the JSON body of an error response.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code      ErrorCode      `json:"code"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details,omitempty"`
}

func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{
		Error: ErrorBody{
			Code:      e.Code,
			Message:   e.Message,
			Retryable: e.Retryable,
			Details:   e.Details,
		},
	}
}

func newAppError(code ErrorCode, message string, status int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
		Retryable:  retryableCodes[code],
	}
}

func NotFound(resource, id string) *AppError {
	return newAppError(ErrCodeNotFound, fmt.Sprintf("The requested %s was not found.", resource), http.StatusNotFound).
		WithDetail("resource", resource).
		WithDetail("id", id)
}

func InvalidInput(field, reason string) *AppError {
	e := newAppError(ErrCodeInvalidInput, fmt.Sprintf("Invalid input: %s", reason), http.StatusBadRequest)
	if field != "" {
		e.WithDetail("field", field)
	}
	return e
}

func FileTooLarge(limitMB int64) *AppError {
	return newAppError(ErrCodeFileTooLarge, fmt.Sprintf("File exceeds the %d MB upload limit.", limitMB), http.StatusRequestEntityTooLarge).
		WithDetail("limit_mb", limitMB)
}

func NotReady(status session.Status) *AppError {
	return newAppError(ErrCodeNotReady, "The session has no study material yet.", http.StatusConflict).
		WithDetail("status", string(status))
}

func Internal() *AppError {
	return newAppError(ErrCodeInternal, "Something went wrong. Please try again.", http.StatusInternalServerError)
}

// toAppError maps domain sentinels onto API errors.
func (s *Server) toAppError(err error) *AppError {
	var appErr *AppError
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, media.ErrTooLarge), errors.As(err, &maxBytes):
		return FileTooLarge(s.cfg.Server.MaxUploadMB).WithCause(err)
	case errors.Is(err, media.ErrUnsupported):
		return newAppError(ErrCodeUnsupported, err.Error(), http.StatusUnsupportedMediaType).WithCause(err)
	case errors.Is(err, export.ErrUnknownFormat):
		return InvalidInput("format", err.Error()).WithCause(err)
	case errors.Is(err, session.ErrNotFound):
		return NotFound("session", "").WithCause(err)
	default:
		return Internal().WithCause(err)
	}
}

// respondError writes err as an AppError response and aborts the chain.
func (s *Server) respondError(c *gin.Context, err error) {
	appErr := s.toAppError(err)
	if appErr.HTTPStatus >= 500 {
		s.logger.Error(requestContext(c), "Request failed: %v", err)
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
}
