package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidSearchMode = errors.New("invalid search mode")
	ErrMalformedDocument = errors.New("malformed document")
	ErrDocumentNotFound  = errors.New("document not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrSourceUnavailable = errors.New("document source unavailable")
	ErrRateLimited       = errors.New("rate limit exceeded")
	ErrInternal          = errors.New("internal error")
	ErrTimeout           = errors.New("operation timed out")
)

type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// InvalidSearchMode reports a mode other than AND/OR for a single query.
func InvalidSearchMode(mode string) *AppError {
	return Newf(ErrInvalidSearchMode, http.StatusBadRequest, "unknown search mode %q (expected AND or OR)", mode)
}

// MalformedDocument reports a document whose title carries no parseable id.
func MalformedDocument(title string) *AppError {
	return Newf(ErrMalformedDocument, http.StatusUnprocessableEntity, "title %q does not carry a numeric identifier", title)
}

func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrDocumentNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidSearchMode):
		return http.StatusBadRequest
	case errors.Is(err, ErrMalformedDocument):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrSourceUnavailable), errors.Is(err, ErrTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
