// AngelaMos | 2026
// errors.go

package core

import (
	"errors"
	"net/http"
	"strings"
)

var (
	ErrNotFound            = errors.New("resource not found")
	ErrDuplicateKey        = errors.New("duplicate key")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrTokenExpired        = errors.New("token expired")
	ErrTokenInvalid        = errors.New("token invalid")
	ErrTokenRevoked        = errors.New("token revoked")
	ErrServerMisconfigured = errors.New("server misconfigured")
	ErrUpstream            = errors.New("upstream service failure")
)

// AppError is an error that knows how it should be rendered to a client.
// Fields are merged into the top level of the response body.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
	Code       string
	Fields     map[string]any
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) With(key string, value any) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]any)
	}
	e.Fields[key] = value
	return e
}

func NewAppError(err error, message string, status int, code string) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		StatusCode: status,
		Code:       code,
	}
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func BadRequestError(message string) *AppError {
	return NewAppError(ErrInvalidInput, message, http.StatusBadRequest, "")
}

func NotFoundError(resource string) *AppError {
	return NewAppError(
		ErrNotFound,
		capitalize(resource)+" not found",
		http.StatusNotFound,
		"",
	)
}

func DuplicateError(message string) *AppError {
	return NewAppError(ErrDuplicateKey, message, http.StatusConflict, "")
}

func UnauthorizedError(message string) *AppError {
	if message == "" {
		message = "Authentication required"
	}
	return NewAppError(ErrUnauthorized, message, http.StatusUnauthorized, "")
}

func ForbiddenError(message string) *AppError {
	if message == "" {
		message = "Access denied"
	}
	return NewAppError(ErrForbidden, message, http.StatusForbidden, "")
}

func TokenExpiredError() *AppError {
	return NewAppError(
		ErrTokenExpired,
		"Token expired",
		http.StatusUnauthorized,
		"TOKEN_EXPIRED",
	)
}

func TokenRevokedError() *AppError {
	return NewAppError(
		ErrTokenRevoked,
		"Token has been revoked",
		http.StatusUnauthorized,
		"TOKEN_REVOKED",
	)
}

func TokenInvalidError() *AppError {
	return NewAppError(
		ErrTokenInvalid,
		"Invalid token",
		http.StatusForbidden,
		"INVALID_TOKEN",
	)
}

func InsufficientPermissionsError() *AppError {
	return NewAppError(
		ErrForbidden,
		"Admin access required",
		http.StatusForbidden,
		"INSUFFICIENT_PERMISSIONS",
	)
}

func ServerMisconfiguredError() *AppError {
	return NewAppError(
		ErrServerMisconfigured,
		"Server configuration error",
		http.StatusInternalServerError,
		"",
	)
}

func UpstreamError(message string, err error) *AppError {
	return NewAppError(err, message, http.StatusInternalServerError, "UPSTREAM_FAILURE")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
