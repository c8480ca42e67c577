// Package apperror defines the error kinds the domain and storage layers
// raise, each mapped to the HTTP status code it should produce at the
// API boundary.
package apperror

import "net/http"

// GenericError is implemented by every kind in this package so that the
// Recovery middleware and the HTTP handlers can treat them uniformly.
type GenericError interface {
	error
	ErrCode() string
	StatusCode() int
}

// InvalidArgumentError covers malformed input, unknown update fields, and
// adapter-level validation failures (negative monetary values, FK violations).
type InvalidArgumentError string

func (e InvalidArgumentError) Error() string { return string(e) }
func (e InvalidArgumentError) ErrCode() string { return "INVALID_ARGUMENT" }
func (e InvalidArgumentError) StatusCode() int { return http.StatusBadRequest }

// UnauthenticatedError covers missing/invalid/expired session tokens and
// bad login credentials.
type UnauthenticatedError string

func (e UnauthenticatedError) Error() string { return string(e) }
func (e UnauthenticatedError) ErrCode() string { return "UNAUTHENTICATED" }
func (e UnauthenticatedError) StatusCode() int { return http.StatusUnauthorized }

// ForbiddenError covers requests outside the caller's tenant scope or role.
type ForbiddenError string

func (e ForbiddenError) Error() string { return string(e) }
func (e ForbiddenError) ErrCode() string { return "FORBIDDEN" }
func (e ForbiddenError) StatusCode() int { return http.StatusForbidden }

// NotFoundError covers missing rows and scope-mismatched single-row fetches.
type NotFoundError string

func (e NotFoundError) Error() string { return string(e) }
func (e NotFoundError) ErrCode() string { return "NOT_FOUND" }
func (e NotFoundError) StatusCode() int { return http.StatusNotFound }

// ConflictError covers unique-constraint violations (duplicate email,
// duplicate external group id, duplicate agency code).
type ConflictError string

func (e ConflictError) Error() string { return string(e) }
func (e ConflictError) ErrCode() string { return "CONFLICT" }
func (e ConflictError) StatusCode() int { return http.StatusConflict }

// TimeoutError covers statement deadlines exceeded (default 30s).
type TimeoutError string

func (e TimeoutError) Error() string { return string(e) }
func (e TimeoutError) ErrCode() string { return "TIMEOUT" }
func (e TimeoutError) StatusCode() int { return http.StatusGatewayTimeout }

// UnavailableError covers connection loss to the storage backend.
type UnavailableError string

func (e UnavailableError) Error() string { return string(e) }
func (e UnavailableError) ErrCode() string { return "UNAVAILABLE" }
func (e UnavailableError) StatusCode() int { return http.StatusServiceUnavailable }

// InternalError is the catch-all; handlers should attach a correlation id to
// the message rather than let the raw cause leak to the client.
type InternalError string

func (e InternalError) Error() string { return string(e) }
func (e InternalError) ErrCode() string { return "INTERNAL" }
func (e InternalError) StatusCode() int { return http.StatusInternalServerError }

// As unwraps err into a GenericError, defaulting to an opaque InternalError
// so callers never leak a raw driver/stdlib error to the client.
func As(err error) GenericError {
	if err == nil {
		return nil
	}
	if ge, ok := err.(GenericError); ok {
		return ge
	}
	return InternalError("internal server error")
}
