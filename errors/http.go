package errors

import (
	"errors"
	"net/http"
)

// MapToHTTPStatus converts domain errors to HTTP status codes at the
// transport boundary. Anything unrecognized is reported as a 500 so that
// internal failures never leak their message shape to the client.
func MapToHTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrEmptyMessage),
		errors.Is(err, ErrMissingIdentity),
		errors.Is(err, ErrInvalidPassword):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotAllowed):
		return http.StatusForbidden
	case errors.Is(err, ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUserAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ErrSendInFlight):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrWriteFailure), errors.Is(err, ErrSubscriptionFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
