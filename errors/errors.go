package errors

import "fmt"

var (
	// Store-facing failures. Recoverable: the caller keeps its input and may retry.
	ErrWriteFailure        = fmt.Errorf("store write failure")
	ErrSubscriptionFailure = fmt.Errorf("live subscription failure")
	ErrRecordNotFound      = fmt.Errorf("record not found")

	// Rejected before any store call.
	ErrEmptyMessage    = fmt.Errorf("message text is empty")
	ErrMissingIdentity = fmt.Errorf("missing viewer identity")
	ErrSendInFlight    = fmt.Errorf("a send is already in flight")

	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity requirements")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")

	ErrNotAllowed = fmt.Errorf("viewer is not on the allow list")

	ErrWorkerPanic = fmt.Errorf("worker panic")
)
