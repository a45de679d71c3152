package errors

import "errors"

var (
	ErrNotFound = errors.New("reservation not found")

	// ErrTokenReused means an idempotency token already belongs to another customer's reservation.
	ErrTokenReused = errors.New("idempotency token already used")

	ErrNotCancellable = errors.New("reservation cannot be cancelled")
)
