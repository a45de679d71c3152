package errors

import "errors"

var (
	ErrHeld = errors.New("slot is locked by another holder")

	ErrNotOwner = errors.New("lock belongs to another holder")

	ErrInvalidTTL = errors.New("lock ttl out of range")
)
