package errors

import "errors"

var (
	ErrNotFound = errors.New("trainer not found")

	ErrInvalidCatalog = errors.New("invalid trainer catalog")
)
