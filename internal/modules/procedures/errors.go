package procedures

import "errors"

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	// ErrInvalidState means the order is no longer Pending.
	ErrInvalidState = errors.New("order is not open")
)
