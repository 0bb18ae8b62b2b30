package invoice

import "errors"

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("invoice was modified by another request")
	// ErrTransaction wraps any failure that rolled back an invoice creation.
	ErrTransaction = errors.New("invoice transaction failed")
)
