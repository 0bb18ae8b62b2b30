package booking

import "errors"

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("booking was modified concurrently")
	ErrIDMismatch = errors.New("id in path does not match body")
)
