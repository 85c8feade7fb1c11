package directory

import "errors"

var (
	ErrNotFound          = errors.New("directory: user not found")
	ErrDuplicateUsername = errors.New("directory: username already exists")
	ErrInvalidInput      = errors.New("directory: invalid input")
)
