package domain

import "errors"

var (
	ErrValidation   = errors.New("invalid product")
	ErrDuplicateKey = errors.New("product id already exists")
	ErrNotFound     = errors.New("product not found")
	ErrFormat       = errors.New("malformed product data")

	// ErrStorage marks filesystem or backend failures. It is always wrapped
	// together with the underlying error, so errors.Is(err, fs.ErrPermission)
	// still works on the result.
	ErrStorage = errors.New("storage failure")
)
