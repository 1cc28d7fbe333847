package store

import "errors"

// Sentinel errors for store operations.
var (
	// ErrNotFound indicates the requested ISBN has no catalog entry.
	ErrNotFound = errors.New("entry not found")
	// ErrAlreadyExists indicates the ISBN is already cataloged on some shelf.
	ErrAlreadyExists = errors.New("entry already exists")
)
