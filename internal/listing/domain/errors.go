package domain

import "errors"

var (
	// ErrListingNotFound is returned when a listing id is empty, malformed or unknown.
	ErrListingNotFound = errors.New("listing not found")
	// ErrRepository wraps any failure of the underlying store.
	ErrRepository = errors.New("repository error")
)
