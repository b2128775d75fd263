package search

import "errors"

// ErrNotFound is returned by Resolve when no row carries the requested identifier.
var ErrNotFound = errors.New("school not found")
