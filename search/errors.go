package search

import "errors"

var (
	// ErrNotFound is returned by IdentifyTop when nothing could be ranked.
	ErrNotFound = errors.New("search: no match found")

	// ErrInvalidKind is returned when a query names no vector kind.
	ErrInvalidKind = errors.New("search: vector kind must be set")
)
