package types

import "errors"

// Domain errors
var (
	// ErrMalformedDocument is returned when a table was structurally
	// required but could not be located or bounded. It is the only fatal
	// condition a merge surfaces; no edits are applied when it occurs.
	ErrMalformedDocument = errors.New("malformed document")

	// ErrEmptyBatch is returned when a merge is requested with no records
	ErrEmptyBatch = errors.New("no records to merge")
)
