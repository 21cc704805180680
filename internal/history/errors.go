package history

import "errors"

var (
	// ErrEntryNotFound is returned when no history entry matches.
	ErrEntryNotFound = errors.New("history: entry not found")

	// ErrInvalidEntry is returned when an entry fails validation.
	ErrInvalidEntry = errors.New("history: invalid entry")
)
