package disc

import "errors"

var (
	// ErrNotFound is returned for a missing (nil) entry
	ErrNotFound = errors.New("entry not found")
	// ErrInvalidKind is returned when a directory is given where a file is
	// required, or a non-disc volume where the disc layout is required
	ErrInvalidKind = errors.New("invalid entry or volume kind")
	// ErrReadFailure wraps any failed volume read
	ErrReadFailure = errors.New("volume read failed")
	// ErrWriteFailure wraps any failed destination create or write
	ErrWriteFailure = errors.New("destination write failed")
	// ErrAlreadyExists is reported for existing destinations under ExistingFail
	ErrAlreadyExists = errors.New("destination already exists")
	// ErrCanceled is returned when the progress callback stopped an export
	ErrCanceled = errors.New("export canceled")
)
