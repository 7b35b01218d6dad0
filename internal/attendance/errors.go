package attendance

import "errors"

var (
	// ErrEmptyTime marks a check cell with no value. It is not a parse failure.
	ErrEmptyTime = errors.New("empty time value")

	// ErrUnparseableTime marks a check cell that could not be read.
	// Callers treat the event as absent.
	ErrUnparseableTime = errors.New("unparseable time value")

	// ErrMissingRecord means an employee has no raw row for a day
	ErrMissingRecord = errors.New("no attendance record")

	// ErrUnknownEmployee means a UID is not part of the roster
	ErrUnknownEmployee = errors.New("employee not in roster")
)
