package queue

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by a Queue wraps exactly one of these,
// so callers can classify failures with errors.Is.
var (
	// ErrConfiguration reports invalid arguments to Open
	ErrConfiguration = errors.New("configuration error")

	// ErrIO reports a failed file operation. The handle is closed.
	ErrIO = errors.New("i/o error")

	// ErrCorruption reports a record that failed validation. The handle is closed.
	ErrCorruption = errors.New("corruption detected")

	// ErrCapacity reports a request that does not fit. The handle stays usable.
	ErrCapacity = errors.New("insufficient capacity")

	// ErrState reports an operation that is invalid in the current state.
	ErrState = errors.New("invalid state")
)

// Specific errors, each wrapping one kind.
var (
	ErrSizeTooSmall      = fmt.Errorf("%w: file size too small", ErrConfiguration)
	ErrLocked            = fmt.Errorf("%w: queue file is locked by another process", ErrIO)
	ErrBadMagic          = fmt.Errorf("%w: bad record magic", ErrCorruption)
	ErrChecksumMismatch  = fmt.Errorf("%w: payload checksum mismatch", ErrCorruption)
	ErrInsufficientSpace = fmt.Errorf("%w: not enough free space in queue", ErrCapacity)
	ErrBufferTooSmall    = fmt.Errorf("%w: buffer too small for message", ErrCapacity)
	ErrClosed            = fmt.Errorf("%w: queue is closed", ErrState)
	ErrEmpty             = fmt.Errorf("%w: queue is empty", ErrState)
)

var kinds = []error{ErrConfiguration, ErrIO, ErrCorruption, ErrCapacity, ErrState}

// KindOf returns the kind sentinel err wraps, or nil if it wraps none.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// IsFatal reports whether err closed the handle that returned it.
func IsFatal(err error) bool {
	return errors.Is(err, ErrIO) || errors.Is(err, ErrCorruption)
}
