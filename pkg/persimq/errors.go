package persimq

import "github.com/vnykmshr/persimq/internal/queue"

// Error kinds. Every error returned by a Queue wraps exactly one of these.
var (
	// ErrConfiguration indicates invalid arguments to Open.
	ErrConfiguration = queue.ErrConfiguration

	// ErrIO indicates a failed file operation. The handle is closed.
	ErrIO = queue.ErrIO

	// ErrCorruption indicates a record failed validation. The handle is closed.
	ErrCorruption = queue.ErrCorruption

	// ErrCapacity indicates a request that does not fit. The handle stays usable.
	ErrCapacity = queue.ErrCapacity

	// ErrState indicates an operation invalid in the current state.
	ErrState = queue.ErrState
)

// Specific errors returned by persimq operations.
var (
	// ErrSizeTooSmall indicates a file size below MinFileSize.
	ErrSizeTooSmall = queue.ErrSizeTooSmall

	// ErrLocked indicates another process holds the queue file.
	ErrLocked = queue.ErrLocked

	// ErrBadMagic indicates a record header without the record marker.
	ErrBadMagic = queue.ErrBadMagic

	// ErrChecksumMismatch indicates a payload that does not match its checksum.
	ErrChecksumMismatch = queue.ErrChecksumMismatch

	// ErrInsufficientSpace indicates a push larger than the free space.
	ErrInsufficientSpace = queue.ErrInsufficientSpace

	// ErrBufferTooSmall indicates a read buffer shorter than the message.
	ErrBufferTooSmall = queue.ErrBufferTooSmall

	// ErrClosed indicates the handle has been closed.
	ErrClosed = queue.ErrClosed

	// ErrEmpty indicates there are no messages available.
	ErrEmpty = queue.ErrEmpty
)

// KindOf returns the kind err belongs to, or nil if it is not a queue error.
func KindOf(err error) error {
	return queue.KindOf(err)
}

// IsFatal reports whether err closed the handle that returned it.
func IsFatal(err error) bool {
	return queue.IsFatal(err)
}
