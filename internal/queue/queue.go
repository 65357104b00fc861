// Package queue provides a persistent FIFO message queue stored in a single
// fixed-size file.
//
// The file starts with a 45-byte header block holding the queue pointers and
// counters. The rest of the file is a circular data region of records, each
// an 8-byte record header followed by the payload. Records may wrap around
// the end of the region.
//
// Basic usage:
//
//	q, err := queue.Open("/var/lib/app/events.q", 1<<20, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer q.Close()
//
//	// Push a message
//	if err := q.Push([]byte("hello")); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Read the oldest message, then remove it
//	msg, err := q.Peek()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_ = q.Pop()
//
// A handle holds an exclusive lock on the file for its lifetime. Any I/O
// failure or detected corruption closes the handle; the cause is kept in Err.
// Header changes reach the disk only through Sync and Close, unless
// Options.AutoSync is set.
package queue

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"github.com/vnykmshr/persimq/internal/format"
	"github.com/vnykmshr/persimq/internal/logging"
	"github.com/vnykmshr/persimq/internal/ringio"
)

// On-disk sizes.
const (
	// HeaderSize is the size of the header block at the start of the file
	HeaderSize = format.HeaderSize

	// RecordHeaderSize is the per-message overhead in the data region
	RecordHeaderSize = format.RecordHeaderSize

	// MinFileSize is the smallest size Open accepts: the header block plus
	// a data region larger than one record header and one payload byte.
	MinFileSize = HeaderSize + RecordHeaderSize + 2
)

// State is the lifecycle state of a queue handle.
type State int

const (
	// StateOpen means the handle accepts operations
	StateOpen State = iota

	// StateClosed means the handle was closed, dropped, or failed
	StateClosed
)

// String returns the name of the state.
func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Queue is a handle on an open queue file.
type Queue struct {
	path string
	opts *Options

	mu sync.Mutex

	file *os.File
	lock *flock.Flock
	ring *ringio.Engine

	log     *logging.Gate
	metrics MetricsCollector

	// hdr is the in-memory copy of the header block; it is authoritative
	// while the handle is open.
	hdr format.FileHeader

	state State
	fault error
}

// Open opens or creates the queue file at path with exactly size bytes.
//
// An existing file is resized to size. If its header is missing or fails
// validation, the queue starts empty. Open blocks while another process
// holds the file, unless opts.LockMode is LockNonBlocking.
func Open(path string, size int64, opts *Options) (*Queue, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	if size < MinFileSize {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", ErrSizeTooSmall, size, MinFileSize)
	}

	absPath, err := validatePath(path)
	if err != nil {
		return nil, err
	}

	q := &Queue{
		path:    absPath,
		opts:    opts,
		log:     logging.NewGate(opts.Logger, opts.Verbosity),
		metrics: opts.MetricsCollector,
		state:   StateClosed,
	}

	if err := q.openFile(size); err != nil {
		q.log.Error("failed to open queue", logging.F("path", absPath), logging.F("error", err))
		return nil, err
	}

	q.state = StateOpen
	q.updateState()

	q.log.Info("queue opened",
		logging.F("path", q.path),
		logging.F("file_size", q.hdr.FileSize),
		logging.F("messages", q.hdr.CountMessages),
		logging.F("stored_bytes", q.hdr.CountBytes),
		logging.F("append_ptr", q.hdr.AppendPtr),
		logging.F("extract_ptr", q.hdr.ExtractPtr),
	)

	return q, nil
}

// openFile locks, creates, sizes, and loads the queue file.
// On failure every acquired resource is released.
func (q *Queue) openFile(size int64) (err error) {
	defer func() {
		if err != nil {
			_ = q.teardown()
		}
	}()

	if err := q.acquireLock(); err != nil {
		return err
	}

	file, err := os.OpenFile(q.path, os.O_RDWR|os.O_CREATE, q.opts.FileMode) //nolint:gosec // G304: path is caller-provided
	if err != nil {
		return fmt.Errorf("%w: failed to open queue file: %w", ErrIO, err)
	}
	q.file = file

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("%w: failed to stat queue file: %w", ErrIO, err)
	}

	if q.opts.CheckDiskSpace && info.Size() < size {
		if err := checkDiskSpace(filepath.Dir(q.path), uint64(size-info.Size())); err != nil { //nolint:gosec // G115: positive
			return err
		}
	}

	if err := file.Truncate(size); err != nil {
		return fmt.Errorf("%w: failed to size queue file to %d bytes: %w", ErrIO, size, err)
	}

	region, err := ringio.NewRegion(format.HeaderSize, size)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	q.ring = ringio.NewEngine(file, region, q.log)

	return q.loadHeader(uint64(size))
}

// LockPath returns the path of the lock file guarding the queue file at path.
func LockPath(path string) string {
	return path + ".lock"
}

// acquireLock takes the exclusive lock according to LockMode. The lock
// lives on a separate file: on Windows a byte-range lock on the queue file
// itself would also block this handle's own header reads and writes.
func (q *Queue) acquireLock() error {
	lock := flock.New(LockPath(q.path))

	if q.opts.LockMode == LockNonBlocking {
		ok, err := lock.TryLock()
		if err != nil {
			return fmt.Errorf("%w: failed to lock queue file: %w", ErrIO, err)
		}
		if !ok {
			return fmt.Errorf("%w: %s", ErrLocked, q.path)
		}
	} else {
		q.log.Debug("waiting for queue lock", logging.F("path", q.path))
		if err := lock.Lock(); err != nil {
			return fmt.Errorf("%w: failed to lock queue file: %w", ErrIO, err)
		}
	}

	q.lock = lock
	return nil
}

// Path returns the absolute path of the queue file.
func (q *Queue) Path() string {
	return q.path
}

// State returns the lifecycle state of the handle.
func (q *Queue) State() State {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// IsOpen reports whether the handle accepts operations.
func (q *Queue) IsOpen() bool {
	return q.State() == StateOpen
}

// Err returns the I/O or corruption error that closed the handle, if any.
func (q *Queue) Err() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.fault
}

// SetVerbosity changes the diagnostic verbosity of this handle.
func (q *Queue) SetVerbosity(v logging.Verbosity) {
	q.log.SetVerbosity(v)
}

// Close persists the header, releases the lock, and closes the file.
// Closing a closed handle is a no-op.
func (q *Queue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.state != StateOpen {
		return nil
	}

	if err := q.syncLocked(); err != nil {
		return err
	}

	if err := q.teardown(); err != nil {
		q.log.Warn("error releasing queue file", logging.F("path", q.path), logging.F("error", err))
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	q.log.Info("queue closed",
		logging.F("path", q.path),
		logging.F("messages", q.hdr.CountMessages),
	)
	return nil
}

// Drop releases the lock and closes the file without persisting the
// header. Changes since the last Sync are lost. Dropping a closed handle
// is a no-op.
func (q *Queue) Drop() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.state != StateOpen {
		return nil
	}

	q.log.Info("queue dropped", logging.F("path", q.path))
	if err := q.teardown(); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

// checkOpen must be called with mu held.
func (q *Queue) checkOpen() error {
	if q.state != StateOpen {
		return ErrClosed
	}
	return nil
}

// fail records a fatal error and closes the handle without syncing.
// It returns err so callers can write `return q.fail(err)`.
func (q *Queue) fail(err error) error {
	q.fault = err
	q.log.Error("closing queue after fatal error",
		logging.F("path", q.path),
		logging.F("error", err),
	)
	if terr := q.teardown(); terr != nil {
		q.log.Warn("error releasing queue file", logging.F("path", q.path), logging.F("error", terr))
	}
	return err
}

// corrupt is fail for validation failures.
func (q *Queue) corrupt(err error) error {
	q.metrics.RecordCorruption()
	return q.fail(err)
}

// teardown unlocks and closes the file. The handle ends up closed even
// when releasing a resource fails.
func (q *Queue) teardown() error {
	var errs []error
	if q.lock != nil {
		if err := q.lock.Unlock(); err != nil {
			errs = append(errs, fmt.Errorf("unlock: %w", err))
		}
		q.lock = nil
	}
	if q.file != nil {
		if err := q.file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close: %w", err))
		}
		q.file = nil
	}
	q.state = StateClosed
	return errors.Join(errs...)
}
