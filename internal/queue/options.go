package queue

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vnykmshr/persimq/internal/logging"
	"github.com/vnykmshr/persimq/internal/metrics"
)

// LockMode selects what Open does when another process holds the queue file.
type LockMode int

const (
	// LockBlocking waits until the lock is released
	LockBlocking LockMode = iota

	// LockNonBlocking fails immediately with ErrLocked
	LockNonBlocking
)

// String returns the name of the lock mode.
func (m LockMode) String() string {
	switch m {
	case LockBlocking:
		return "blocking"
	case LockNonBlocking:
		return "non-blocking"
	default:
		return fmt.Sprintf("LockMode(%d)", int(m))
	}
}

// DefaultFileMode is the permission used when Open creates the queue file.
const DefaultFileMode os.FileMode = 0o660

// Options configures queue behavior.
type Options struct {
	// Verbosity controls diagnostic output of the handle
	// Default: VerbosityErrors
	Verbosity logging.Verbosity

	// Logger receives diagnostics that pass the verbosity filter
	// (nil = standard library logger on stderr)
	Logger logging.Logger

	// MetricsCollector for collecting queue metrics (nil = no metrics)
	MetricsCollector MetricsCollector

	// LockMode selects blocking or failing lock acquisition
	LockMode LockMode

	// AutoSync flushes the header after every push, pop, and clear.
	// When false the header is persisted only by Sync and Close.
	AutoSync bool

	// FileMode is the permission for a newly created queue file
	FileMode os.FileMode

	// CheckDiskSpace verifies the file system can hold the file before
	// growing it
	CheckDiskSpace bool
}

// MetricsCollector defines the interface for recording queue metrics.
type MetricsCollector interface {
	RecordPush(payloadSize int, duration time.Duration)
	RecordPop(count uint64, payloadBytes uint64)
	RecordGet(count int, payloadBytes int, duration time.Duration)
	RecordSync(duration time.Duration)
	RecordClear()
	RecordPushError()
	RecordPushRejected()
	RecordReadError()
	RecordSyncError()
	RecordCorruption()
	RecordHeaderReset()
	UpdateQueueState(pending, storedBytes, freeBytes uint64)
}

// DefaultOptions returns sensible defaults for queue configuration.
func DefaultOptions() *Options {
	return &Options{
		Verbosity:        logging.DefaultVerbosity,
		Logger:           logging.NewDefaultLogger(),
		MetricsCollector: metrics.NoopCollector{},
		LockMode:         LockBlocking,
		AutoSync:         false,
		FileMode:         DefaultFileMode,
		CheckDiskSpace:   true,
	}
}

// Validate checks if the options are valid and safe to use.
func (o *Options) Validate() error {
	if !o.Verbosity.Valid() {
		return fmt.Errorf("%w: invalid verbosity %d", ErrConfiguration, o.Verbosity)
	}
	if o.LockMode != LockBlocking && o.LockMode != LockNonBlocking {
		return fmt.Errorf("%w: invalid lock mode %d", ErrConfiguration, o.LockMode)
	}
	if o.FileMode&^os.ModePerm != 0 {
		return fmt.Errorf("%w: file mode %v has non-permission bits", ErrConfiguration, o.FileMode)
	}
	return nil
}

// withDefaults fills unset collaborators so the queue never checks for nil.
func (o *Options) withDefaults() *Options {
	out := *o
	if out.Logger == nil {
		out.Logger = logging.NewDefaultLogger()
	}
	if out.MetricsCollector == nil {
		out.MetricsCollector = metrics.NoopCollector{}
	}
	if out.FileMode == 0 {
		out.FileMode = DefaultFileMode
	}
	return &out
}

// validatePath resolves the queue file path and rejects paths that cannot
// name a regular file.
func validatePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: queue file path cannot be empty", ErrConfiguration)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: failed to resolve absolute path: %w", ErrConfiguration, err)
	}

	if info, err := os.Stat(absPath); err == nil && !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s is not a regular file", ErrConfiguration, absPath)
	}

	return absPath, nil
}
