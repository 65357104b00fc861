// Package persimq provides a durable, single-file FIFO queue for Go.
//
// A queue lives in one pre-sized file used as a circular buffer. Messages
// are opaque byte strings framed with a small checksummed header. The file
// is locked for the life of a handle so only one process uses it at a time.
//
// Example usage:
//
//	q, err := persimq.Open("/var/lib/app/events.q", 1<<20, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer q.Close()
//
//	if err := q.Push([]byte("hello")); err != nil {
//		log.Fatal(err)
//	}
//
//	msg, err := q.Peek()
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(string(msg))
//
//	// Remove the message once it is processed
//	if err := q.Pop(); err != nil {
//		log.Fatal(err)
//	}
//
// Pointer updates are persisted by Sync and Close. A handle released with
// Drop, or lost to a crash, reopens with the state of the last sync, so
// consumed messages are delivered again (at-least-once delivery).
package persimq

import (
	"os"

	"github.com/vnykmshr/persimq/internal/logging"
	"github.com/vnykmshr/persimq/internal/metrics"
	"github.com/vnykmshr/persimq/internal/queue"
)

// Version is the current version of persimq.
const Version = "1.0.0"

// On-disk framing sizes.
const (
	// HeaderSize is the size of the file header at offset 0
	HeaderSize = queue.HeaderSize

	// RecordHeaderSize is the per-message overhead in the ring
	RecordHeaderSize = queue.RecordHeaderSize

	// MinFileSize is the smallest size Open accepts
	MinFileSize = queue.MinFileSize
)

// Queue is a handle to an open queue file.
// Methods are safe for concurrent use by multiple goroutines.
type Queue struct {
	q *queue.Queue
}

// Verbosity selects how much diagnostic output a handle emits.
type Verbosity = logging.Verbosity

// Verbosity levels, each including everything below it.
const (
	VerbositySilent       = logging.VerbositySilent
	VerbosityErrors       = logging.VerbosityErrors
	VerbosityWarnings     = logging.VerbosityWarnings
	VerbosityInfo         = logging.VerbosityInfo
	VerbosityDebug        = logging.VerbosityDebug
	VerbosityDebugVerbose = logging.VerbosityDebugVerbose
)

// ParseVerbosity parses a level name such as "warnings" or its number.
func ParseVerbosity(s string) (Verbosity, error) {
	return logging.ParseVerbosity(s)
}

// State is the lifecycle state of a handle.
type State = queue.State

// Handle states.
const (
	StateOpen   = queue.StateOpen
	StateClosed = queue.StateClosed
)

// Options configures queue behavior.
type Options struct {
	// Verbosity controls diagnostic output (default: VerbosityErrors)
	Verbosity Verbosity

	// Logger receives diagnostics that pass the verbosity filter.
	// nil writes to stderr through the standard library logger.
	Logger Logger

	// MetricsCollector for collecting queue metrics (nil = no metrics)
	MetricsCollector MetricsCollector

	// NoWait makes Open fail with ErrLocked instead of waiting when
	// another process holds the file
	NoWait bool

	// AutoSync persists the header after every mutation (default: false)
	AutoSync bool

	// FileMode is the permission for a newly created file (default: 0660)
	FileMode os.FileMode

	// SkipDiskSpaceCheck disables the free-space check before the file
	// is grown (default: false)
	SkipDiskSpaceCheck bool
}

// MetricsCollector defines the interface for recording queue metrics.
type MetricsCollector = queue.MetricsCollector

// MetricsSnapshot is a point-in-time view of queue metrics.
type MetricsSnapshot = metrics.Snapshot

// NewMetricsCollector creates a new metrics collector for a queue.
// The queue name is used to identify metrics from this specific queue.
func NewMetricsCollector(queueName string) *metrics.Collector {
	return metrics.NewCollector(queueName)
}

// GetMetricsSnapshot returns a snapshot of current metrics from a collector.
func GetMetricsSnapshot(collector MetricsCollector) *MetricsSnapshot {
	if c, ok := collector.(*metrics.Collector); ok {
		return c.GetSnapshot()
	}
	return nil
}

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, fields ...LogField)
	Info(msg string, fields ...LogField)
	Warn(msg string, fields ...LogField)
	Error(msg string, fields ...LogField)
}

// LogField represents a structured log field.
type LogField struct {
	Key   string
	Value interface{}
}

// Stats is a snapshot of a queue's header counters.
type Stats = queue.Stats

// DefaultOptions returns sensible defaults for queue configuration.
func DefaultOptions() *Options {
	return &Options{
		Verbosity: VerbosityErrors,
		FileMode:  queue.DefaultFileMode,
	}
}

// Open opens or creates the queue file at path and sizes it to size bytes.
// Messages in an existing file survive only when size equals the size it
// was created with. Any other size grows or truncates the file and starts
// the queue empty.
// If opts is nil, default options are used.
func Open(path string, size int64, opts *Options) (*Queue, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	qopts := queue.DefaultOptions()
	qopts.Verbosity = opts.Verbosity
	qopts.AutoSync = opts.AutoSync
	qopts.CheckDiskSpace = !opts.SkipDiskSpaceCheck
	if opts.FileMode != 0 {
		qopts.FileMode = opts.FileMode
	}
	if opts.NoWait {
		qopts.LockMode = queue.LockNonBlocking
	}
	if opts.Logger != nil {
		qopts.Logger = &loggerAdapter{l: opts.Logger}
	}
	if opts.MetricsCollector != nil {
		qopts.MetricsCollector = opts.MetricsCollector
	}

	q, err := queue.Open(path, size, qopts)
	if err != nil {
		return nil, err
	}

	return &Queue{q: q}, nil
}

// Push appends payload as one message.
// Returns ErrInsufficientSpace when the record does not fit the free space.
func (q *Queue) Push(payload []byte) error {
	return q.q.Push(payload)
}

// Get copies the oldest message into buf without removing it and returns
// its length. Returns ErrBufferTooSmall when buf cannot hold it.
func (q *Queue) Get(buf []byte) (int, error) {
	return q.q.Get(buf)
}

// Peek returns a copy of the oldest message without removing it.
func (q *Queue) Peek() ([]byte, error) {
	return q.q.Peek()
}

// GetAll copies up to maxMessages messages, oldest first, back to back into
// buf without removing them. It stops at the first message that does not fit
// and reports the bytes written and the number of messages copied.
func (q *Queue) GetAll(buf []byte, maxMessages uint64) (total int, read uint64, err error) {
	return q.q.GetAll(buf, maxMessages)
}

// Pop removes the oldest message.
func (q *Queue) Pop() error {
	return q.q.Pop()
}

// PopN removes the n oldest messages. When n covers every message the
// queue is emptied in one step.
func (q *Queue) PopN(n uint64) error {
	return q.q.PopN(n)
}

// Clear removes every message and persists the empty header.
func (q *Queue) Clear() error {
	return q.q.Clear()
}

// Sync writes the header and flushes the file to stable storage.
func (q *Queue) Sync() error {
	return q.q.Sync()
}

// Close syncs the queue and releases the file and its lock.
func (q *Queue) Close() error {
	return q.q.Close()
}

// Drop releases the file and its lock without syncing. Pointer updates since
// the last sync are discarded.
func (q *Queue) Drop() error {
	return q.q.Drop()
}

// Stats returns current queue statistics.
func (q *Queue) Stats() Stats {
	return q.q.Stats()
}

// IsEmpty reports whether the queue holds no messages.
func (q *Queue) IsEmpty() bool {
	return q.q.IsEmpty()
}

// MessagesAvailable returns the number of stored messages.
func (q *Queue) MessagesAvailable() uint64 {
	return q.q.MessagesAvailable()
}

// BytesAvailable returns the payload bytes of all stored messages.
func (q *Queue) BytesAvailable() uint64 {
	return q.q.BytesAvailable()
}

// BytesFree returns the ring bytes not occupied by records.
func (q *Queue) BytesFree() uint64 {
	return q.q.BytesFree()
}

// Path returns the absolute path of the queue file.
func (q *Queue) Path() string {
	return q.q.Path()
}

// State returns the lifecycle state of the handle.
func (q *Queue) State() State {
	return q.q.State()
}

// IsOpen reports whether the handle accepts operations.
func (q *Queue) IsOpen() bool {
	return q.q.IsOpen()
}

// Err returns the I/O or corruption error that closed the handle, if any.
func (q *Queue) Err() error {
	return q.q.Err()
}

// SetVerbosity changes the diagnostic level of the handle.
func (q *Queue) SetVerbosity(v Verbosity) {
	q.q.SetVerbosity(v)
}

// loggerAdapter adapts public Logger to internal logging.Logger
type loggerAdapter struct {
	l Logger
}

func (a *loggerAdapter) Debug(msg string, fields ...logging.Field) {
	a.l.Debug(msg, convertFields(fields)...)
}

func (a *loggerAdapter) Info(msg string, fields ...logging.Field) {
	a.l.Info(msg, convertFields(fields)...)
}

func (a *loggerAdapter) Warn(msg string, fields ...logging.Field) {
	a.l.Warn(msg, convertFields(fields)...)
}

func (a *loggerAdapter) Error(msg string, fields ...logging.Field) {
	a.l.Error(msg, convertFields(fields)...)
}

func convertFields(fields []logging.Field) []LogField {
	result := make([]LogField, len(fields))
	for i, f := range fields {
		result[i] = LogField{Key: f.Key, Value: f.Value}
	}
	return result
}
