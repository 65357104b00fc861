package queue

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vnykmshr/persimq/internal/logging"
	"github.com/vnykmshr/persimq/internal/metrics"
)

// testOptions returns options that log into an in-memory observer at
// warning verbosity and never block on the file lock.
func testOptions(t *testing.T) (*Options, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	opts := DefaultOptions()
	opts.Logger = logging.NewZapLogger(zap.New(core))
	opts.Verbosity = logging.VerbosityWarnings
	opts.LockMode = LockNonBlocking
	return opts, logs
}

// queuePath returns a fresh queue file path inside the test's temp dir.
func queuePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.q")
}

// setupQueue creates a test queue of the given size with optional options.
// The queue is dropped when the test completes if it is still open.
func setupQueue(t *testing.T, size int64, opts *Options) *Queue {
	t.Helper()

	if opts == nil {
		opts, _ = testOptions(t)
	}

	q, err := Open(queuePath(t), size, opts)
	require.NoError(t, err, "failed to create queue")

	t.Cleanup(func() { _ = q.Drop() })

	return q
}

// reopen closes q and opens its file again with the same size.
func reopen(t *testing.T, q *Queue, opts *Options) *Queue {
	t.Helper()

	size := int64(q.Stats().FileSize) //nolint:gosec // test sizes are small
	require.NoError(t, q.Close())

	if opts == nil {
		opts, _ = testOptions(t)
	}
	q2, err := Open(q.Path(), size, opts)
	require.NoError(t, err, "failed to reopen queue")

	t.Cleanup(func() { _ = q2.Drop() })
	return q2
}

// pushN pushes n messages of the form "msg-0", "msg-1", ...
func pushN(t *testing.T, q *Queue, n int) {
	t.Helper()

	for i := 0; i < n; i++ {
		require.NoError(t, q.Push([]byte(fmt.Sprintf("msg-%d", i))), "push %d", i)
	}
}

// drain reads and pops every message, returning the payloads in order.
func drain(t *testing.T, q *Queue) []string {
	t.Helper()

	var out []string
	for !q.IsEmpty() {
		payload, err := q.Peek()
		require.NoError(t, err)
		require.NoError(t, q.Pop())
		out = append(out, string(payload))
	}
	return out
}

// assertSpaceConserved checks the accounting identity between free space,
// stored bytes, and the header block.
func assertSpaceConserved(t *testing.T, q *Queue) {
	t.Helper()

	s := q.Stats()
	require.Equal(t, s.FileSize, s.FreeBytes+s.StoredBytes+HeaderSize, "space accounting broken: %+v", s)
	require.Equal(t, s.StoredBytes, s.PayloadBytes+s.Messages*RecordHeaderSize, "byte count broken: %+v", s)
}

// corruptByte XORs the byte at off in the queue file with mask.
func corruptByte(t *testing.T, path string, off int64, mask byte) {
	t.Helper()

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	require.NoError(t, err)
	defer f.Close()

	b := make([]byte, 1)
	_, err = f.ReadAt(b, off)
	require.NoError(t, err)
	b[0] ^= mask
	_, err = f.WriteAt(b, off)
	require.NoError(t, err)
}

// newCollector attaches a metrics collector to opts and returns it.
func newCollector(opts *Options) *metrics.Collector {
	c := metrics.NewCollector("test")
	opts.MetricsCollector = c
	return c
}
