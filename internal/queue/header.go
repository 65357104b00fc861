package queue

import (
	"fmt"
	"time"

	"github.com/vnykmshr/persimq/internal/format"
	"github.com/vnykmshr/persimq/internal/logging"
	"github.com/vnykmshr/persimq/internal/ringio"
)

// loadHeader reads the header block. A header that fails validation is
// replaced by the header of an empty queue; only a failed read is an error.
func (q *Queue) loadHeader(fileSize uint64) error {
	buf := make([]byte, format.HeaderSize)
	if err := ringio.ReadFullAt(q.file, buf, 0); err != nil {
		return fmt.Errorf("%w: failed to read header: %w", ErrIO, err)
	}

	hdr, err := format.UnmarshalFileHeader(buf)
	if err == nil {
		err = hdr.Validate(fileSize)
	}
	if err != nil {
		q.log.Warn("queue header invalid, starting empty",
			logging.F("path", q.path),
			logging.F("reason", err),
		)
		q.metrics.RecordHeaderReset()
		q.hdr = *format.NewFileHeader(fileSize)
		return nil
	}

	q.hdr = *hdr
	q.log.Debug("queue header restored", logging.F("path", q.path))
	return nil
}

// Sync writes the header block to disk and flushes the file.
// A failed sync closes the handle.
func (q *Queue) Sync() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.checkOpen(); err != nil {
		return err
	}
	return q.syncLocked()
}

func (q *Queue) syncLocked() error {
	start := time.Now()

	if err := ringio.WriteFullAt(q.file, q.hdr.Marshal(), 0); err != nil {
		q.metrics.RecordSyncError()
		return q.fail(fmt.Errorf("%w: failed to write header: %w", ErrIO, err))
	}
	if err := q.file.Sync(); err != nil {
		q.metrics.RecordSyncError()
		return q.fail(fmt.Errorf("%w: failed to flush queue file: %w", ErrIO, err))
	}

	q.metrics.RecordSync(time.Since(start))
	q.log.Debug("queue header synced",
		logging.F("append_ptr", q.hdr.AppendPtr),
		logging.F("extract_ptr", q.hdr.ExtractPtr),
		logging.F("messages", q.hdr.CountMessages),
	)
	return nil
}

// autoSync persists the header after a mutation when AutoSync is set.
func (q *Queue) autoSync() error {
	if !q.opts.AutoSync {
		return nil
	}
	return q.syncLocked()
}
