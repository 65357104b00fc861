package queue

import (
	"fmt"
	"time"

	"github.com/vnykmshr/persimq/internal/format"
	"github.com/vnykmshr/persimq/internal/logging"
)

// Push appends payload to the tail of the queue.
//
// It fails with ErrInsufficientSpace, leaving the queue untouched, when the
// record does not fit in the free space. A failed write closes the handle;
// the pointers and counters only advance once the whole record is written.
func (q *Queue) Push(payload []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.checkOpen(); err != nil {
		return err
	}

	start := time.Now()

	rh, err := format.NewRecordHeader(payload)
	if err != nil {
		q.metrics.RecordPushRejected()
		return fmt.Errorf("%w: %w", ErrInsufficientSpace, err)
	}

	need := rh.Size()
	if free := q.bytesFree(); free < need {
		q.metrics.RecordPushRejected()
		q.log.Debug("push rejected",
			logging.F("record_size", need),
			logging.F("free", free),
		)
		return fmt.Errorf("%w: record needs %d bytes, %d free", ErrInsufficientSpace, need, free)
	}

	at := int64(q.hdr.AppendPtr) //nolint:gosec // G115: pointer bounded by file size
	next, err := q.ring.WriteAt(rh.Marshal(), at)
	if err != nil {
		q.metrics.RecordPushError()
		return q.fail(fmt.Errorf("%w: failed to write record header at %d: %w", ErrIO, at, err))
	}
	next, err = q.ring.WriteAt(payload, next)
	if err != nil {
		q.metrics.RecordPushError()
		return q.fail(fmt.Errorf("%w: failed to write payload at %d: %w", ErrIO, at, err))
	}

	q.hdr.AppendPtr = uint64(next) //nolint:gosec // G115: ring offsets are positive
	q.hdr.CountBytes += need
	q.hdr.CountMessages++

	q.log.Trace("record pushed",
		logging.F("offset", at),
		logging.F("length", rh.Length),
		logging.F("crc", rh.CRC),
		logging.F("messages", q.hdr.CountMessages),
	)
	q.metrics.RecordPush(len(payload), time.Since(start))
	q.updateState()

	return q.autoSync()
}
