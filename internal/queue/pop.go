package queue

import (
	"github.com/vnykmshr/persimq/internal/logging"
)

// Pop removes the oldest message without reading its payload.
// Only the record header is validated.
func (q *Queue) Pop() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.checkOpen(); err != nil {
		return err
	}
	if q.isEmpty() {
		return ErrEmpty
	}

	length, err := q.popLocked()
	if err != nil {
		return err
	}

	q.metrics.RecordPop(1, length)
	q.updateState()
	return q.autoSync()
}

// PopN removes the n oldest messages.
//
// When n covers the whole queue the extract pointer jumps straight to the
// append pointer without reading any record. Otherwise records are popped
// one at a time; on failure the records already popped stay popped.
func (q *Queue) PopN(n uint64) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.checkOpen(); err != nil {
		return err
	}

	if n >= q.hdr.CountMessages {
		if n > q.hdr.CountMessages {
			q.log.Warn("pop count exceeds queued messages",
				logging.F("requested", n),
				logging.F("available", q.hdr.CountMessages),
			)
		}
		popped := q.hdr.CountMessages
		payloadBytes := q.payloadBytes()

		q.hdr.ExtractPtr = q.hdr.AppendPtr
		q.hdr.CountBytes = 0
		q.hdr.CountMessages = 0

		q.log.Debug("queue drained", logging.F("messages", popped))
		q.metrics.RecordPop(popped, payloadBytes)
		q.updateState()
		return q.autoSync()
	}

	var popped, payloadBytes uint64
	for ; popped < n; popped++ {
		length, err := q.popLocked()
		if err != nil {
			q.metrics.RecordPop(popped, payloadBytes)
			return err
		}
		payloadBytes += length
	}

	q.metrics.RecordPop(popped, payloadBytes)
	q.updateState()
	return q.autoSync()
}

// popLocked removes the record at the extract pointer and returns its
// payload length. The queue must not be empty.
func (q *Queue) popLocked() (uint64, error) {
	at := int64(q.hdr.ExtractPtr) //nolint:gosec // G115: pointer bounded by file size
	rh, _, err := q.readRecordHeader(at)
	if err != nil {
		return 0, err
	}

	size := rh.Size()
	q.hdr.ExtractPtr = uint64(q.ring.Region().Advance(at, int64(size))) //nolint:gosec // G115: bounded by region
	q.hdr.CountBytes -= size
	q.hdr.CountMessages--

	q.log.Trace("record popped",
		logging.F("offset", at),
		logging.F("length", rh.Length),
		logging.F("messages", q.hdr.CountMessages),
	)
	return uint64(rh.Length), nil
}
