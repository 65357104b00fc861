package queue

import (
	"fmt"
	"time"

	"github.com/vnykmshr/persimq/internal/logging"
)

// Get copies the payload of the oldest message into buf and returns its
// length. The message stays in the queue.
//
// If buf is too small, Get returns the required length together with
// ErrBufferTooSmall and the handle stays usable. A payload failing its
// checksum closes the handle.
func (q *Queue) Get(buf []byte) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.checkOpen(); err != nil {
		return 0, err
	}
	if q.isEmpty() {
		return 0, ErrEmpty
	}

	start := time.Now()

	rh, payloadAt, err := q.readRecordHeader(int64(q.hdr.ExtractPtr)) //nolint:gosec // G115: pointer bounded by file size
	if err != nil {
		return 0, err
	}

	n := int(rh.Length)
	if n > len(buf) {
		return n, fmt.Errorf("%w: message is %d bytes, buffer holds %d", ErrBufferTooSmall, n, len(buf))
	}

	if _, err := q.readPayload(rh, buf[:n], payloadAt); err != nil {
		return 0, err
	}

	q.metrics.RecordGet(1, n, time.Since(start))
	return n, nil
}

// Peek returns a copy of the oldest payload without removing it.
func (q *Queue) Peek() ([]byte, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.checkOpen(); err != nil {
		return nil, err
	}
	if q.isEmpty() {
		return nil, ErrEmpty
	}

	start := time.Now()

	rh, payloadAt, err := q.readRecordHeader(int64(q.hdr.ExtractPtr)) //nolint:gosec // G115: pointer bounded by file size
	if err != nil {
		return nil, err
	}

	payload := make([]byte, rh.Length)
	if _, err := q.readPayload(rh, payload, payloadAt); err != nil {
		return nil, err
	}

	q.metrics.RecordGet(1, len(payload), time.Since(start))
	return payload, nil
}

// GetAll copies up to maxMessages payloads, oldest first, into buf without
// removing them. Payloads are packed back to back. It stops before the
// first payload that does not fit in the rest of buf.
//
// total is the number of bytes written to buf and read the number of
// payloads it holds.
func (q *Queue) GetAll(buf []byte, maxMessages uint64) (total int, read uint64, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.checkOpen(); err != nil {
		return 0, 0, err
	}
	if q.isEmpty() {
		return 0, 0, ErrEmpty
	}

	start := time.Now()
	limit := min(maxMessages, q.hdr.CountMessages)
	at := int64(q.hdr.ExtractPtr) //nolint:gosec // G115: pointer bounded by file size

	for read < limit {
		rh, payloadAt, err := q.readRecordHeader(at)
		if err != nil {
			return total, read, err
		}

		n := int(rh.Length)
		if n > len(buf)-total {
			q.log.Debug("get all stopped at buffer limit",
				logging.F("read", read),
				logging.F("next_length", n),
				logging.F("remaining", len(buf)-total),
			)
			break
		}

		next, err := q.readPayload(rh, buf[total:total+n], payloadAt)
		if err != nil {
			return total, read, err
		}

		total += n
		read++
		at = next
	}

	q.metrics.RecordGet(int(read), total, time.Since(start)) //nolint:gosec // G115: read bounded by limit
	return total, read, nil
}
