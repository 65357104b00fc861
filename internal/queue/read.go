package queue

import (
	"fmt"

	"github.com/vnykmshr/persimq/internal/format"
)

// readRecordHeader reads and checks the record header at off. It returns
// the header and the offset of its payload. Failures close the handle.
func (q *Queue) readRecordHeader(off int64) (format.RecordHeader, int64, error) {
	buf := make([]byte, format.RecordHeaderSize)
	next, err := q.ring.ReadAt(buf, off)
	if err != nil {
		q.metrics.RecordReadError()
		return format.RecordHeader{}, 0, q.fail(fmt.Errorf("%w: failed to read record header at %d: %w", ErrIO, off, err))
	}

	rh, err := format.UnmarshalRecordHeader(buf)
	if err != nil {
		return format.RecordHeader{}, 0, q.corrupt(fmt.Errorf("%w at offset %d: %v", ErrBadMagic, off, err))
	}
	if rh.Size() > q.hdr.CountBytes {
		return format.RecordHeader{}, 0, q.corrupt(fmt.Errorf("%w: record at offset %d claims %d bytes, queue holds %d",
			ErrCorruption, off, rh.Size(), q.hdr.CountBytes))
	}

	return rh, next, nil
}

// readPayload fills buf with the payload at off and verifies it against
// rh. It returns the offset following the payload. Failures close the
// handle.
func (q *Queue) readPayload(rh format.RecordHeader, buf []byte, off int64) (int64, error) {
	next, err := q.ring.ReadAt(buf, off)
	if err != nil {
		q.metrics.RecordReadError()
		return 0, q.fail(fmt.Errorf("%w: failed to read payload at %d: %w", ErrIO, off, err))
	}
	if err := rh.VerifyPayload(buf); err != nil {
		return 0, q.corrupt(fmt.Errorf("%w at offset %d: %v", ErrChecksumMismatch, off, err))
	}
	return next, nil
}
