package queue

import (
	"github.com/vnykmshr/persimq/internal/format"
	"github.com/vnykmshr/persimq/internal/logging"
)

// Stats is a point-in-time view of a queue handle.
type Stats struct {
	Path      string
	State     State
	Verbosity logging.Verbosity

	// FileSize is the size of the queue file, header block included
	FileSize uint64

	// RegionSize is the size of the circular data region
	RegionSize uint64

	AppendPtr  uint64
	ExtractPtr uint64

	// Messages is the number of queued messages
	Messages uint64

	// StoredBytes counts queued records, record headers included
	StoredBytes uint64

	// PayloadBytes counts queued payload bytes only
	PayloadBytes uint64

	// FreeBytes is the space left for new records, record headers included
	FreeBytes uint64
}

// Stats returns a snapshot of the queue state.
func (q *Queue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()

	return Stats{
		Path:         q.path,
		State:        q.state,
		Verbosity:    q.log.Verbosity(),
		FileSize:     q.hdr.FileSize,
		RegionSize:   q.hdr.FileSize - format.HeaderSize,
		AppendPtr:    q.hdr.AppendPtr,
		ExtractPtr:   q.hdr.ExtractPtr,
		Messages:     q.hdr.CountMessages,
		StoredBytes:  q.hdr.CountBytes,
		PayloadBytes: q.payloadBytes(),
		FreeBytes:    q.bytesFree(),
	}
}

// IsEmpty reports whether the queue holds no messages.
func (q *Queue) IsEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.isEmpty()
}

// MessagesAvailable returns the number of queued messages.
func (q *Queue) MessagesAvailable() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.hdr.CountMessages
}

// BytesAvailable returns the number of queued payload bytes, excluding
// record headers.
func (q *Queue) BytesAvailable() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.payloadBytes()
}

// BytesFree returns the space left for new records. A payload of n bytes
// needs n+RecordHeaderSize free bytes.
func (q *Queue) BytesFree() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.bytesFree()
}

// Clear discards every message and persists the empty header.
func (q *Queue) Clear() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.checkOpen(); err != nil {
		return err
	}

	dropped := q.hdr.CountMessages
	q.hdr = *format.NewFileHeader(q.hdr.FileSize)

	q.log.Info("queue cleared", logging.F("path", q.path), logging.F("dropped", dropped))
	q.metrics.RecordClear()
	q.updateState()

	return q.syncLocked()
}

func (q *Queue) isEmpty() bool {
	return q.hdr.CountBytes == 0
}

func (q *Queue) payloadBytes() uint64 {
	return q.hdr.CountBytes - q.hdr.CountMessages*format.RecordHeaderSize
}

func (q *Queue) bytesFree() uint64 {
	return q.hdr.FileSize - q.hdr.CountBytes - format.HeaderSize
}

// updateState publishes the fill level to the metrics collector.
func (q *Queue) updateState() {
	q.metrics.UpdateQueueState(q.hdr.CountMessages, q.hdr.CountBytes, q.bytesFree())
}
