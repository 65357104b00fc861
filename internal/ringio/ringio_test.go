package ringio

import (
	"bytes"
	"io"
	"syscall"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memDevice is an in-memory Device that records every positioned call.
type memDevice struct {
	data  []byte
	calls []call
}

type call struct {
	op  string
	off int64
	n   int
}

func newMemDevice(size int) *memDevice {
	return &memDevice{data: make([]byte, size)}
}

func (d *memDevice) ReadAt(p []byte, off int64) (int, error) {
	d.calls = append(d.calls, call{"read", off, len(p)})
	if off >= int64(len(d.data)) {
		return 0, io.EOF
	}
	n := copy(p, d.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (d *memDevice) WriteAt(p []byte, off int64) (int, error) {
	d.calls = append(d.calls, call{"write", off, len(p)})
	return copy(d.data[off:], p), nil
}

// choppyDevice returns interrupts and short transfers before delegating.
type choppyDevice struct {
	*memDevice
	interrupts int
	maxChunk   int
}

func (d *choppyDevice) ReadAt(p []byte, off int64) (int, error) {
	if d.interrupts > 0 {
		d.interrupts--
		return 0, syscall.EINTR
	}
	if len(p) > d.maxChunk {
		p = p[:d.maxChunk]
	}
	return d.memDevice.ReadAt(p, off)
}

func (d *choppyDevice) WriteAt(p []byte, off int64) (int, error) {
	if d.interrupts > 0 {
		d.interrupts--
		return 0, syscall.EINTR
	}
	if len(p) > d.maxChunk {
		// models a raw pwrite that accepted only part of the buffer
		return d.memDevice.WriteAt(p[:d.maxChunk], off)
	}
	return d.memDevice.WriteAt(p, off)
}

// brokenDevice fails every transfer.
type brokenDevice struct{ err error }

func (d brokenDevice) ReadAt([]byte, int64) (int, error)  { return 0, d.err }
func (d brokenDevice) WriteAt([]byte, int64) (int, error) { return 0, d.err }

// stuckDevice reports success without transferring anything.
type stuckDevice struct{}

func (stuckDevice) ReadAt([]byte, int64) (int, error)  { return 0, nil }
func (stuckDevice) WriteAt([]byte, int64) (int, error) { return 0, nil }

func TestNewRegion(t *testing.T) {
	r, err := NewRegion(45, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(55), r.Size())

	_, err = NewRegion(100, 100)
	assert.Error(t, err)

	_, err = NewRegion(-1, 10)
	assert.Error(t, err)
}

func TestRegion_Normalize(t *testing.T) {
	r := Region{Low: 45, High: 100}

	tests := []struct {
		name string
		off  int64
		want int64
	}{
		{"below low clamps", 3, 45},
		{"zero clamps", 0, 45},
		{"low", 45, 45},
		{"inside", 70, 70},
		{"last byte", 99, 99},
		{"high wraps", 100, 45},
		{"past high", 110, 55},
		{"several laps", 45 + 3*55 + 7, 52},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Normalize(tt.off))
			assert.True(t, r.Contains(r.Normalize(tt.off)))
		})
	}
}

func TestRegion_Advance(t *testing.T) {
	r := Region{Low: 45, High: 100}

	assert.Equal(t, int64(53), r.Advance(45, 8))
	assert.Equal(t, int64(45), r.Advance(90, 10))
	assert.Equal(t, int64(50), r.Advance(90, 15))
	assert.Equal(t, int64(90), r.Advance(90, 55))
	assert.Equal(t, int64(46), r.Advance(0, 1))
}

func TestEngine_WriteRead_NoWrap(t *testing.T) {
	dev := newMemDevice(100)
	e := NewEngine(dev, Region{Low: 45, High: 100}, nil)

	next, err := e.WriteAt([]byte("hello"), 50)
	require.NoError(t, err)
	assert.Equal(t, int64(55), next)
	assert.Equal(t, []byte("hello"), dev.data[50:55])
	assert.Len(t, dev.calls, 1)

	buf := make([]byte, 5)
	next, err = e.ReadAt(buf, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(55), next)
	assert.Equal(t, []byte("hello"), buf)
}

func TestEngine_WriteEndsExactlyAtHigh(t *testing.T) {
	dev := newMemDevice(100)
	e := NewEngine(dev, Region{Low: 45, High: 100}, nil)

	next, err := e.WriteAt([]byte("abcde"), 95)
	require.NoError(t, err)
	assert.Equal(t, int64(45), next)
	assert.Len(t, dev.calls, 1, "a window ending at High must not split")
}

func TestEngine_WriteRead_Wrap(t *testing.T) {
	dev := newMemDevice(100)
	e := NewEngine(dev, Region{Low: 45, High: 100}, nil)

	payload := []byte("0123456789")
	next, err := e.WriteAt(payload, 96)
	require.NoError(t, err)
	assert.Equal(t, int64(51), next)

	assert.Equal(t, []byte("0123"), dev.data[96:100])
	assert.Equal(t, []byte("456789"), dev.data[45:51])
	require.Len(t, dev.calls, 2)
	assert.Equal(t, call{"write", 96, 4}, dev.calls[0])
	assert.Equal(t, call{"write", 45, 6}, dev.calls[1])

	buf := make([]byte, len(payload))
	next, err = e.ReadAt(buf, 96)
	require.NoError(t, err)
	assert.Equal(t, int64(51), next)
	assert.Equal(t, payload, buf)
}

func TestEngine_NormalizesStartOffset(t *testing.T) {
	dev := newMemDevice(100)
	e := NewEngine(dev, Region{Low: 45, High: 100}, nil)

	next, err := e.WriteAt([]byte("xy"), 100)
	require.NoError(t, err)
	assert.Equal(t, int64(47), next)
	assert.Equal(t, []byte("xy"), dev.data[45:47])

	next, err = e.WriteAt([]byte("z"), 10)
	require.NoError(t, err)
	assert.Equal(t, int64(46), next)
	assert.Equal(t, byte('z'), dev.data[45])
}

func TestEngine_ZeroLength(t *testing.T) {
	dev := newMemDevice(100)
	e := NewEngine(dev, Region{Low: 45, High: 100}, nil)

	next, err := e.WriteAt(nil, 120)
	require.NoError(t, err)
	assert.Equal(t, int64(65), next)
	assert.Empty(t, dev.calls)
}

func TestEngine_TransferTooLarge(t *testing.T) {
	dev := newMemDevice(100)
	e := NewEngine(dev, Region{Low: 45, High: 100}, nil)

	_, err := e.WriteAt(make([]byte, 55), 45)
	assert.True(t, errors.Is(err, ErrTransferTooLarge))

	_, err = e.ReadAt(make([]byte, 80), 45)
	assert.True(t, errors.Is(err, ErrTransferTooLarge))

	assert.Empty(t, dev.calls)

	_, err = e.WriteAt(make([]byte, 54), 45)
	assert.NoError(t, err)
}

func TestEngine_RoundTripEveryStartOffset(t *testing.T) {
	region := Region{Low: 45, High: 77}
	payload := []byte("ring buffer payload!")

	for start := region.Low; start < region.High; start++ {
		dev := newMemDevice(int(region.High))
		e := NewEngine(dev, region, nil)

		wnext, err := e.WriteAt(payload, start)
		require.NoError(t, err)

		buf := make([]byte, len(payload))
		rnext, err := e.ReadAt(buf, start)
		require.NoError(t, err)

		assert.Equal(t, payload, buf, "start=%d", start)
		assert.Equal(t, wnext, rnext)
		assert.Equal(t, region.Advance(start, int64(len(payload))), wnext)
		assert.True(t, bytes.Equal(dev.data[:region.Low], make([]byte, region.Low)), "header area touched at start=%d", start)
	}
}

func TestEngine_DeviceFailure(t *testing.T) {
	e := NewEngine(brokenDevice{err: syscall.EIO}, Region{Low: 45, High: 100}, nil)

	_, err := e.WriteAt([]byte("data"), 50)
	require.Error(t, err)
	assert.True(t, errors.Is(err, syscall.EIO))

	_, err = e.ReadAt(make([]byte, 20), 90)
	require.Error(t, err)
	assert.True(t, errors.Is(err, syscall.EIO))
}

func TestReadFullAt_RetriesInterruptsAndShortReads(t *testing.T) {
	mem := newMemDevice(64)
	copy(mem.data, "abcdefghijklmnopqrstuvwxyz")
	dev := &choppyDevice{memDevice: mem, interrupts: 2, maxChunk: 3}

	buf := make([]byte, 10)
	require.NoError(t, ReadFullAt(dev, buf, 5))
	assert.Equal(t, []byte("fghijklmno"), buf)
}

func TestWriteFullAt_RetriesInterruptsAndShortWrites(t *testing.T) {
	mem := newMemDevice(64)
	dev := &choppyDevice{memDevice: mem, interrupts: 1, maxChunk: 4}

	require.NoError(t, WriteFullAt(dev, []byte("persistent"), 20))
	assert.Equal(t, []byte("persistent"), mem.data[20:30])
}

func TestReadFullAt_UnexpectedEOF(t *testing.T) {
	dev := newMemDevice(10)
	err := ReadFullAt(dev, make([]byte, 8), 6)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestTransfer_NoProgress(t *testing.T) {
	assert.ErrorIs(t, ReadFullAt(stuckDevice{}, make([]byte, 4), 0), io.ErrNoProgress)
	assert.ErrorIs(t, WriteFullAt(stuckDevice{}, make([]byte, 4), 0), io.ErrShortWrite)
}
