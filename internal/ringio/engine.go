package ringio

import (
	"io"

	"github.com/pkg/errors"

	"github.com/vnykmshr/persimq/internal/logging"
)

// ErrTransferTooLarge is returned for transfers that would cover the whole
// region or more.
var ErrTransferTooLarge = errors.New("transfer does not fit in region")

// Device is the positioned storage an Engine works on. *os.File satisfies it.
type Device interface {
	io.ReaderAt
	io.WriterAt
}

type direction string

const (
	dirRead  direction = "read"
	dirWrite direction = "write"
)

// Engine performs wraparound reads and writes within a Region of a Device.
type Engine struct {
	dev    Device
	region Region
	logger logging.Logger
}

// NewEngine creates an engine over the given region of dev.
// A nil logger disables diagnostics.
func NewEngine(dev Device, region Region, logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NoopLogger{}
	}
	return &Engine{
		dev:    dev,
		region: region,
		logger: logger,
	}
}

// Region returns the ring the engine operates on.
func (e *Engine) Region() Region {
	return e.region
}

// ReadAt fills p starting at off and returns the offset following the
// last byte read.
func (e *Engine) ReadAt(p []byte, off int64) (int64, error) {
	return e.transfer(dirRead, p, off)
}

// WriteAt writes p starting at off and returns the offset following the
// last byte written.
func (e *Engine) WriteAt(p []byte, off int64) (int64, error) {
	return e.transfer(dirWrite, p, off)
}

func (e *Engine) transfer(dir direction, p []byte, off int64) (int64, error) {
	n := int64(len(p))
	size := e.region.Size()
	if n >= size {
		return off, errors.Wrapf(ErrTransferTooLarge, "%s of %d bytes at %#x (region %d bytes)", dir, n, off, size)
	}

	off = e.region.Normalize(off)
	if n == 0 {
		return off, nil
	}

	head := e.region.High - off
	if n <= head {
		e.logger.Debug("ring transfer",
			logging.F("op", string(dir)),
			logging.F("offset", off),
			logging.F("length", n),
		)
		if err := e.do(dir, p, off); err != nil {
			return off, errors.Wrapf(err, "%s of %d bytes at %#x", dir, n, off)
		}
		return e.region.Normalize(off + n), nil
	}

	tail := n - head
	e.logger.Debug("ring transfer wraps",
		logging.F("op", string(dir)),
		logging.F("offset", off),
		logging.F("head", head),
		logging.F("tail", tail),
	)
	if err := e.do(dir, p[:head], off); err != nil {
		return off, errors.Wrapf(err, "%s of %d bytes at %#x", dir, head, off)
	}
	if err := e.do(dir, p[head:], e.region.Low); err != nil {
		return off, errors.Wrapf(err, "%s of %d bytes at %#x after wrap", dir, tail, e.region.Low)
	}
	return e.region.Low + tail, nil
}

func (e *Engine) do(dir direction, p []byte, off int64) error {
	if dir == dirRead {
		return ReadFullAt(e.dev, p, off)
	}
	return WriteFullAt(e.dev, p, off)
}
