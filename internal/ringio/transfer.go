package ringio

import (
	"io"
	"syscall"

	"github.com/pkg/errors"
)

// ReadFullAt reads exactly len(p) bytes from r at off.
// Interrupted and short reads are retried; a read that makes no progress
// fails with io.ErrNoProgress and hitting EOF early fails with
// io.ErrUnexpectedEOF.
func ReadFullAt(r io.ReaderAt, p []byte, off int64) error {
	done := 0
	for done < len(p) {
		n, err := r.ReadAt(p[done:], off+int64(done))
		done += n
		if done == len(p) {
			// ReaderAt may report io.EOF alongside a complete read
			return nil
		}
		switch {
		case err == nil:
		case errors.Is(err, syscall.EINTR):
			continue
		case errors.Is(err, io.EOF):
			return io.ErrUnexpectedEOF
		default:
			return err
		}
		if n == 0 {
			return io.ErrNoProgress
		}
	}
	return nil
}

// WriteFullAt writes all of p to w at off, retrying interrupted and short
// writes. A write that makes no progress fails with io.ErrShortWrite.
func WriteFullAt(w io.WriterAt, p []byte, off int64) error {
	done := 0
	for done < len(p) {
		n, err := w.WriteAt(p[done:], off+int64(done))
		done += n
		if done == len(p) {
			return nil
		}
		if err != nil && !errors.Is(err, syscall.EINTR) {
			return err
		}
		if n == 0 && err == nil {
			return io.ErrShortWrite
		}
	}
	return nil
}
