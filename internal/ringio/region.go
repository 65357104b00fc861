// Package ringio implements positioned I/O over a circular byte region of a
// file. Transfers that run past the end of the region continue at its start.
package ringio

import (
	"github.com/pkg/errors"
)

// Region is the half-open window [Low, High) of absolute file offsets that
// behaves as a ring.
type Region struct {
	Low  int64
	High int64
}

// NewRegion returns the region [low, high).
func NewRegion(low, high int64) (Region, error) {
	if low < 0 || high <= low {
		return Region{}, errors.Errorf("invalid region [%d, %d)", low, high)
	}
	return Region{Low: low, High: high}, nil
}

// Size returns the number of bytes in the region.
func (r Region) Size() int64 {
	return r.High - r.Low
}

// Contains reports whether off lies inside the region.
func (r Region) Contains(off int64) bool {
	return off >= r.Low && off < r.High
}

// Normalize maps an offset into the region. Offsets below Low are clamped
// to Low; everything else wraps modulo the region size.
func (r Region) Normalize(off int64) int64 {
	if off < r.Low {
		return r.Low
	}
	return (off-r.Low)%r.Size() + r.Low
}

// Advance returns the offset n bytes after off, wrapping at High.
func (r Region) Advance(off, n int64) int64 {
	off = r.Normalize(off)
	return (off-r.Low+n%r.Size())%r.Size() + r.Low
}
