package queue

import (
	"errors"
	"fmt"
)

// errDiskSpaceUnsupported is returned by availableBytes on platforms that
// cannot report free space. The check is skipped there.
var errDiskSpaceUnsupported = errors.New("disk space query not supported")

// checkDiskSpace checks that the file system holding dir can absorb need
// more bytes.
func checkDiskSpace(dir string, need uint64) error {
	if need == 0 {
		return nil
	}

	available, err := availableBytes(dir)
	if errors.Is(err, errDiskSpaceUnsupported) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: failed to check disk space: %w", ErrIO, err)
	}

	if available < need {
		return fmt.Errorf("%w: insufficient disk space: %d bytes available, %d bytes required",
			ErrIO, available, need)
	}

	return nil
}
