//go:build windows

package queue

import (
	"golang.org/x/sys/windows"
)

// availableBytes returns the space available to the caller on the volume
// holding dir.
func availableBytes(dir string) (uint64, error) {
	dirUTF16, err := windows.UTF16PtrFromString(dir)
	if err != nil {
		return 0, err
	}

	var freeBytesAvailable, totalBytes, totalFreeBytes uint64
	if err := windows.GetDiskFreeSpaceEx(dirUTF16, &freeBytesAvailable, &totalBytes, &totalFreeBytes); err != nil {
		return 0, err
	}
	return freeBytesAvailable, nil
}
