//go:build !unix && !windows

package queue

func availableBytes(string) (uint64, error) {
	return 0, errDiskSpaceUnsupported
}
