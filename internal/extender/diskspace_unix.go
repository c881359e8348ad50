//go:build unix

package extender

import (
	"fmt"
	"syscall"
)

// freeSpace returns the bytes available to unprivileged users under dir
func freeSpace(dir string) (uint64, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(dir, &stat); err != nil {
		return 0, fmt.Errorf("failed to get disk stats: %w", err)
	}
	return uint64(stat.Bavail) * uint64(stat.Bsize), nil
}
