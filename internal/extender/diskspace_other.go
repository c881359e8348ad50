//go:build !(unix || windows)

package extender

func freeSpace(dir string) (uint64, error) {
	return 0, errFreeSpaceUnknown
}
