package extender

import (
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
)

// errFreeSpaceUnknown is returned by freeSpace on platforms without a probe
var errFreeSpaceUnknown = errors.New("free space unknown")

// checkDiskSpace verifies that the output directory can hold repeat copies of source
// plus the configured headroom. When free space cannot be determined the check passes.
func checkDiskSpace(source, outputDir string, repeat, minFreeMB int) error {
	info, err := os.Stat(source)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", source, err)
	}

	required := uint64(info.Size())*uint64(repeat) + uint64(minFreeMB)*1024*1024

	available, err := freeSpace(outputDir)
	if err != nil {
		return nil
	}

	if available < required {
		return fmt.Errorf("insufficient disk space: %s free, %s required",
			humanize.IBytes(available), humanize.IBytes(required))
	}
	return nil
}
