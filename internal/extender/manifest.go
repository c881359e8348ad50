package extender

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// WriteManifest writes a concat demuxer list naming source repeat times and returns its path.
// The returned cleanup removes the file and is safe to call more than once.
func WriteManifest(dir, source string, repeat int) (string, func(), error) {
	if repeat < 1 {
		return "", func() {}, fmt.Errorf("repeat must be at least 1, got %d", repeat)
	}
	if dir == "" {
		dir = os.TempDir()
	}

	abs, err := filepath.Abs(source)
	if err != nil {
		return "", func() {}, fmt.Errorf("failed to resolve %s: %w", source, err)
	}

	path := filepath.Join(dir, "concat-"+uuid.New().String()+".txt")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return "", func() {}, fmt.Errorf("failed to create manifest: %w", err)
	}

	cleanup := func() {
		_ = os.Remove(path)
	}

	w := bufio.NewWriter(f)
	line := manifestLine(abs)
	for i := 0; i < repeat; i++ {
		if _, err := w.WriteString(line); err != nil {
			_ = f.Close()
			cleanup()
			return "", func() {}, fmt.Errorf("failed to write manifest: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		cleanup()
		return "", func() {}, fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", func() {}, fmt.Errorf("failed to close manifest: %w", err)
	}

	return path, cleanup, nil
}

// manifestLine quotes path for the concat demuxer: ' becomes '\''
func manifestLine(path string) string {
	return "file '" + strings.ReplaceAll(path, "'", `'\''`) + "'\n"
}
