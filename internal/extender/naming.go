package extender

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// videoExtensions are the container formats offered for selection
var videoExtensions = map[string]bool{
	".mp4": true, ".avi": true, ".mov": true, ".mkv": true, ".flv": true,
	".wmv": true, ".webm": true, ".m4v": true, ".mpg": true, ".mpeg": true,
	".m2v": true, ".m2ts": true, ".mts": true, ".ts": true, ".vob": true,
	".3gp": true, ".3g2": true, ".f4v": true, ".asf": true, ".rmvb": true,
	".rm": true, ".ogv": true, ".mxf": true, ".dv": true, ".divx": true,
	".xvid": true, ".mpv": true, ".m2p": true, ".mp2": true, ".mpeg2": true,
	".ogm": true,
}

// IsVideoFile reports whether path has an accepted video extension (case-insensitive).
// Content is not inspected.
func IsVideoFile(path string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(path))]
}

// VideoExtensions returns the accepted extensions, with leading dot
func VideoExtensions() []string {
	exts := make([]string, 0, len(videoExtensions))
	for ext := range videoExtensions {
		exts = append(exts, ext)
	}
	return exts
}

// FilterVideoFiles keeps video files in their original order, dropping duplicates
func FilterVideoFiles(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	var out []string
	for _, p := range paths {
		key := filepath.Clean(p)
		if !IsVideoFile(p) || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}

// CollectInputs turns command line arguments into an ordered, de-duplicated list of video files.
// Directories are expanded one level; entries without a video extension are skipped and returned separately.
func CollectInputs(args []string) (files []string, skipped []string, err error) {
	seen := make(map[string]bool)
	add := func(p string) {
		if !IsVideoFile(p) {
			skipped = append(skipped, p)
			return
		}
		key := filepath.Clean(p)
		if seen[key] {
			return
		}
		seen[key] = true
		files = append(files, p)
	}

	for _, arg := range args {
		info, statErr := os.Stat(arg)
		if statErr != nil {
			return nil, nil, fmt.Errorf("cannot access %s: %w", arg, statErr)
		}
		if !info.IsDir() {
			add(arg)
			continue
		}

		entries, readErr := os.ReadDir(arg)
		if readErr != nil {
			return nil, nil, fmt.Errorf("cannot read directory %s: %w", arg, readErr)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			add(filepath.Join(arg, entry.Name()))
		}
	}

	return files, skipped, nil
}

// OutputPath derives the output file name for source.
//
//	times > 0:    <stem>_<times>times<ext>
//	minutes > 0:  <stem>_<H>h<M>m<ext>
//	otherwise:    <stem>_<H>h<ext>
//
// The file is placed next to the source unless outputDir is set.
func OutputPath(source, outputDir string, hours, minutes, times int) string {
	ext := filepath.Ext(source)
	stem := strings.TrimSuffix(filepath.Base(source), ext)

	var suffix string
	switch {
	case times > 0:
		suffix = fmt.Sprintf("%dtimes", times)
	case minutes > 0:
		suffix = fmt.Sprintf("%dh%dm", hours, minutes)
	default:
		suffix = fmt.Sprintf("%dh", hours)
	}

	dir := filepath.Dir(source)
	if outputDir != "" {
		dir = outputDir
	}

	return filepath.Join(dir, stem+"_"+suffix+ext)
}
