// Package tools locates the external media tools and reports their versions
package tools

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

// ToolType represents an external media tool
type ToolType int

const (
	// ToolFFmpeg concatenates the repeated input
	ToolFFmpeg ToolType = iota
	// ToolFFprobe reads media durations
	ToolFFprobe
)

// String returns the binary name of the tool
func (t ToolType) String() string {
	switch t {
	case ToolFFmpeg:
		return "ffmpeg"
	case ToolFFprobe:
		return "ffprobe"
	default:
		return "unknown"
	}
}

// ToolInfo contains information about an external tool
type ToolInfo struct {
	Type      ToolType // Type of tool
	Binary    string   // Full path to binary
	Version   string   // Version string
	Available bool     // Whether tool is available on system
}

// versionTimeout bounds a single -version invocation
const versionTimeout = 5 * time.Second

var (
	versionPattern = regexp.MustCompile(`version\s+([^\s,]+)`)
	genericPattern = regexp.MustCompile(`(\d+\.\d+(?:\.\d+)?)`)
)

// Detect resolves both tools. Non-empty overrides are used as given (absolute path or
// name on PATH). The error is non-nil when either tool is missing.
func Detect(ffmpegPath, ffprobePath string) (ffmpeg *ToolInfo, ffprobe *ToolInfo, err error) {
	ffmpeg = detect(ToolFFmpeg, ffmpegPath)
	ffprobe = detect(ToolFFprobe, ffprobePath)

	var missing []string
	if !ffmpeg.Available {
		missing = append(missing, ffmpeg.Type.String())
	}
	if !ffprobe.Available {
		missing = append(missing, ffprobe.Type.String())
	}
	if len(missing) > 0 {
		return ffmpeg, ffprobe, fmt.Errorf("%s not found. Install ffmpeg or set tools.ffmpeg / tools.ffprobe in the config",
			strings.Join(missing, " and "))
	}

	return ffmpeg, ffprobe, nil
}

func detect(t ToolType, override string) *ToolInfo {
	info := &ToolInfo{Type: t}

	name := override
	if name == "" {
		name = t.String()
	}

	path, err := FindTool(name)
	if err != nil {
		return info
	}

	info.Binary = path
	info.Available = true
	info.Version, _ = GetVersion(path)
	return info
}

// FindTool searches for a tool in the system PATH.
// Names containing a path separator are checked directly.
func FindTool(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%s not found in PATH: %w", name, err)
	}
	return path, nil
}

// GetVersion runs `<tool> -version` and extracts the version from the first line
func GetVersion(toolPath string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), versionTimeout)
	defer cancel()

	// ffmpeg and ffprobe both use a single dash
	output, err := exec.CommandContext(ctx, toolPath, "-version").Output()
	if err != nil {
		return "", fmt.Errorf("failed to get version for %s: %w", toolPath, err)
	}

	version := parseVersion(string(output))
	if version == "" {
		return "", errors.New("failed to parse version from output")
	}

	return version, nil
}

// parseVersion extracts the version from tool output such as
// "ffmpeg version 6.1.1-3ubuntu5 Copyright (c) 2000-2023" or "ffprobe version N-112345-g1234567"
func parseVersion(output string) string {
	output = strings.TrimSpace(output)
	if output == "" {
		return ""
	}
	firstLine, _, _ := strings.Cut(output, "\n")
	firstLine = strings.TrimSpace(firstLine)

	if matches := versionPattern.FindStringSubmatch(firstLine); len(matches) > 1 {
		return matches[1]
	}

	if matches := genericPattern.FindStringSubmatch(firstLine); len(matches) > 1 {
		return matches[1]
	}

	// Return first line if we can't parse a specific version
	if len(firstLine) < 100 {
		return firstLine
	}

	return ""
}
