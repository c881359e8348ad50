package extender

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Prober reports the duration of a media file in seconds
type Prober interface {
	Probe(ctx context.Context, path string) (float64, error)
}

// commandResult is the captured outcome of one process execution
type commandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// commandRunner abstracts process execution for testability
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) (commandResult, error)
}

// execRunner executes commands via os/exec
type execRunner struct{}

// Run executes one command and captures stdout, stderr and the exit code
func (r *execRunner) Run(ctx context.Context, name string, args ...string) (commandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	setupProcessAttributes(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := commandResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		result.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
		return result, err
	}

	return result, nil
}

// FFprobe reads the container duration with ffprobe
type FFprobe struct {
	binary string
	runner commandRunner
}

// NewFFprobe creates a prober using binary, or "ffprobe" from PATH when empty
func NewFFprobe(binary string) *FFprobe {
	if binary == "" {
		binary = "ffprobe"
	}
	return &FFprobe{binary: binary, runner: &execRunner{}}
}

// probeArgs asks for the format duration as a bare number
func probeArgs(path string) []string {
	return []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}
}

// Probe implements Prober
func (p *FFprobe) Probe(ctx context.Context, path string) (float64, error) {
	res, err := p.runner.Run(ctx, p.binary, probeArgs(path)...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, fmt.Errorf("%w: %w", ErrCancelled, ctxErr)
		}
		return 0, &ProbeError{Path: path, Output: strings.TrimSpace(res.Stderr), Err: err}
	}

	out := strings.TrimSpace(res.Stdout)
	duration, err := strconv.ParseFloat(out, 64)
	if err != nil {
		return 0, &ProbeError{Path: path, Output: out, Err: fmt.Errorf("unparseable duration: %w", err)}
	}
	if duration <= 0 || math.IsNaN(duration) || math.IsInf(duration, 0) {
		return 0, &ProbeError{Path: path, Output: out, Err: ErrInvalidDuration}
	}

	return duration, nil
}
