package extender

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

// ConcatRequest describes one ffmpeg concat invocation
type ConcatRequest struct {
	ManifestPath string
	OutputPath   string
	Overwrite    bool
}

// Runner executes a concatenation and streams its diagnostic lines to onLine
type Runner interface {
	Run(ctx context.Context, req ConcatRequest, onLine func(string)) (int, error)
}

// stderrTailSize is how many diagnostic lines are kept for error reports
const stderrTailSize = 8

// maxStderrLine bounds a single diagnostic line; longer lines arrive in pieces
const maxStderrLine = 64 * 1024

// progressKV matches the key=value lines written by -progress
var progressKV = regexp.MustCompile(`^[a-z_0-9]+=\S*$`)

// FFmpegRunner runs ffmpeg with the concat demuxer in stream copy mode
type FFmpegRunner struct {
	binary         string
	terminateGrace time.Duration
	logger         *slog.Logger
}

// NewFFmpegRunner creates a runner using binary, or "ffmpeg" from PATH when empty.
// After cancellation the process gets terminateGrace to exit before it is killed.
func NewFFmpegRunner(binary string, terminateGrace time.Duration, logger *slog.Logger) *FFmpegRunner {
	if binary == "" {
		binary = "ffmpeg"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FFmpegRunner{binary: binary, terminateGrace: terminateGrace, logger: logger}
}

// concatArgs builds the ffmpeg command line for req
func concatArgs(req ConcatRequest) []string {
	overwrite := "-n"
	if req.Overwrite {
		overwrite = "-y"
	}
	return []string{
		"-hide_banner",
		"-nostdin",
		overwrite,
		"-f", "concat",
		"-safe", "0",
		"-i", req.ManifestPath,
		"-c", "copy",
		"-progress", "pipe:2",
		req.OutputPath,
	}
}

// Run implements Runner. The returned code is -1 when no exit status is available.
func (r *FFmpegRunner) Run(ctx context.Context, req ConcatRequest, onLine func(string)) (int, error) {
	cmd := exec.CommandContext(ctx, r.binary, concatArgs(req)...)
	setupProcessAttributes(cmd)
	if r.terminateGrace > 0 {
		cmd.Cancel = func() error {
			return terminateProcess(cmd.Process)
		}
		// Kill escalation if the process ignores the terminate request
		cmd.WaitDelay = r.terminateGrace
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return -1, &LaunchError{Binary: r.binary, Err: err}
	}

	if err := cmd.Start(); err != nil {
		return -1, &LaunchError{Binary: r.binary, Err: err}
	}
	r.logger.Debug("ffmpeg started", "pid", cmd.Process.Pid, "output", req.OutputPath)

	tail := newLineTail(stderrTailSize)
	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 0, 64*1024), 2*maxStderrLine)
	scanner.Split(scanStderr)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !isStatsLine(line) {
			tail.add(line)
			r.logger.Debug("ffmpeg", "line", line)
		}
		if onLine != nil {
			onLine(line)
		}
	}
	if err := scanner.Err(); err != nil {
		r.logger.Warn("failed reading ffmpeg output", "error", err)
		// ffmpeg blocks on a full pipe, so keep reading until it exits
		_, _ = io.Copy(io.Discard, stderr)
	}

	waitErr := cmd.Wait()
	code := -1
	if cmd.ProcessState != nil {
		code = cmd.ProcessState.ExitCode()
	}

	// A clean exit wins over a cancel that arrived after ffmpeg finished
	if cmd.ProcessState != nil && cmd.ProcessState.Success() {
		return 0, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return code, fmt.Errorf("%w: %w", ErrCancelled, ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return exitErr.ExitCode(), &ToolFailure{ExitCode: exitErr.ExitCode(), StderrTail: tail.lines()}
	}
	if waitErr == nil {
		waitErr = errors.New("no exit status")
	}
	return code, fmt.Errorf("ffmpeg did not exit cleanly: %w", waitErr)
}

// isStatsLine reports lines that only carry progress counters
func isStatsLine(line string) bool {
	return strings.HasPrefix(line, "frame=") || strings.HasPrefix(line, "size=") || progressKV.MatchString(line)
}

// scanLinesCR is bufio.ScanLines that also breaks on a bare carriage return,
// which ffmpeg uses to redraw its stats line
func scanLinesCR(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		advance = i + 1
		if data[i] == '\r' && i+1 < len(data) && data[i+1] == '\n' {
			advance++
		}
		return advance, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// scanStderr splits like scanLinesCR but cuts lines longer than maxStderrLine
// into pieces, so one oversized diagnostic never stops the reader
func scanStderr(data []byte, atEOF bool) (advance int, token []byte, err error) {
	advance, token, err = scanLinesCR(data, atEOF)
	if advance == 0 && token == nil && err == nil && len(data) >= maxStderrLine {
		return maxStderrLine, data[:maxStderrLine], nil
	}
	return advance, token, err
}

// lineTail keeps the last n lines
type lineTail struct {
	buf  []string
	size int
}

func newLineTail(size int) *lineTail {
	return &lineTail{buf: make([]string, 0, size), size: size}
}

func (t *lineTail) add(line string) {
	if len(t.buf) == t.size {
		copy(t.buf, t.buf[1:])
		t.buf = t.buf[:t.size-1]
	}
	t.buf = append(t.buf, line)
}

func (t *lineTail) lines() []string {
	out := make([]string, len(t.buf))
	copy(out, t.buf)
	return out
}
