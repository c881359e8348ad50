package extender

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoInputs is returned when a job has no files
	ErrNoInputs = errors.New("no input files")
	// ErrInvalidIntent is returned for negative values or minutes outside 0-59
	ErrInvalidIntent = errors.New("invalid repetition: hours, minutes and times must be non-negative and minutes at most 59")
	// ErrNoRepeatTarget is returned when neither a repeat count nor a target duration is set
	ErrNoRepeatTarget = errors.New("nothing to do: set times or a target duration")
	// ErrInvalidDuration is returned when a probed duration cannot be used for planning
	ErrInvalidDuration = errors.New("media duration must be positive")
	// ErrCancelled marks work stopped by the user
	ErrCancelled = errors.New("processing cancelled")
	// ErrAlreadyRunning is returned when starting a second batch
	ErrAlreadyRunning = errors.New("a batch is already running")
	// ErrNotRunning is returned when cancel is requested while idle
	ErrNotRunning = errors.New("no batch is running")
)

// ProbeError reports that a file's duration could not be determined
type ProbeError struct {
	Path   string
	Output string
	Err    error
}

func (e *ProbeError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("probe %s: %v (output: %q)", e.Path, e.Err, e.Output)
	}
	return fmt.Sprintf("probe %s: %v", e.Path, e.Err)
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}

// LaunchError reports that the concat process could not be started
type LaunchError struct {
	Binary string
	Err    error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.Binary, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// ToolFailure reports a non-zero exit from the concat process
type ToolFailure struct {
	ExitCode   int
	StderrTail []string
}

func (e *ToolFailure) Error() string {
	if len(e.StderrTail) == 0 {
		return fmt.Sprintf("ffmpeg exited with code %d", e.ExitCode)
	}
	return fmt.Sprintf("ffmpeg exited with code %d: %s", e.ExitCode, strings.Join(e.StderrTail, " | "))
}
