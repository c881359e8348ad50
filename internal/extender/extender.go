// Package extender repeats video files by concatenating them with themselves through ffmpeg.
package extender

import (
	"context"
	"time"
)

// Repeater defines the batch operations offered to a front end
type Repeater interface {
	// Run control
	Start(ctx context.Context, job Job) error
	Run(ctx context.Context, job Job) (Summary, error)
	Cancel() error
	Wait() Summary
	State() RunState

	// Event stream
	Subscribe(fn func(Event))
}

// Job is an ordered list of inputs plus the repetition intent.
// Times takes precedence over Hours/Minutes when greater than zero.
type Job struct {
	Files   []string `json:"files"`
	Hours   int      `json:"hours"`
	Minutes int      `json:"minutes"`
	Times   int      `json:"times"`
}

// TargetSeconds returns the requested total duration in seconds
func (j Job) TargetSeconds() int {
	return j.Hours*3600 + j.Minutes*60
}

// Validate checks the repetition intent before any file is touched
func (j Job) Validate() error {
	if len(j.Files) == 0 {
		return ErrNoInputs
	}
	if j.Hours < 0 || j.Minutes < 0 || j.Times < 0 {
		return ErrInvalidIntent
	}
	if j.Minutes > 59 {
		return ErrInvalidIntent
	}
	if j.Times == 0 && j.TargetSeconds() == 0 {
		return ErrNoRepeatTarget
	}
	return nil
}

// FileTask is one input file moving through the pipeline
type FileTask struct {
	Index        int        `json:"index"`
	SourcePath   string     `json:"source_path"`
	Duration     float64    `json:"duration"` // seconds
	Repeat       int        `json:"repeat"`
	OutputPath   string     `json:"output_path"`
	ManifestPath string     `json:"manifest_path"`
	Progress     int        `json:"progress"` // 0 - 100
	Status       TaskStatus `json:"status"`
	ExitCode     int        `json:"exit_code"`
	Error        string     `json:"error,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`

	recordID uint // run_files row, 0 until first saved
}

// TotalSeconds is the expected duration of the output
func (t *FileTask) TotalSeconds() float64 {
	return t.Duration * float64(t.Repeat)
}

// TaskStatus represents the status of a file task
type TaskStatus string

const (
	StatusPending       TaskStatus = "pending"
	StatusProbing       TaskStatus = "probing"
	StatusConcatenating TaskStatus = "concatenating"
	StatusCompleted     TaskStatus = "completed"
	StatusFailed        TaskStatus = "failed"
	StatusCancelled     TaskStatus = "cancelled"
)

// String returns the string representation of TaskStatus
func (s TaskStatus) String() string {
	return string(s)
}

// IsActive returns true if the task is being worked on
func (s TaskStatus) IsActive() bool {
	return s == StatusProbing || s == StatusConcatenating
}

// IsComplete returns true if the task is in a terminal state
func (s TaskStatus) IsComplete() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// RunState is the batch state machine: idle -> running -> completed | cancelled
type RunState string

const (
	StateIdle      RunState = "idle"
	StateRunning   RunState = "running"
	StateCompleted RunState = "completed"
	StateCancelled RunState = "cancelled"
)

// FileResult is the outcome of one file in a finished batch
type FileResult struct {
	Path       string     `json:"path"`
	OutputPath string     `json:"output_path,omitempty"`
	Repeat     int        `json:"repeat"`
	Status     TaskStatus `json:"status"`
	Err        error      `json:"-"`
}

// Summary describes a finished (or running) batch
type Summary struct {
	RunID     string        `json:"run_id"`
	State     RunState      `json:"state"`
	Files     []FileResult  `json:"files"`
	Completed int           `json:"completed"`
	Failed    int           `json:"failed"`
	Skipped   int           `json:"skipped"`
	Message   string        `json:"message"`
	Elapsed   time.Duration `json:"elapsed"`
}
