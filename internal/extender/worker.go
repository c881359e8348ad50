package extender

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// processFile takes one input through probe, plan, manifest and concat, and reports
// the outcome as status events. Errors never escape; they become the file's status.
func (o *Orchestrator) processFile(ctx context.Context, runID string, job Job, index int, path string, logger *slog.Logger) FileResult {
	base := filepath.Base(path)
	total := len(job.Files)
	logger = logger.With("file", path, "index", index)

	now := time.Now()
	task := &FileTask{
		Index:      index,
		SourcePath: path,
		Status:     StatusProbing,
		StartedAt:  &now,
	}

	o.emit(runID, Event{Type: EventStatus, Index: index, Total: total, Path: path, Text: "Processing: " + base})
	o.saveFile(runID, task)

	err := o.processTask(ctx, runID, job, task, logger)

	completed := time.Now()
	task.CompletedAt = &completed

	switch {
	case err == nil:
		task.Status = StatusCompleted
		task.Progress = 100
		o.emit(runID, Event{Type: EventStatus, Index: index, Total: total, Path: path, Text: "Completed: " + base, Output: task.OutputPath, Success: true})
		o.emit(runID, Event{Type: EventItemProgress, Index: index, Total: total, Path: path, Percent: 100})
		logger.Info("file completed", "output", task.OutputPath, "repeat", task.Repeat)

	case errors.Is(err, ErrCancelled) || ctx.Err() != nil:
		task.Status = StatusCancelled
		task.Error = ErrCancelled.Error()
		o.emit(runID, Event{Type: EventStatus, Index: index, Total: total, Path: path, Text: "Cancelled: " + base})
		logger.Info("file cancelled")

	default:
		task.Status = StatusFailed
		task.Error = err.Error()
		o.emit(runID, Event{Type: EventStatus, Index: index, Total: total, Path: path, Text: fmt.Sprintf("Failed: %s: %v", base, err)})
		logger.Error("file failed", "error", err, "exit_code", task.ExitCode)
	}

	o.saveFile(runID, task)
	o.metrics.RecordFile(string(task.Status), completed.Sub(now).Seconds())

	result := FileResult{
		Path:       path,
		OutputPath: task.OutputPath,
		Repeat:     task.Repeat,
		Status:     task.Status,
	}
	if task.Status != StatusCompleted {
		result.Err = err
	}
	return result
}

// processTask runs the pipeline for task. The manifest is removed on every return path.
func (o *Orchestrator) processTask(ctx context.Context, runID string, job Job, task *FileTask, logger *slog.Logger) error {
	duration, err := o.prober.Probe(ctx, task.SourcePath)
	if err != nil {
		return err
	}
	task.Duration = duration

	repeat, err := PlanRepeats(duration, job.Hours, job.Minutes, job.Times)
	if err != nil {
		return fmt.Errorf("cannot plan repeats for %.3fs: %w", duration, err)
	}
	task.Repeat = repeat
	o.metrics.RecordRepeat(repeat)

	task.OutputPath = OutputPath(task.SourcePath, o.config.OutputDir, job.Hours, job.Minutes, job.Times)
	outDir := filepath.Dir(task.OutputPath)
	if o.config.OutputDir != "" {
		if err := os.MkdirAll(outDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if err := checkDiskSpace(task.SourcePath, outDir, repeat, o.config.MinFreeSpace); err != nil {
		return err
	}

	manifest, cleanup, err := WriteManifest(o.config.ManifestDir, task.SourcePath, repeat)
	if err != nil {
		return err
	}
	defer cleanup()
	task.ManifestPath = manifest

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	}

	task.Status = StatusConcatenating
	o.saveFile(runID, task)
	logger.Debug("concatenating", "duration", duration, "repeat", repeat, "manifest", manifest, "output", task.OutputPath)

	totalSeconds := task.TotalSeconds()
	last := 0
	o.emit(runID, Event{Type: EventItemProgress, Index: task.Index, Total: len(job.Files), Path: task.SourcePath, Percent: 0})

	onLine := func(line string) {
		percent, ok := ParseProgress(line, totalSeconds)
		if !ok || percent == last {
			return
		}
		last = percent
		task.Progress = percent
		o.emit(runID, Event{Type: EventItemProgress, Index: task.Index, Total: len(job.Files), Path: task.SourcePath, Percent: percent})
	}

	code, err := o.runner.Run(ctx, ConcatRequest{
		ManifestPath: manifest,
		OutputPath:   task.OutputPath,
		Overwrite:    o.config.Overwrite,
	}, onLine)
	task.ExitCode = code
	return err
}
