package extender

import (
	"time"

	"github.com/justchokingaround/extender/internal/database"
)

// Run history is bookkeeping: failures are logged and never affect processing.

func (o *Orchestrator) recordRunStart(runID string, job Job, startedAt time.Time) {
	if o.db == nil {
		return
	}

	run := database.Run{
		ID:         runID,
		Hours:      job.Hours,
		Minutes:    job.Minutes,
		Times:      job.Times,
		Status:     string(StateRunning),
		TotalFiles: len(job.Files),
		StartedAt:  startedAt,
	}
	if err := o.db.Create(&run).Error; err != nil {
		o.logger.Warn("failed to record run", "run_id", runID, "error", err)
	}
}

func (o *Orchestrator) recordRunEnd(summary Summary) {
	if o.db == nil {
		return
	}

	finished := time.Now()
	err := o.db.Model(&database.Run{}).Where("id = ?", summary.RunID).Updates(map[string]any{
		"status":      string(summary.State),
		"completed":   summary.Completed,
		"failed":      summary.Failed,
		"message":     summary.Message,
		"finished_at": finished,
	}).Error
	if err != nil {
		o.logger.Warn("failed to update run", "run_id", summary.RunID, "error", err)
	}
}

// saveFile inserts or updates the row for task
func (o *Orchestrator) saveFile(runID string, task *FileTask) {
	if o.db == nil {
		return
	}

	row := taskToRunFile(runID, task)
	if err := o.db.Save(&row).Error; err != nil {
		o.logger.Warn("failed to record file", "run_id", runID, "file", task.SourcePath, "error", err)
		return
	}
	task.recordID = row.ID
}

func taskToRunFile(runID string, task *FileTask) database.RunFile {
	return database.RunFile{
		ID:          task.recordID,
		RunID:       runID,
		Position:    task.Index,
		SourcePath:  task.SourcePath,
		OutputPath:  task.OutputPath,
		Duration:    task.Duration,
		RepeatCount: task.Repeat,
		Status:      string(task.Status),
		ExitCode:    task.ExitCode,
		Error:       task.Error,
		StartedAt:   task.StartedAt,
		CompletedAt: task.CompletedAt,
	}
}
