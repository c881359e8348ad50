package database

import (
	"time"

	"gorm.io/gorm"
)

// Run is one batch invocation
type Run struct {
	ID         string     `gorm:"primaryKey"`
	Hours      int        `gorm:"default:0"`
	Minutes    int        `gorm:"default:0"`
	Times      int        `gorm:"default:0"`
	Status     string     `gorm:"not null;index"` // running, completed, cancelled
	TotalFiles int        `gorm:"not null"`
	Completed  int        `gorm:"default:0"`
	Failed     int        `gorm:"default:0"`
	Message    string     `gorm:""`
	StartedAt  time.Time  `gorm:"index;default:CURRENT_TIMESTAMP"`
	FinishedAt *time.Time `gorm:""`
	Files      []RunFile  `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
}

// TableName overrides the table name
func (Run) TableName() string {
	return "runs"
}

// RunFile is the outcome of one input file within a run
type RunFile struct {
	ID          uint       `gorm:"primaryKey"`
	RunID       string     `gorm:"not null;index"`
	Position    int        `gorm:"not null"` // order within the run
	SourcePath  string     `gorm:"not null;index"`
	OutputPath  string     `gorm:""`
	Duration    float64    `gorm:"default:0"` // seconds, as probed
	RepeatCount int        `gorm:"column:repeat_count;default:0"`
	Status      string     `gorm:"not null;index"` // pending, probing, concatenating, completed, failed, cancelled
	ExitCode    int        `gorm:"default:0"`
	Error       string     `gorm:""`
	StartedAt   *time.Time `gorm:""`
	CompletedAt *time.Time `gorm:""`
}

// TableName overrides the table name
func (RunFile) TableName() string {
	return "run_files"
}

// Migrate runs all database migrations
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Run{},
		&RunFile{},
	)
}
