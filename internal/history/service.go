package history

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/sahilm/fuzzy"
	"gorm.io/gorm"

	"github.com/justchokingaround/extender/internal/database"
)

// ErrRunNotFound is returned when no run matches the requested ID
var ErrRunNotFound = errors.New("run not found")

// searchWindow is how many recent files fuzzy search looks at
const searchWindow = 2000

// Service provides read access to recorded batch runs
type Service struct {
	db *gorm.DB
}

// SortOrder defines the sorting order for runs
type SortOrder string

const (
	SortRecentFirst SortOrder = "recent_first"
	SortOldestFirst SortOrder = "oldest_first"
)

// FilterOptions defines filtering options for run queries
type FilterOptions struct {
	Status    string    // completed, cancelled, running, or empty for all
	StartDate time.Time // Filter by date range
	EndDate   time.Time
	Limit     int       // Limit results (0 = no limit)
	Offset    int       // Offset for pagination
	SortBy    SortOrder // Sorting order
}

// RunItem is a run with computed fields
type RunItem struct {
	ID         string
	Hours      int
	Minutes    int
	Times      int
	Status     string
	TotalFiles int
	Completed  int
	Failed     int
	Message    string
	StartedAt  time.Time
	FinishedAt *time.Time
	Elapsed    time.Duration
}

// Intent renders the repetition request the way output files are named
func (r RunItem) Intent() string {
	switch {
	case r.Times > 0:
		return fmt.Sprintf("%dtimes", r.Times)
	case r.Minutes > 0:
		return fmt.Sprintf("%dh%dm", r.Hours, r.Minutes)
	default:
		return fmt.Sprintf("%dh", r.Hours)
	}
}

// FileItem is one recorded file outcome
type FileItem struct {
	RunID       string
	Position    int
	SourcePath  string
	OutputPath  string
	Duration    float64
	Repeat      int
	Status      string
	ExitCode    int
	Error       string
	CompletedAt *time.Time
}

// OutputSeconds is the expected length of the output
func (f FileItem) OutputSeconds() float64 {
	return f.Duration * float64(f.Repeat)
}

// StatusCount is a row of the run_file_stats view
type StatusCount struct {
	Status        string
	Files         int64
	OutputSeconds float64
	AvgRepeat     float64
}

// Stats represents run history statistics
type Stats struct {
	TotalRuns     int64
	CompletedRuns int64
	CancelledRuns int64
	TotalFiles    int64
	OutputTime    time.Duration // summed length of completed outputs
	ByStatus      []StatusCount
}

// NewService creates a new history service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// GetRuns lists runs matching filter
func (s *Service) GetRuns(filter FilterOptions) ([]RunItem, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	query := s.db.Model(&database.Run{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if !filter.StartDate.IsZero() {
		query = query.Where("started_at >= ?", filter.StartDate)
	}

	if !filter.EndDate.IsZero() {
		query = query.Where("started_at <= ?", filter.EndDate)
	}

	switch filter.SortBy {
	case SortOldestFirst:
		query = query.Order("started_at ASC")
	default: // SortRecentFirst
		query = query.Order("started_at DESC")
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var records []database.Run
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch runs: %w", err)
	}

	items := make([]RunItem, len(records))
	for i, record := range records {
		items[i] = toRunItem(record)
	}

	return items, nil
}

// GetRun returns the run whose ID equals or starts with id, with its files in order
func (s *Service) GetRun(id string) (*RunItem, []FileItem, error) {
	if s.db == nil {
		return nil, nil, fmt.Errorf("database connection is nil")
	}
	if id == "" {
		return nil, nil, ErrRunNotFound
	}

	// Compare the prefix literally so % and _ in id match only themselves
	var matches []database.Run
	if err := s.db.Where("substr(id, 1, ?) = ?", utf8.RuneCountInString(id), id).Limit(2).Find(&matches).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to fetch run: %w", err)
	}
	switch len(matches) {
	case 0:
		return nil, nil, ErrRunNotFound
	case 1:
	default:
		return nil, nil, fmt.Errorf("run ID %q is ambiguous", id)
	}

	var files []database.RunFile
	if err := s.db.Where("run_id = ?", matches[0].ID).Order("position ASC").Find(&files).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to fetch run files: %w", err)
	}

	item := toRunItem(matches[0])
	return &item, toFileItems(files), nil
}

// Search fuzzy matches query against the source paths of recent files, best match first
func (s *Service) Search(query string, limit int) ([]FileItem, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	var records []database.RunFile
	if err := s.db.Order("id DESC").Limit(searchWindow).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch files: %w", err)
	}

	items := toFileItems(records)
	if query == "" {
		if limit > 0 && len(items) > limit {
			items = items[:limit]
		}
		return items, nil
	}

	paths := make([]string, len(items))
	for i, item := range items {
		paths[i] = item.SourcePath
	}

	matches := fuzzy.Find(query, paths)
	results := make([]FileItem, 0, len(matches))
	for _, match := range matches {
		results = append(results, items[match.Index])
		if limit > 0 && len(results) == limit {
			break
		}
	}

	return results, nil
}

// GetStats returns aggregate statistics
func (s *Service) GetStats() (*Stats, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	var stats Stats

	if err := s.db.Model(&database.Run{}).Count(&stats.TotalRuns).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&database.Run{}).Where("status = ?", "completed").Count(&stats.CompletedRuns).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&database.Run{}).Where("status = ?", "cancelled").Count(&stats.CancelledRuns).Error; err != nil {
		return nil, err
	}

	if err := s.db.Raw("SELECT status, files, output_seconds, avg_repeat FROM run_file_stats ORDER BY files DESC, status ASC").
		Scan(&stats.ByStatus).Error; err != nil {
		return nil, fmt.Errorf("failed to read file stats: %w", err)
	}

	for _, row := range stats.ByStatus {
		stats.TotalFiles += row.Files
		if row.Status == "completed" {
			stats.OutputTime = time.Duration(row.OutputSeconds * float64(time.Second))
		}
	}

	return &stats, nil
}

// Cleanup removes runs that started before cutoff along with their files
func (s *Service) Cleanup(cutoff time.Time) (int64, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database connection is nil")
	}

	var removed int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		old := tx.Model(&database.Run{}).Select("id").Where("started_at < ?", cutoff)
		if err := tx.Where("run_id IN (?)", old).Delete(&database.RunFile{}).Error; err != nil {
			return err
		}
		res := tx.Where("started_at < ?", cutoff).Delete(&database.Run{})
		removed = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to clean up history: %w", err)
	}

	return removed, nil
}

func toRunItem(record database.Run) RunItem {
	item := RunItem{
		ID:         record.ID,
		Hours:      record.Hours,
		Minutes:    record.Minutes,
		Times:      record.Times,
		Status:     record.Status,
		TotalFiles: record.TotalFiles,
		Completed:  record.Completed,
		Failed:     record.Failed,
		Message:    record.Message,
		StartedAt:  record.StartedAt,
		FinishedAt: record.FinishedAt,
	}
	if record.FinishedAt != nil {
		item.Elapsed = record.FinishedAt.Sub(record.StartedAt)
	}
	return item
}

func toFileItems(records []database.RunFile) []FileItem {
	items := make([]FileItem, len(records))
	for i, record := range records {
		items[i] = FileItem{
			RunID:       record.RunID,
			Position:    record.Position,
			SourcePath:  record.SourcePath,
			OutputPath:  record.OutputPath,
			Duration:    record.Duration,
			Repeat:      record.RepeatCount,
			Status:      record.Status,
			ExitCode:    record.ExitCode,
			Error:       record.Error,
			CompletedAt: record.CompletedAt,
		}
	}
	return items
}
