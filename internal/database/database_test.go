package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/justchokingaround/extender/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// every connection to :memory: is a separate database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, Migrate(db))
	require.NoError(t, RunMigrations(db))
	return db
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, RunMigrations(db))

	applied, err := getAppliedMigrations(db)
	require.NoError(t, err)
	assert.True(t, applied["20261019"])
	assert.True(t, applied["20261020"])
}

func TestMigrationSkippedUntilTablesExist(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = RunMigrations(db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run_files does not exist yet")
}

func TestRunFileStatsView(t *testing.T) {
	db := newTestDB(t)

	now := time.Now()
	run := Run{ID: "run-1", Times: 3, Status: "completed", TotalFiles: 2, StartedAt: now}
	require.NoError(t, db.Create(&run).Error)
	require.NoError(t, db.Create(&[]RunFile{
		{RunID: "run-1", Position: 0, SourcePath: "/v/a.mp4", Duration: 10, RepeatCount: 3, Status: "completed"},
		{RunID: "run-1", Position: 1, SourcePath: "/v/b.mp4", Duration: 20, RepeatCount: 3, Status: "completed"},
		{RunID: "run-1", Position: 2, SourcePath: "/v/c.mp4", Status: "failed"},
	}).Error)

	var rows []struct {
		Status        string
		Files         int
		OutputSeconds float64
	}
	require.NoError(t, db.Raw("SELECT status, files, output_seconds FROM run_file_stats ORDER BY status").Scan(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, "completed", rows[0].Status)
	assert.Equal(t, 2, rows[0].Files)
	assert.InDelta(t, 90.0, rows[0].OutputSeconds, 0.001)
	assert.Equal(t, "failed", rows[1].Status)
	assert.Equal(t, 1, rows[1].Files)
}

func TestRunFilesPreloadInOrder(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.Create(&Run{
		ID:         "run-2",
		Status:     "running",
		TotalFiles: 2,
		Files: []RunFile{
			{Position: 1, SourcePath: "/v/second.mkv", Status: "pending"},
			{Position: 0, SourcePath: "/v/first.mkv", Status: "pending"},
		},
	}).Error)

	var run Run
	require.NoError(t, db.Preload("Files", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("position")
	}).First(&run, "id = ?", "run-2").Error)

	require.Len(t, run.Files, 2)
	assert.Equal(t, "/v/first.mkv", run.Files[0].SourcePath)
	assert.Equal(t, "/v/second.mkv", run.Files[1].SourcePath)
}

func TestParseRequires(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"none", "CREATE TABLE x (id INTEGER);", nil},
		{"single", "-- requires: run_files\nSELECT 1;", []string{"run_files"}},
		{"list", "-- requires: runs, run_files\nSELECT 1;", []string{"runs", "run_files"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseRequires(tt.content))
		})
	}
}

func TestExtractMigrationName(t *testing.T) {
	assert.Equal(t, "20261019", extractMigrationName("20261019_run_file_stats.sql"))
	assert.Equal(t, "notes.sql", extractMigrationName("notes.sql"))
}

func TestOpenCreatesDatabaseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "extender.db")

	db, err := Open(&config.DatabaseConfig{Path: path, MaxConnections: 2, WALMode: true, AutoVacuum: true})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})

	assert.FileExists(t, path)
	assert.True(t, db.Migrator().HasTable(&RunFile{}))
}
