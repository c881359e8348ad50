package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/justchokingaround/extender/internal/database"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.RunMigrations(db))

	return NewService(db), db
}

func seed(t *testing.T, db *gorm.DB) {
	t.Helper()

	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	finished := base.Add(90 * time.Second)

	runs := []database.Run{
		{
			ID: "aaaa1111-run", Times: 3, Status: "completed", TotalFiles: 2, Completed: 1, Failed: 1,
			Message: "All videos processed successfully!", StartedAt: base, FinishedAt: &finished,
			Files: []database.RunFile{
				{Position: 0, SourcePath: "/videos/rain_loop.mp4", OutputPath: "/videos/rain_loop_3times.mp4", Duration: 20, RepeatCount: 3, Status: "completed"},
				{Position: 1, SourcePath: "/videos/fireplace.mkv", Status: "failed", ExitCode: 1, Error: "ffmpeg exited with code 1"},
			},
		},
		{
			ID: "bbbb2222-run", Hours: 1, Status: "cancelled", TotalFiles: 2,
			Message: "Processing cancelled", StartedAt: base.Add(24 * time.Hour),
			Files: []database.RunFile{
				{Position: 0, SourcePath: "/clips/ocean waves.webm", Duration: 600, RepeatCount: 6, Status: "cancelled"},
			},
		},
		{
			ID: "bbbb3333-run", Minutes: 30, Status: "completed", TotalFiles: 1, Completed: 1,
			StartedAt: base.Add(48 * time.Hour),
			Files: []database.RunFile{
				{Position: 0, SourcePath: "/clips/rain_window.mov", Duration: 100, RepeatCount: 18, Status: "completed"},
			},
		},
	}
	for i := range runs {
		require.NoError(t, db.Create(&runs[i]).Error)
	}
}

func TestGetRuns(t *testing.T) {
	svc, db := newTestService(t)
	seed(t, db)

	runs, err := svc.GetRuns(FilterOptions{})
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "bbbb3333-run", runs[0].ID)
	assert.Equal(t, "aaaa1111-run", runs[2].ID)
	assert.Equal(t, 90*time.Second, runs[2].Elapsed)

	runs, err = svc.GetRuns(FilterOptions{Status: "completed", SortBy: SortOldestFirst, Limit: 1})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "aaaa1111-run", runs[0].ID)
}

func TestRunItemIntent(t *testing.T) {
	assert.Equal(t, "3times", RunItem{Times: 3, Hours: 1}.Intent())
	assert.Equal(t, "0h30m", RunItem{Minutes: 30}.Intent())
	assert.Equal(t, "2h", RunItem{Hours: 2}.Intent())
}

func TestGetRunByPrefix(t *testing.T) {
	svc, db := newTestService(t)
	seed(t, db)

	run, files, err := svc.GetRun("aaaa")
	require.NoError(t, err)
	assert.Equal(t, "aaaa1111-run", run.ID)
	require.Len(t, files, 2)
	assert.Equal(t, "/videos/rain_loop.mp4", files[0].SourcePath)
	assert.InDelta(t, 60.0, files[0].OutputSeconds(), 1e-9)

	_, _, err = svc.GetRun("bbbb")
	assert.ErrorContains(t, err, "ambiguous")

	_, _, err = svc.GetRun("zzzz")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestGetRunTreatsPatternCharsLiterally(t *testing.T) {
	svc, db := newTestService(t)
	seed(t, db)

	tests := []struct {
		name string
		id   string
	}{
		{"percent", "%"},
		{"underscore", "aaaa____-run"},
		{"percent after prefix", "aaaa%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.GetRun(tt.id)
			assert.ErrorIs(t, err, ErrRunNotFound)
		})
	}

	run, _, err := svc.GetRun("aaaa1111-run")
	require.NoError(t, err)
	assert.Equal(t, "aaaa1111-run", run.ID)
}

func TestSearch(t *testing.T) {
	svc, db := newTestService(t)
	seed(t, db)

	results, err := svc.Search("rain", 0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Contains(t, r.SourcePath, "rain")
	}

	results, err = svc.Search("rain", 1)
	require.NoError(t, err)
	assert.Len(t, results, 1)

	results, err = svc.Search("", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = svc.Search("zzzzqqq", 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestGetStats(t *testing.T) {
	svc, db := newTestService(t)
	seed(t, db)

	stats, err := svc.GetStats()
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.TotalRuns)
	assert.Equal(t, int64(2), stats.CompletedRuns)
	assert.Equal(t, int64(1), stats.CancelledRuns)
	assert.Equal(t, int64(4), stats.TotalFiles)
	// 20*3 + 100*18
	assert.Equal(t, 1860*time.Second, stats.OutputTime)
	require.NotEmpty(t, stats.ByStatus)
	assert.Equal(t, "completed", stats.ByStatus[0].Status)
}

func TestCleanup(t *testing.T) {
	svc, db := newTestService(t)
	seed(t, db)

	removed, err := svc.Cleanup(time.Date(2026, 10, 2, 13, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	var files int64
	require.NoError(t, db.Model(&database.RunFile{}).Count(&files).Error)
	assert.Equal(t, int64(1), files)
}

func TestNilDatabase(t *testing.T) {
	svc := NewService(nil)

	_, err := svc.GetRuns(FilterOptions{})
	assert.Error(t, err)
	_, err = svc.GetStats()
	assert.Error(t, err)
	_, err = svc.Search("x", 1)
	assert.Error(t, err)
}
