package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, v, err := Load("")
	require.NoError(t, err)
	require.NotNil(t, v)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Extender.Overwrite)
	assert.Equal(t, 5*time.Second, cfg.Extender.TerminateGrace)
	assert.Equal(t, 100*time.Millisecond, cfg.Extender.ProgressInterval)
	assert.Empty(t, cfg.Tools.FFmpeg)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
tools:
  ffmpeg: /opt/ffmpeg/bin/ffmpeg
extender:
  overwrite: false
  terminate_grace: 2s
  output_dir: /srv/out
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, _, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/opt/ffmpeg/bin/ffmpeg", cfg.Tools.FFmpeg)
	assert.Empty(t, cfg.Tools.FFprobe)
	assert.False(t, cfg.Extender.Overwrite)
	assert.Equal(t, 2*time.Second, cfg.Extender.TerminateGrace)
	assert.Equal(t, "/srv/out", cfg.Extender.OutputDir)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("EXTENDER_TOOLS_FFPROBE", "/usr/local/bin/ffprobe")

	cfg, _, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/usr/local/bin/ffprobe", cfg.Tools.FFprobe)
}

func TestLoadRejectsNegativeGrace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("extender:\n  terminate_grace: -1s\n"), 0644))

	_, _, err := Load(path)
	assert.Error(t, err)
}

func TestSaveDefaultConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, SaveDefaultConfig(path))

	cfg, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Extender.TerminateGrace, cfg.Extender.TerminateGrace)
	assert.Equal(t, DefaultConfig().Database.Path, cfg.Database.Path)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.in))
		})
	}
}

func TestColoredHandlerKeepsAttrs(t *testing.T) {
	var buf bytes.Buffer
	cfg := &LoggingConfig{Format: "text", Color: true}
	logger := slog.New(newHandler(&buf, cfg, slog.LevelDebug)).With("run_id", "abc")

	logger.Warn("disk low")

	out := buf.String()
	assert.Contains(t, out, "\033[33mWARN\033[0m")
	assert.Contains(t, out, "run_id=abc")
	assert.Contains(t, out, "disk low")
}
