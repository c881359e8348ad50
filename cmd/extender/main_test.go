package main

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justchokingaround/extender/internal/config"
)

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0:00:00"},
		{59.6, "0:01:00"},
		{3600, "1:00:00"},
		{3725.2, "1:02:05"},
		{90061, "25:01:01"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatSeconds(tt.seconds), "seconds=%v", tt.seconds)
	}
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "3f2a9c1e", shortID("3f2a9c1e-8d7b-4a6f-9e21-0c5d4b3a2f10"))
	assert.Equal(t, "abc", shortID("abc"))
}

func TestPlural(t *testing.T) {
	assert.Equal(t, "file", plural(1, "file", "files"))
	assert.Equal(t, "files", plural(0, "file", "files"))
	assert.Equal(t, "files", plural(3, "file", "files"))
}

func TestOrDefault(t *testing.T) {
	assert.Equal(t, "(PATH)", orDefault("", "(PATH)"))
	assert.Equal(t, "/usr/bin/ffmpeg", orDefault("/usr/bin/ffmpeg", "(PATH)"))
}

func TestReloadConfigSwapsSnapshot(t *testing.T) {
	prevCfg, prevLevel := currentConfig(), logLevel
	t.Cleanup(func() {
		setConfig(prevCfg)
		logLevel = prevLevel
	})

	path := filepath.Join(t.TempDir(), "config.yaml")
	write := func(body string) *viper.Viper {
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))
		v := viper.New()
		v.SetConfigFile(path)
		require.NoError(t, v.ReadInConfig())
		return v
	}

	logLevel = "debug"
	initial := config.DefaultConfig()
	setConfig(initial)

	// readers hold on to what they got while reloads happen
	var wg sync.WaitGroup
	stop := make(chan struct{})
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					c := currentConfig()
					_ = c.Extender.TerminateGrace
					_ = c.Logging.Level
				}
			}
		}()
	}

	v := write("extender:\n  terminate_grace: 7s\nlogging:\n  level: warn\n")
	for range 20 {
		require.NoError(t, reloadConfig(v))
	}
	close(stop)
	wg.Wait()

	got := currentConfig()
	assert.Equal(t, 7*time.Second, got.Extender.TerminateGrace)
	assert.Equal(t, "debug", got.Logging.Level, "flag overrides survive a reload")
	assert.NotSame(t, initial, got)
	assert.NotEqual(t, 7*time.Second, initial.Extender.TerminateGrace, "old snapshot is left untouched")

	v = write("extender:\n  terminate_grace: -1s\n")
	assert.Error(t, reloadConfig(v))
	assert.Same(t, got, currentConfig(), "invalid file keeps the previous config")
}
