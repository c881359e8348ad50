package extender

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseProgress(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		total  float64
		want   int
		wantOK bool
	}{
		{"half way", "frame=100 fps=0 q=-1.0 size=1024kB time=00:00:30.00 bitrate=1.0kbits/s speed=10x", 60, 50, true},
		{"progress key", "out_time=00:01:00.000000", 120, 50, true},
		{"floor", "time=00:00:10.99", 60, 18, true},
		{"capped", "time=01:00:00.00", 60, 100, true},
		{"hours", "time=01:30:00.00", 10800, 50, true},
		{"no token", "Input #0, concat, from 'concat.txt':", 60, 0, false},
		{"not available", "size=N/A time=N/A bitrate=N/A", 60, 0, false},
		{"negative", "time=-00:00:01.00", 60, 0, false},
		{"two fields", "time=00:30", 60, 0, false},
		{"garbage", "time=aa:bb:cc", 60, 0, false},
		{"zero total", "time=00:00:30.00", 0, 0, false},
		{"negative total", "time=00:00:30.00", -1, 0, false},
		{"empty", "", 60, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseProgress(tt.line, tt.total)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseProgressNeverPanics(t *testing.T) {
	inputs := []string{"time=", "time=::", "time=1:2:", "time=9999999999999999999:00:00", "time=\x00", "==time==time="}
	for _, in := range inputs {
		assert.NotPanics(t, func() {
			p, ok := ParseProgress(in, 10)
			if ok {
				assert.GreaterOrEqual(t, p, 0)
				assert.LessOrEqual(t, p, 100)
			}
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"00:00:00", 0, true},
		{"00:01:02.5", 62.5, true},
		{"02:00:00.000000", 7200, true},
		{"N/A", 0, false},
		{"1:2", 0, false},
		{"00:+1:00", 0, false},
		{"00:00:1e3", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}
