package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToolTypeString(t *testing.T) {
	assert.Equal(t, "ffmpeg", ToolFFmpeg.String())
	assert.Equal(t, "ffprobe", ToolFFprobe.String())
	assert.Equal(t, "unknown", ToolType(42).String())
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{
			name:   "release build",
			output: "ffmpeg version 6.1.1-3ubuntu5 Copyright (c) 2000-2023 the FFmpeg developers\nbuilt with gcc 13",
			want:   "6.1.1-3ubuntu5",
		},
		{
			name:   "git build",
			output: "ffprobe version N-112345-g1234567 Copyright (c) 2007-2024",
			want:   "N-112345-g1234567",
		},
		{
			name:   "bare number",
			output: "7.0.2\n",
			want:   "7.0.2",
		},
		{
			name:   "unrecognised short line",
			output: "custom build",
			want:   "custom build",
		},
		{
			name:   "empty",
			output: "   \n",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseVersion(tt.output))
		})
	}
}

func TestDetectMissingTools(t *testing.T) {
	ffmpeg, ffprobe, err := Detect("/nonexistent/ffmpeg-missing", "/nonexistent/ffprobe-missing")
	assert.Error(t, err)
	assert.False(t, ffmpeg.Available)
	assert.False(t, ffprobe.Available)
	assert.Contains(t, err.Error(), "ffmpeg and ffprobe")
}
