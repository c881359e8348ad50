package utils

import (
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
)

func TestTruncateWithWidth(t *testing.T) {
	assert.Equal(t, "short", TruncateWithWidth("short", 10))
	assert.Equal(t, "a long ...", TruncateWithWidth("a long file name", 10))
}

func TestTruncateMiddle(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  string
	}{
		{"fits", "/v/a.mp4", 20, "/v/a.mp4"},
		{"path", "/home/user/videos/rain_loop.mp4", 20, "/home/use...loop.mp4"},
		{"tiny", "abcdef", 3, "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateMiddle(tt.text, tt.width)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, runewidth.StringWidth(got), tt.width)
		})
	}
}

func TestTruncateMiddleWideRunes(t *testing.T) {
	got := TruncateMiddle("動画ファイルの名前がとても長い.mp4", 16)
	assert.LessOrEqual(t, runewidth.StringWidth(got), 16)
	assert.Contains(t, got, "...")
}

func TestWrapText(t *testing.T) {
	assert.Equal(t, []string{"ffmpeg exited", "with code 1"}, WrapText("ffmpeg exited with code 1", 13))
	assert.Empty(t, WrapText("   ", 10))
}
