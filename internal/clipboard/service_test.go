package clipboard

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWriteUsesNativeClipboard(t *testing.T) {
	var got string
	svc := &clipboardService{
		logger:   quietLogger(),
		writeAll: func(s string) error { got = s; return nil },
		runCommand: func([]string, string) error {
			t.Fatal("fallback must not run")
			return nil
		},
	}

	msg := svc.Write("/videos/a_3times.mp4")()
	copied, ok := msg.(CopiedMsg)
	require.True(t, ok)
	assert.NoError(t, copied.Err)
	assert.Equal(t, "/videos/a_3times.mp4", copied.Text)
	assert.Equal(t, "/videos/a_3times.mp4", got)
}

func TestWriteFallsBackToConfiguredCommand(t *testing.T) {
	var ran []string
	svc := &clipboardService{
		command:  "sh -c 'cat > /dev/null'",
		logger:   quietLogger(),
		writeAll: func(string) error { return errors.New("no clipboard") },
		runCommand: func(parts []string, text string) error {
			ran = parts
			return nil
		},
	}

	copied := svc.Write("x")().(CopiedMsg)
	assert.NoError(t, copied.Err)
	assert.Equal(t, []string{"sh", "-c", "cat > /dev/null"}, ran)
}

func TestWriteReportsFailure(t *testing.T) {
	svc := &clipboardService{
		command:    "definitely-not-a-clipboard-tool",
		logger:     quietLogger(),
		writeAll:   func(string) error { return errors.New("no clipboard") },
		runCommand: func([]string, string) error { return errors.New("failed") },
	}

	copied := svc.Write("x")().(CopiedMsg)
	assert.Error(t, copied.Err)
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		command string
		want    []string
	}{
		{"wl-copy", []string{"wl-copy"}},
		{"xclip -selection clipboard", []string{"xclip", "-selection", "clipboard"}},
		{`sh -c "cat > /tmp/x"`, []string{"sh", "-c", "cat > /tmp/x"}},
		{`echo 'it"s'`, []string{"echo", `it"s`}},
		{"  spaced   out  ", []string{"spaced", "out"}},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			assert.Equal(t, tt.want, parseCommand(tt.command))
		})
	}
}

func TestNewService(t *testing.T) {
	var _ Service = NewService("", nil)
}
