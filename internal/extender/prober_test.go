package extender

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCommandRunner struct {
	result commandResult
	err    error

	name string
	args []string
}

func (f *fakeCommandRunner) Run(ctx context.Context, name string, args ...string) (commandResult, error) {
	f.name = name
	f.args = args
	return f.result, f.err
}

func TestFFprobeProbe(t *testing.T) {
	runner := &fakeCommandRunner{result: commandResult{Stdout: "12.480000\n"}}
	p := &FFprobe{binary: "/opt/ffprobe", runner: runner}

	got, err := p.Probe(context.Background(), "/v/a.mp4")
	require.NoError(t, err)
	assert.InDelta(t, 12.48, got, 1e-9)

	assert.Equal(t, "/opt/ffprobe", runner.name)
	assert.Equal(t, []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		"/v/a.mp4",
	}, runner.args)
}

func TestFFprobeProbeErrors(t *testing.T) {
	tests := []struct {
		name   string
		result commandResult
		err    error
	}{
		{"command fails", commandResult{Stderr: "a.mp4: No such file or directory", ExitCode: 1}, errors.New("exit status 1")},
		{"not a number", commandResult{Stdout: "N/A\n"}, nil},
		{"empty", commandResult{Stdout: ""}, nil},
		{"zero", commandResult{Stdout: "0.000000"}, nil},
		{"negative", commandResult{Stdout: "-3"}, nil},
		{"infinite", commandResult{Stdout: "inf"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &FFprobe{binary: "ffprobe", runner: &fakeCommandRunner{result: tt.result, err: tt.err}}

			_, err := p.Probe(context.Background(), "a.mp4")
			require.Error(t, err)

			var probeErr *ProbeError
			require.ErrorAs(t, err, &probeErr)
			assert.Equal(t, "a.mp4", probeErr.Path)
		})
	}
}

func TestFFprobeProbeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &FFprobe{binary: "ffprobe", runner: &fakeCommandRunner{err: context.Canceled}}
	_, err := p.Probe(ctx, "a.mp4")
	assert.ErrorIs(t, err, ErrCancelled)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFFprobeMissingBinary(t *testing.T) {
	p := NewFFprobe("/nonexistent/ffprobe-for-test")
	_, err := p.Probe(context.Background(), "a.mp4")

	var probeErr *ProbeError
	assert.ErrorAs(t, err, &probeErr)
}

func TestNewFFprobeDefaultsBinary(t *testing.T) {
	assert.Equal(t, "ffprobe", NewFFprobe("").binary)
}
