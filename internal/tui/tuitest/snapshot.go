// Package tuitest holds helpers for testing rendered terminal output
package tuitest

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"
)

var update = flag.Bool("update", false, "update snapshot files")

// AssertSnapshot compares output with testdata/<test name>.snap. Styling escape
// sequences are stripped first so snapshots do not depend on the color profile.
// Run the test with -update to rewrite the file.
func AssertSnapshot(t *testing.T, output string) {
	t.Helper()

	output = ansi.Strip(output)
	snapshotPath := filepath.Join("testdata", strings.ToLower(strings.ReplaceAll(t.Name(), "/", "_"))+".snap")

	if *update {
		require.NoError(t, os.MkdirAll(filepath.Dir(snapshotPath), 0755))
		require.NoError(t, os.WriteFile(snapshotPath, []byte(output), 0644))
		t.Logf("updated snapshot: %s", snapshotPath)
		return
	}

	snapshot, err := os.ReadFile(snapshotPath)
	if os.IsNotExist(err) {
		t.Fatalf("snapshot file not found: %s. run with -update to create it.", snapshotPath)
	}
	require.NoError(t, err)

	require.Equal(t, string(snapshot), output, "snapshot does not match. run with -update to update it.")
}
